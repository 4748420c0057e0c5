package handler

import (
	"net/http"

	"graphics-server/internal/models"
	"graphics-server/internal/service"

	"github.com/gin-gonic/gin"
)

// entityEndpoints serves one entity kind under /spaces/:spaceId/{plural}.
type entityEndpoints struct {
	svc     service.EntityService
	kind    *models.EntityKind
	newBody func() kindBody
}

// bindEntity binds the shared and the kind-specific members of one body.
func (e *entityEndpoints) bindEntity(c *gin.Context) (*entityRequest, kindBody, bool) {
	var req entityRequest
	if !bindJSON(c, &req, nil) {
		return nil, nil, false
	}
	kb := e.newBody()
	if !bindJSON(c, kb, nil) {
		return nil, nil, false
	}
	return &req, kb, true
}

func (e *entityEndpoints) list(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	spaceID, ok := pathID(c, "spaceId", codeInvalidSpaceID)
	if !ok {
		return
	}
	items, err := e.svc.List(c.Request.Context(), userID, spaceID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if items == nil {
		items = []models.EntitySummary{}
	}
	c.JSON(http.StatusOK, gin.H{e.kind.Plural: items})
}

func (e *entityEndpoints) create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	spaceID, ok := pathID(c, "spaceId", codeInvalidSpaceID)
	if !ok {
		return
	}
	req, kb, ok := e.bindEntity(c)
	if !ok {
		return
	}
	in := models.CreateEntityInput{
		Description:    req.Description.Value,
		Fields:         values(kb.fields()),
		Attributes:     kb.attributeValues(),
		BasePrompt:     req.BasePrompt.Value,
		NegativePrompt: req.NegativePrompt.Value,
		BaseSeed:       req.BaseSeed.Value,
	}
	if req.Name != nil {
		in.Name = *req.Name
	}

	summary, err := e.svc.Create(c.Request.Context(), userID, spaceID, in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{e.kind.Name: summary})
}

func (e *entityEndpoints) update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	spaceID, ok := pathID(c, "spaceId", codeInvalidSpaceID)
	if !ok {
		return
	}
	entityID, ok := pathID(c, "entityId", invalidIDCode(e.kind))
	if !ok {
		return
	}
	req, kb, ok := e.bindEntity(c)
	if !ok {
		return
	}
	in := models.UpdateEntityInput{
		Name:        req.Name,
		Description: clearable(req.Description),
		Attributes:  kb.attributeValues(),
	}

	summary, err := e.svc.Update(c.Request.Context(), userID, spaceID, entityID, in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{e.kind.Name: summary})
}

func (e *entityEndpoints) getWithVersions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	spaceID, ok := pathID(c, "spaceId", codeInvalidSpaceID)
	if !ok {
		return
	}
	entityID, ok := pathID(c, "entityId", invalidIDCode(e.kind))
	if !ok {
		return
	}
	entity, err := e.svc.GetWithVersions(c.Request.Context(), userID, spaceID, entityID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{e.kind.Name: entityJSON(e.kind, entity)})
}

func (e *entityEndpoints) cloneVersion(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	spaceID, ok := pathID(c, "spaceId", codeInvalidSpaceID)
	if !ok {
		return
	}
	entityID, ok := pathID(c, "entityId", invalidIDCode(e.kind))
	if !ok {
		return
	}
	var from cloneVersionRequest
	if !bindJSON(c, &from, map[string]string{"fromVersionId": codeInvalidFromVersionID}) {
		return
	}
	req, kb, ok := e.bindEntity(c)
	if !ok {
		return
	}
	in := models.CloneVersionInput{
		FromVersionID:  *from.FromVersionID,
		Label:          req.Label,
		Fields:         kb.fields(),
		BasePrompt:     req.BasePrompt,
		NegativePrompt: req.NegativePrompt,
		BaseSeed:       req.BaseSeed,
	}

	version, err := e.svc.CloneVersion(c.Request.Context(), userID, spaceID, entityID, in)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"version": versionJSON(e.kind, version)})
}
