package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"graphics-server/internal/attributes"
	"graphics-server/internal/models"
	"graphics-server/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

var _ EntityRepository = (*pgEntityRepository)(nil)

const uniqueViolation = "23505"

// entityQueries are rendered once per kind from its descriptor.
type entityQueries struct {
	listHeads      string
	latestRefs     string
	insertHead     string
	getHead        string
	updateHead     string
	updateAttrs    string
	listVersions   string
	getVersion     string
	latestVersion  string
	versionInSpace string
	versionImages  string
	insertFirst    string
	insertNext     string
}

type pgEntityRepository struct {
	db      DBTX
	kind    *models.EntityKind
	queries entityQueries
	logger  *zap.Logger
}

// NewPgEntityRepository creates an EntityRepository for kind backed by PostgreSQL.
func NewPgEntityRepository(db DBTX, kind *models.EntityKind, logger *zap.Logger) EntityRepository {
	return &pgEntityRepository{
		db:      db,
		kind:    kind,
		queries: buildEntityQueries(kind),
		logger:  logger.Named("PgEntityRepo").With(zap.String("kind", kind.Name)),
	}
}

func buildEntityQueries(k *models.EntityKind) entityQueries {
	fieldCols := make([]string, len(k.Fields))
	for i, f := range k.Fields {
		fieldCols[i] = f.Column
	}

	// Version columns in scan order, see scanVersion.
	cols := append([]string{"id", k.ParentColumn, "version_number", "label"}, fieldCols...)
	cols = append(cols, k.AttributesColumn, "base_prompt", "negative_prompt", "base_seed", "cloned_from_version_id", "created_at")
	versionCols := strings.Join(cols, ", ")

	prefixed := make([]string, len(cols))
	for i, c := range cols {
		prefixed[i] = "v." + c
	}

	// Insert columns: everything except id and created_at.
	insertCols := append([]string{k.ParentColumn, "version_number", "label"}, fieldCols...)
	insertCols = append(insertCols, k.AttributesColumn, "base_prompt", "negative_prompt", "base_seed", "cloned_from_version_id")
	// Parameters are cast so INSERT ... SELECT does not infer text for them.
	types := []string{"text"}
	for range k.Fields {
		types = append(types, "text")
	}
	types = append(types, "jsonb", "text", "text", "bigint", "bigint")
	placeholders := make([]string, len(types))
	for i, t := range types {
		placeholders[i] = fmt.Sprintf("$%d::%s", i+2, t)
	}
	valueList := strings.Join(placeholders, ", ")
	// A NULL label on append defaults to v{n}.
	placeholders[0] = "COALESCE($2::text, 'v' || (COALESCE(MAX(version_number), 0) + 1))"
	nextValueList := strings.Join(placeholders, ", ")

	headCols := "id, space_id, name, description, created_at, updated_at"

	return entityQueries{
		listHeads: fmt.Sprintf(`SELECT %s FROM %s WHERE space_id = $1 ORDER BY created_at DESC, id DESC`,
			headCols, k.EntityTable),
		latestRefs: fmt.Sprintf(`
			SELECT DISTINCT ON (%[1]s) %[1]s, id, version_number, label
			FROM %[2]s
			WHERE %[1]s = ANY($1::bigint[])
			ORDER BY %[1]s, version_number DESC`, k.ParentColumn, k.VersionTable),
		insertHead: fmt.Sprintf(`INSERT INTO %s (space_id, name, description) VALUES ($1, $2, $3) RETURNING %s`,
			k.EntityTable, headCols),
		getHead: fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND space_id = $2`, headCols, k.EntityTable),
		updateHead: fmt.Sprintf(`UPDATE %s SET name = $2, description = $3, updated_at = NOW() WHERE id = $1 RETURNING %s`,
			k.EntityTable, headCols),
		updateAttrs: fmt.Sprintf(`UPDATE %s SET %s = $2 WHERE id = $1`, k.VersionTable, k.AttributesColumn),

		listVersions: fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY version_number ASC`,
			versionCols, k.VersionTable, k.ParentColumn),
		getVersion: fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1 AND %s = $2`,
			versionCols, k.VersionTable, k.ParentColumn),
		latestVersion: fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY version_number DESC LIMIT 1`,
			versionCols, k.VersionTable, k.ParentColumn),
		versionInSpace: fmt.Sprintf(`
			SELECT %s, e.id, e.space_id, e.name, e.description, e.created_at, e.updated_at
			FROM %s v
			JOIN %s e ON e.id = v.%s
			WHERE v.id = $1 AND e.space_id = $2`,
			strings.Join(prefixed, ", "), k.VersionTable, k.EntityTable, k.ParentColumn),
		versionImages: fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM images WHERE %s = $1)`, k.ImageColumn),

		insertFirst: fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, 1, %s) RETURNING %s`,
			k.VersionTable, strings.Join(insertCols, ", "), valueList, versionCols),
		insertNext: fmt.Sprintf(`
			INSERT INTO %[1]s (%[2]s)
			SELECT $1, COALESCE(MAX(version_number), 0) + 1, %[3]s
			FROM %[1]s WHERE %[4]s = $1
			RETURNING %[5]s`,
			k.VersionTable, strings.Join(insertCols, ", "), nextValueList, k.ParentColumn, versionCols),
	}
}

func (r *pgEntityRepository) Kind() *models.EntityKind { return r.kind }

func (r *pgEntityRepository) ListWithLatest(ctx context.Context, spaceID int64) ([]models.EntitySummary, error) {
	logFields := []zap.Field{zap.Int64("space_id", spaceID)}

	rows, err := r.db.Query(ctx, r.queries.listHeads, spaceID)
	if err != nil {
		r.logger.Error("Failed to list entities", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to list %s: %w", r.kind.Plural, err)
	}
	heads, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.EntityHead, error) {
		return scanHead(row)
	})
	if err != nil {
		r.logger.Error("Failed to scan entities", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to scan %s: %w", r.kind.Plural, err)
	}

	summaries := make([]models.EntitySummary, 0, len(heads))
	if len(heads) == 0 {
		return summaries, nil
	}

	ids := make([]int64, len(heads))
	for i, h := range heads {
		ids[i] = h.ID
	}
	latest, err := r.latestRefs(ctx, ids)
	if err != nil {
		r.logger.Error("Failed to load latest versions", append(logFields, zap.Error(err))...)
		return nil, err
	}

	for _, h := range heads {
		summaries = append(summaries, models.EntitySummary{
			ID:            h.ID,
			Name:          h.Name,
			Description:   h.Description,
			LatestVersion: latest[h.ID],
		})
	}
	r.logger.Debug("Listed entities", append(logFields, zap.Int("count", len(summaries)))...)
	return summaries, nil
}

func (r *pgEntityRepository) latestRefs(ctx context.Context, entityIDs []int64) (map[int64]*models.VersionRef, error) {
	rows, err := r.db.Query(ctx, r.queries.latestRefs, pq.Array(entityIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query latest %s versions: %w", r.kind.Name, err)
	}
	defer rows.Close()

	refs := make(map[int64]*models.VersionRef, len(entityIDs))
	for rows.Next() {
		var entityID int64
		ref := &models.VersionRef{}
		if err := rows.Scan(&entityID, &ref.ID, &ref.VersionNumber, &ref.Label); err != nil {
			return nil, fmt.Errorf("failed to scan latest %s version: %w", r.kind.Name, err)
		}
		refs[entityID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating latest %s versions: %w", r.kind.Name, err)
	}
	return refs, nil
}

func (r *pgEntityRepository) CreateWithInitialVersion(ctx context.Context, spaceID int64, name string, description *string, draft models.VersionDraft) (*models.EntityWithVersions, error) {
	var result *models.EntityWithVersions
	err := database.ExecuteInTransaction(ctx, r.db, func(tx pgx.Tx) error {
		head, err := scanHead(tx.QueryRow(ctx, r.queries.insertHead, spaceID, name, description))
		if err != nil {
			return fmt.Errorf("failed to insert %s: %w", r.kind.Name, err)
		}
		args, err := r.versionArgs(head.ID, draft)
		if err != nil {
			return err
		}
		version, err := r.scanVersion(tx.QueryRow(ctx, r.queries.insertFirst, args...))
		if err != nil {
			return fmt.Errorf("failed to insert first %s version: %w", r.kind.Name, err)
		}
		result = &models.EntityWithVersions{EntityHead: head, Versions: []models.Version{*version}}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to create entity", zap.Int64("space_id", spaceID), zap.Error(err))
		return nil, err
	}
	r.logger.Info("Entity created", zap.Int64("space_id", spaceID), zap.Int64("entity_id", result.ID))
	return result, nil
}

func (r *pgEntityRepository) GetHead(ctx context.Context, spaceID, entityID int64) (*models.EntityHead, error) {
	head, err := scanHead(r.db.QueryRow(ctx, r.queries.getHead, entityID, spaceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Entity not found", zap.Int64("space_id", spaceID), zap.Int64("entity_id", entityID))
			return nil, fmt.Errorf("%w: %s %d in space %d", models.ErrNotFound, r.kind.Name, entityID, spaceID)
		}
		r.logger.Error("Failed to get entity", zap.Int64("entity_id", entityID), zap.Error(err))
		return nil, fmt.Errorf("failed to get %s %d: %w", r.kind.Name, entityID, err)
	}
	return &head, nil
}

func (r *pgEntityRepository) ListVersions(ctx context.Context, entityID int64) ([]models.Version, error) {
	rows, err := r.db.Query(ctx, r.queries.listVersions, entityID)
	if err != nil {
		r.logger.Error("Failed to list versions", zap.Int64("entity_id", entityID), zap.Error(err))
		return nil, fmt.Errorf("failed to list %s versions: %w", r.kind.Name, err)
	}
	defer rows.Close()

	versions := make([]models.Version, 0)
	for rows.Next() {
		v, err := r.scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s version: %w", r.kind.Name, err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s versions: %w", r.kind.Name, err)
	}
	return versions, nil
}

func (r *pgEntityRepository) GetVersion(ctx context.Context, entityID, versionID int64) (*models.Version, error) {
	v, err := r.scanVersion(r.db.QueryRow(ctx, r.queries.getVersion, versionID, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s version %d of %d", models.ErrNotFound, r.kind.Name, versionID, entityID)
		}
		return nil, fmt.Errorf("failed to get %s version %d: %w", r.kind.Name, versionID, err)
	}
	return v, nil
}

func (r *pgEntityRepository) LatestVersion(ctx context.Context, entityID int64) (*models.Version, error) {
	v, err := r.scanVersion(r.db.QueryRow(ctx, r.queries.latestVersion, entityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %d has no versions", models.ErrNotFound, r.kind.Name, entityID)
		}
		return nil, fmt.Errorf("failed to get latest %s version: %w", r.kind.Name, err)
	}
	return v, nil
}

func (r *pgEntityRepository) GetVersionInSpace(ctx context.Context, spaceID, versionID int64) (*models.Version, *models.EntityHead, error) {
	var head models.EntityHead
	row := r.db.QueryRow(ctx, r.queries.versionInSpace, versionID, spaceID)
	v, err := r.scanVersionWith(row, &head.ID, &head.SpaceID, &head.Name, &head.Description, &head.CreatedAt, &head.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug("Version not found in space", zap.Int64("space_id", spaceID), zap.Int64("version_id", versionID))
			return nil, nil, fmt.Errorf("%w: %s version %d in space %d", models.ErrNotFound, r.kind.Name, versionID, spaceID)
		}
		return nil, nil, fmt.Errorf("failed to resolve %s version %d: %w", r.kind.Name, versionID, err)
	}
	return v, &head, nil
}

func (r *pgEntityRepository) VersionHasImages(ctx context.Context, versionID int64) (bool, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, r.queries.versionImages, versionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check images of %s version %d: %w", r.kind.Name, versionID, err)
	}
	return exists, nil
}

func (r *pgEntityRepository) Update(ctx context.Context, upd EntityUpdate) (*models.EntityHead, error) {
	var head models.EntityHead
	err := database.ExecuteInTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		head, err = scanHead(tx.QueryRow(ctx, r.queries.updateHead, upd.EntityID, upd.Name, upd.Description))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: %s %d", models.ErrNotFound, r.kind.Name, upd.EntityID)
			}
			return fmt.Errorf("failed to update %s %d: %w", r.kind.Name, upd.EntityID, err)
		}
		if upd.Attributes == nil {
			return nil
		}
		blob, err := attributes.Encode(upd.Attributes)
		if err != nil {
			return fmt.Errorf("failed to encode %s attributes: %w", r.kind.Name, err)
		}
		if _, err := tx.Exec(ctx, r.queries.updateAttrs, upd.VersionID, blob); err != nil {
			return fmt.Errorf("failed to update attributes of %s version %d: %w", r.kind.Name, upd.VersionID, err)
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to update entity", zap.Int64("entity_id", upd.EntityID), zap.Error(err))
		return nil, err
	}
	r.logger.Debug("Entity updated", zap.Int64("entity_id", upd.EntityID), zap.Bool("attributes", upd.Attributes != nil))
	return &head, nil
}

func (r *pgEntityRepository) InsertNextVersion(ctx context.Context, entityID int64, draft models.VersionDraft) (*models.Version, error) {
	args, err := r.versionArgs(entityID, draft)
	if err != nil {
		return nil, err
	}
	v, err := r.scanVersion(r.db.QueryRow(ctx, r.queries.insertNext, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Warn("Version number conflict", zap.Int64("entity_id", entityID))
			return nil, fmt.Errorf("%w: %s %d", models.ErrVersionConflict, r.kind.Name, entityID)
		}
		r.logger.Error("Failed to insert version", zap.Int64("entity_id", entityID), zap.Error(err))
		return nil, fmt.Errorf("failed to insert %s version: %w", r.kind.Name, err)
	}
	r.logger.Info("Version created", zap.Int64("entity_id", entityID), zap.Int("version_number", v.VersionNumber))
	return v, nil
}

// versionArgs returns parameters in insertFirst/insertNext placeholder order.
func (r *pgEntityRepository) versionArgs(entityID int64, d models.VersionDraft) ([]any, error) {
	blob, err := attributes.Encode(d.Attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s attributes: %w", r.kind.Name, err)
	}
	args := make([]any, 0, len(r.kind.Fields)+7)
	args = append(args, entityID, d.Label)
	for _, f := range r.kind.Fields {
		args = append(args, d.Fields[f.Key])
	}
	return append(args, blob, d.BasePrompt, d.NegativePrompt, d.BaseSeed, d.ClonedFromVersionID), nil
}

func (r *pgEntityRepository) scanVersion(row pgx.Row) (*models.Version, error) {
	return r.scanVersionWith(row)
}

// scanVersionWith scans the version columns followed by extra destinations.
func (r *pgEntityRepository) scanVersionWith(row pgx.Row, extra ...any) (*models.Version, error) {
	v := &models.Version{Fields: make(map[string]*string, len(r.kind.Fields))}
	fieldVals := make([]*string, len(r.kind.Fields))
	var blob []byte

	dest := []any{&v.ID, &v.EntityID, &v.VersionNumber, &v.Label}
	for i := range fieldVals {
		dest = append(dest, &fieldVals[i])
	}
	dest = append(dest, &blob, &v.BasePrompt, &v.NegativePrompt, &v.BaseSeed, &v.ClonedFromVersionID, &v.CreatedAt)
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	for i, f := range r.kind.Fields {
		v.Fields[f.Key] = fieldVals[i]
	}
	attrs, err := attributes.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s attributes of version %d: %w", r.kind.Name, v.ID, err)
	}
	v.Attributes = attrs
	return v, nil
}

func scanHead(row pgx.Row) (models.EntityHead, error) {
	var h models.EntityHead
	err := row.Scan(&h.ID, &h.SpaceID, &h.Name, &h.Description, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}
