// Package prompt assembles the text sent to the image model from entity versions.
package prompt

import (
	"strings"

	"graphics-server/internal/attributes"
	"graphics-server/internal/models"
)

const (
	documentHeading = "# Image Specification"
	linePrefix      = "- "
	fallbackJoiner  = " — "
)

// Part is one entity contributing to the prompt: its head (for the
// fallback line) and the selected version.
type Part struct {
	Kind        *models.EntityKind
	Name        string
	Description *string
	Version     *models.Version
}

// Result is a composed prompt. NegativePrompt is nil when no part has one.
type Result struct {
	Prompt         string
	NegativePrompt *string
}

// Compose builds the prompt for a character, a style and an optional
// scene. The output depends only on the inputs. It returns
// models.ErrPromptEmpty when neither structured content nor the
// name/description fallback yields any text.
func Compose(character, style Part, scene *Part) (Result, error) {
	parts := []Part{character, style}
	if scene != nil {
		parts = append(parts, *scene)
	}

	var sections []string
	var negatives []string
	for _, p := range parts {
		if lines := p.lines(); len(lines) > 0 {
			sections = append(sections, section(p.Kind.PromptHeading, lines))
		}
		if p.Version != nil && p.Version.NegativePrompt != nil {
			if neg := strings.TrimSpace(*p.Version.NegativePrompt); neg != "" {
				negatives = append(negatives, neg)
			}
		}
	}

	var res Result
	if len(negatives) > 0 {
		joined := strings.Join(negatives, "\n")
		res.NegativePrompt = &joined
	}

	if len(sections) > 0 {
		res.Prompt = documentHeading + "\n\n" + strings.Join(sections, "\n\n")
		return res, nil
	}

	res.Prompt = fallback(parts)
	if res.Prompt == "" {
		return Result{}, models.ErrPromptEmpty
	}
	return res, nil
}

// lines returns the descriptive lines of p: free-text fields, rendered
// attributes, then the base prompt.
func (p Part) lines() []string {
	v := p.Version
	if v == nil || p.Kind == nil {
		return nil
	}
	var lines []string
	for _, f := range p.Kind.Fields {
		if value := strings.TrimSpace(v.Field(f.Key)); value != "" {
			lines = append(lines, f.Label+": "+value)
		}
	}
	lines = append(lines, attributes.RenderLines(p.Kind.Schema, v.Attributes, p.Kind.PromptCategories)...)
	if v.BasePrompt != nil {
		if base := strings.TrimSpace(*v.BasePrompt); base != "" {
			lines = append(lines, base)
		}
	}
	return lines
}

func section(heading string, lines []string) string {
	var b strings.Builder
	b.WriteString("## ")
	b.WriteString(heading)
	for _, line := range lines {
		b.WriteByte('\n')
		if !strings.HasPrefix(line, linePrefix) {
			b.WriteString(linePrefix)
		}
		b.WriteString(line)
	}
	return b.String()
}

func fallback(parts []Part) string {
	var lines []string
	for _, p := range parts {
		if p.Kind == nil || p.Kind.FallbackLabel == "" {
			continue
		}
		name := strings.TrimSpace(p.Name)
		desc := ""
		if p.Description != nil {
			desc = strings.TrimSpace(*p.Description)
		}
		switch {
		case name != "" && desc != "":
			lines = append(lines, p.Kind.FallbackLabel+": "+name+fallbackJoiner+desc)
		case name != "":
			lines = append(lines, p.Kind.FallbackLabel+": "+name)
		case desc != "":
			lines = append(lines, p.Kind.FallbackLabel+":"+fallbackJoiner+desc)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
