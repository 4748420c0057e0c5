package attributes

import "strings"

// BuildEmpty returns values with every schema property present: "" for
// string and enum properties, an empty list for tags.
func BuildEmpty(s *Schema) Values {
	out := Values{}
	if s == nil {
		return out
	}
	for _, c := range s.Categories {
		cat := make(CategoryValues, len(c.Properties))
		for _, p := range c.Properties {
			cat[p.Key] = emptyValue(p)
		}
		out[c.Key] = cat
	}
	return out
}

// NormalizeExisting coerces existing into a full schema-shaped structure.
// Missing properties get empty defaults, unknown keys are dropped. Tags
// accept a list or a comma-joined string; string and enum properties take
// a string as-is or the first element of a list when it is a string.
// NormalizeExisting(s, NormalizeExisting(s, v)) equals NormalizeExisting(s, v).
func NormalizeExisting(s *Schema, existing Values) Values {
	out := Values{}
	if s == nil {
		return out
	}
	for _, c := range s.Categories {
		src := existing[c.Key]
		cat := make(CategoryValues, len(c.Properties))
		for _, p := range c.Properties {
			v, ok := src[p.Key]
			if !ok {
				cat[p.Key] = emptyValue(p)
				continue
			}
			if p.Type == TypeTags {
				cat[p.Key] = TagsValue(tagList(v)...)
			} else {
				cat[p.Key] = TextValue(scalar(v))
			}
		}
		out[c.Key] = cat
	}
	return out
}

// Serialize produces the minimal stored form: strings trimmed, tags
// trimmed and de-duplicated, empty properties and categories omitted.
func Serialize(s *Schema, vs Values) Values {
	out := Values{}
	if s == nil {
		return out
	}
	for _, c := range s.Categories {
		src, ok := vs[c.Key]
		if !ok {
			continue
		}
		cat := CategoryValues{}
		for _, p := range c.Properties {
			v, ok := src[p.Key]
			if !ok {
				continue
			}
			if p.Type == TypeTags {
				if tags := tagList(v); len(tags) > 0 {
					cat[p.Key] = TagsValue(tags...)
				}
				continue
			}
			if text := strings.TrimSpace(scalar(v)); text != "" {
				cat[p.Key] = TextValue(text)
			}
		}
		if len(cat) > 0 {
			out[c.Key] = cat
		}
	}
	return out
}

// RenderLines renders one descriptive line per non-empty category, in
// schema order:
//
//	{category label}: {property label}: {display}; {property label}: {display}
//
// Enum and tag values show the option label when they match a curated
// option. A nil relevant slice renders every category; otherwise only the
// listed category keys are rendered.
func RenderLines(s *Schema, vs Values, relevant []string) []string {
	if s == nil || len(vs) == 0 {
		return nil
	}
	var allow map[string]struct{}
	if relevant != nil {
		allow = make(map[string]struct{}, len(relevant))
		for _, k := range relevant {
			allow[k] = struct{}{}
		}
	}

	var lines []string
	for _, c := range s.Sorted().Categories {
		if allow != nil {
			if _, ok := allow[c.Key]; !ok {
				continue
			}
		}
		src, ok := vs[c.Key]
		if !ok {
			continue
		}
		var parts []string
		for _, p := range c.Properties {
			v, ok := src[p.Key]
			if !ok {
				continue
			}
			if display := displayValue(p, v); display != "" {
				parts = append(parts, p.Label+": "+display)
			}
		}
		if len(parts) > 0 {
			lines = append(lines, c.Label+": "+strings.Join(parts, "; "))
		}
	}
	return lines
}

func displayValue(p Property, v Value) string {
	switch p.Type {
	case TypeTags:
		tags := tagList(v)
		labels := make([]string, 0, len(tags))
		for _, t := range tags {
			labels = append(labels, p.OptionLabel(t))
		}
		return strings.Join(labels, ", ")
	case TypeEnum:
		text := strings.TrimSpace(scalar(v))
		if text == "" {
			return ""
		}
		return p.OptionLabel(text)
	default:
		return strings.TrimSpace(scalar(v))
	}
}

func emptyValue(p Property) Value {
	if p.Type == TypeTags {
		return TagsValue()
	}
	return TextValue("")
}

func scalar(v Value) string {
	if !v.list {
		return v.Text
	}
	if v.hasHead {
		return v.head
	}
	return ""
}

// tagList flattens v into trimmed, non-empty, unique tags in first-seen
// order. Every element is also split on commas.
func tagList(v Value) []string {
	var raw []string
	if v.list {
		raw = v.Tags
	} else {
		raw = []string{v.Text}
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		for _, piece := range strings.Split(item, ",") {
			piece = strings.TrimSpace(piece)
			if piece == "" {
				continue
			}
			if _, dup := seen[piece]; dup {
				continue
			}
			seen[piece] = struct{}{}
			out = append(out, piece)
		}
	}
	return out
}
