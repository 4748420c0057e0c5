// Package attributes defines the static attribute schemas for character
// appearance and style definition, and the codec that normalizes,
// serializes and renders attribute values against them.
package attributes

import "sort"

// PropertyType is the value shape of a property.
type PropertyType string

const (
	TypeString PropertyType = "string"
	TypeEnum   PropertyType = "enum"
	TypeTags   PropertyType = "tags"
)

// Option is a curated value with a human-readable label.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Property is one typed field inside a category.
type Property struct {
	Key         string       `json:"key"`
	Label       string       `json:"label"`
	Type        PropertyType `json:"type"`
	Description string       `json:"description,omitempty"`
	Options     []Option     `json:"options,omitempty"`
	AllowCustom bool         `json:"allowCustom,omitempty"`
}

// OptionLabel returns the label of the option whose value is v, or v itself.
func (p Property) OptionLabel(v string) string {
	for _, o := range p.Options {
		if o.Value == v {
			return o.Label
		}
	}
	return v
}

// Category groups properties. Order drives presentation and rendering.
type Category struct {
	Key         string     `json:"key"`
	Label       string     `json:"label"`
	Order       int        `json:"order"`
	Description string     `json:"description,omitempty"`
	Properties  []Property `json:"properties"`
}

// Schema is an ordered set of categories. Instances are built once and
// never mutated.
type Schema struct {
	Name       string     `json:"-"`
	Categories []Category `json:"categories"`
}

// Sorted returns a copy of the schema with categories ordered by Order.
// Categories sharing an order keep their definition order.
func (s *Schema) Sorted() *Schema {
	out := &Schema{Name: s.Name, Categories: make([]Category, len(s.Categories))}
	copy(out.Categories, s.Categories)
	sort.SliceStable(out.Categories, func(i, j int) bool {
		return out.Categories[i].Order < out.Categories[j].Order
	})
	return out
}

// Category looks up a category by key.
func (s *Schema) Category(key string) (Category, bool) {
	for _, c := range s.Categories {
		if c.Key == key {
			return c, true
		}
	}
	return Category{}, false
}

// Keys returns category keys in presentation order.
func (s *Schema) Keys() []string {
	sorted := s.Sorted()
	keys := make([]string, 0, len(sorted.Categories))
	for _, c := range sorted.Categories {
		keys = append(keys, c.Key)
	}
	return keys
}
