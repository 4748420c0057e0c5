package attributes

import (
	"fmt"
	"sort"
)

// Kind names a schema instance.
type Kind string

const (
	KindCharacterAppearance Kind = "character"
	KindStyleDefinition     Kind = "style"
)

var registry = map[Kind]*Schema{
	KindCharacterAppearance: characterAppearance,
	KindStyleDefinition:     styleDefinition,
}

// CharacterAppearance returns the character appearance schema.
func CharacterAppearance() *Schema { return characterAppearance }

// StyleDefinition returns the style definition schema.
func StyleDefinition() *Schema { return styleDefinition }

// Get returns the schema registered for kind.
func Get(kind Kind) (*Schema, error) {
	s, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("attributes: unknown schema %q", kind)
	}
	return s, nil
}

// Kinds lists registered schema kinds.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(registry))
	for k := range registry {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}
