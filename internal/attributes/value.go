package attributes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is a single attribute value: plain text for string and enum
// properties, an ordered list for tags.
type Value struct {
	Text string
	Tags []string

	list bool
	// first array element, kept only when it was a JSON string
	head    string
	hasHead bool
}

// TextValue returns a scalar value.
func TextValue(s string) Value {
	return Value{Text: s}
}

// TagsValue returns a list value.
func TagsValue(tags ...string) Value {
	v := Value{Tags: append([]string{}, tags...), list: true}
	if len(tags) > 0 {
		v.head, v.hasHead = tags[0], true
	}
	return v
}

// IsList reports whether the value was supplied as a list.
func (v Value) IsList() bool { return v.list }

// IsEmpty reports whether the value carries nothing worth storing.
func (v Value) IsEmpty() bool {
	if v.list {
		return len(v.Tags) == 0
	}
	return v.Text == ""
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.list {
		if v.Tags == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.Tags)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a string, an array of scalars, or anything else
// (which decodes to an empty scalar). Array elements are stringified.
func (v *Value) UnmarshalJSON(data []byte) error {
	*v = Value{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		return json.Unmarshal(data, &v.Text)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		v.list = true
		v.Tags = make([]string, 0, len(raw))
		for i, item := range raw {
			s, isString, err := stringify(item)
			if err != nil {
				return fmt.Errorf("attribute list element %d: %w", i, err)
			}
			if i == 0 && isString {
				v.head, v.hasHead = s, true
			}
			v.Tags = append(v.Tags, s)
		}
		return nil
	default:
		return nil
	}
}

func stringify(raw json.RawMessage) (s string, isString bool, err error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", false, nil
	}
	switch raw[0] {
	case '"':
		err = json.Unmarshal(raw, &s)
		return s, true, err
	case 't', 'f':
		var b bool
		if err = json.Unmarshal(raw, &b); err != nil {
			return "", false, err
		}
		return strconv.FormatBool(b), false, nil
	case '{', '[':
		return string(raw), false, nil
	default:
		// numbers keep their literal form
		return string(raw), false, nil
	}
}

// CategoryValues holds the property values of one category.
type CategoryValues map[string]Value

// Values maps category key to its property values.
type Values map[string]CategoryValues

// Clone returns a deep copy.
func (vs Values) Clone() Values {
	if vs == nil {
		return nil
	}
	out := make(Values, len(vs))
	for ck, cat := range vs {
		nc := make(CategoryValues, len(cat))
		for pk, val := range cat {
			if val.Tags != nil {
				val.Tags = append([]string{}, val.Tags...)
			}
			nc[pk] = val
		}
		out[ck] = nc
	}
	return out
}

// Decode parses a stored or client-supplied JSON document. Empty input
// and JSON null decode to an empty map; scalars at the category level
// are ignored.
func Decode(data []byte) (Values, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Values{}, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("attributes: %w", err)
	}
	out := make(Values, len(raw))
	for ck, rc := range raw {
		rc = bytes.TrimSpace(rc)
		if len(rc) == 0 || rc[0] != '{' {
			continue
		}
		var cat CategoryValues
		if err := json.Unmarshal(rc, &cat); err != nil {
			return nil, fmt.Errorf("attributes: category %q: %w", ck, err)
		}
		out[ck] = cat
	}
	return out, nil
}

// Encode serializes values for storage. Nil encodes as an empty object.
func Encode(vs Values) ([]byte, error) {
	if vs == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(vs)
}
