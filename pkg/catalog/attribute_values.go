// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"errors"
	"fmt"
	"iter"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// AttributeValues is an insertion ordered attribute code to raw value map.
// Setting an existing code replaces its value in place.
type AttributeValues struct {
	codes  []string
	values map[string]any
}

var errNotAnObject = errors.New("attribute values must be an object")

func NewAttributeValues() *AttributeValues {
	return &AttributeValues{
		values: map[string]any{},
	}
}

// AttributeValuesFrom builds the values from alternating code/value pairs.
func AttributeValuesFrom(pairs ...any) *AttributeValues {
	v := NewAttributeValues()
	for i := 0; i+1 < len(pairs); i += 2 {
		code, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("attribute code must be a string, got %T", pairs[i]))
		}
		v.Set(code, pairs[i+1])
	}
	return v
}

func (v *AttributeValues) Set(code string, value any) {
	if v.values == nil {
		v.values = map[string]any{}
	}
	if _, found := v.values[code]; !found {
		v.codes = append(v.codes, code)
	}
	v.values[code] = value
}

func (v *AttributeValues) Get(code string) (any, bool) {
	if v == nil {
		return nil, false
	}
	value, found := v.values[code]
	return value, found
}

func (v *AttributeValues) Len() int {
	if v == nil {
		return 0
	}
	return len(v.codes)
}

func (v *AttributeValues) Codes() []string {
	if v == nil {
		return nil
	}
	codes := make([]string, len(v.codes))
	copy(codes, v.codes)
	return codes
}

// All iterates over the values in insertion order.
func (v *AttributeValues) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if v == nil {
			return
		}
		for _, code := range v.codes {
			if !yield(code, v.values[code]) {
				return
			}
		}
	}
}

// ParseAttributeValues decodes a JSON object keeping the order of its keys.
func ParseAttributeValues(data []byte) (*AttributeValues, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing attribute values: invalid json")
	}
	result := gjson.ParseBytes(data)
	if !result.IsObject() {
		return nil, errNotAnObject
	}

	values := NewAttributeValues()
	result.ForEach(func(key, value gjson.Result) bool {
		values.Set(key.String(), jsonAttributeValue(key.String(), value))
		return true
	})
	return values, nil
}

// jsonAttributeValue decodes a raw attribute value. Media gallery images keyed
// by value id are turned into an entry list in document order.
func jsonAttributeValue(code string, value gjson.Result) any {
	if code != AttributeMediaGallery || !value.IsObject() {
		return value.Value()
	}
	images := value.Get(mediaGalleryImagesKey)
	if !images.IsObject() {
		return value.Value()
	}

	gallery := map[string]any{}
	value.ForEach(func(key, v gjson.Result) bool {
		gallery[key.String()] = v.Value()
		return true
	})
	entries := []any{}
	images.ForEach(func(_, entry gjson.Result) bool {
		entries = append(entries, entry.Value())
		return true
	})
	gallery[mediaGalleryImagesKey] = entries
	return gallery
}

// UnmarshalYAML keeps the mapping key order of the YAML node.
func (v *AttributeValues) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errNotAnObject
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		code := node.Content[i].Value
		value, err := yamlAttributeValue(code, node.Content[i+1])
		if err != nil {
			return fmt.Errorf("decoding attribute %q: %w", code, err)
		}
		v.Set(code, value)
	}
	return nil
}

func yamlAttributeValue(code string, node *yaml.Node) (any, error) {
	var value any
	if err := node.Decode(&value); err != nil {
		return nil, err
	}
	if code != AttributeMediaGallery || node.Kind != yaml.MappingNode {
		return value, nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		images := node.Content[i+1]
		if node.Content[i].Value != mediaGalleryImagesKey || images.Kind != yaml.MappingNode {
			continue
		}
		entries := make([]any, 0, len(images.Content)/2)
		for j := 1; j < len(images.Content); j += 2 {
			var entry any
			if err := images.Content[j].Decode(&entry); err != nil {
				return nil, err
			}
			entries = append(entries, entry)
		}
		gallery, ok := value.(map[string]any)
		if !ok {
			return value, nil
		}
		gallery[mediaGalleryImagesKey] = entries
	}
	return value, nil
}
