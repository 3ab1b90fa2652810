// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"errors"
	"fmt"
)

// Mapper translates catalog field types into the engine field mappings.
type Mapper interface {
	GetDefaultIndexSettings() map[string]any
	FieldMapping(Type) (map[string]any, error)
}

type Type uint

const (
	IntegerType Type = iota
	FloatType
	BoolType
	StringType
	TextType
	DateTimeTZType
)

var ErrUnsupportedSearchFieldType = errors.New("unsupported search field type")

// FieldTemplate maps the document fields whose name matches the pattern to
// the given type. Patterns use the engine wildcard syntax ("price_*").
type FieldTemplate struct {
	Name    string
	Pattern string
	Type    Type
}

// IndexBody returns the create index request body, with the default index
// settings and a dynamic template per field template, in order.
func IndexBody(mapper Mapper, templates []FieldTemplate) (map[string]any, error) {
	dynamicTemplates := make([]map[string]any, 0, len(templates))
	for _, template := range templates {
		mapping, err := mapper.FieldMapping(template.Type)
		if err != nil {
			return nil, fmt.Errorf("field template %s: %w", template.Name, err)
		}
		dynamicTemplates = append(dynamicTemplates, map[string]any{
			template.Name: map[string]any{
				"match":   template.Pattern,
				"mapping": mapping,
			},
		})
	}

	return map[string]any{
		"settings": mapper.GetDefaultIndexSettings(),
		"mappings": map[string]any{
			"dynamic_templates": dynamicTemplates,
		},
	}, nil
}
