// SPDX-License-Identifier: Apache-2.0

package opensearch

import (
	"github.com/xataio/catalogsearch/internal/searchstore"
)

type Mapper struct{}

const (
	// Lucene’s term byte-length limit is 32766. To cover for the use of UTF-8
	// text with many non-ASCII characters, the maximum value should be 32766 /
	// 4 = 8191 since UTF-8 characters may occupy at most 4 bytes.
	termByteLengthLimit = 8191
)

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) GetDefaultIndexSettings() map[string]any {
	return map[string]any{
		"number_of_shards":                 1,
		"number_of_replicas":               1,
		"index.mapping.total_fields.limit": 5000,
	}
}

func (m *Mapper) FieldMapping(t searchstore.Type) (map[string]any, error) {
	switch t {
	case searchstore.IntegerType:
		return map[string]any{"type": "long"}, nil
	case searchstore.FloatType:
		return map[string]any{"type": "double"}, nil
	case searchstore.BoolType:
		return map[string]any{"type": "boolean"}, nil
	case searchstore.TextType:
		return map[string]any{"type": "text"}, nil
	case searchstore.StringType:
		return map[string]any{
			"type":         "keyword",
			"ignore_above": termByteLengthLimit,
			"fields": map[string]any{
				"text": map[string]any{
					"type": "text",
				},
			},
		}, nil
	case searchstore.DateTimeTZType:
		return map[string]any{
			"type":   "date",
			"format": "strict_date_optional_time||epoch_second",
		}, nil
	default:
		return nil, searchstore.ErrUnsupportedSearchFieldType
	}
}
