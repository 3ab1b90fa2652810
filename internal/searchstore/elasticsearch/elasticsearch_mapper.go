// SPDX-License-Identifier: Apache-2.0

package elasticsearch

import (
	"github.com/xataio/catalogsearch/internal/searchstore"
)

type Mapper struct{}

// Lucene's term byte-length limit (32766) divided by the max UTF-8 character
// size.
const termByteLengthLimit = 8191

func NewMapper() *Mapper {
	return &Mapper{}
}

func (m *Mapper) GetDefaultIndexSettings() map[string]any {
	return map[string]any{
		"number_of_shards":   1,
		"number_of_replicas": 1,
		"mapping": map[string]any{
			"total_fields": map[string]any{"limit": 5000},
		},
	}
}

func (m *Mapper) FieldMapping(t searchstore.Type) (map[string]any, error) {
	switch t {
	case searchstore.IntegerType:
		return map[string]any{"type": "long"}, nil
	case searchstore.FloatType:
		return map[string]any{"type": "scaled_float", "scaling_factor": 1000000}, nil
	case searchstore.BoolType:
		return map[string]any{"type": "boolean"}, nil
	case searchstore.TextType:
		return map[string]any{"type": "text"}, nil
	case searchstore.StringType:
		return map[string]any{
			"type":         "keyword",
			"ignore_above": termByteLengthLimit,
			"fields": map[string]any{
				"text": map[string]any{"type": "match_only_text"},
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
