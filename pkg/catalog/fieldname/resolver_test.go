// SPDX-License-Identifier: Apache-2.0

package fieldname

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xataio/catalogsearch/pkg/catalog"
	"github.com/xataio/catalogsearch/pkg/catalog/mocks"
)

func TestResolver_GetFieldName(t *testing.T) {
	t.Parallel()

	errTest := errors.New("oh noes")
	attributes := map[string]*catalog.AttributeMetadata{
		"name":        {Code: "name", BackendType: "varchar", FrontendInput: "text"},
		"description": {Code: "description", BackendType: "text", FrontendInput: "textarea"},
		"color":       {Code: "color", BackendType: "varchar", FrontendInput: "multiselect"},
	}
	lookup := &mocks.AttributeLookup{
		GetAttributeFn: func(_ context.Context, code string) (*catalog.AttributeMetadata, error) {
			return attributes[code], nil
		},
	}

	tests := []struct {
		name     string
		lookup   catalog.AttributeLookup
		opts     []Option
		code     string
		fieldCtx catalog.FieldContext

		wantName string
		wantErr  error
	}{
		{
			name:     "no context",
			lookup:   lookup,
			code:     "name",
			wantName: "name",
		},
		{
			name:     "sort field",
			lookup:   lookup,
			code:     "name",
			fieldCtx: catalog.FieldContext{Type: TypeSort, Locale: "fr_FR"},
			wantName: "sort_name",
		},
		{
			name:     "localized text field",
			lookup:   lookup,
			code:     "name",
			fieldCtx: catalog.FieldContext{Locale: "fr-FR"},
			wantName: "name_fr_fr",
		},
		{
			name:     "localized textarea field",
			lookup:   lookup,
			code:     "description",
			fieldCtx: catalog.FieldContext{Locale: "de"},
			wantName: "description_de",
		},
		{
			name:     "non text field with locale",
			lookup:   lookup,
			code:     "color",
			fieldCtx: catalog.FieldContext{Locale: "de"},
			wantName: "color",
		},
		{
			name:     "custom localized inputs",
			lookup:   lookup,
			opts:     []Option{WithLocalizedInputs("multiselect")},
			code:     "color",
			fieldCtx: catalog.FieldContext{Locale: "de"},
			wantName: "color_de",
		},
		{
			name:     "unknown attribute with locale",
			lookup:   lookup,
			code:     "unknown",
			fieldCtx: catalog.FieldContext{Locale: "de"},
			wantName: "unknown",
		},
		{
			name:     "no attribute lookup",
			lookup:   nil,
			code:     "name",
			fieldCtx: catalog.FieldContext{Locale: "de"},
			wantName: "name",
		},
		{
			name: "error - getting attribute",
			lookup: &mocks.AttributeLookup{
				GetAttributeFn: func(context.Context, string) (*catalog.AttributeMetadata, error) {
					return nil, errTest
				},
			},
			code:     "name",
			fieldCtx: catalog.FieldContext{Locale: "de"},
			wantErr:  errTest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := NewResolver(tc.lookup, tc.opts...)
			name, err := r.GetFieldName(context.Background(), tc.code, tc.fieldCtx)
			require.ErrorIs(t, err, tc.wantErr)
			require.Equal(t, tc.wantName, name)
		})
	}
}
