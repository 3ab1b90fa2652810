// SPDX-License-Identifier: Apache-2.0

package fieldname

import (
	"context"
	"fmt"
	"strings"

	"github.com/xataio/catalogsearch/pkg/catalog"
	loglib "github.com/xataio/catalogsearch/pkg/log"
)

// Resolver is the default field name strategy. Attribute codes are used as
// field names, sort fields get a prefix and localized text fields a locale
// suffix.
type Resolver struct {
	attributes      catalog.AttributeLookup
	localizedInputs map[string]struct{}
	logger          loglib.Logger
}

type Option func(*Resolver)

const (
	TypeSort   = "sort"
	sortPrefix = "sort_"
)

var defaultLocalizedInputs = []string{"text", "textarea"}

func NewResolver(attributes catalog.AttributeLookup, opts ...Option) *Resolver {
	r := &Resolver{
		attributes: attributes,
		logger:     loglib.NewNoopLogger(),
	}
	WithLocalizedInputs(defaultLocalizedInputs...)(r)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

func WithLogger(l loglib.Logger) Option {
	return func(r *Resolver) {
		r.logger = loglib.NewLogger(l).WithFields(loglib.Fields{
			loglib.ModuleField: "catalog_field_name_resolver",
		})
	}
}

// WithLocalizedInputs sets the frontend inputs whose fields are suffixed with
// the context locale.
func WithLocalizedInputs(inputs ...string) Option {
	return func(r *Resolver) {
		r.localizedInputs = make(map[string]struct{}, len(inputs))
		for _, input := range inputs {
			r.localizedInputs[input] = struct{}{}
		}
	}
}

func (r *Resolver) GetFieldName(ctx context.Context, code string, fieldCtx catalog.FieldContext) (string, error) {
	if fieldCtx.Type == TypeSort {
		return sortPrefix + code, nil
	}
	if fieldCtx.Locale == "" || r.attributes == nil {
		return code, nil
	}

	attribute, err := r.attributes.GetAttribute(ctx, code)
	if err != nil {
		return "", fmt.Errorf("getting attribute %s: %w", code, err)
	}
	if attribute == nil {
		r.logger.Trace("unknown attribute, using code as field name", loglib.Fields{loglib.AttributeField: code})
		return code, nil
	}
	if _, found := r.localizedInputs[attribute.FrontendInput]; !found {
		return code, nil
	}
	return code + "_" + normaliseLocale(fieldCtx.Locale), nil
}

// normaliseLocale turns locales like en-US or en_US into en_us.
func normaliseLocale(locale string) string {
	return strings.ToLower(strings.ReplaceAll(locale, "-", "_"))
}
