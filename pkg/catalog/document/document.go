// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"
	"iter"
	"strings"

	"github.com/tidwall/sjson"

	"github.com/xataio/catalogsearch/internal/json"
)

type Field struct {
	Name  string
	Value any
}

type Fields []Field

// Document is the immutable, ordered set of fields produced for one item in one
// store. Field names are unique.
type Document struct {
	fields []Field
	index  map[string]int
}

func (d *Document) Len() int {
	if d == nil {
		return 0
	}
	return len(d.fields)
}

func (d *Document) Get(name string) (any, bool) {
	if d == nil {
		return nil, false
	}
	i, found := d.index[name]
	if !found {
		return nil, false
	}
	return d.fields[i].Value, true
}

func (d *Document) Names() []string {
	if d == nil {
		return nil
	}
	names := make([]string, 0, len(d.fields))
	for _, f := range d.fields {
		names = append(names, f.Name)
	}
	return names
}

// Fields returns a copy of the document fields in order.
func (d *Document) Fields() Fields {
	if d == nil {
		return nil
	}
	fields := make(Fields, len(d.fields))
	copy(fields, d.fields)
	return fields
}

func (d *Document) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if d == nil {
			return
		}
		for _, f := range d.fields {
			if !yield(f.Name, f.Value) {
				return
			}
		}
	}
}

// ToMap returns the fields as a map. Field order is lost.
func (d *Document) ToMap() map[string]any {
	m := make(map[string]any, d.Len())
	for name, value := range d.All() {
		m[name] = value
	}
	return m
}

// MarshalJSON encodes the document as a JSON object keeping the field order.
func (d *Document) MarshalJSON() ([]byte, error) {
	out := []byte("{}")
	if d == nil {
		return out, nil
	}
	for _, f := range d.fields {
		raw, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encoding field %s: %w", f.Name, err)
		}
		if out, err = sjson.SetRawBytes(out, escapePath(f.Name), raw); err != nil {
			return nil, fmt.Errorf("setting field %s: %w", f.Name, err)
		}
	}
	return out, nil
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`.`, `\.`,
	`*`, `\*`,
	`?`, `\?`,
	`|`, `\|`,
	`#`, `\#`,
	`@`, `\@`,
	`:`, `\:`,
)

func escapePath(name string) string {
	return pathEscaper.Replace(name)
}
