// SPDX-License-Identifier: Apache-2.0

package document

// Builder accumulates document fields. Adding a field that already exists
// replaces its value and keeps its original position.
type Builder struct {
	fields []Field
	index  map[string]int
}

func NewBuilder() *Builder {
	return &Builder{
		index: map[string]int{},
	}
}

func (b *Builder) AddField(name string, value any) {
	if i, found := b.index[name]; found {
		b.fields[i].Value = value
		return
	}
	b.index[name] = len(b.fields)
	b.fields = append(b.fields, Field{Name: name, Value: value})
}

func (b *Builder) AddFields(fields Fields) {
	for _, f := range fields {
		b.AddField(f.Name, f.Value)
	}
}

func (b *Builder) Len() int {
	return len(b.fields)
}

// Build returns the accumulated document and resets the builder.
func (b *Builder) Build() *Document {
	doc := &Document{
		fields: b.fields,
		index:  b.index,
	}
	b.fields = nil
	b.index = map[string]int{}
	return doc
}
