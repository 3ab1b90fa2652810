// SPDX-License-Identifier: Apache-2.0

package mocks

import (
	"fmt"
	"reflect"
)

type Row struct {
	ScanFn func(args ...any) error
}

func (m *Row) Scan(args ...any) error {
	return m.ScanFn(args...)
}

// ScanValues assigns each value to the destination pointer at the same
// position. Nil values leave the destination untouched.
func ScanValues(values []any, dest ...any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values for %d destinations", len(values), len(dest))
	}
	for i, v := range values {
		if v == nil {
			continue
		}
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("scan: destination %d is not a pointer", i)
		}
		value := reflect.ValueOf(v)
		if !value.Type().AssignableTo(target.Elem().Type()) {
			return fmt.Errorf("scan: cannot assign %T to %s", v, target.Elem().Type())
		}
		target.Elem().Set(value)
	}
	return nil
}
