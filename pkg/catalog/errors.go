// SPDX-License-Identifier: Apache-2.0

package catalog

import (
	"errors"
	"fmt"
)

// ErrMalformedValue is returned when a structured attribute value doesn't have
// the expected shape.
type ErrMalformedValue struct {
	Attribute string
	// Index of the entry within a list payload, -1 when not applicable.
	Index  int
	Field  string
	Reason string
}

func (e ErrMalformedValue) Error() string {
	location := e.Attribute
	if e.Index >= 0 {
		location = fmt.Sprintf("%s[%d]", location, e.Index)
	}
	if e.Field != "" {
		location = fmt.Sprintf("%s.%s", location, e.Field)
	}
	return fmt.Sprintf("malformed value for %s: %s", location, e.Reason)
}

var (
	ErrStoreNotFound = errors.New("store not found")
	ErrItemNotFound  = errors.New("item not found")
)
