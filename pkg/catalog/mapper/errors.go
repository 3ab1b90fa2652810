// SPDX-License-Identifier: Apache-2.0

package mapper

import (
	"errors"
	"fmt"
)

// ErrCollaborator wraps a failure from one of the mapper collaborators. No
// document is produced when it is returned.
type ErrCollaborator struct {
	Op    string
	Cause error
}

func (e ErrCollaborator) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e ErrCollaborator) Unwrap() error {
	return e.Cause
}

var errMissingCollaborator = errors.New("missing mapper collaborator")

func collaboratorErr(op string, err error) error {
	return ErrCollaborator{Op: op, Cause: err}
}
