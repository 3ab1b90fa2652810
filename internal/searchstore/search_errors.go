// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mitchellh/mapstructure"
	"github.com/xataio/catalogsearch/internal/json"
)

type ResponseError struct {
	Type     string    `mapstructure:"type"`
	Reason   string    `mapstructure:"reason"`
	CausedBy *CausedBy `mapstructure:"caused_by"`
}

type CausedBy struct {
	Type   string `mapstructure:"type"`
	Reason string `mapstructure:"reason"`
}

type RetryableError struct {
	Cause error
}

func (r RetryableError) Error() string {
	return fmt.Sprintf("%v", r.Cause)
}

func (r RetryableError) Unwrap() error {
	return r.Cause
}

type ErrResourceAlreadyExists struct {
	Reason string
}

func (e ErrResourceAlreadyExists) Error() string {
	return fmt.Sprintf("resource already exists: %s", e.Reason)
}

type ErrQueryInvalid struct {
	Cause error
}

func (e ErrQueryInvalid) Error() string {
	return e.Cause.Error()
}

const (
	IllegalArgumentException       = "illegal_argument_exception"
	MapperParsingException         = "mapper_parsing_exception"
	SnapshotInProgressException    = "snapshot_in_progress_exception"
	ResourceAlreadyExistsException = "resource_already_exists_exception"
)

var (
	ErrTooManyRequests  = errors.New("too many requests")
	ErrResourceNotFound = errors.New("search resource not found")
)

// ErrDocumentRejected is returned when the store refuses to map a document
// field, for instance when its value does not fit the field mapping.
type ErrDocumentRejected struct {
	Reason string
}

func (e ErrDocumentRejected) Error() string {
	return fmt.Sprintf("document rejected: %s", e.Reason)
}

type apiResponse interface {
	GetBody() io.ReadCloser
	GetStatusCode() int
	IsError() bool
}

func IsErrResponse(res apiResponse) error {
	if !res.IsError() {
		return nil
	}
	return ExtractResponseError(res.GetBody(), res.GetStatusCode())
}

func ExtractResponseError(body io.ReadCloser, statusCode int) error {
	rawBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("reading error response: %w", err)
	}

	var e map[string]any
	if err := json.Unmarshal(rawBody, &e); err != nil {
		return fmt.Errorf("decoding error response: %w", err)
	}

	var errType, errReason string
	if eErr, ok := e["error"]; ok {
		var esError ResponseError
		if err := mapstructure.Decode(eErr, &esError); err != nil {
			errType = "<unknown error type>"
			errReason = "<unknown error reason>"
		} else {
			errType = esError.Type
			errReason = esError.Reason
			if esError.CausedBy != nil && esError.CausedBy.Reason != "" {
				errReason = fmt.Sprintf("%s: %s", errReason, esError.CausedBy.Reason)
			}
		}
	}

	if err, ok := getRetryableError(statusCode); ok {
		return RetryableError{Cause: err}
	}

	if statusCode == http.StatusNotFound {
		return fmt.Errorf("%w: [%d]: %s: %s", ErrResourceNotFound, statusCode, errType, errReason)
	}

	if statusCode == http.StatusBadRequest {
		switch errType {
		case ResourceAlreadyExistsException:
			return ErrResourceAlreadyExists{Reason: errReason}
		case SnapshotInProgressException:
			return RetryableError{Cause: fmt.Errorf("[%d] %s: %s", statusCode, errType, errReason)}
		case MapperParsingException, IllegalArgumentException:
			return ErrDocumentRejected{Reason: errReason}
		default:
			// Generic bad request
			return ErrQueryInvalid{
				Cause: errors.New(errReason),
			}
		}
	}

	return fmt.Errorf("[%d] %s: %s", statusCode, errType, errReason)
}

func getRetryableError(statusCode int) (error, bool) {
	switch statusCode {
	case http.StatusRequestTimeout:
		return errors.New("request timeout"), true
	case http.StatusLocked:
		return errors.New("resource locked"), true
	case http.StatusTooEarly:
		return errors.New("too early"), true
	case http.StatusTooManyRequests:
		return ErrTooManyRequests, true
	case http.StatusBadGateway:
		return errors.New("bad gateway"), true
	case http.StatusServiceUnavailable:
		return errors.New("service unavailable"), true
	case http.StatusGatewayTimeout:
		return errors.New("gateway timeout"), true
	}

	return nil, false
}
