// SPDX-License-Identifier: Apache-2.0

package searchstore

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractResponseError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		statusCode int

		wantErr     error
		wantErrType any
		wantErrMsg  string
	}{
		{
			name:        "too many requests",
			body:        `{"error": {"type": "es_rejected_execution_exception", "reason": "rejected"}}`,
			statusCode:  http.StatusTooManyRequests,
			wantErr:     ErrTooManyRequests,
			wantErrType: &RetryableError{},
		},
		{
			name:        "service unavailable",
			body:        `{"error": {"type": "unavailable", "reason": "down"}}`,
			statusCode:  http.StatusServiceUnavailable,
			wantErrType: &RetryableError{},
			wantErrMsg:  "service unavailable",
		},
		{
			name:       "not found",
			body:       `{"error": {"type": "index_not_found_exception", "reason": "no such index [catalog_product_1]"}}`,
			statusCode: http.StatusNotFound,
			wantErr:    ErrResourceNotFound,
			wantErrMsg: "search resource not found: [404]: index_not_found_exception: no such index [catalog_product_1]",
		},
		{
			name:        "resource already exists",
			body:        `{"error": {"type": "resource_already_exists_exception", "reason": "index [catalog_product_1] already exists"}}`,
			statusCode:  http.StatusBadRequest,
			wantErrType: &ErrResourceAlreadyExists{},
			wantErrMsg:  "resource already exists: index [catalog_product_1] already exists",
		},
		{
			name:        "snapshot in progress",
			body:        `{"error": {"type": "snapshot_in_progress_exception", "reason": "snapshot running"}}`,
			statusCode:  http.StatusBadRequest,
			wantErrType: &RetryableError{},
		},
		{
			name:        "mapper parsing",
			body:        `{"error": {"type": "mapper_parsing_exception", "reason": "failed to parse field [price_0_1]", "caused_by": {"type": "number_format_exception", "reason": "For input string: \"abc\""}}}`,
			statusCode:  http.StatusBadRequest,
			wantErrType: &ErrDocumentRejected{},
			wantErrMsg:  `document rejected: failed to parse field [price_0_1]: For input string: "abc"`,
		},
		{
			name:        "generic bad request",
			body:        `{"error": {"type": "parsing_exception", "reason": "unknown key"}}`,
			statusCode:  http.StatusBadRequest,
			wantErrType: &ErrQueryInvalid{},
			wantErrMsg:  "unknown key",
		},
		{
			name:       "unexpected status",
			body:       `{"error": {"type": "security_exception", "reason": "unauthorized"}}`,
			statusCode: http.StatusUnauthorized,
			wantErrMsg: "[401] security_exception: unauthorized",
		},
		{
			name:       "invalid body",
			body:       `<html>`,
			statusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := ExtractResponseError(io.NopCloser(strings.NewReader(tc.body)), tc.statusCode)
			require.Error(t, err)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
			}
			switch tc.wantErrType.(type) {
			case *RetryableError:
				retryableErr := RetryableError{}
				require.True(t, errors.As(err, &retryableErr))
			case *ErrResourceAlreadyExists:
				existsErr := ErrResourceAlreadyExists{}
				require.True(t, errors.As(err, &existsErr))
			case *ErrDocumentRejected:
				rejectedErr := ErrDocumentRejected{}
				require.True(t, errors.As(err, &rejectedErr))
			case *ErrQueryInvalid:
				queryErr := ErrQueryInvalid{}
				require.True(t, errors.As(err, &queryErr))
			}
			if tc.wantErrMsg != "" {
				require.Equal(t, tc.wantErrMsg, err.Error())
			}
		})
	}
}

type mockAPIResponse struct {
	statusCode int
	body       string
}

func (m *mockAPIResponse) GetBody() io.ReadCloser { return io.NopCloser(strings.NewReader(m.body)) }
func (m *mockAPIResponse) GetStatusCode() int     { return m.statusCode }
func (m *mockAPIResponse) IsError() bool          { return m.statusCode > 299 }

func TestIsErrResponse(t *testing.T) {
	t.Parallel()

	require.NoError(t, IsErrResponse(&mockAPIResponse{statusCode: http.StatusCreated}))

	err := IsErrResponse(&mockAPIResponse{statusCode: http.StatusNotFound, body: `{"error": {"type": "index_not_found_exception", "reason": "missing"}}`})
	require.ErrorIs(t, err, ErrResourceNotFound)
}
