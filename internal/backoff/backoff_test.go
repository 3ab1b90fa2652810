// SPDX-License-Identifier: Apache-2.0

package backoff

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBackoff_RetryNotify(t *testing.T) {
	t.Parallel()

	errTest := errors.New("oh noes")

	tests := []struct {
		name    string
		cfg     *Config
		op      func(i uint) error
		wantErr error

		wantCalls  uint
		wantNotify uint
	}{
		{
			name: "ok - first attempt",
			cfg:  &Config{Constant: &ConstantConfig{MaxRetries: 3}},
			op:   func(uint) error { return nil },

			wantCalls: 1,
		},
		{
			name: "ok - after retries",
			cfg:  &Config{Constant: &ConstantConfig{MaxRetries: 3}},
			op: func(i uint) error {
				if i < 3 {
					return errTest
				}
				return nil
			},

			wantCalls:  3,
			wantNotify: 2,
		},
		{
			name:    "error - max retries reached",
			cfg:     &Config{Constant: &ConstantConfig{MaxRetries: 2}},
			op:      func(uint) error { return errTest },
			wantErr: errTest,

			wantCalls:  3,
			wantNotify: 2,
		},
		{
			name: "error - permanent",
			cfg:  &Config{Constant: &ConstantConfig{MaxRetries: 3}},
			op: func(uint) error {
				return fmt.Errorf("%w: %w", errTest, ErrPermanent)
			},
			wantErr: errTest,

			wantCalls: 1,
		},
		{
			name:    "error - exponential with max retries",
			cfg:     &Config{Exponential: &ExponentialConfig{InitialInterval: time.Millisecond, MaxInterval: time.Second, MaxRetries: 1}},
			op:      func(uint) error { return errTest },
			wantErr: errTest,

			wantCalls:  2,
			wantNotify: 1,
		},
		{
			name:    "error - no config does not retry",
			cfg:     &Config{},
			op:      func(uint) error { return errTest },
			wantErr: errTest,

			wantCalls: 1,
		},
		{
			name:    "error - nil config does not retry",
			cfg:     nil,
			op:      func(uint) error { return errTest },
			wantErr: errTest,

			wantCalls: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var calls, notified uint
			bo := NewProvider(tc.cfg)(context.Background())
			err := bo.RetryNotify(func() error {
				calls++
				return tc.op(calls)
			}, func(error, time.Duration) {
				notified++
			})
			require.ErrorIs(t, err, tc.wantErr)
			require.Equal(t, tc.wantCalls, calls)
			require.Equal(t, tc.wantNotify, notified)
		})
	}
}

func TestBackoff_ContextCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	bo := NewConstantBackoff(ctx, &ConstantConfig{Interval: time.Hour})
	err := bo.Retry(func() error {
		calls++
		return errors.New("oh noes")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}
