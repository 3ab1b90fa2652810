// SPDX-License-Identifier: Apache-2.0

package backoff

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

type Backoff interface {
	RetryNotify(Operation, Notify) error
	Retry(Operation) error
}

type (
	Operation func() error
	Notify    func(error, time.Duration)
)

type Config struct {
	Exponential *ExponentialConfig `mapstructure:"exponential" yaml:"exponential"`
	Constant    *ConstantConfig    `mapstructure:"constant" yaml:"constant"`
}

type ExponentialConfig struct {
	InitialInterval time.Duration `mapstructure:"initial_interval" yaml:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval" yaml:"max_interval"`
	MaxRetries      uint          `mapstructure:"max_retries" yaml:"max_retries"`
}

type ConstantConfig struct {
	Interval   time.Duration `mapstructure:"interval" yaml:"interval"`
	MaxRetries uint          `mapstructure:"max_retries" yaml:"max_retries"`
}

var ErrPermanent = errors.New("permanent error, do not retry")

type Provider func(ctx context.Context) Backoff

// NewProvider returns a backoff provider based on the config on input. If no
// valid input is provided, a no retry backoff provider is returned instead.
func NewProvider(cfg *Config) Provider {
	switch {
	case cfg == nil:
		return func(context.Context) Backoff { return NewStopBackoff() }
	case cfg.Constant != nil:
		return func(ctx context.Context) Backoff {
			return NewConstantBackoff(ctx, cfg.Constant)
		}
	case cfg.Exponential != nil:
		return func(ctx context.Context) Backoff {
			return NewExponentialBackoff(ctx, cfg.Exponential)
		}
	default:
		return func(context.Context) Backoff { return NewStopBackoff() }
	}
}

// retrier adapts a cenkalti backoff policy to the Backoff interface.
type retrier struct {
	policy backoff.BackOff
}

func NewExponentialBackoff(ctx context.Context, cfg *ExponentialConfig) Backoff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = cfg.InitialInterval
	exp.MaxElapsedTime = cfg.MaxInterval
	return newRetrier(ctx, exp, cfg.MaxRetries)
}

func NewConstantBackoff(ctx context.Context, cfg *ConstantConfig) Backoff {
	return newRetrier(ctx, backoff.NewConstantBackOff(cfg.Interval), cfg.MaxRetries)
}

func NewStopBackoff() Backoff {
	return &retrier{policy: &backoff.StopBackOff{}}
}

func newRetrier(ctx context.Context, policy backoff.BackOff, maxRetries uint) *retrier {
	if maxRetries > 0 {
		policy = backoff.WithMaxRetries(policy, uint64(maxRetries))
	}
	return &retrier{policy: backoff.WithContext(policy, ctx)}
}

func (r *retrier) Retry(op Operation) error {
	return r.RetryNotify(op, nil)
}

// RetryNotify runs the operation until it succeeds, the policy gives up, or
// the operation returns an error wrapping ErrPermanent.
func (r *retrier) RetryNotify(op Operation, notify Notify) error {
	boOp := func() error {
		err := op()
		if errors.Is(err, ErrPermanent) {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.RetryNotify(boOp, r.policy, backoff.Notify(notify))
}
