// SPDX-License-Identifier: Apache-2.0

package otel

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationProvider hands out the meter and tracer pair used by each
// instrumented catalog component.
type InstrumentationProvider interface {
	NewInstrumentation(name string) *Instrumentation
	Close() error
}

type Instrumentation struct {
	Meter  metric.Meter
	Tracer trace.Tracer
}

// IsEnabled is safe to call on a nil instrumentation.
func (i *Instrumentation) IsEnabled() bool {
	return i != nil && (i.Meter != nil || i.Tracer != nil)
}

// disabledProvider is used when neither metrics nor traces are configured.
// Components receive a nil instrumentation and skip their wrappers.
type disabledProvider struct{}

func (disabledProvider) NewInstrumentation(string) *Instrumentation { return nil }

func (disabledProvider) Close() error { return nil }

func NewInstrumentationProvider(cfg *Config, opts ...ProviderOption) (InstrumentationProvider, error) {
	if cfg == nil || (cfg.Metrics == nil && cfg.Traces == nil) {
		return disabledProvider{}, nil
	}
	return NewProvider(cfg, opts...)
}
