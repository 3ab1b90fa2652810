// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"time"

	"github.com/xataio/catalogsearch/internal/backoff"
	"github.com/xataio/catalogsearch/pkg/catalog/indexer"
	"github.com/xataio/catalogsearch/pkg/catalog/mapper"
	pgcatalog "github.com/xataio/catalogsearch/pkg/catalog/postgres"
	"github.com/xataio/catalogsearch/pkg/otel"
	"github.com/xataio/catalogsearch/pkg/pipeline"
	tlslib "github.com/xataio/catalogsearch/pkg/tls"
)

type YAMLConfig struct {
	Source          SourceConfig          `mapstructure:"source" yaml:"source"`
	Target          TargetConfig          `mapstructure:"target" yaml:"target"`
	Mapper          MapperConfig          `mapstructure:"mapper" yaml:"mapper"`
	Instrumentation InstrumentationConfig `mapstructure:"instrumentation" yaml:"instrumentation"`
}

type SourceConfig struct {
	Postgres *PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	Static   *StaticConfig   `mapstructure:"static" yaml:"static"`
}

type PostgresConfig struct {
	URL    string         `mapstructure:"url" yaml:"url"`
	Schema string         `mapstructure:"schema" yaml:"schema"`
	Retry  *BackoffConfig `mapstructure:"retry" yaml:"retry"`
}

type StaticConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

type TargetConfig struct {
	Search *SearchConfig `mapstructure:"search" yaml:"search"`
}

type SearchConfig struct {
	Engine      string         `mapstructure:"engine" yaml:"engine"`
	URL         string         `mapstructure:"url" yaml:"url"`
	IndexPrefix string         `mapstructure:"index_prefix" yaml:"index_prefix"`
	Refresh     string         `mapstructure:"refresh" yaml:"refresh"`
	Retry       *BackoffConfig `mapstructure:"retry" yaml:"retry"`
	TLS         *TLSConfig     `mapstructure:"tls" yaml:"tls"`
}

type TLSConfig struct {
	Enabled            bool   `mapstructure:"enabled" yaml:"enabled"`
	CACert             string `mapstructure:"ca_cert" yaml:"ca_cert"`
	ClientCert         string `mapstructure:"client_cert" yaml:"client_cert"`
	ClientKey          string `mapstructure:"client_key" yaml:"client_key"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

type MapperConfig struct {
	SinglePassRoles bool         `mapstructure:"single_pass_roles" yaml:"single_pass_roles"`
	SkipAttributes  []string     `mapstructure:"skip_attributes" yaml:"skip_attributes"`
	Cache           *CacheConfig `mapstructure:"cache" yaml:"cache"`
}

type CacheConfig struct {
	RefreshInterval int `mapstructure:"refresh_interval" yaml:"refresh_interval"`
}

type BackoffConfig struct {
	Exponential *ExponentialBackoffConfig `mapstructure:"exponential" yaml:"exponential"`
	Constant    *ConstantBackoffConfig    `mapstructure:"constant" yaml:"constant"`
}

type ExponentialBackoffConfig struct {
	MaxRetries      int `mapstructure:"max_retries" yaml:"max_retries"`
	InitialInterval int `mapstructure:"initial_interval" yaml:"initial_interval"`
	MaxInterval     int `mapstructure:"max_interval" yaml:"max_interval"`
}

type ConstantBackoffConfig struct {
	MaxRetries int `mapstructure:"max_retries" yaml:"max_retries"`
	Interval   int `mapstructure:"interval" yaml:"interval"`
}

type InstrumentationConfig struct {
	ServiceName string         `mapstructure:"service_name" yaml:"service_name"`
	Metrics     *MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
	Traces      *TracesConfig  `mapstructure:"traces" yaml:"traces"`
}

type MetricsConfig struct {
	Endpoint           string `mapstructure:"endpoint" yaml:"endpoint"`
	CollectionInterval int    `mapstructure:"collection_interval" yaml:"collection_interval"`
}

type TracesConfig struct {
	Endpoint    string  `mapstructure:"endpoint" yaml:"endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio" yaml:"sample_ratio"`
}

var (
	errMissingSource      = errors.New("source config requires either postgres or static")
	errInvalidSampleRatio = errors.New("trace sample ratio must be between 0 and 1")
	errNegativeInterval   = errors.New("intervals can't be negative")
)

func (c *YAMLConfig) toPipelineConfig() (*pipeline.Config, error) {
	if c.Source.Postgres == nil && c.Source.Static == nil {
		return nil, errMissingSource
	}

	cacheCfg, err := c.Mapper.parseCacheConfig()
	if err != nil {
		return nil, err
	}

	return &pipeline.Config{
		Source: c.parseSourceConfig(),
		Target: c.parseTargetConfig(),
		Mapper: mapper.Config{
			SkipAttributes:  c.Mapper.SkipAttributes,
			SinglePassRoles: c.Mapper.SinglePassRoles,
		},
		Cache: cacheCfg,
	}, nil
}

func (c *YAMLConfig) parseSourceConfig() pipeline.SourceConfig {
	cfg := pipeline.SourceConfig{}
	if c.Source.Postgres != nil {
		cfg.Postgres = &pipeline.PostgresSourceConfig{
			Provider: pgcatalog.Config{
				URL:    c.Source.Postgres.URL,
				Schema: c.Source.Postgres.Schema,
			},
			RetryPolicy: c.Source.Postgres.Retry.parseBackoffConfig(),
		}
	}
	if c.Source.Static != nil {
		cfg.Static = &pipeline.StaticSourceConfig{
			File: c.Source.Static.File,
		}
	}
	return cfg
}

func (c *YAMLConfig) parseTargetConfig() pipeline.TargetConfig {
	if c.Target.Search == nil {
		return pipeline.TargetConfig{}
	}
	return pipeline.TargetConfig{
		Search: &pipeline.SearchTargetConfig{
			Engine: c.Target.Search.Engine,
			URL:    c.Target.Search.URL,
			TLS:    c.Target.Search.TLS.parseTLSConfig(),
			Indexer: indexer.Config{
				IndexPrefix: c.Target.Search.IndexPrefix,
				Refresh:     c.Target.Search.Refresh,
				Backoff:     c.Target.Search.Retry.parseBackoffConfig(),
			},
		},
	}
}

func (c *MapperConfig) parseCacheConfig() (pipeline.CacheConfig, error) {
	if c.Cache == nil {
		return pipeline.CacheConfig{}, nil
	}
	if c.Cache.RefreshInterval < 0 {
		return pipeline.CacheConfig{}, errNegativeInterval
	}
	return pipeline.CacheConfig{
		RefreshInterval: time.Duration(c.Cache.RefreshInterval) * time.Second,
	}, nil
}

func (t *TLSConfig) parseTLSConfig() tlslib.Config {
	if t == nil {
		return tlslib.Config{}
	}
	return tlslib.Config{
		Enabled:            t.Enabled,
		CACert:             t.CACert,
		ClientCert:         t.ClientCert,
		ClientKey:          t.ClientKey,
		InsecureSkipVerify: t.InsecureSkipVerify,
	}
}

func (bo *BackoffConfig) parseBackoffConfig() backoff.Config {
	if bo == nil {
		return backoff.Config{}
	}
	return backoff.Config{
		Exponential: bo.parseExponentialBackoffConfig(),
		Constant:    bo.parseConstantBackoffConfig(),
	}
}

func (bo *BackoffConfig) parseExponentialBackoffConfig() *backoff.ExponentialConfig {
	if bo.Exponential == nil {
		return nil
	}
	return &backoff.ExponentialConfig{
		InitialInterval: time.Duration(bo.Exponential.InitialInterval) * time.Millisecond,
		MaxInterval:     time.Duration(bo.Exponential.MaxInterval) * time.Millisecond,
		MaxRetries:      uint(bo.Exponential.MaxRetries),
	}
}

func (bo *BackoffConfig) parseConstantBackoffConfig() *backoff.ConstantConfig {
	if bo.Constant == nil {
		return nil
	}
	return &backoff.ConstantConfig{
		Interval:   time.Duration(bo.Constant.Interval) * time.Millisecond,
		MaxRetries: uint(bo.Constant.MaxRetries),
	}
}

func (c InstrumentationConfig) toOtelConfig() (*otel.Config, error) {
	cfg := &otel.Config{ServiceName: c.ServiceName}
	if c.Metrics != nil {
		if c.Metrics.CollectionInterval < 0 {
			return nil, errNegativeInterval
		}
		cfg.Metrics = &otel.MetricsConfig{
			Endpoint:           c.Metrics.Endpoint,
			CollectionInterval: time.Duration(c.Metrics.CollectionInterval) * time.Second,
		}
	}
	if c.Traces != nil {
		if c.Traces.SampleRatio < 0 || c.Traces.SampleRatio > 1 {
			return nil, errInvalidSampleRatio
		}
		cfg.Traces = &otel.TracesConfig{
			Endpoint:    c.Traces.Endpoint,
			SampleRatio: c.Traces.SampleRatio,
		}
	}
	return cfg, nil
}
