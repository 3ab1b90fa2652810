// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/xataio/catalogsearch/internal/backoff"
	"github.com/xataio/catalogsearch/pkg/catalog/indexer"
	"github.com/xataio/catalogsearch/pkg/catalog/mapper"
	pgcatalog "github.com/xataio/catalogsearch/pkg/catalog/postgres"
	"github.com/xataio/catalogsearch/pkg/otel"
	"github.com/xataio/catalogsearch/pkg/pipeline"
	tlslib "github.com/xataio/catalogsearch/pkg/tls"
)

func envConfigToPipelineConfig() (*pipeline.Config, error) {
	source := parseSourceConfig()
	if source.Postgres == nil && source.Static == nil {
		return nil, errMissingSource
	}

	return &pipeline.Config{
		Source: source,
		Target: parseTargetConfig(),
		Mapper: mapper.Config{
			SkipAttributes:  viper.GetStringSlice("CATALOGSEARCH_MAPPER_SKIP_ATTRIBUTES"),
			SinglePassRoles: viper.GetBool("CATALOGSEARCH_MAPPER_SINGLE_PASS_ROLES"),
		},
		Cache: pipeline.CacheConfig{
			RefreshInterval: viper.GetDuration("CATALOGSEARCH_MAPPER_CACHE_REFRESH_INTERVAL"),
		},
	}, nil
}

func parseSourceConfig() pipeline.SourceConfig {
	cfg := pipeline.SourceConfig{}
	if pgURL := viper.GetString("CATALOGSEARCH_POSTGRES_URL"); pgURL != "" {
		cfg.Postgres = &pipeline.PostgresSourceConfig{
			Provider: pgcatalog.Config{
				URL:    pgURL,
				Schema: viper.GetString("CATALOGSEARCH_POSTGRES_SCHEMA"),
			},
			RetryPolicy: parseBackoffConfig("CATALOGSEARCH_POSTGRES_RETRY"),
		}
	}
	if file := viper.GetString("CATALOGSEARCH_STATIC_FILE"); file != "" {
		cfg.Static = &pipeline.StaticSourceConfig{File: file}
	}
	return cfg
}

func parseTargetConfig() pipeline.TargetConfig {
	searchURL := viper.GetString("CATALOGSEARCH_SEARCH_URL")
	if searchURL == "" {
		return pipeline.TargetConfig{}
	}
	return pipeline.TargetConfig{
		Search: &pipeline.SearchTargetConfig{
			Engine: viper.GetString("CATALOGSEARCH_SEARCH_ENGINE"),
			URL:    searchURL,
			TLS: tlslib.Config{
				Enabled:            viper.GetBool("CATALOGSEARCH_SEARCH_TLS_ENABLED"),
				CACert:             viper.GetString("CATALOGSEARCH_SEARCH_TLS_CA_CERT"),
				ClientCert:         viper.GetString("CATALOGSEARCH_SEARCH_TLS_CLIENT_CERT"),
				ClientKey:          viper.GetString("CATALOGSEARCH_SEARCH_TLS_CLIENT_KEY"),
				InsecureSkipVerify: viper.GetBool("CATALOGSEARCH_SEARCH_TLS_INSECURE_SKIP_VERIFY"),
			},
			Indexer: indexer.Config{
				IndexPrefix: viper.GetString("CATALOGSEARCH_SEARCH_INDEX_PREFIX"),
				Refresh:     viper.GetString("CATALOGSEARCH_SEARCH_REFRESH"),
				Backoff:     parseBackoffConfig("CATALOGSEARCH_SEARCH_RETRY"),
			},
		},
	}
}

func parseBackoffConfig(prefix string) backoff.Config {
	return backoff.Config{
		Exponential: parseExponentialBackoffConfig(prefix),
		Constant:    parseConstantBackoffConfig(prefix),
	}
}

func parseExponentialBackoffConfig(prefix string) *backoff.ExponentialConfig {
	initialInterval := viper.GetDuration(fmt.Sprintf("%s_EXP_BACKOFF_INITIAL_INTERVAL", prefix))
	maxInterval := viper.GetDuration(fmt.Sprintf("%s_EXP_BACKOFF_MAX_INTERVAL", prefix))
	maxRetries := viper.GetUint(fmt.Sprintf("%s_EXP_BACKOFF_MAX_RETRIES", prefix))
	if initialInterval == 0 && maxInterval == 0 && maxRetries == 0 {
		return nil
	}
	return &backoff.ExponentialConfig{
		InitialInterval: initialInterval,
		MaxInterval:     maxInterval,
		MaxRetries:      maxRetries,
	}
}

func parseConstantBackoffConfig(prefix string) *backoff.ConstantConfig {
	interval := viper.GetDuration(fmt.Sprintf("%s_BACKOFF_INTERVAL", prefix))
	maxRetries := viper.GetUint(fmt.Sprintf("%s_BACKOFF_MAX_RETRIES", prefix))
	if interval == 0 && maxRetries == 0 {
		return nil
	}
	return &backoff.ConstantConfig{
		Interval:   interval,
		MaxRetries: maxRetries,
	}
}

func envToOtelConfig() (*otel.Config, error) {
	cfg := &otel.Config{ServiceName: viper.GetString("CATALOGSEARCH_OTEL_SERVICE_NAME")}
	if endpoint := viper.GetString("CATALOGSEARCH_METRICS_ENDPOINT"); endpoint != "" {
		cfg.Metrics = &otel.MetricsConfig{
			Endpoint:           endpoint,
			CollectionInterval: viper.GetDuration("CATALOGSEARCH_METRICS_COLLECTION_INTERVAL"),
		}
	}
	if endpoint := viper.GetString("CATALOGSEARCH_TRACES_ENDPOINT"); endpoint != "" {
		sampleRatio := viper.GetFloat64("CATALOGSEARCH_TRACES_SAMPLE_RATIO")
		if sampleRatio < 0 || sampleRatio > 1 {
			return nil, errInvalidSampleRatio
		}
		cfg.Traces = &otel.TracesConfig{
			Endpoint:    endpoint,
			SampleRatio: sampleRatio,
		}
	}
	return cfg, nil
}
