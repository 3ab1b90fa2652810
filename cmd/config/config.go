// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
	"github.com/xataio/catalogsearch/pkg/otel"
	"github.com/xataio/catalogsearch/pkg/pipeline"
)

func Load() error {
	return LoadFile(viper.GetString("config"))
}

func LoadFile(file string) error {
	if file == "" {
		return nil
	}
	viper.SetConfigFile(file)
	viper.SetConfigType(filepath.Ext(file)[1:])
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func PostgresURL() string {
	switch {
	case viper.GetString("source.postgres.url") != "":
		// yaml config
		return viper.GetString("source.postgres.url")
	default:
		// env config or CLI argument
		return viper.GetString("CATALOGSEARCH_POSTGRES_URL")
	}
}

func ParsePipelineConfig() (*pipeline.Config, error) {
	if isYAMLConfig() {
		yamlCfg := YAMLConfig{}
		if err := viper.Unmarshal(&yamlCfg); err != nil {
			return nil, err
		}
		return yamlCfg.toPipelineConfig()
	}
	return envConfigToPipelineConfig()
}

func ParseInstrumentationConfig() (*otel.Config, error) {
	if isYAMLConfig() {
		yamlCfg := YAMLConfig{}
		if err := viper.Unmarshal(&yamlCfg); err != nil {
			return nil, err
		}
		return yamlCfg.Instrumentation.toOtelConfig()
	}
	return envToOtelConfig()
}

func isYAMLConfig() bool {
	switch filepath.Ext(viper.GetViper().ConfigFileUsed()) {
	case ".yml", ".yaml":
		return true
	default:
		return false
	}
}
