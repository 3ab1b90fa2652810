// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"testing"

	"gopkg.in/yaml.v3"
)

var config, _ = os.ReadFile("test/test_config.yaml")

func FuzzToPipelineConfig(f *testing.F) {
	f.Add(config)
	f.Add([]byte(`{}`))
	f.Add([]byte(`source: {}`))
	f.Add([]byte(`source: {static: {file: catalog.yaml}}`))
	f.Add([]byte(`mapper: {cache: {refresh_interval: -1}}`))
	f.Add([]byte(`source: {postgres: {retry: {exponential: {max_retries: -1}}}}`))
	f.Add([]byte(`instrumentation: {traces: {sample_ratio: 7}}`))

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("config conversion panicked: %v", r)
			}
		}()

		var yamlConfig YAMLConfig
		if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
			return
		}

		if _, err := yamlConfig.toPipelineConfig(); err != nil {
			t.Logf("Expected error: %v", err)
		}
		if _, err := yamlConfig.Instrumentation.toOtelConfig(); err != nil {
			t.Logf("Expected error: %v", err)
		}
	})
}
