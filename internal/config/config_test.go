// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abraham12611/creator-claim/database/plugin"
	"github.com/Abraham12611/creator-claim/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "creatorclaim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigFile(t *testing.T) {
	path := writeConfig(t, `
dataDir: /var/lib/creatorclaim
keyDir: /var/lib/creatorclaim/keys
admin: admin-key
paymentMint: 11111111111111111111111111111111
platformFeeBps: 250
tracingEndpoint: http://localhost:4318
`)
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	expected := &config.Config{
		DataDir:         "/var/lib/creatorclaim",
		KeyDir:          "/var/lib/creatorclaim/keys",
		BlobPlugin:      config.DefaultBlobPlugin,
		MetadataPlugin:  config.DefaultMetadataPlugin,
		Admin:           "admin-key",
		PaymentMint:     "11111111111111111111111111111111",
		PlatformFeeBps:  250,
		TracingEndpoint: "http://localhost:4318",
	}
	assert.Equal(t, expected, cfg)
}

func TestLoadNestedConfigSection(t *testing.T) {
	path := writeConfig(t, `
config:
  dataDir: nested
  debug: true
`)
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "nested", cfg.DataDir)
	assert.True(t, cfg.Debug)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
dataDir: from-file
platformFeeBps: 100
`)
	t.Setenv("CREATORCLAIM_DATA_DIR", "from-env")
	t.Setenv("CREATORCLAIM_PLATFORM_FEE_BPS", "300")
	t.Setenv("CREATORCLAIM_DATABASE_METADATA_PLUGIN", "postgres")
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.DataDir)
	assert.Equal(t, uint16(300), cfg.PlatformFeeBps)
	assert.Equal(t, "postgres", cfg.MetadataPlugin)
}

func TestInvalidPlatformFee(t *testing.T) {
	path := writeConfig(t, "platformFeeBps: 10001\n")
	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrInvalidPlatformFee)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestMalformedConfigFile(t *testing.T) {
	path := writeConfig(t, "dataDir: [unterminated\n")
	_, err := config.LoadConfig(path)
	require.Error(t, err)
}

type mockPlugin struct{}

func (m *mockPlugin) Start() error { return nil }
func (m *mockPlugin) Stop() error  { return nil }

func TestDatabasePluginSections(t *testing.T) {
	var dataDir string
	var cacheSize uint64
	plugin.Register(plugin.PluginEntry{
		Type:               plugin.PluginTypeBlob,
		Name:               "config-test-blob",
		NewFromOptionsFunc: func() plugin.Plugin { return &mockPlugin{} },
		Options: []plugin.PluginOption{
			{
				Name:         "data-dir",
				Type:         plugin.PluginOptionTypeString,
				DefaultValue: "",
				Dest:         &dataDir,
			},
			{
				Name:         "cache-size",
				Type:         plugin.PluginOptionTypeUint,
				DefaultValue: uint64(0),
				Dest:         &cacheSize,
			},
		},
	})
	path := writeConfig(t, `
database:
  blob:
    plugin: config-test-blob
    config-test-blob:
      data-dir: /srv/blob
      cache-size: 1024
`)
	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "config-test-blob", cfg.BlobPlugin)
	assert.Equal(t, config.DefaultMetadataPlugin, cfg.MetadataPlugin)
	assert.Equal(t, "/srv/blob", dataDir)
	assert.Equal(t, uint64(1024), cacheSize)
}

func TestContext(t *testing.T) {
	assert.Nil(t, config.FromContext(context.Background()))
	cfg := config.DefaultConfig()
	ctx := config.WithContext(context.Background(), cfg)
	assert.Same(t, cfg, config.FromContext(ctx))
}
