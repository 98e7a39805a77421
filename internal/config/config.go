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

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Abraham12611/creator-claim/database/plugin"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "creatorclaim.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	EnvPrefix = "creatorclaim"

	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"

	configFileName = "creatorclaim.yaml"
	maxFeeBps      = 10_000
)

var ErrInvalidPlatformFee = errors.New(
	"platformFeeBps must be between 0 and 10000",
)

// tempConfig accepts both a bare config and one nested under a "config"
// key, plus the plugin sections
type tempConfig struct {
	Config   *Config         `yaml:"config,omitempty"`
	Database *databaseConfig `yaml:"database,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DataDir         string `yaml:"dataDir"         split_words:"true"`
	KeyDir          string `yaml:"keyDir"          split_words:"true"`
	BlobPlugin      string `yaml:"blobPlugin"      envconfig:"DATABASE_BLOB_PLUGIN"`
	MetadataPlugin  string `yaml:"metadataPlugin"  envconfig:"DATABASE_METADATA_PLUGIN"`
	Admin           string `yaml:"admin"`
	PaymentMint     string `yaml:"paymentMint"     split_words:"true"`
	MintAuthority   string `yaml:"mintAuthority"   split_words:"true"`
	Treasury        string `yaml:"treasury"`
	TracingEndpoint string `yaml:"tracingEndpoint" split_words:"true"`
	PlatformFeeBps  uint16 `yaml:"platformFeeBps"  split_words:"true"`
	Debug           bool   `yaml:"debug"`
}

// DefaultConfig returns the configuration used when nothing is overridden
func DefaultConfig() *Config {
	return &Config{
		DataDir:        ".creatorclaim",
		KeyDir:         filepath.Join(".creatorclaim", "keys"),
		BlobPlugin:     DefaultBlobPlugin,
		MetadataPlugin: DefaultMetadataPlugin,
	}
}

// findConfigFile returns the first config file found in the user and system
// locations
func findConfigFile() string {
	if homeDir, err := os.UserHomeDir(); err == nil {
		userPath := filepath.Join(homeDir, "."+EnvPrefix, configFileName)
		if _, err := os.Stat(userPath); err == nil {
			return userPath
		}
	}
	systemPath := filepath.Join("/etc", EnvPrefix, configFileName)
	if _, err := os.Stat(systemPath); err == nil {
		return systemPath
	}
	return ""
}

// LoadConfig builds the configuration from defaults, the config file and the
// environment, in that order of precedence. An empty configFile searches the
// default locations.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := cfg.loadFile(configFile); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(configFile string) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	var tempCfg tempConfig
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if tempCfg.Config != nil {
		configBytes, err := yaml.Marshal(tempCfg.Config)
		if err != nil {
			return fmt.Errorf("error re-marshalling config: %w", err)
		}
		buf = configBytes
	}
	if err := yaml.Unmarshal(buf, c); err != nil {
		return fmt.Errorf("error parsing config section: %w", err)
	}
	if tempCfg.Database == nil {
		return nil
	}
	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Database.Blob != nil {
		name, options := splitPluginSection("blob", tempCfg.Database.Blob)
		if name != "" {
			c.BlobPlugin = name
		}
		pluginConfig["blob"] = options
	}
	if tempCfg.Database.Metadata != nil {
		name, options := splitPluginSection("metadata", tempCfg.Database.Metadata)
		if name != "" {
			c.MetadataPlugin = name
		}
		pluginConfig["metadata"] = options
	}
	if err := plugin.ProcessConfig(pluginConfig); err != nil {
		return fmt.Errorf("error processing plugin config: %w", err)
	}
	return nil
}

// splitPluginSection separates the "plugin" selector of a database section
// from the per-plugin option maps
func splitPluginSection(
	typeName string,
	section map[string]any,
) (string, map[string]map[string]any) {
	var name string
	options := make(map[string]map[string]any)
	for k, v := range section {
		if k == "plugin" {
			if pluginName, ok := v.(string); ok {
				name = pluginName
			}
			continue
		}
		switch val := v.(type) {
		case map[string]any:
			options[k] = val
		case map[any]any:
			tmp := make(map[string]any, len(val))
			for vk, vv := range val {
				if keyStr, ok := vk.(string); ok {
					tmp[keyStr] = vv
				}
			}
			options[k] = tmp
		default:
			fmt.Fprintf(
				os.Stderr,
				"warning: skipping %s config entry %q: expected map, got %T\n",
				typeName,
				k,
				v,
			)
		}
	}
	return name, options
}

func (c *Config) Validate() error {
	if c.PlatformFeeBps > maxFeeBps {
		return fmt.Errorf("%w: got %d", ErrInvalidPlatformFee, c.PlatformFeeBps)
	}
	if c.BlobPlugin == "" {
		c.BlobPlugin = DefaultBlobPlugin
	}
	if c.MetadataPlugin == "" {
		c.MetadataPlugin = DefaultMetadataPlugin
	}
	return nil
}
