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

package gormstore

import (
	"time"

	"github.com/Abraham12611/creator-claim/database/plugin"
)

// ServerSettings are the connection settings of a client/server metadata
// plugin
type ServerSettings struct {
	Host     string
	User     string
	Password string
	Database string
	SSLMode  string
	TimeZone string
	// DSN overrides every other connection setting when set
	DSN  string
	Port uint64

	MaxOpenConns           uint64
	MaxIdleConns           uint64
	ConnMaxLifetimeSeconds uint64
}

// WithDefaults fills the zero fields of s from defaults
func (s ServerSettings) WithDefaults(defaults ServerSettings) ServerSettings {
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.Host, defaults.Host)
	fill(&s.User, defaults.User)
	fill(&s.Database, defaults.Database)
	fill(&s.SSLMode, defaults.SSLMode)
	fill(&s.TimeZone, defaults.TimeZone)
	for _, pair := range []struct {
		v   *uint64
		def uint64
	}{
		{&s.Port, defaults.Port},
		{&s.MaxOpenConns, defaults.MaxOpenConns},
		{&s.MaxIdleConns, defaults.MaxIdleConns},
		{&s.ConnMaxLifetimeSeconds, defaults.ConnMaxLifetimeSeconds},
	} {
		if *pair.v == 0 {
			*pair.v = pair.def
		}
	}
	return s
}

const (
	maxPoolConns       = 1 << 16
	maxLifetimeSeconds = 1 << 32
)

func (s ServerSettings) Pool() PoolConfig {
	lifetime := min(s.ConnMaxLifetimeSeconds, maxLifetimeSeconds)
	return PoolConfig{
		MaxOpenConns:    int(min(s.MaxOpenConns, maxPoolConns)),
		MaxIdleConns:    int(min(s.MaxIdleConns, maxPoolConns)),
		ConnMaxLifetime: time.Duration(lifetime) * time.Second,
	}
}

// PluginOptions describes the command line options of a server plugin that
// write into s. label names the server in the descriptions and envVars maps
// option names to the conventional environment variables of the server.
func (s *ServerSettings) PluginOptions(
	label string,
	defaults ServerSettings,
	envVars map[string]string,
) []plugin.PluginOption {
	str := func(name, desc string, def string, dest *string) plugin.PluginOption {
		return plugin.PluginOption{
			Name:         name,
			Type:         plugin.PluginOptionTypeString,
			Description:  label + " " + desc,
			DefaultValue: def,
			CustomEnvVar: envVars[name],
			Dest:         dest,
		}
	}
	num := func(name, desc string, def uint64, dest *uint64) plugin.PluginOption {
		return plugin.PluginOption{
			Name:         name,
			Type:         plugin.PluginOptionTypeUint,
			Description:  label + " " + desc,
			DefaultValue: def,
			CustomEnvVar: envVars[name],
			Dest:         dest,
		}
	}
	return []plugin.PluginOption{
		str("host", "host", defaults.Host, &s.Host),
		num("port", "port", defaults.Port, &s.Port),
		str("user", "user", defaults.User, &s.User),
		str("password", "password", defaults.Password, &s.Password),
		str("database", "database name", defaults.Database, &s.Database),
		str("ssl-mode", "TLS mode", defaults.SSLMode, &s.SSLMode),
		str("timezone", "time zone", defaults.TimeZone, &s.TimeZone),
		str("dsn", "DSN, overrides the other connection options", defaults.DSN, &s.DSN),
		num("max-open-conns", "connection pool size", defaults.MaxOpenConns, &s.MaxOpenConns),
		num("max-idle-conns", "idle connections kept open", defaults.MaxIdleConns, &s.MaxIdleConns),
		num("conn-max-lifetime", "connection lifetime in seconds", defaults.ConnMaxLifetimeSeconds, &s.ConnMaxLifetimeSeconds),
	}
}
