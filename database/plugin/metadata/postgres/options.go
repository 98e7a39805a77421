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

package postgres

import (
	"log/slog"

	"github.com/Abraham12611/creator-claim/database/plugin/metadata/internal/gormstore"
	"github.com/prometheus/client_golang/prometheus"
)

// Settings are the connection and pool settings of the store
type Settings = gormstore.ServerSettings

// DefaultSettings fill whatever the options leave unset
var DefaultSettings = Settings{
	Host:                   "localhost",
	Port:                   5432,
	User:                   "postgres",
	Database:               "creatorclaim",
	SSLMode:                "disable",
	TimeZone:               "UTC",
	MaxOpenConns:           100,
	MaxIdleConns:           10,
	ConnMaxLifetimeSeconds: 3600,
}

type PostgresOptionFunc func(*MetadataStorePostgres)

// WithLogger specifies the logger object to use for logging messages
func WithLogger(logger *slog.Logger) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.logger = logger
	}
}

// WithPromRegistry specifies the prometheus registry to use for metrics
func WithPromRegistry(
	registry prometheus.Registerer,
) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.promRegistry = registry
	}
}

// WithSettings replaces the connection settings. Zero fields take the
// DefaultSettings value.
func WithSettings(settings Settings) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.settings = settings
	}
}

// WithDSN connects with a full connection string
func WithDSN(dsn string) PostgresOptionFunc {
	return func(m *MetadataStorePostgres) {
		m.settings.DSN = dsn
	}
}
