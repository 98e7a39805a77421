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
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Abraham12611/creator-claim/database/plugin/metadata/internal/gormstore"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
)

// MetadataStorePostgres stores the query replica in postgres
type MetadataStorePostgres struct {
	*gormstore.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	settings     Settings
}

func NewWithOptions(opts ...PostgresOptionFunc) (*MetadataStorePostgres, error) {
	db := &MetadataStorePostgres{}
	for _, opt := range opts {
		opt(db)
	}
	db.settings = db.settings.WithDefaults(DefaultSettings)
	return db, nil
}

func (d *MetadataStorePostgres) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *MetadataStorePostgres) SetPromRegistry(registry prometheus.Registerer) {
	d.promRegistry = registry
}

// Settings returns the effective connection settings
func (d *MetadataStorePostgres) Settings() Settings {
	return d.settings
}

// DSN returns the connection string used to reach the server. Values are
// quoted so that passwords may contain spaces.
func (d *MetadataStorePostgres) DSN() string {
	s := d.settings
	if dsn := strings.TrimSpace(s.DSN); dsn != "" {
		return dsn
	}
	pairs := []struct {
		key   string
		value string
	}{
		{"host", s.Host},
		{"port", fmt.Sprintf("%d", s.Port)},
		{"user", s.User},
		{"password", s.Password},
		{"dbname", s.Database},
		{"sslmode", s.SSLMode},
		{"TimeZone", s.TimeZone},
	}
	parts := make([]string, 0, len(pairs))
	for _, pair := range pairs {
		if pair.value == "" {
			continue
		}
		parts = append(parts, pair.key+"="+quoteDSNValue(pair.value))
	}
	return strings.Join(parts, " ")
}

// quoteDSNValue quotes a keyword/value connection string value when needed
func quoteDSNValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func (d *MetadataStorePostgres) Start() error {
	if d.Store != nil {
		return nil
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	store, err := gormstore.Open(
		postgres.Open(d.DSN()),
		gormstore.OpenConfig{
			Logger:       d.logger,
			PromRegistry: d.promRegistry,
			Name:         "postgres",
			Pool:         d.settings.Pool(),
			PrepareStmt:  true,
		},
	)
	if err != nil {
		return err
	}
	d.logger.Info(
		"connected to postgres metadata store",
		"component", "database",
		"host", d.settings.Host,
		"port", d.settings.Port,
		"database", d.settings.Database,
	)
	d.Store = store
	return nil
}

func (d *MetadataStorePostgres) Stop() error {
	return d.Close()
}

func (d *MetadataStorePostgres) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}
