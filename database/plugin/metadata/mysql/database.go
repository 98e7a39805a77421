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

package mysql

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Abraham12611/creator-claim/database/plugin/metadata/internal/gormstore"
	"github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	gormmysql "gorm.io/driver/mysql"
)

// MetadataStoreMysql stores the query replica in MySQL
type MetadataStoreMysql struct {
	*gormstore.Store
	promRegistry prometheus.Registerer
	logger       *slog.Logger
	settings     Settings
}

func NewWithOptions(opts ...MysqlOptionFunc) (*MetadataStoreMysql, error) {
	db := &MetadataStoreMysql{}
	for _, opt := range opts {
		opt(db)
	}
	db.settings = db.settings.WithDefaults(DefaultSettings)
	if _, err := time.LoadLocation(db.settings.TimeZone); err != nil {
		return nil, fmt.Errorf("invalid mysql time zone: %w", err)
	}
	return db, nil
}

func (d *MetadataStoreMysql) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *MetadataStoreMysql) SetPromRegistry(registry prometheus.Registerer) {
	d.promRegistry = registry
}

// Settings returns the effective connection settings
func (d *MetadataStoreMysql) Settings() Settings {
	return d.settings
}

// DSN returns the connection string used to reach the server
func (d *MetadataStoreMysql) DSN() string {
	s := d.settings
	if dsn := strings.TrimSpace(s.DSN); dsn != "" {
		return dsn
	}
	cfg := mysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = s.Host + ":" + strconv.FormatUint(s.Port, 10)
	cfg.DBName = s.Database
	// Timestamps are stored as unix seconds, but keep driver values typed
	cfg.ParseTime = true
	if loc, err := time.LoadLocation(s.TimeZone); err == nil {
		cfg.Loc = loc
	}
	if s.SSLMode != "" {
		cfg.Params = map[string]string{"tls": s.SSLMode}
	}
	return cfg.FormatDSN()
}

func (d *MetadataStoreMysql) Start() error {
	if d.Store != nil {
		return nil
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	store, err := gormstore.Open(
		gormmysql.Open(d.DSN()),
		gormstore.OpenConfig{
			Logger:       d.logger,
			PromRegistry: d.promRegistry,
			Name:         "mysql",
			Pool:         d.settings.Pool(),
			PrepareStmt:  true,
		},
	)
	if err != nil {
		return err
	}
	d.logger.Info(
		"connected to mysql metadata store",
		"component", "database",
		"host", d.settings.Host,
		"port", d.settings.Port,
		"database", d.settings.Database,
	)
	d.Store = store
	return nil
}

func (d *MetadataStoreMysql) Stop() error {
	return d.Close()
}

func (d *MetadataStoreMysql) Close() error {
	if d.Store == nil {
		return nil
	}
	err := d.Store.Close()
	d.Store = nil
	return err
}
