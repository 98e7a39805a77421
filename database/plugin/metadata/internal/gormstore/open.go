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
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PoolConfig sizes the connection pool. Zero fields keep the driver default.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// OpenConfig describes how Open connects to and prepares a database
type OpenConfig struct {
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	// Name labels the pool metrics
	Name        string
	Pool        PoolConfig
	PrepareStmt bool
}

// Open connects through dialector, sizes the pool, migrates the replica
// schema and registers pool metrics
func Open(dialector gorm.Dialector, cfg OpenConfig) (*Store, error) {
	db, err := gorm.Open(
		dialector,
		&gorm.Config{
			Logger:                 gormlogger.Discard,
			SkipDefaultTransaction: true,
			PrepareStmt:            cfg.PrepareStmt,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("open %s metadata store: %w", cfg.Name, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.Pool.ConnMaxLifetime)
	}
	store, err := New(db, cfg.Logger)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := store.Migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate %s metadata store: %w", cfg.Name, err)
	}
	if cfg.PromRegistry != nil {
		store.RegisterMetrics(cfg.PromRegistry, cfg.Name)
	}
	return store, nil
}
