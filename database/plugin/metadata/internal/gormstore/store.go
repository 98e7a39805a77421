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

// Package gormstore holds the gorm queries shared by the relational
// metadata plugins
package gormstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/Abraham12611/creator-claim/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Store wraps an open gorm handle
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	s := &Store{
		db:     db,
		logger: logger,
	}
	// Configure tracing for GORM
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	return s, nil
}

// Migrate creates or updates the table schemas
func (s *Store) Migrate() error {
	s.logger.Debug(fmt.Sprintf("creating table: %#v", &CommitTimestamp{}))
	if err := s.db.AutoMigrate(&CommitTimestamp{}); err != nil {
		return err
	}
	for _, model := range models.MigrateModels {
		s.logger.Debug(fmt.Sprintf("creating table: %#v", model))
		if err := s.db.AutoMigrate(model); err != nil {
			return err
		}
	}
	return nil
}

// RegisterMetrics exposes connection pool statistics
func (s *Store) RegisterMetrics(
	registry prometheus.Registerer,
	dbName string,
) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return
	}
	if err := registry.Register(collectors.NewDBStatsCollector(sqlDB, dbName)); err != nil {
		s.logger.Debug(
			"failed to register metadata metrics",
			"component", "database",
			"error", err,
		)
	}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

func (s *Store) Logger() *slog.Logger {
	return s.logger
}

func (s *Store) Transaction() types.Txn {
	db := s.db.Begin()
	if db.Error != nil {
		s.logger.Error(
			"failed to begin transaction",
			"component", "database",
			"error", db.Error,
		)
		return &Txn{beginErr: db.Error}
	}
	return &Txn{db: db}
}

// Close releases the underlying connection pool
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("get database handle: %w", err)
	}
	return sqlDB.Close()
}

// resolveDB returns the gorm handle for the transaction, or the base handle
// when txn is nil
func (s *Store) resolveDB(txn types.Txn) (*gorm.DB, error) {
	if txn == nil {
		return s.db, nil
	}
	t, ok := txn.(*Txn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if t.beginErr != nil {
		return nil, t.beginErr
	}
	if t.finished {
		return nil, types.ErrTxnFinished
	}
	return t.db, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.ErrRecordNotFound
	}
	return err
}
