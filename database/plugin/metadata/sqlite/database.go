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

package sqlite

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Abraham12611/creator-claim/database/plugin/metadata/internal/gormstore"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
)

// memoryDbCounter keeps each in-memory database private to its store
var memoryDbCounter atomic.Uint64

// MetadataStoreSqlite stores the query replica in sqlite
type MetadataStoreSqlite struct {
	*gormstore.Store
	promRegistry   prometheus.Registerer
	logger         *slog.Logger
	timerVacuum    *time.Timer
	dataDir        string
	busyTimeout    time.Duration
	vacuumInterval time.Duration
	timerMutex     sync.Mutex
	vacuumWG       sync.WaitGroup
	closed         bool
}

func NewWithOptions(opts ...SqliteOptionFunc) (*MetadataStoreSqlite, error) {
	db := &MetadataStoreSqlite{
		busyTimeout:    DefaultBusyTimeout,
		vacuumInterval: DefaultVacuumInterval,
	}
	for _, opt := range opts {
		opt(db)
	}
	if db.busyTimeout < 0 || db.vacuumInterval < 0 {
		return nil, errors.New("sqlite durations must not be negative")
	}
	return db, nil
}

// New creates and starts a sqlite metadata store. An empty data directory
// selects a private in-memory database.
func New(
	dataDir string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (*MetadataStoreSqlite, error) {
	db, err := NewWithOptions(
		WithDataDir(dataDir),
		WithLogger(logger),
		WithPromRegistry(promRegistry),
	)
	if err != nil {
		return nil, err
	}
	if err := db.Start(); err != nil {
		return nil, err
	}
	return db, nil
}

func (d *MetadataStoreSqlite) SetLogger(logger *slog.Logger) {
	d.logger = logger
}

func (d *MetadataStoreSqlite) SetPromRegistry(registry prometheus.Registerer) {
	d.promRegistry = registry
}

// dsn returns the connection string and pool size for the store
func (d *MetadataStoreSqlite) dsn() (string, gormstore.PoolConfig, error) {
	if d.dataDir == "" {
		// A shared-cache memory database locks whole tables, so a single
		// connection avoids SQLITE_LOCKED between the writer and readers
		return fmt.Sprintf(
			"file:creatorclaim-%d?mode=memory&cache=shared",
			memoryDbCounter.Add(1),
		), gormstore.PoolConfig{MaxOpenConns: 1}, nil
	}
	// Make sure that we can read data dir, and create if it doesn't exist
	if _, err := os.Stat(d.dataDir); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return "", gormstore.PoolConfig{}, fmt.Errorf("failed to read data dir: %w", err)
		}
		if err := os.MkdirAll(d.dataDir, fs.ModePerm); err != nil {
			return "", gormstore.PoolConfig{}, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	return fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)",
		filepath.Join(d.dataDir, "metadata.sqlite"),
		d.busyTimeout.Milliseconds(),
	), gormstore.PoolConfig{}, nil
}

func (d *MetadataStoreSqlite) Start() error {
	if d.Store != nil {
		return nil
	}
	if d.logger == nil {
		d.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	dsn, pool, err := d.dsn()
	if err != nil {
		return err
	}
	store, err := gormstore.Open(
		sqlite.Open(dsn),
		gormstore.OpenConfig{
			Logger:       d.logger,
			PromRegistry: d.promRegistry,
			Name:         "sqlite",
			Pool:         pool,
		},
	)
	if err != nil {
		return err
	}
	d.Store = store
	d.scheduleVacuum()
	return nil
}

func (d *MetadataStoreSqlite) runVacuum() error {
	d.timerMutex.Lock()
	if d.dataDir == "" || d.closed {
		d.timerMutex.Unlock()
		return nil
	}
	// Track this vacuum operation while we know the store is open
	d.vacuumWG.Add(1)
	d.timerMutex.Unlock()
	defer d.vacuumWG.Done()
	return d.DB().Exec("VACUUM").Error
}

func (d *MetadataStoreSqlite) scheduleVacuum() {
	d.timerMutex.Lock()
	defer d.timerMutex.Unlock()
	if d.closed || d.dataDir == "" || d.vacuumInterval == 0 {
		return
	}
	if d.timerVacuum != nil {
		d.timerVacuum.Stop()
	}
	f := func() {
		d.logger.Debug(
			"running vacuum on sqlite metadata database",
			"component", "database",
		)
		// schedule next run
		defer d.scheduleVacuum()
		if err := d.runVacuum(); err != nil {
			d.logger.Error(
				"failed to free unused space in metadata store",
				"component", "database",
				"error", err,
			)
		}
	}
	d.timerVacuum = time.AfterFunc(d.vacuumInterval, f)
}

func (d *MetadataStoreSqlite) Stop() error {
	return d.Close()
}

func (d *MetadataStoreSqlite) Close() error {
	d.timerMutex.Lock()
	if d.closed {
		d.timerMutex.Unlock()
		return nil
	}
	d.closed = true
	if d.timerVacuum != nil {
		d.timerVacuum.Stop()
		d.timerVacuum = nil
	}
	d.timerMutex.Unlock()
	// Wait for any in-flight vacuum operations to complete
	d.vacuumWG.Wait()
	if d.Store == nil {
		return nil
	}
	return d.Store.Close()
}
