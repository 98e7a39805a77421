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

package badger

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Abraham12611/creator-claim/database/types"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/prometheus/client_golang/prometheus"
)

var errForeignTxn = errors.New("transaction from different store")

type badgerTxn struct {
	store    *BlobStoreBadger
	tx       *badger.Txn
	finished bool
}

func (d *BlobStoreBadger) validateTxn(txn types.Txn) (*badgerTxn, error) {
	if txn == nil {
		return nil, types.ErrNilTxn
	}
	bTxn, ok := txn.(*badgerTxn)
	if !ok {
		return nil, types.ErrTxnWrongType
	}
	if bTxn.store != d {
		return nil, errForeignTxn
	}
	if bTxn.finished {
		return nil, types.ErrTxnFinished
	}
	if bTxn.tx == nil {
		return nil, types.ErrBlobStoreUnavailable
	}
	return bTxn, nil
}

func (t *badgerTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if t.tx == nil {
		return nil
	}
	if err := t.tx.Commit(); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			return fmt.Errorf("%w: %w", types.ErrConflict, err)
		}
		return err
	}
	return nil
}

func (t *badgerTxn) Rollback() error {
	if t.finished {
		return nil
	}
	if t.tx != nil {
		t.tx.Discard()
	}
	t.finished = true
	return nil
}

type badgerIterator struct {
	iter *badger.Iterator
}

func (it *badgerIterator) Rewind()                      { it.iter.Rewind() }
func (it *badgerIterator) Seek(prefix []byte)           { it.iter.Seek(prefix) }
func (it *badgerIterator) Valid() bool                  { return it.iter.Valid() }
func (it *badgerIterator) ValidForPrefix(p []byte) bool { return it.iter.ValidForPrefix(p) }
func (it *badgerIterator) Next()                        { it.iter.Next() }
func (it *badgerIterator) Item() types.BlobItem         { return &badgerItem{item: it.iter.Item()} }
func (it *badgerIterator) Close()                       { it.iter.Close() }
func (it *badgerIterator) Err() error                   { return nil }

type errorIterator struct {
	err error
}

func (it *errorIterator) Rewind()                      {}
func (it *errorIterator) Seek(prefix []byte)           {}
func (it *errorIterator) Valid() bool                  { return false }
func (it *errorIterator) ValidForPrefix(p []byte) bool { return false }
func (it *errorIterator) Next()                        {}
func (it *errorIterator) Item() types.BlobItem         { return nil }
func (it *errorIterator) Close()                       {}
func (it *errorIterator) Err() error                   { return it.err }

type badgerItem struct {
	item *badger.Item
}

func (i *badgerItem) Key() []byte {
	return i.item.KeyCopy(nil)
}

func (i *badgerItem) ValueCopy(dst []byte) ([]byte, error) {
	return i.item.ValueCopy(dst)
}

// BlobStoreBadger stores account records in badger. An empty data directory
// selects an in-memory database.
type BlobStoreBadger struct {
	PromRegistry     prometheus.Registerer
	Logger           *slog.Logger
	db               *badger.DB
	gcTicker         *time.Ticker
	gcStopCh         chan struct{}
	DataDir          string
	gcWg             sync.WaitGroup
	BlockCacheSize   uint64
	IndexCacheSize   uint64
	ValueLogFileSize int64
	MemTableSize     int64
	ValueThreshold   int64
	GcInterval       time.Duration
	GcDiscardRatio   float64
	GcEnabled        bool
	SyncWrites       bool
}

func New(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	db := &BlobStoreBadger{
		GcEnabled:        true,
		BlockCacheSize:   DefaultBlockCacheSize,
		IndexCacheSize:   DefaultIndexCacheSize,
		ValueLogFileSize: DefaultValueLogFileSize,
		MemTableSize:     DefaultMemTableSize,
		ValueThreshold:   DefaultValueThreshold,
		GcInterval:       DefaultGcInterval,
		GcDiscardRatio:   DefaultGcDiscardRatio,
		SyncWrites:       true,
	}
	for _, opt := range opts {
		opt(db)
	}
	switch {
	case db.BlockCacheSize > 1<<40 || db.IndexCacheSize > 1<<40:
		return nil, errors.New("badger cache size out of range")
	case db.GcEnabled && db.GcInterval <= 0:
		return nil, errors.New("badger GC interval must be positive")
	case db.GcDiscardRatio <= 0 || db.GcDiscardRatio >= 1:
		return nil, fmt.Errorf("badger GC discard ratio %v not in (0, 1)", db.GcDiscardRatio)
	}
	return db, nil
}

// Open is a convenience wrapper around New and Start
func Open(opts ...BlobStoreBadgerOptionFunc) (*BlobStoreBadger, error) {
	db, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := db.Start(); err != nil {
		return nil, err
	}
	return db, nil
}

func (d *BlobStoreBadger) SetLogger(logger *slog.Logger) {
	d.Logger = logger
}

func (d *BlobStoreBadger) SetPromRegistry(registry prometheus.Registerer) {
	d.PromRegistry = registry
}

func (d *BlobStoreBadger) Start() error {
	if d.db != nil {
		return nil
	}
	if d.Logger == nil {
		// Create logger to throw away logs
		// We do this so we don't have to add guards around every log operation
		d.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	var badgerOpts badger.Options
	if d.DataDir == "" {
		badgerOpts = badger.DefaultOptions("").
			WithInMemory(true)
	} else {
		// Make sure that we can read data dir, and create if it doesn't exist
		if _, err := os.Stat(d.DataDir); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to read data dir: %w", err)
			}
			if err := os.MkdirAll(d.DataDir, 0o755); err != nil {
				return fmt.Errorf("failed to create data dir: %w", err)
			}
		}
		badgerOpts = badger.DefaultOptions(filepath.Join(d.DataDir, "blob")).
			WithBlockCacheSize(int64(d.BlockCacheSize)). //nolint:gosec // bounded in New
			WithIndexCacheSize(int64(d.IndexCacheSize)). //nolint:gosec // bounded in New
			WithValueLogFileSize(d.ValueLogFileSize).
			WithMemTableSize(d.MemTableSize).
			WithSyncWrites(d.SyncWrites).
			WithCompression(options.Snappy)
	}
	badgerOpts = badgerOpts.
		WithLogger(NewBadgerLogger(d.Logger)).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING).
		WithValueThreshold(d.ValueThreshold)
	blobDb, err := badger.Open(badgerOpts)
	if err != nil {
		return err
	}
	d.db = blobDb
	if d.PromRegistry != nil {
		d.registerBlobMetrics()
	}
	// GC only matters for on-disk value logs
	if d.GcEnabled && d.DataDir != "" {
		d.gcTicker = time.NewTicker(d.GcInterval)
		d.gcStopCh = make(chan struct{})
		d.gcWg.Add(1)
		go d.blobGc(d.gcTicker, d.gcStopCh)
	}
	return nil
}

func (d *BlobStoreBadger) blobGc(t *time.Ticker, stop <-chan struct{}) {
	defer d.gcWg.Done()
	for {
		select {
		case <-t.C:
			rewrites, err := d.runValueLogGC()
			if err != nil {
				d.Logger.Warn(
					"blob value log GC failed",
					"component", "database",
					"error", err,
				)
			} else if rewrites > 0 {
				d.Logger.Debug(
					"blob value log GC rewrote files",
					"component", "database",
					"files", rewrites,
				)
			}
		case <-stop:
			return
		}
	}
}

// runValueLogGC rewrites value log files until badger finds nothing left to
// reclaim and returns the number of rewritten files
func (d *BlobStoreBadger) runValueLogGC() (int, error) {
	rewrites := 0
	for {
		err := d.db.RunValueLogGC(d.GcDiscardRatio)
		switch {
		case err == nil:
			rewrites++
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrRejected):
			return rewrites, nil
		default:
			return rewrites, err
		}
	}
}

func (d *BlobStoreBadger) Stop() error {
	return d.Close()
}

func (d *BlobStoreBadger) Close() error {
	if d.gcTicker != nil {
		d.gcTicker.Stop()
		close(d.gcStopCh)
		d.gcWg.Wait()
		d.gcTicker = nil
		d.gcStopCh = nil
	}
	if d.db == nil {
		return nil
	}
	err := d.db.Close()
	d.db = nil
	return err
}

func (d *BlobStoreBadger) DB() *badger.DB {
	return d.db
}

func (d *BlobStoreBadger) NewTransaction(update bool) types.Txn {
	if d.db == nil {
		return &badgerTxn{store: d}
	}
	return &badgerTxn{store: d, tx: d.db.NewTransaction(update)}
}

func (d *BlobStoreBadger) Get(txn types.Txn, key []byte) ([]byte, error) {
	bTxn, err := d.validateTxn(txn)
	if err != nil {
		return nil, err
	}
	item, err := bTxn.tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, types.ErrBlobKeyNotFound
		}
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (d *BlobStoreBadger) Set(txn types.Txn, key, val []byte) error {
	bTxn, err := d.validateTxn(txn)
	if err != nil {
		return err
	}
	return bTxn.tx.Set(key, val)
}

func (d *BlobStoreBadger) Delete(txn types.Txn, key []byte) error {
	bTxn, err := d.validateTxn(txn)
	if err != nil {
		return err
	}
	return bTxn.tx.Delete(key)
}

// NewIterator returns an iterator over the transaction's view. The caller
// must Close it before the transaction finishes.
func (d *BlobStoreBadger) NewIterator(
	txn types.Txn,
	opts types.BlobIteratorOptions,
) types.BlobIterator {
	bTxn, err := d.validateTxn(txn)
	if err != nil {
		return &errorIterator{err: err}
	}
	iterOpts := badger.DefaultIteratorOptions
	iterOpts.Prefix = opts.Prefix
	iterOpts.Reverse = opts.Reverse
	return &badgerIterator{iter: bTxn.tx.NewIterator(iterOpts)}
}
