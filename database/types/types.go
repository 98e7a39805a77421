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

package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
)

//nolint:recvcheck
type Uint64 uint64

func (u Uint64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(u), 10), nil
}

func (u *Uint64) Scan(val any) error {
	switch v := val.(type) {
	case string:
		tmpUint, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		*u = Uint64(tmpUint)
	case []byte:
		tmpUint, err := strconv.ParseUint(string(v), 10, 64)
		if err != nil {
			return err
		}
		*u = Uint64(tmpUint)
	case int64:
		// Numeric column affinity (sqlite) hands back integers
		if v < 0 {
			return fmt.Errorf("negative value %d for Uint64", v)
		}
		*u = Uint64(v)
	default:
		return fmt.Errorf(
			"value was not expected type, wanted string, got %T",
			val,
		)
	}
	return nil
}

// ErrBlobKeyNotFound is returned by blob operations when a key is missing
var ErrBlobKeyNotFound = errors.New("blob key not found")

// ErrTxnWrongType is returned when a transaction has the wrong type
var ErrTxnWrongType = errors.New("invalid transaction type")

// ErrNilTxn is returned when a nil transaction is provided where a valid transaction is required
var ErrNilTxn = errors.New("nil transaction")

// ErrTxnFinished is returned when a committed or rolled back transaction is reused
var ErrTxnFinished = errors.New("transaction already finished")

// ErrNoStoreAvailable is returned when no store is available for a read-write transaction
var ErrNoStoreAvailable = errors.New("no store available")

// ErrBlobStoreUnavailable is returned when the blob store cannot be accessed
var ErrBlobStoreUnavailable = errors.New("blob store unavailable")

// ErrConflict is returned when a transaction commit collides with a
// concurrent write to the same key
var ErrConflict = errors.New("transaction conflict")

// ErrRecordNotFound is returned by metadata lookups with no matching row
var ErrRecordNotFound = errors.New("record not found")

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountExists        = errors.New("account already exists")
	ErrAccountOwnerMismatch = errors.New("account is not owned by caller")
	ErrAccountTooLarge      = errors.New("account data exceeds allocated size")
)

// BlobItem represents a key-value item from blob storage iteration
type BlobItem interface {
	Key() []byte
	ValueCopy(dst []byte) ([]byte, error)
}

// BlobIterator provides iteration over blob storage keys
type BlobIterator interface {
	Rewind()
	Seek(prefix []byte)
	Valid() bool
	ValidForPrefix(prefix []byte) bool
	Next()
	Item() BlobItem
	Close()
	Err() error
}

type BlobIteratorOptions struct {
	Prefix  []byte
	Reverse bool
}

// Txn is a store transaction
type Txn interface {
	Commit() error
	Rollback() error
}
