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

package database

import (
	"fmt"
	"time"
)

// CommitTimestampError reports that the blob and metadata stores were last
// committed at different times
type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"%s store is behind: commit timestamp %d (metadata) != %d (blob)",
		e.Lagging(),
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

// Lagging names the store holding the older commit
func (e CommitTimestampError) Lagging() string {
	if e.MetadataTimestamp < e.BlobTimestamp {
		return "metadata"
	}
	return "blob"
}

// CommitTime returns the time of the last commit seen by the blob store, or
// the zero time for an empty database
func (d *Database) CommitTime() (time.Time, error) {
	ts, err := d.blob.GetCommitTimestamp()
	if err != nil {
		return time.Time{}, fmt.Errorf("read blob commit timestamp: %w", err)
	}
	if ts <= 0 {
		return time.Time{}, nil
	}
	return time.Unix(0, ts), nil
}

func (d *Database) checkCommitTimestamp() error {
	var stamps [2]int64
	for i, src := range []struct {
		name string
		get  func() (int64, error)
	}{
		{"metadata", d.metadata.GetCommitTimestamp},
		{"blob", d.blob.GetCommitTimestamp},
	} {
		ts, err := src.get()
		if err != nil {
			return fmt.Errorf("read %s commit timestamp: %w", src.name, err)
		}
		// A replica that has never been written is accepted as is
		if i == 0 && ts <= 0 {
			return nil
		}
		stamps[i] = ts
	}
	if stamps[0] != stamps[1] {
		return CommitTimestampError{
			MetadataTimestamp: stamps[0],
			BlobTimestamp:     stamps[1],
		}
	}
	return nil
}

// updateCommitTimestamp stamps both halves of txn with the same time
func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	if err := d.metadata.SetCommitTimestamp(timestamp, txn.Metadata()); err != nil {
		return fmt.Errorf("stamp metadata commit: %w", err)
	}
	if err := d.blob.SetCommitTimestamp(timestamp, txn.Blob()); err != nil {
		return fmt.Errorf("stamp blob commit: %w", err)
	}
	return nil
}
