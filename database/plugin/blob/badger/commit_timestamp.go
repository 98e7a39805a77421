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
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Abraham12611/creator-claim/database/types"
)

// commitTimestampKey sits outside the account key space
var commitTimestampKey = []byte("metadata_commit_timestamp")

// GetCommitTimestamp returns the last commit timestamp stamped into the
// store, or zero for a store that has never been committed to
func (b *BlobStoreBadger) GetCommitTimestamp() (int64, error) {
	txn := b.NewTransaction(false)
	defer txn.Rollback() //nolint:errcheck
	val, err := b.Get(txn, commitTimestampKey)
	switch {
	case errors.Is(err, types.ErrBlobKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, err
	case len(val) != 8:
		return 0, fmt.Errorf("malformed commit timestamp: %d bytes", len(val))
	}
	//nolint:gosec
	return int64(binary.BigEndian.Uint64(val)), nil
}

func (b *BlobStoreBadger) SetCommitTimestamp(
	timestamp int64,
	txn types.Txn,
) error {
	if txn == nil {
		return types.ErrNilTxn
	}
	//nolint:gosec
	return b.Set(txn, commitTimestampKey, binary.BigEndian.AppendUint64(nil, uint64(timestamp)))
}
