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

package database_test

import (
	"testing"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/Abraham12611/creator-claim/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testOwner = address.ProgramID("test_program")
	testPayer = address.ProgramID("test_payer")
)

func newTestDatabase(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.New(&database.Config{
		PromRegistry: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestInMemoryDatabase(t *testing.T) {
	db := newTestDatabase(t)
	assert.Empty(t, db.DataDir())
	assert.NotNil(t, db.Blob())
	assert.NotNil(t, db.Metadata())
	commitTime, err := db.CommitTime()
	require.NoError(t, err)
	assert.True(t, commitTime.IsZero())
}

func TestCreateAccountIsInsertIfAbsent(t *testing.T) {
	db := newTestDatabase(t)
	addr := address.ProgramID("account")
	require.NoError(t, db.CreateAccount(addr, testOwner, testPayer, 16, []byte("first"), nil))
	err := db.CreateAccount(addr, testOwner, testPayer, 16, []byte("second"), nil)
	require.ErrorIs(t, err, types.ErrAccountExists)

	acct, err := db.GetAccount(addr, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), acct.Data)
	assert.Equal(t, testOwner, acct.Owner)
	assert.Equal(t, testPayer, acct.Payer)
	assert.Equal(t, uint32(16), acct.Size)
}

func TestCreateAccountTooLarge(t *testing.T) {
	db := newTestDatabase(t)
	err := db.CreateAccount(
		address.ProgramID("account"),
		testOwner,
		testPayer,
		2,
		[]byte("too long"),
		nil,
	)
	require.ErrorIs(t, err, types.ErrAccountTooLarge)
}

func TestUpdateAccountRequiresOwner(t *testing.T) {
	db := newTestDatabase(t)
	addr := address.ProgramID("account")
	require.NoError(t, db.CreateAccount(addr, testOwner, testPayer, 8, []byte("a"), nil))

	err := db.UpdateAccount(addr, address.ProgramID("intruder"), []byte("b"), nil)
	require.ErrorIs(t, err, types.ErrAccountOwnerMismatch)
	err = db.UpdateAccount(addr, testOwner, []byte("much too long"), nil)
	require.ErrorIs(t, err, types.ErrAccountTooLarge)
	err = db.UpdateAccount(address.ProgramID("missing"), testOwner, []byte("b"), nil)
	require.ErrorIs(t, err, types.ErrAccountNotFound)

	require.NoError(t, db.UpdateAccount(addr, testOwner, []byte("b"), nil))
	acct, err := db.GetAccount(addr, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), acct.Data)
}

func TestReadOnlyTxnRejectsWrites(t *testing.T) {
	db := newTestDatabase(t)
	txn := db.Transaction(false)
	defer txn.Release()
	err := db.CreateAccount(address.ProgramID("account"), testOwner, testPayer, 8, nil, txn)
	require.ErrorIs(t, err, database.ErrReadOnlyTxn)
}

func TestRollbackDiscardsBlobAndMetadata(t *testing.T) {
	db := newTestDatabase(t)
	addr := address.ProgramID("account")
	txn := db.Transaction(true)
	require.NoError(t, db.CreateAccount(addr, testOwner, testPayer, 8, []byte("x"), txn))
	require.NoError(t, db.SetLicenceRecord(&models.Licence{
		Address: addr.Bytes(),
		Status:  models.LicenceStatusActive,
	}, txn))
	require.NoError(t, txn.Rollback())

	exists, err := db.AccountExists(addr, nil)
	require.NoError(t, err)
	assert.False(t, exists)
	_, err = db.GetLicenceRecord(addr.Bytes(), nil)
	require.ErrorIs(t, err, types.ErrRecordNotFound)

	// Finished transactions cannot be committed
	require.ErrorIs(t, txn.Commit(), types.ErrTxnFinished)
}

func TestCommitPersistsBlobAndMetadata(t *testing.T) {
	db := newTestDatabase(t)
	addr := address.ProgramID("account")
	err := db.Transaction(true).Do(func(txn *database.Txn) error {
		if err := db.CreateAccount(addr, testOwner, testPayer, 8, []byte("x"), txn); err != nil {
			return err
		}
		return db.SetTokenAccountRecord(&models.TokenAccount{
			Address: addr.Bytes(),
			Owner:   testPayer.Bytes(),
			Mint:    testOwner.Bytes(),
			Balance: 42,
		}, txn)
	})
	require.NoError(t, err)

	exists, err := db.AccountExists(addr, nil)
	require.NoError(t, err)
	assert.True(t, exists)
	accts, err := db.ListTokenAccountRecords(testPayer.Bytes(), nil)
	require.NoError(t, err)
	require.Len(t, accts, 1)
	assert.Equal(t, types.Uint64(42), accts[0].Balance)

	// Both stores carry the same commit timestamp
	blobTs, err := db.Blob().GetCommitTimestamp()
	require.NoError(t, err)
	metadataTs, err := db.Metadata().GetCommitTimestamp()
	require.NoError(t, err)
	assert.Positive(t, blobTs)
	assert.Equal(t, blobTs, metadataTs)
	commitTime, err := db.CommitTime()
	require.NoError(t, err)
	assert.Equal(t, blobTs, commitTime.UnixNano())
}

func TestCommitTimestampError(t *testing.T) {
	err := database.CommitTimestampError{MetadataTimestamp: 10, BlobTimestamp: 20}
	assert.Equal(t, "metadata", err.Lagging())
	assert.Contains(t, err.Error(), "metadata store is behind")
	err = database.CommitTimestampError{MetadataTimestamp: 20, BlobTimestamp: 10}
	assert.Equal(t, "blob", err.Lagging())
}

func TestConcurrentCreatesConflict(t *testing.T) {
	db := newTestDatabase(t)
	addr := address.ProgramID("account")
	txn1 := db.Blob().NewTransaction(true)
	txn2 := db.Blob().NewTransaction(true)
	key := types.AccountBlobKey(addr[:])
	for _, txn := range []types.Txn{txn1, txn2} {
		_, err := db.Blob().Get(txn, key)
		require.ErrorIs(t, err, types.ErrBlobKeyNotFound)
		require.NoError(t, db.Blob().Set(txn, key, []byte("v")))
	}
	require.NoError(t, txn1.Commit())
	require.ErrorIs(t, txn2.Commit(), types.ErrConflict)
}

func TestAccountsByOwner(t *testing.T) {
	db := newTestDatabase(t)
	other := address.ProgramID("other_program")
	owned := []address.Address{
		address.ProgramID("a1"),
		address.ProgramID("a2"),
	}
	for _, addr := range owned {
		require.NoError(t, db.CreateAccount(addr, testOwner, testPayer, 4, nil, nil))
	}
	require.NoError(t, db.CreateAccount(address.ProgramID("a3"), other, testPayer, 4, nil, nil))

	got, err := db.AccountsByOwner(testOwner, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, owned, got)
}
