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
	"errors"
	"fmt"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/database/types"
	"github.com/fxamacker/cbor/v2"
)

// Account is the stored envelope of an address-keyed record. Only the owner
// program may change Data after creation.
type Account struct {
	_     struct{} `cbor:",toarray"`
	Owner address.Address
	Payer address.Address
	Size  uint32
	Data  []byte
}

func decodeAccount(data []byte) (*Account, error) {
	ret := &Account{}
	if err := cbor.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}
	return ret, nil
}

func withTxn(d *Database, txn *Txn, readWrite bool, fn func(*Txn) error) error {
	if txn != nil {
		return fn(txn)
	}
	txn = d.Transaction(readWrite)
	if !readWrite {
		defer txn.Release()
		return fn(txn)
	}
	return txn.Do(fn)
}

// GetAccount returns the account stored at addr
func (d *Database) GetAccount(
	addr address.Address,
	txn *Txn,
) (*Account, error) {
	var ret *Account
	err := withTxn(d, txn, false, func(txn *Txn) error {
		data, err := d.blob.Get(txn.Blob(), types.AccountBlobKey(addr[:]))
		if err != nil {
			if errors.Is(err, types.ErrBlobKeyNotFound) {
				return fmt.Errorf("%w: %s", types.ErrAccountNotFound, addr)
			}
			return err
		}
		ret, err = decodeAccount(data)
		return err
	})
	return ret, err
}

// AccountExists reports whether any account is stored at addr
func (d *Database) AccountExists(addr address.Address, txn *Txn) (bool, error) {
	_, err := d.GetAccount(addr, txn)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateAccount stores a new account at addr. It fails with
// types.ErrAccountExists if anything is already stored there, which makes a
// derived address usable as a uniqueness guard.
func (d *Database) CreateAccount(
	addr address.Address,
	owner address.Address,
	payer address.Address,
	size uint32,
	data []byte,
	txn *Txn,
) error {
	if len(data) > int(size) {
		return fmt.Errorf(
			"%w: %d > %d",
			types.ErrAccountTooLarge,
			len(data),
			size,
		)
	}
	return withTxn(d, txn, true, func(txn *Txn) error {
		if err := txn.checkWritable(); err != nil {
			return err
		}
		key := types.AccountBlobKey(addr[:])
		// The read registers the key with badger's conflict detection so
		// concurrent creates of the same address cannot both commit
		_, err := d.blob.Get(txn.Blob(), key)
		if err == nil {
			return fmt.Errorf("%w: %s", types.ErrAccountExists, addr)
		}
		if !errors.Is(err, types.ErrBlobKeyNotFound) {
			return err
		}
		return d.putAccount(txn, key, &Account{
			Owner: owner,
			Payer: payer,
			Size:  size,
			Data:  data,
		})
	})
}

// UpdateAccount replaces the data of an existing account. The caller must be
// the stored owner.
func (d *Database) UpdateAccount(
	addr address.Address,
	owner address.Address,
	data []byte,
	txn *Txn,
) error {
	return withTxn(d, txn, true, func(txn *Txn) error {
		if err := txn.checkWritable(); err != nil {
			return err
		}
		acct, err := d.GetAccount(addr, txn)
		if err != nil {
			return err
		}
		if acct.Owner != owner {
			return fmt.Errorf(
				"%w: %s is owned by %s",
				types.ErrAccountOwnerMismatch,
				addr,
				acct.Owner,
			)
		}
		if len(data) > int(acct.Size) {
			return fmt.Errorf(
				"%w: %d > %d",
				types.ErrAccountTooLarge,
				len(data),
				acct.Size,
			)
		}
		acct.Data = data
		return d.putAccount(txn, types.AccountBlobKey(addr[:]), acct)
	})
}

func (d *Database) putAccount(txn *Txn, key []byte, acct *Account) error {
	encoded, err := cbor.Marshal(acct)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	return d.blob.Set(txn.Blob(), key, encoded)
}

// AccountsByOwner returns the addresses of all accounts owned by owner
func (d *Database) AccountsByOwner(
	owner address.Address,
	txn *Txn,
) ([]address.Address, error) {
	var ret []address.Address
	err := withTxn(d, txn, false, func(txn *Txn) error {
		prefix := []byte(types.AccountBlobKeyPrefix)
		iter := d.blob.NewIterator(
			txn.Blob(),
			types.BlobIteratorOptions{Prefix: prefix},
		)
		defer iter.Close()
		for iter.Rewind(); iter.ValidForPrefix(prefix); iter.Next() {
			item := iter.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			acct, err := decodeAccount(val)
			if err != nil {
				return err
			}
			if acct.Owner != owner {
				continue
			}
			addr, err := address.New(item.Key()[len(prefix):])
			if err != nil {
				return err
			}
			ret = append(ret, addr)
		}
		return iter.Err()
	})
	return ret, err
}
