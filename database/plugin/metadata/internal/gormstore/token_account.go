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
	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/Abraham12611/creator-claim/database/types"
	"gorm.io/gorm/clause"
)

func (s *Store) GetTokenAccount(
	addr []byte,
	txn types.Txn,
) (*models.TokenAccount, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.TokenAccount{}
	if result := db.Where("address = ?", addr).First(ret); result.Error != nil {
		return nil, notFound(result.Error)
	}
	return ret, nil
}

func (s *Store) ListTokenAccounts(
	owner []byte,
	txn types.Txn,
) ([]models.TokenAccount, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.TokenAccount
	result := db.Where("owner = ?", owner).Order("id").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) SetTokenAccount(
	acct *models.TokenAccount,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		UpdateAll: true,
	}).Create(acct)
	return result.Error
}
