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

func (s *Store) GetLicence(
	addr []byte,
	txn types.Txn,
) (*models.Licence, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Licence{}
	if result := db.Where("address = ?", addr).First(ret); result.Error != nil {
		return nil, notFound(result.Error)
	}
	return ret, nil
}

func (s *Store) ListLicences(
	filter models.LicenceFilter,
	txn types.Txn,
) ([]models.Licence, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Order("purchased_at, id")
	if len(filter.Certificate) > 0 {
		query = query.Where("certificate = ?", filter.Certificate)
	}
	if len(filter.Buyer) > 0 {
		query = query.Where("buyer = ?", filter.Buyer)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ExpiredAsOf > 0 {
		query = query.Where(
			"expires_at IS NOT NULL AND expires_at < ?",
			filter.ExpiredAsOf,
		)
	}
	if filter.UnexpiredAsOf > 0 {
		query = query.Where(
			"(expires_at IS NULL OR expires_at >= ?)",
			filter.UnexpiredAsOf,
		)
	}
	query = paginate(query, filter.Limit, filter.Offset)
	var ret []models.Licence
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetLicence inserts a licence or updates it in place by address
func (s *Store) SetLicence(lic *models.Licence, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		UpdateAll: true,
	}).Create(lic)
	return result.Error
}
