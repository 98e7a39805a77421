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
	"gorm.io/gorm"
)

func preloadSplits(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (s *Store) GetCertificate(
	addr []byte,
	txn types.Txn,
) (*models.Certificate, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	ret := &models.Certificate{}
	result := db.Preload("RoyaltySplits", preloadSplits).
		Where("address = ?", addr).
		First(ret)
	if result.Error != nil {
		return nil, notFound(result.Error)
	}
	return ret, nil
}

func (s *Store) ListCertificates(
	filter models.CertificateFilter,
	txn types.Txn,
) ([]models.Certificate, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	query := db.Preload("RoyaltySplits", preloadSplits).
		Order("registered_at, id")
	if len(filter.Authority) > 0 {
		query = query.Where("authority = ?", filter.Authority)
	}
	query = paginate(query, filter.Limit, filter.Offset)
	var ret []models.Certificate
	if result := query.Find(&ret); result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// SetCertificate inserts or replaces a certificate and its royalty splits
func (s *Store) SetCertificate(
	cert *models.Certificate,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	var existing models.Certificate
	result := db.Where("address = ?", cert.Address).Limit(1).Find(&existing)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return db.Create(cert).Error
	}
	cert.ID = existing.ID
	if result := db.Where("certificate_id = ?", existing.ID).Delete(&models.RoyaltySplit{}); result.Error != nil {
		return result.Error
	}
	for i := range cert.RoyaltySplits {
		cert.RoyaltySplits[i].ID = 0
		cert.RoyaltySplits[i].CertificateID = existing.ID
	}
	return db.Session(&gorm.Session{FullSaveAssociations: true}).Save(cert).Error
}

func paginate(query *gorm.DB, limit int, offset int) *gorm.DB {
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}
	return query
}
