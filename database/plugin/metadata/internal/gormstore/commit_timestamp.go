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
	"time"

	"github.com/Abraham12611/creator-claim/database/types"
	"gorm.io/gorm/clause"
)

// The table holds a single row
const commitTimestampRowID = 1

// CommitTimestamp records the timestamp of the last commit shared with the
// blob store
type CommitTimestamp struct {
	ID        uint  `gorm:"primarykey;autoIncrement:false"`
	Timestamp int64 `gorm:"not null"`
	UpdatedAt time.Time
}

func (CommitTimestamp) TableName() string {
	return "commit_timestamp"
}

// GetCommitTimestamp returns zero for a replica that was never committed to
func (s *Store) GetCommitTimestamp() (int64, error) {
	var rows []CommitTimestamp
	if err := s.db.Where("id = ?", commitTimestampRowID).Limit(1).Find(&rows).Error; err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Timestamp, nil
}

func (s *Store) SetCommitTimestamp(timestamp int64, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	row := CommitTimestamp{ID: commitTimestampRowID, Timestamp: timestamp}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"timestamp", "updated_at"}),
	}).Create(&row).Error
}
