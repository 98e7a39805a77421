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

package models

import (
	"github.com/Abraham12611/creator-claim/database/types"
)

const (
	LicenceStatusActive  = "active"
	LicenceStatusRevoked = "revoked"
)

// Licence is the query replica of a licence account. Expiry is not a stored
// status; callers compare ExpiresAt against their own clock.
type Licence struct {
	Address     []byte `gorm:"uniqueIndex;size:32"`
	Certificate []byte `gorm:"index;size:32"`
	Buyer       []byte `gorm:"index;size:32"`
	RevokedBy   []byte `gorm:"size:32"`
	TxId        []byte `gorm:"size:32"`
	ExpiresAt   *int64
	Status      string `gorm:"index;size:16"`
	ID          uint   `gorm:"primarykey"`
	Price       types.Uint64
	PurchasedAt int64 `gorm:"index"`
	UpdatedAt   int64
}

func (Licence) TableName() string {
	return "licence"
}

// LicenceFilter narrows licence listings. Zero values match everything.
type LicenceFilter struct {
	Certificate []byte
	Buyer       []byte
	Status      string
	// ExpiredAsOf matches licences whose expiry is before the given unix time
	ExpiredAsOf int64
	// UnexpiredAsOf matches licences without expiry or expiring at or after
	// the given unix time
	UnexpiredAsOf int64
	Limit         int
	Offset        int
}
