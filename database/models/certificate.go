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

// Certificate is the query replica of a certificate details account
type Certificate struct {
	Address           []byte         `gorm:"uniqueIndex;size:32"`
	Asset             []byte         `gorm:"uniqueIndex;size:32"`
	Authority         []byte         `gorm:"index;size:32"`
	MetadataUriHash   []byte         `gorm:"size:32"`
	TxId              []byte         `gorm:"size:32"`
	RoyaltySplits     []RoyaltySplit `gorm:"foreignKey:CertificateID;constraint:OnDelete:CASCADE"`
	ID                uint           `gorm:"primarykey"`
	Price             types.Uint64
	RegisteredAt      int64 `gorm:"index"`
	LicenceTemplateId uint16
}

func (Certificate) TableName() string {
	return "certificate"
}

type RoyaltySplit struct {
	Recipient     []byte `gorm:"index;size:32"`
	ID            uint   `gorm:"primarykey"`
	CertificateID uint   `gorm:"index"`
	Position      uint8
	ShareBps      uint16
}

func (RoyaltySplit) TableName() string {
	return "royalty_split"
}

// CertificateFilter narrows certificate listings. Zero values match everything.
type CertificateFilter struct {
	Authority []byte
	Limit     int
	Offset    int
}
