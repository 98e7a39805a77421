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

type TokenAccount struct {
	Address   []byte `gorm:"uniqueIndex;size:32"`
	Owner     []byte `gorm:"index;size:32"`
	Mint      []byte `gorm:"size:32"`
	ID        uint   `gorm:"primarykey"`
	Balance   types.Uint64
	UpdatedAt int64
}

func (TokenAccount) TableName() string {
	return "token_account"
}
