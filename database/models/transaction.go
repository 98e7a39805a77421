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

// TransactionRecord is a log entry for each committed transaction
type TransactionRecord struct {
	Hash         []byte `gorm:"uniqueIndex;size:32"`
	Payer        []byte `gorm:"index;size:32"`
	EventTypes   string
	ID           uint  `gorm:"primarykey"`
	Timestamp    int64 `gorm:"index"`
	Instructions uint
}

func (TransactionRecord) TableName() string {
	return "transaction"
}
