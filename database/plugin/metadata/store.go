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

package metadata

import (
	"fmt"
	"log/slog"

	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/Abraham12611/creator-claim/database/plugin"
	"github.com/Abraham12611/creator-claim/database/types"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type MetadataStore interface {
	plugin.Plugin

	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction() types.Txn

	// Registry replica
	GetCertificate(
		[]byte, // address
		types.Txn,
	) (*models.Certificate, error)
	ListCertificates(
		models.CertificateFilter,
		types.Txn,
	) ([]models.Certificate, error)
	SetCertificate(*models.Certificate, types.Txn) error

	GetLicence(
		[]byte, // address
		types.Txn,
	) (*models.Licence, error)
	ListLicences(
		models.LicenceFilter,
		types.Txn,
	) ([]models.Licence, error)
	SetLicence(*models.Licence, types.Txn) error

	GetTokenAccount(
		[]byte, // address
		types.Txn,
	) (*models.TokenAccount, error)
	ListTokenAccounts(
		[]byte, // owner
		types.Txn,
	) ([]models.TokenAccount, error)
	SetTokenAccount(*models.TokenAccount, types.Txn) error

	AddTransaction(*models.TransactionRecord, types.Txn) error
	GetTransaction(
		[]byte, // hash
		types.Txn,
	) (*models.TransactionRecord, error)
}

// New returns the started metadata plugin selected by name
func New(
	pluginName string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	p, err := plugin.NewStartedPlugin(
		plugin.PluginTypeMetadata,
		pluginName,
		logger,
		promRegistry,
	)
	if err != nil {
		return nil, err
	}
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}
	return metadataStore, nil
}
