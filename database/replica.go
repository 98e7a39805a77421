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
	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/Abraham12611/creator-claim/database/types"
)

// metadataTxn returns the metadata handle for txn, or nil to use the base
// connection
func metadataTxn(txn *Txn) types.Txn {
	if txn == nil {
		return nil
	}
	return txn.Metadata()
}

func (d *Database) SetCertificateRecord(cert *models.Certificate, txn *Txn) error {
	if err := txn.checkWritable(); err != nil {
		return err
	}
	return d.metadata.SetCertificate(cert, txn.Metadata())
}

func (d *Database) GetCertificateRecord(addr []byte, txn *Txn) (*models.Certificate, error) {
	return d.metadata.GetCertificate(addr, metadataTxn(txn))
}

func (d *Database) ListCertificateRecords(
	filter models.CertificateFilter,
	txn *Txn,
) ([]models.Certificate, error) {
	return d.metadata.ListCertificates(filter, metadataTxn(txn))
}

func (d *Database) SetLicenceRecord(lic *models.Licence, txn *Txn) error {
	if err := txn.checkWritable(); err != nil {
		return err
	}
	return d.metadata.SetLicence(lic, txn.Metadata())
}

func (d *Database) GetLicenceRecord(addr []byte, txn *Txn) (*models.Licence, error) {
	return d.metadata.GetLicence(addr, metadataTxn(txn))
}

func (d *Database) ListLicenceRecords(
	filter models.LicenceFilter,
	txn *Txn,
) ([]models.Licence, error) {
	return d.metadata.ListLicences(filter, metadataTxn(txn))
}

func (d *Database) SetTokenAccountRecord(acct *models.TokenAccount, txn *Txn) error {
	if err := txn.checkWritable(); err != nil {
		return err
	}
	return d.metadata.SetTokenAccount(acct, txn.Metadata())
}

func (d *Database) GetTokenAccountRecord(addr []byte, txn *Txn) (*models.TokenAccount, error) {
	return d.metadata.GetTokenAccount(addr, metadataTxn(txn))
}

func (d *Database) ListTokenAccountRecords(
	owner []byte,
	txn *Txn,
) ([]models.TokenAccount, error) {
	return d.metadata.ListTokenAccounts(owner, metadataTxn(txn))
}

func (d *Database) AddTransactionRecord(rec *models.TransactionRecord, txn *Txn) error {
	if err := txn.checkWritable(); err != nil {
		return err
	}
	return d.metadata.AddTransaction(rec, txn.Metadata())
}

func (d *Database) GetTransactionRecord(hash []byte, txn *Txn) (*models.TransactionRecord, error) {
	return d.metadata.GetTransaction(hash, metadataTxn(txn))
}
