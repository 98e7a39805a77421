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

// Package indexer maintains the queryable replica of registry accounts. It
// runs as a runtime commit hook, so replica rows commit in the same database
// transaction as the accounts they mirror.
package indexer

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/certificate"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/Abraham12611/creator-claim/database/types"
	"github.com/Abraham12611/creator-claim/licence"
	"github.com/Abraham12611/creator-claim/payment"
	"github.com/Abraham12611/creator-claim/runtime"
)

type Indexer struct {
	db     *database.Database
	logger *slog.Logger
}

func New(db *database.Database, logger *slog.Logger) *Indexer {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Indexer{
		db:     db,
		logger: logger.With("component", "indexer"),
	}
}

// OnCommit implements runtime.CommitHook
func (i *Indexer) OnCommit(txn *database.Txn, receipt *runtime.Receipt) error {
	eventTypes := make([]string, 0, len(receipt.Events))
	for _, evt := range receipt.Events {
		eventTypes = append(eventTypes, string(evt.Type))
		var err error
		switch data := evt.Data.(type) {
		case certificate.CertificateRegistered:
			err = i.indexCertificate(txn, receipt, data)
		case licence.LicencePurchased:
			err = i.indexPurchase(txn, receipt, data)
		case licence.LicenceRevoked:
			err = i.indexRevocation(txn, receipt, data)
		}
		if err != nil {
			return fmt.Errorf("index %s: %w", evt.Type, err)
		}
	}
	for _, addr := range receipt.Touched {
		if err := i.indexTokenAccount(txn, receipt, addr); err != nil {
			return fmt.Errorf("index token account %s: %w", addr, err)
		}
	}
	err := i.db.AddTransactionRecord(&models.TransactionRecord{
		Hash:         receipt.ID[:],
		Payer:        receipt.Payer.Bytes(),
		EventTypes:   strings.Join(eventTypes, ","),
		Timestamp:    receipt.Timestamp.Unix(),
		Instructions: uint(receipt.Instructions), //nolint:gosec
	}, txn)
	if err != nil {
		return err
	}
	i.logger.Debug(
		"indexed transaction",
		"tx", receipt.ID.String(),
		"events", len(receipt.Events),
		"accounts", len(receipt.Touched),
	)
	return nil
}

func (i *Indexer) indexCertificate(
	txn *database.Txn,
	receipt *runtime.Receipt,
	evt certificate.CertificateRegistered,
) error {
	acct, err := i.db.GetAccount(evt.Certificate, txn)
	if err != nil {
		return err
	}
	details, err := certificate.Decode(acct)
	if err != nil {
		return err
	}
	record := &models.Certificate{
		Address:           evt.Certificate.Bytes(),
		Asset:             evt.Asset.Bytes(),
		Authority:         details.Authority.Bytes(),
		MetadataUriHash:   details.MetadataURIHash[:],
		TxId:              receipt.ID[:],
		Price:             types.Uint64(details.Price),
		RegisteredAt:      receipt.Timestamp.Unix(),
		LicenceTemplateId: details.LicenceTemplateID,
	}
	for idx, split := range details.RoyaltySplits {
		record.RoyaltySplits = append(record.RoyaltySplits, models.RoyaltySplit{
			Recipient: split.Beneficiary.Bytes(),
			Position:  uint8(idx), //nolint:gosec
			ShareBps:  split.ShareBps,
		})
	}
	return i.db.SetCertificateRecord(record, txn)
}

func (i *Indexer) readLicence(
	txn *database.Txn,
	addr address.Address,
) (*licence.Licence, error) {
	acct, err := i.db.GetAccount(addr, txn)
	if err != nil {
		return nil, err
	}
	return licence.Decode(acct)
}

func (i *Indexer) indexPurchase(
	txn *database.Txn,
	receipt *runtime.Receipt,
	evt licence.LicencePurchased,
) error {
	lic, err := i.readLicence(txn, evt.Licence)
	if err != nil {
		return err
	}
	return i.db.SetLicenceRecord(&models.Licence{
		Address:     evt.Licence.Bytes(),
		Certificate: lic.CertificateDetails.Bytes(),
		Buyer:       lic.Buyer.Bytes(),
		TxId:        receipt.ID[:],
		ExpiresAt:   lic.ExpiryTimestamp,
		Status:      models.LicenceStatusActive,
		Price:       types.Uint64(lic.PurchasePrice),
		PurchasedAt: lic.PurchaseTimestamp,
		UpdatedAt:   receipt.Timestamp.Unix(),
	}, txn)
}

func (i *Indexer) indexRevocation(
	txn *database.Txn,
	receipt *runtime.Receipt,
	evt licence.LicenceRevoked,
) error {
	record, err := i.db.GetLicenceRecord(evt.Licence.Bytes(), txn)
	if err != nil {
		if !errors.Is(err, types.ErrRecordNotFound) {
			return err
		}
		// Rebuild the row from the account if the purchase was never indexed
		lic, err := i.readLicence(txn, evt.Licence)
		if err != nil {
			return err
		}
		record = &models.Licence{
			Address:     evt.Licence.Bytes(),
			Certificate: lic.CertificateDetails.Bytes(),
			Buyer:       lic.Buyer.Bytes(),
			ExpiresAt:   lic.ExpiryTimestamp,
			Price:       types.Uint64(lic.PurchasePrice),
			PurchasedAt: lic.PurchaseTimestamp,
		}
	}
	// The upsert matches on address
	record.ID = 0
	record.Status = models.LicenceStatusRevoked
	record.RevokedBy = evt.Revoker.Bytes()
	record.UpdatedAt = receipt.Timestamp.Unix()
	return i.db.SetLicenceRecord(record, txn)
}

func (i *Indexer) indexTokenAccount(
	txn *database.Txn,
	receipt *runtime.Receipt,
	addr address.Address,
) error {
	acct, err := i.db.GetAccount(addr, txn)
	if err != nil {
		return err
	}
	if acct.Owner != payment.ProgramID {
		return nil
	}
	tokenAcct, err := payment.DecodeTokenAccount(acct)
	if err != nil {
		return err
	}
	return i.db.SetTokenAccountRecord(&models.TokenAccount{
		Address:   addr.Bytes(),
		Owner:     tokenAcct.Owner.Bytes(),
		Mint:      tokenAcct.Mint.Bytes(),
		Balance:   types.Uint64(tokenAcct.Balance),
		UpdatedAt: receipt.Timestamp.Unix(),
	}, txn)
}
