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

package ledger

import (
	"fmt"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/certificate"
	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/Abraham12611/creator-claim/licence"
	"github.com/Abraham12611/creator-claim/payment"
)

// Certificate returns the certificate stored at addr
func (l *Ledger) Certificate(addr address.Address) (*certificate.CertificateDetails, error) {
	acct, err := l.db.GetAccount(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("certificate %s: %w", addr, err)
	}
	return certificate.Decode(acct)
}

// CertificateForAsset returns the address and contents of the certificate
// registered for an asset
func (l *Ledger) CertificateForAsset(
	asset address.Address,
) (address.Address, *certificate.CertificateDetails, error) {
	addr, _, err := certificate.DeriveAddress(asset)
	if err != nil {
		return address.Zero, nil, err
	}
	details, err := l.Certificate(addr)
	if err != nil {
		return address.Zero, nil, err
	}
	return addr, details, nil
}

// Licence returns the licence stored at addr as recorded. Use
// EffectiveStatus for its status at a given time.
func (l *Ledger) Licence(addr address.Address) (*licence.Licence, error) {
	acct, err := l.db.GetAccount(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("licence %s: %w", addr, err)
	}
	return licence.Decode(acct)
}

// LicenceAddress returns the licence address of buyer for cert
func (l *Ledger) LicenceAddress(
	cert address.Address,
	buyer address.Address,
) (address.Address, error) {
	addr, _, err := licence.DeriveAddress(cert, buyer)
	return addr, err
}

// VerifyLicence checks that holder may currently use the licence at addr
func (l *Ledger) VerifyLicence(addr address.Address, holder address.Address) error {
	lic, err := l.Licence(addr)
	if err != nil {
		return err
	}
	return lic.Verify(holder, l.config.clock())
}

// TokenAccount returns the token account of owner for the configured mint
func (l *Ledger) TokenAccount(owner address.Address) (*payment.TokenAccount, error) {
	addr, _, err := payment.DeriveTokenAccount(owner, l.config.mint)
	if err != nil {
		return nil, err
	}
	acct, err := l.db.GetAccount(addr, nil)
	if err != nil {
		return nil, fmt.Errorf("token account %s: %w", addr, err)
	}
	return payment.DecodeTokenAccount(acct)
}

func (l *Ledger) ListCertificates(
	filter models.CertificateFilter,
) ([]models.Certificate, error) {
	return l.db.ListCertificateRecords(filter, nil)
}

// LicenceSummary is a replica row together with its status at query time
type LicenceSummary struct {
	models.Licence
	EffectiveStatus licence.Status
}

// ListLicences queries the replica. Active rows past their expiry are
// reported as expired.
func (l *Ledger) ListLicences(filter models.LicenceFilter) ([]LicenceSummary, error) {
	records, err := l.db.ListLicenceRecords(filter, nil)
	if err != nil {
		return nil, err
	}
	now := l.config.clock().Unix()
	ret := make([]LicenceSummary, 0, len(records))
	for _, record := range records {
		summary := LicenceSummary{
			Licence:         record,
			EffectiveStatus: licence.StatusActive,
		}
		switch {
		case record.Status == models.LicenceStatusRevoked:
			summary.EffectiveStatus = licence.StatusRevoked
		case record.ExpiresAt != nil && now > *record.ExpiresAt:
			summary.EffectiveStatus = licence.StatusExpired
		}
		ret = append(ret, summary)
	}
	return ret, nil
}
