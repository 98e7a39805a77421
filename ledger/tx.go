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
	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/certificate"
	"github.com/Abraham12611/creator-claim/licence"
	"github.com/Abraham12611/creator-claim/payment"
	"github.com/Abraham12611/creator-claim/runtime"
)

// NewTransaction wraps instructions in an unsigned transaction with a fresh
// nonce
func (l *Ledger) NewTransaction(
	payer address.Address,
	instructions ...runtime.Instruction,
) *runtime.Transaction {
	return runtime.NewTransaction(payer, l.nonce.Add(1), instructions...)
}

// RegisterCertificateTx builds a registration paid by the creator. It must be
// signed by both the creator and the asset key.
func (l *Ledger) RegisterCertificateTx(
	creator address.Address,
	asset address.Address,
	args certificate.RegisterArgs,
) (*runtime.Transaction, error) {
	ix, err := certificate.RegisterInstruction(creator, asset, args)
	if err != nil {
		return nil, err
	}
	return l.NewTransaction(creator, ix), nil
}

// PurchaseLicenceTx builds a purchase of cert by buyer. The recipient token
// accounts are taken from the certificate's royalty splits.
func (l *Ledger) PurchaseLicenceTx(
	buyer address.Address,
	cert address.Address,
	args licence.PurchaseArgs,
) (*runtime.Transaction, error) {
	details, err := l.Certificate(cert)
	if err != nil {
		return nil, err
	}
	beneficiaries := make([]address.Address, 0, len(details.RoyaltySplits))
	for _, split := range details.RoyaltySplits {
		beneficiaries = append(beneficiaries, split.Beneficiary)
	}
	ix, err := licence.PurchaseInstruction(licence.PurchaseAccounts{
		Buyer:         buyer,
		Certificate:   cert,
		Treasury:      l.config.treasury,
		Mint:          l.config.mint,
		Beneficiaries: beneficiaries,
	}, args)
	if err != nil {
		return nil, err
	}
	return l.NewTransaction(buyer, ix), nil
}

// RevokeLicenceTx builds a revocation of the licence at licenceAddr
func (l *Ledger) RevokeLicenceTx(
	revoker address.Address,
	licenceAddr address.Address,
) (*runtime.Transaction, error) {
	lic, err := l.Licence(licenceAddr)
	if err != nil {
		return nil, err
	}
	ix, err := licence.RevokeInstruction(revoker, licenceAddr, lic.CertificateDetails)
	if err != nil {
		return nil, err
	}
	return l.NewTransaction(revoker, ix), nil
}

// InitializeTokenAccountTx builds the creation of the token account of owner,
// paid by payer
func (l *Ledger) InitializeTokenAccountTx(
	payer address.Address,
	owner address.Address,
) (*runtime.Transaction, error) {
	ix, err := payment.InitializeAccountInstruction(payer, owner, l.config.mint)
	if err != nil {
		return nil, err
	}
	return l.NewTransaction(payer, ix), nil
}

// MintTx builds an issue of amount tokens to owner. Only the configured mint
// authority can sign it.
func (l *Ledger) MintTx(
	owner address.Address,
	amount uint64,
) (*runtime.Transaction, error) {
	if l.config.mintAuthority.IsZero() {
		return nil, payment.ErrUnauthorizedMintAuthority.WithMessage(
			"no mint authority configured",
		)
	}
	ix, err := payment.MintToInstruction(
		l.config.mintAuthority,
		owner,
		l.config.mint,
		amount,
	)
	if err != nil {
		return nil, err
	}
	return l.NewTransaction(l.config.mintAuthority, ix), nil
}
