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

// Package licence implements the licence registry program. It sells
// licences against registered certificates, settles payment through the
// payment extension and lets the certificate authority or the
// administrator revoke them.
package licence

import (
	"errors"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/certificate"
	"github.com/Abraham12611/creator-claim/event"
	"github.com/Abraham12611/creator-claim/payment"
	"github.com/Abraham12611/creator-claim/runtime"
)

const (
	ProgramName = "creatorclaim_licence"
	SeedPrefix  = "licence"

	PurchasedEventType event.EventType = "licence.purchased"
	RevokedEventType   event.EventType = "licence.revoked"
)

var (
	ProgramID = address.ProgramID(ProgramName)

	purchaseDiscriminator = runtime.InstructionDiscriminator("purchase_licence")
	revokeDiscriminator   = runtime.InstructionDiscriminator("revoke_licence")
)

var ErrNoPaymentExtension = errors.New("licence registry requires a payment extension")

// Config wires the licence registry to its payment extension
type Config struct {
	Payments *payment.Extension
	// Admin may revoke any licence. The zero address disables the override.
	Admin address.Address
}

// Program is the licence registry
type Program struct {
	config Config
}

// New returns the licence registry settling purchases through
// cfg.Payments
func New(cfg Config) (*Program, error) {
	if cfg.Payments == nil {
		return nil, ErrNoPaymentExtension
	}
	return &Program{config: cfg}, nil
}

// ID returns the licence registry program address
func (p *Program) ID() address.Address {
	return ProgramID
}

// Name returns the licence registry program name
func (p *Program) Name() string {
	return ProgramName
}

// PurchaseArgs are the arguments of purchase_licence. A nil expiry makes
// the licence perpetual.
type PurchaseArgs struct {
	_               struct{} `cbor:",toarray"`
	PurchasePrice   uint64
	ExpiryTimestamp *int64
}

// LicencePurchased is the payload of PurchasedEventType
type LicencePurchased struct {
	Licence     address.Address
	Certificate address.Address
	Buyer       address.Address
	Price       uint64
	Timestamp   int64
}

// LicenceRevoked is the payload of RevokedEventType
type LicenceRevoked struct {
	Licence     address.Address
	Certificate address.Address
	Revoker     address.Address
}

// Process dispatches a licence registry instruction
func (p *Program) Process(
	ictx *runtime.InvokeContext,
	ix runtime.Instruction,
) error {
	disc, data, err := runtime.SplitInstruction(ix.Data)
	if err != nil {
		return err
	}
	switch disc {
	case purchaseDiscriminator:
		var args PurchaseArgs
		if err := runtime.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.purchase(ictx, &args)
	case revokeDiscriminator:
		return p.revoke(ictx)
	default:
		return runtime.ErrInvalidInstructionData.WithMessage(
			"unknown licence instruction",
		)
	}
}

func readCertificate(
	ictx *runtime.InvokeContext,
	addr address.Address,
) (*certificate.CertificateDetails, error) {
	acct, err := ictx.Read(addr)
	if err != nil {
		return nil, ErrInvalidCertificateAccount.WithMessage("%s", err)
	}
	details, err := certificate.Decode(acct)
	if err != nil {
		return nil, ErrInvalidCertificateAccount.WithMessage("%s", err)
	}
	return details, nil
}

// Accounts: buyer (signer), buyer token account, licence, certificate
// details, treasury token account, then one token account per royalty
// split in split order
func (p *Program) purchase(ictx *runtime.InvokeContext, args *PurchaseArgs) error {
	accounts := ictx.Accounts()
	if len(accounts) < 5 {
		return runtime.ErrNotEnoughAccounts.WithMessage(
			"purchase needs at least 5 accounts, got %d",
			len(accounts),
		)
	}
	buyer := accounts[0].Address
	buyerToken := accounts[1].Address
	licenceAddr := accounts[2].Address
	certAddr := accounts[3].Address
	treasury := accounts[4].Address
	if err := ictx.RequireSigner(buyer); err != nil {
		return err
	}
	details, err := readCertificate(ictx, certAddr)
	if err != nil {
		return err
	}
	expected, bump, err := DeriveAddress(certAddr, buyer)
	if err != nil {
		return err
	}
	if expected != licenceAddr {
		return ErrSeedsMismatch.WithMessage(
			"expected %s, got %s",
			expected,
			licenceAddr,
		)
	}
	// The certificate record is authoritative, never the caller's price
	if args.PurchasePrice != details.Price {
		return ErrIncorrectPrice.WithMessage(
			"offered %d, certificate price is %d",
			args.PurchasePrice,
			details.Price,
		)
	}
	if args.ExpiryTimestamp != nil && *args.ExpiryTimestamp <= ictx.Now().Unix() {
		return ErrInvalidExpiry.WithMessage(
			"expiry %d is not after %d",
			*args.ExpiryTimestamp,
			ictx.Now().Unix(),
		)
	}
	params := payment.TransferParams{
		Amount:      details.Price,
		Source:      buyerToken,
		Destination: treasury,
		Authority:   buyer,
		Shares:      make([]payment.Share, len(details.RoyaltySplits)),
	}
	for i, split := range details.RoyaltySplits {
		params.Shares[i] = payment.Share{
			Beneficiary: split.Beneficiary,
			ShareBps:    split.ShareBps,
		}
	}
	for _, meta := range accounts[5:] {
		params.Recipients = append(params.Recipients, meta.Address)
	}
	if err := p.config.Payments.Transfer(ictx, params); err != nil {
		return err
	}
	now := ictx.Now().Unix()
	record := &Licence{
		CertificateDetails: certAddr,
		Buyer:              buyer,
		PurchasePrice:      details.Price,
		PurchaseTimestamp:  now,
		ExpiryTimestamp:    args.ExpiryTimestamp,
		Status:             StatusActive,
		Bump:               bump,
	}
	data, err := runtime.Encode(LicenceDiscriminator, record)
	if err != nil {
		return err
	}
	if err := ictx.Create(licenceAddr, buyer, LicenceSize, data); err != nil {
		return err
	}
	ictx.Logger().Info(
		"licence purchased",
		"licence", licenceAddr.String(),
		"certificate", certAddr.String(),
		"buyer", buyer.String(),
		"price", details.Price,
	)
	ictx.Emit(PurchasedEventType, LicencePurchased{
		Licence:     licenceAddr,
		Certificate: certAddr,
		Buyer:       buyer,
		Price:       details.Price,
		Timestamp:   now,
	})
	return nil
}

// Accounts: revoker (signer), licence, certificate details
func (p *Program) revoke(ictx *runtime.InvokeContext) error {
	revoker, err := ictx.Account(0)
	if err != nil {
		return err
	}
	licenceMeta, err := ictx.Account(1)
	if err != nil {
		return err
	}
	certMeta, err := ictx.Account(2)
	if err != nil {
		return err
	}
	if err := ictx.RequireSigner(revoker.Address); err != nil {
		return err
	}
	acct, err := ictx.Read(licenceMeta.Address)
	if err != nil {
		return ErrInvalidLicenceAccount.WithMessage("%s", err)
	}
	record, err := Decode(acct)
	if err != nil {
		return ErrInvalidLicenceAccount.WithMessage("%s", err)
	}
	if record.CertificateDetails != certMeta.Address {
		return ErrCertificateMismatch.WithMessage(
			"licence refers to %s, got %s",
			record.CertificateDetails,
			certMeta.Address,
		)
	}
	details, err := readCertificate(ictx, certMeta.Address)
	if err != nil {
		return err
	}
	if !p.mayRevoke(revoker.Address, details) {
		return ErrUnauthorizedRevoker.WithMessage("%s", revoker.Address)
	}
	// Expired licences still carry the active status and may be revoked
	if record.Status != StatusActive {
		return ErrLicenceRevoked
	}
	record.Status = StatusRevoked
	data, err := runtime.Encode(LicenceDiscriminator, record)
	if err != nil {
		return err
	}
	if err := ictx.Write(licenceMeta.Address, data); err != nil {
		return err
	}
	ictx.Logger().Info(
		"licence revoked",
		"licence", licenceMeta.Address.String(),
		"revoker", revoker.Address.String(),
	)
	ictx.Emit(RevokedEventType, LicenceRevoked{
		Licence:     licenceMeta.Address,
		Certificate: certMeta.Address,
		Revoker:     revoker.Address,
	})
	return nil
}

func (p *Program) mayRevoke(
	revoker address.Address,
	details *certificate.CertificateDetails,
) bool {
	if revoker == details.Authority {
		return true
	}
	return !p.config.Admin.IsZero() && revoker == p.config.Admin
}

// PurchaseAccounts names the parties of a purchase. Token accounts are
// derived from the owners and the payment mint.
type PurchaseAccounts struct {
	Buyer       address.Address
	Certificate address.Address
	Treasury    address.Address
	Mint        address.Address
	// Beneficiaries of the certificate's royalty splits, in split order
	Beneficiaries []address.Address
}

// PurchaseInstruction builds a purchase_licence instruction for accts
func PurchaseInstruction(
	accts PurchaseAccounts,
	args PurchaseArgs,
) (runtime.Instruction, error) {
	licenceAddr, _, err := DeriveAddress(accts.Certificate, accts.Buyer)
	if err != nil {
		return runtime.Instruction{}, err
	}
	buyerToken, _, err := payment.DeriveTokenAccount(accts.Buyer, accts.Mint)
	if err != nil {
		return runtime.Instruction{}, err
	}
	treasuryToken, _, err := payment.DeriveTokenAccount(accts.Treasury, accts.Mint)
	if err != nil {
		return runtime.Instruction{}, err
	}
	metas := []runtime.AccountMeta{
		runtime.Signer(accts.Buyer, true),
		runtime.Writable(buyerToken),
		runtime.Writable(licenceAddr),
		runtime.ReadOnly(accts.Certificate),
		runtime.Writable(treasuryToken),
	}
	for _, beneficiary := range accts.Beneficiaries {
		recipient, _, err := payment.DeriveTokenAccount(beneficiary, accts.Mint)
		if err != nil {
			return runtime.Instruction{}, err
		}
		metas = append(metas, runtime.Writable(recipient))
	}
	data, err := runtime.Encode(purchaseDiscriminator, &args)
	if err != nil {
		return runtime.Instruction{}, err
	}
	return runtime.Instruction{
		ProgramID: ProgramID,
		Accounts:  metas,
		Data:      data,
	}, nil
}

// RevokeInstruction builds a revoke_licence instruction
func RevokeInstruction(
	revoker address.Address,
	licenceAddr address.Address,
	cert address.Address,
) (runtime.Instruction, error) {
	data, err := runtime.Encode(revokeDiscriminator, struct{}{})
	if err != nil {
		return runtime.Instruction{}, err
	}
	return runtime.Instruction{
		ProgramID: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Signer(revoker, false),
			runtime.Writable(licenceAddr),
			runtime.ReadOnly(cert),
		},
		Data: data,
	}, nil
}

// Expiry converts an optional expiry time into the stored form
func Expiry(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ret := t.Unix()
	return &ret
}
