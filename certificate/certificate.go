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

// Package certificate implements the certificate registry program, which
// records authorship, licence price and royalty distribution of a work.
package certificate

import (
	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/event"
	"github.com/Abraham12611/creator-claim/runtime"
)

const (
	ProgramName = "creatorclaim_certificate"
	SeedPrefix  = "certificate_details"

	RegisteredEventType event.EventType = "certificate.registered"
)

var (
	ProgramID = address.ProgramID(ProgramName)

	registerDiscriminator = runtime.InstructionDiscriminator("register_certificate")
)

// RegisterArgs are the arguments of register_certificate
type RegisterArgs struct {
	_                 struct{} `cbor:",toarray"`
	MetadataURIHash   [32]byte
	LicenceTemplateID uint16
	Price             uint64
	RoyaltySplits     []RoyaltySplit
}

// CertificateRegistered is emitted for each new certificate
type CertificateRegistered struct {
	Asset             address.Address
	Certificate       address.Address
	Creator           address.Address
	Price             uint64
	LicenceTemplateID uint16
}

// Validate checks registration arguments in a fixed order: metadata hash,
// price, recipient count, share sum
func (a *RegisterArgs) Validate() error {
	if a.MetadataURIHash == [32]byte{} {
		return ErrMissingMetadataHash
	}
	if a.Price == 0 {
		return ErrZeroPriceNotAllowed
	}
	if len(a.RoyaltySplits) > MaxRecipients {
		return ErrTooManyRecipients.WithMessage(
			"got %d recipients, maximum is %d",
			len(a.RoyaltySplits),
			MaxRecipients,
		)
	}
	var total uint64
	for _, split := range a.RoyaltySplits {
		total += uint64(split.ShareBps)
	}
	if total != TotalShareBps {
		return ErrInvalidRoyaltySum.WithMessage(
			"shares sum to %d basis points",
			total,
		)
	}
	return nil
}

// Program is the certificate registry
type Program struct{}

// New returns the certificate registry program
func New() *Program {
	return &Program{}
}

// ID returns the certificate registry program address
func (p *Program) ID() address.Address {
	return ProgramID
}

// Name returns the certificate registry program name
func (p *Program) Name() string {
	return ProgramName
}

// Process dispatches a certificate registry instruction
func (p *Program) Process(
	ictx *runtime.InvokeContext,
	ix runtime.Instruction,
) error {
	disc, data, err := runtime.SplitInstruction(ix.Data)
	if err != nil {
		return err
	}
	switch disc {
	case registerDiscriminator:
		var args RegisterArgs
		if err := runtime.DecodeArgs(data, &args); err != nil {
			return err
		}
		return p.register(ictx, &args)
	default:
		return runtime.ErrInvalidInstructionData.WithMessage(
			"unknown certificate instruction",
		)
	}
}

// Accounts: creator (signer), certificate details, asset identifier (signer)
func (p *Program) register(ictx *runtime.InvokeContext, args *RegisterArgs) error {
	creator, err := ictx.Account(0)
	if err != nil {
		return err
	}
	details, err := ictx.Account(1)
	if err != nil {
		return err
	}
	asset, err := ictx.Account(2)
	if err != nil {
		return err
	}
	if err := ictx.RequireSigner(creator.Address); err != nil {
		return err
	}
	if err := ictx.RequireSigner(asset.Address); err != nil {
		return err
	}
	expected, bump, err := DeriveAddress(asset.Address)
	if err != nil {
		return err
	}
	if expected != details.Address {
		return ErrSeedsMismatch.WithMessage(
			"expected %s, got %s",
			expected,
			details.Address,
		)
	}
	if err := args.Validate(); err != nil {
		return err
	}
	record := &CertificateDetails{
		Authority:         creator.Address,
		MetadataURIHash:   args.MetadataURIHash,
		LicenceTemplateID: args.LicenceTemplateID,
		Price:             args.Price,
		RoyaltySplits:     args.RoyaltySplits,
		Bump:              bump,
	}
	data, err := runtime.Encode(DetailsDiscriminator, record)
	if err != nil {
		return err
	}
	if err := ictx.Create(details.Address, creator.Address, DetailsSize, data); err != nil {
		return err
	}
	ictx.Logger().Info(
		"certificate registered",
		"asset", asset.Address.String(),
		"certificate", details.Address.String(),
		"creator", creator.Address.String(),
	)
	ictx.Emit(RegisteredEventType, CertificateRegistered{
		Asset:             asset.Address,
		Certificate:       details.Address,
		Creator:           creator.Address,
		LicenceTemplateID: args.LicenceTemplateID,
		Price:             args.Price,
	})
	return nil
}

// RegisterInstruction builds a register_certificate instruction. Both the
// creator and the asset identifier must sign the transaction.
func RegisterInstruction(
	creator address.Address,
	asset address.Address,
	args RegisterArgs,
) (runtime.Instruction, error) {
	details, _, err := DeriveAddress(asset)
	if err != nil {
		return runtime.Instruction{}, err
	}
	data, err := runtime.Encode(registerDiscriminator, &args)
	if err != nil {
		return runtime.Instruction{}, err
	}
	return runtime.Instruction{
		ProgramID: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Signer(creator, true),
			runtime.Writable(details),
			runtime.Signer(asset, false),
		},
		Data: data,
	}, nil
}
