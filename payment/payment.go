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

// Package payment implements the token ledger and the fee-splitting
// transfer used to settle licence purchases.
package payment

import (
	"errors"
	"fmt"
	"math/bits"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/event"
	"github.com/Abraham12611/creator-claim/runtime"
)

const (
	ProgramName = "creatorclaim_payment"
	SeedPrefix  = "token_account"

	MaxFeeBps = 10_000

	MintedEventType      event.EventType = "payment.minted"
	TransferredEventType event.EventType = "payment.transferred"
)

var (
	ProgramID = address.ProgramID(ProgramName)

	initializeDiscriminator = runtime.InstructionDiscriminator("initialize_account")
	mintToDiscriminator     = runtime.InstructionDiscriminator("mint_to")
)

var ErrInvalidFee = errors.New("platform fee must be between 0 and 10000 basis points")

// Config holds the token and fee settings of the payment program
type Config struct {
	Mint          address.Address
	MintAuthority address.Address
	// Treasury owns the token account that collects platform fees. It
	// defaults to the mint authority.
	Treasury       address.Address
	PlatformFeeBps uint16
}

// Extension is the payment program. Other programs settle payments through
// Transfer.
type Extension struct {
	config          Config
	treasuryAccount address.Address
}

// New returns the payment program for cfg
func New(cfg Config) (*Extension, error) {
	if cfg.PlatformFeeBps > MaxFeeBps {
		return nil, ErrInvalidFee
	}
	if cfg.Treasury.IsZero() {
		cfg.Treasury = cfg.MintAuthority
	}
	treasuryAccount, _, err := DeriveTokenAccount(cfg.Treasury, cfg.Mint)
	if err != nil {
		return nil, fmt.Errorf("derive treasury token account: %w", err)
	}
	return &Extension{config: cfg, treasuryAccount: treasuryAccount}, nil
}

// ID returns the payment program address
func (e *Extension) ID() address.Address {
	return ProgramID
}

// Name returns the payment program name
func (e *Extension) Name() string {
	return ProgramName
}

// Mint returns the token mint settled by the extension
func (e *Extension) Mint() address.Address {
	return e.config.Mint
}

// Config returns the settings the extension was built with, treasury
// default applied
func (e *Extension) Config() Config {
	return e.config
}

// TreasuryAccount returns the token account every transfer pays its fee into
func (e *Extension) TreasuryAccount() address.Address {
	return e.treasuryAccount
}

type initializeArgs struct {
	_     struct{} `cbor:",toarray"`
	Owner address.Address
}

type mintToArgs struct {
	_      struct{} `cbor:",toarray"`
	Amount uint64
}

// TokensMinted is emitted when new tokens are credited
type TokensMinted struct {
	Account address.Address
	Owner   address.Address
	Amount  uint64
}

// Credit is one balance increase made by a transfer
type Credit struct {
	Account address.Address
	Amount  uint64
}

// TokensTransferred is emitted for each completed transfer
type TokensTransferred struct {
	Source      address.Address
	Destination address.Address
	Credits     []Credit
	Amount      uint64
	Fee         uint64
}

// Process dispatches a payment instruction
func (e *Extension) Process(
	ictx *runtime.InvokeContext,
	ix runtime.Instruction,
) error {
	disc, data, err := runtime.SplitInstruction(ix.Data)
	if err != nil {
		return err
	}
	switch disc {
	case initializeDiscriminator:
		var args initializeArgs
		if err := runtime.DecodeArgs(data, &args); err != nil {
			return err
		}
		return e.initializeAccount(ictx, args.Owner)
	case mintToDiscriminator:
		var args mintToArgs
		if err := runtime.DecodeArgs(data, &args); err != nil {
			return err
		}
		return e.mintTo(ictx, args.Amount)
	default:
		return runtime.ErrInvalidInstructionData.WithMessage(
			"unknown payment instruction",
		)
	}
}

// Accounts: payer (signer), token account
func (e *Extension) initializeAccount(
	ictx *runtime.InvokeContext,
	owner address.Address,
) error {
	payer, err := ictx.Account(0)
	if err != nil {
		return err
	}
	target, err := ictx.Account(1)
	if err != nil {
		return err
	}
	if err := ictx.RequireSigner(payer.Address); err != nil {
		return err
	}
	expected, bump, err := DeriveTokenAccount(owner, e.config.Mint)
	if err != nil {
		return err
	}
	if expected != target.Address {
		return ErrSeedsMismatch.WithMessage(
			"expected %s, got %s",
			expected,
			target.Address,
		)
	}
	data, err := runtime.Encode(TokenAccountDiscriminator, &TokenAccount{
		Owner: owner,
		Mint:  e.config.Mint,
		Bump:  bump,
	})
	if err != nil {
		return err
	}
	return ictx.Create(target.Address, payer.Address, TokenAccountSize, data)
}

// Accounts: mint authority (signer), token account
func (e *Extension) mintTo(ictx *runtime.InvokeContext, amount uint64) error {
	authority, err := ictx.Account(0)
	if err != nil {
		return err
	}
	target, err := ictx.Account(1)
	if err != nil {
		return err
	}
	if err := ictx.RequireSigner(authority.Address); err != nil {
		return err
	}
	if authority.Address != e.config.MintAuthority {
		return ErrUnauthorizedMintAuthority
	}
	acct, err := readTokenAccount(ictx, target.Address)
	if err != nil {
		return err
	}
	if acct.Mint != e.config.Mint {
		return ErrMintMismatch
	}
	balance, carry := bits.Add64(acct.Balance, amount, 0)
	if carry != 0 {
		return ErrAmountOverflow
	}
	acct.Balance = balance
	if err := writeTokenAccount(ictx, target.Address, acct); err != nil {
		return err
	}
	ictx.Emit(MintedEventType, TokensMinted{
		Account: target.Address,
		Owner:   acct.Owner,
		Amount:  amount,
	})
	return nil
}

// InitializeAccountInstruction creates the token account of owner for mint
func InitializeAccountInstruction(
	payer address.Address,
	owner address.Address,
	mint address.Address,
) (runtime.Instruction, error) {
	target, _, err := DeriveTokenAccount(owner, mint)
	if err != nil {
		return runtime.Instruction{}, err
	}
	data, err := runtime.Encode(initializeDiscriminator, &initializeArgs{Owner: owner})
	if err != nil {
		return runtime.Instruction{}, err
	}
	return runtime.Instruction{
		ProgramID: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Signer(payer, true),
			runtime.Writable(target),
		},
		Data: data,
	}, nil
}

// MintToInstruction credits amount to the token account of owner
func MintToInstruction(
	authority address.Address,
	owner address.Address,
	mint address.Address,
	amount uint64,
) (runtime.Instruction, error) {
	target, _, err := DeriveTokenAccount(owner, mint)
	if err != nil {
		return runtime.Instruction{}, err
	}
	data, err := runtime.Encode(mintToDiscriminator, &mintToArgs{Amount: amount})
	if err != nil {
		return runtime.Instruction{}, err
	}
	return runtime.Instruction{
		ProgramID: ProgramID,
		Accounts: []runtime.AccountMeta{
			runtime.Signer(authority, false),
			runtime.Writable(target),
		},
		Data: data,
	}, nil
}
