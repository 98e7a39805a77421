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

package payment

import (
	"errors"
	"math/bits"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/runtime"
)

// Share is the portion of a transfer routed to a beneficiary's token account
type Share struct {
	Beneficiary address.Address
	ShareBps    uint16
}

// TransferParams describes a fee-splitting transfer. Recipients are the
// declared token accounts for Shares, in the same order.
type TransferParams struct {
	Shares      []Share
	Recipients  []address.Address
	Amount      uint64
	Source      address.Address
	Destination address.Address
	Authority   address.Address
}

// Transfer moves Amount out of Source. The platform fee and the rounding
// remainder go to Destination, which must be the treasury token account,
// and the rest is split across Recipients by Shares. It runs as the payment program inside the caller's transaction,
// so any later failure of the caller undoes it.
func (e *Extension) Transfer(ictx *runtime.InvokeContext, p TransferParams) error {
	return ictx.Invoke(ProgramID, func(c *runtime.InvokeContext) error {
		return e.transfer(c, p)
	})
}

// mulDiv returns floor(a * b / c) without intermediate overflow. The result
// fits in 64 bits whenever b <= c.
func mulDiv(a uint64, b uint64, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	quo, _ := bits.Div64(hi, lo, c)
	return quo
}

func (e *Extension) transfer(ictx *runtime.InvokeContext, p TransferParams) error {
	if err := ictx.RequireSigner(p.Authority); err != nil {
		return err
	}
	if p.Destination != e.treasuryAccount {
		return ErrInvalidDestinationAccount.WithMessage(
			"expected %s, got %s",
			e.treasuryAccount,
			p.Destination,
		)
	}
	source, err := readTokenAccount(ictx, p.Source)
	if err != nil {
		return ErrInvalidSourceAccount.WithMessage("%s: %s", p.Source, err)
	}
	if source.Owner != p.Authority {
		return ErrInvalidSourceAccount.WithMessage(
			"%s is owned by %s, not %s",
			p.Source,
			source.Owner,
			p.Authority,
		)
	}
	if source.Mint != e.config.Mint {
		return ErrMintMismatch.WithMessage("source holds %s", source.Mint)
	}
	if len(p.Recipients) < len(p.Shares) {
		return ErrMissingRecipientAccount.WithMessage(
			"expected %d recipient accounts, got %d",
			len(p.Shares),
			len(p.Recipients),
		)
	}
	if len(p.Recipients) > len(p.Shares) {
		return ErrInvalidRecipientAccount.WithMessage(
			"expected %d recipient accounts, got %d",
			len(p.Shares),
			len(p.Recipients),
		)
	}
	accounts := map[address.Address]*TokenAccount{p.Source: source}
	var totalBps uint64
	for i, share := range p.Shares {
		totalBps += uint64(share.ShareBps)
		recipient, err := readTokenAccount(ictx, p.Recipients[i])
		if err != nil {
			if errors.Is(err, runtime.ErrAccountNotFound) {
				return ErrMissingRecipientAccount.WithMessage(
					"recipient %d: %s",
					i,
					err,
				)
			}
			return ErrInvalidRecipientAccount.WithMessage("recipient %d: %s", i, err)
		}
		if recipient.Mint != source.Mint {
			return ErrInvalidRecipientAccount.WithMessage(
				"recipient %d holds mint %s",
				i,
				recipient.Mint,
			)
		}
		if recipient.Owner != share.Beneficiary {
			return ErrInvalidRecipientAccount.WithMessage(
				"recipient %d belongs to %s, not %s",
				i,
				recipient.Owner,
				share.Beneficiary,
			)
		}
		if _, ok := accounts[p.Recipients[i]]; !ok {
			accounts[p.Recipients[i]] = recipient
		}
	}
	if totalBps > MaxFeeBps {
		return ErrInvalidShares
	}
	if _, ok := accounts[p.Destination]; !ok {
		dest, err := readTokenAccount(ictx, p.Destination)
		if err != nil {
			return err
		}
		accounts[p.Destination] = dest
	}
	if accounts[p.Destination].Mint != source.Mint {
		return ErrMintMismatch.WithMessage(
			"destination holds %s",
			accounts[p.Destination].Mint,
		)
	}
	if source.Balance < p.Amount {
		return ErrInsufficientFunds.WithMessage(
			"balance %d, need %d",
			source.Balance,
			p.Amount,
		)
	}

	fee := mulDiv(p.Amount, uint64(e.config.PlatformFeeBps), MaxFeeBps)
	remainder := p.Amount - fee
	credits := make([]Credit, 0, len(p.Shares)+1)
	var distributed uint64
	for i, share := range p.Shares {
		amount := mulDiv(remainder, uint64(share.ShareBps), MaxFeeBps)
		distributed += amount
		credits = append(credits, Credit{Account: p.Recipients[i], Amount: amount})
	}
	// The fee and any rounding dust settle at the destination
	credits = append(credits, Credit{
		Account: p.Destination,
		Amount:  fee + remainder - distributed,
	})

	source.Balance -= p.Amount
	for _, credit := range credits {
		acct := accounts[credit.Account]
		balance, carry := bits.Add64(acct.Balance, credit.Amount, 0)
		if carry != 0 {
			return ErrAmountOverflow
		}
		acct.Balance = balance
	}
	for addr, acct := range accounts {
		if err := writeTokenAccount(ictx, addr, acct); err != nil {
			return err
		}
	}
	ictx.Emit(TransferredEventType, TokensTransferred{
		Source:      p.Source,
		Destination: p.Destination,
		Amount:      p.Amount,
		Fee:         fee,
		Credits:     credits,
	})
	return nil
}
