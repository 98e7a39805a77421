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

package runtime

import (
	"errors"
	"log/slog"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/Abraham12611/creator-claim/database/types"
	"github.com/Abraham12611/creator-claim/event"
)

// MaxInvokeDepth bounds nested cross-program invocations
const MaxInvokeDepth = 4

// execution holds state shared by every context of one transaction
type execution struct {
	rt       *Runtime
	txn      *database.Txn
	tx       *Transaction
	now      time.Time
	events   []event.Event
	touched  map[address.Address]struct{}
	writable map[address.Address]bool
}

// InvokeContext is handed to a program while it processes an instruction.
// Account access is scoped to the program the context was created for.
type InvokeContext struct {
	exec        *execution
	logger      *slog.Logger
	instruction Instruction
	program     address.Address
	caller      address.Address
	depth       int
}

func (c *InvokeContext) Instruction() Instruction {
	return c.instruction
}

func (c *InvokeContext) Accounts() []AccountMeta {
	return c.instruction.Accounts
}

// Account returns the instruction account at idx
func (c *InvokeContext) Account(idx int) (AccountMeta, error) {
	if idx < 0 || idx >= len(c.instruction.Accounts) {
		return AccountMeta{}, ErrNotEnoughAccounts.WithMessage(
			"expected account at index %d, have %d",
			idx,
			len(c.instruction.Accounts),
		)
	}
	return c.instruction.Accounts[idx], nil
}

// ProgramID returns the identity of the running program
func (c *InvokeContext) ProgramID() address.Address {
	return c.program
}

// Caller returns the invoking program for cross-program calls, or the zero
// address for top-level instructions
func (c *InvokeContext) Caller() address.Address {
	return c.caller
}

func (c *InvokeContext) IsSigner(addr address.Address) bool {
	_, ok := c.exec.tx.Signatures[addr]
	return ok
}

// RequireSigner fails unless addr signed the transaction
func (c *InvokeContext) RequireSigner(addr address.Address) error {
	if !c.IsSigner(addr) {
		return ErrMissingRequiredSignature.WithMessage(
			"%s must sign",
			addr,
		)
	}
	return nil
}

// Payer returns the fee payer of the transaction
func (c *InvokeContext) Payer() address.Address {
	return c.exec.tx.Message.Payer
}

// Now returns the substrate time of the transaction. It is the same for
// every instruction of a transaction.
func (c *InvokeContext) Now() time.Time {
	return c.exec.now
}

func (c *InvokeContext) Logger() *slog.Logger {
	return c.logger
}

// Create allocates an account at addr owned by the running program
func (c *InvokeContext) Create(
	addr address.Address,
	payer address.Address,
	size uint32,
	data []byte,
) error {
	if !c.exec.writable[addr] {
		return ErrAccountNotWritable.WithMessage("%s", addr)
	}
	err := c.exec.rt.db.CreateAccount(addr, c.program, payer, size, data, c.exec.txn)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrAccountExists):
			return ErrAccountAlreadyInUse.WithMessage("%s", addr)
		case errors.Is(err, types.ErrAccountTooLarge):
			return ErrAccountDataTooSmall.WithMessage("%s", err)
		}
		return err
	}
	c.exec.touched[addr] = struct{}{}
	return nil
}

// Read returns the account at addr regardless of its owner
func (c *InvokeContext) Read(addr address.Address) (*database.Account, error) {
	acct, err := c.exec.rt.db.GetAccount(addr, c.exec.txn)
	if err != nil {
		if errors.Is(err, types.ErrAccountNotFound) {
			return nil, ErrAccountNotFound.WithMessage("%s", addr)
		}
		return nil, err
	}
	return acct, nil
}

// Write replaces the data of an account owned by the running program
func (c *InvokeContext) Write(addr address.Address, data []byte) error {
	if !c.exec.writable[addr] {
		return ErrAccountNotWritable.WithMessage("%s", addr)
	}
	err := c.exec.rt.db.UpdateAccount(addr, c.program, data, c.exec.txn)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrAccountOwnerMismatch):
			return ErrIllegalOwner.WithMessage("%s", err)
		case errors.Is(err, types.ErrAccountNotFound):
			return ErrAccountNotFound.WithMessage("%s", addr)
		case errors.Is(err, types.ErrAccountTooLarge):
			return ErrAccountDataTooSmall.WithMessage("%s", err)
		}
		return err
	}
	c.exec.touched[addr] = struct{}{}
	return nil
}

// Invoke runs fn with the identity of another registered program. Accounts
// created or written by fn belong to that program, and Caller reports the
// invoking program.
func (c *InvokeContext) Invoke(
	program address.Address,
	fn func(*InvokeContext) error,
) error {
	if c.depth+1 >= MaxInvokeDepth {
		return ErrCallDepthExceeded
	}
	name, ok := c.exec.rt.programName(program)
	if !ok {
		return ErrUnknownProgram.WithMessage("%s", program)
	}
	child := &InvokeContext{
		exec:        c.exec,
		logger:      c.exec.rt.logger.With("program", name),
		instruction: c.instruction,
		program:     program,
		caller:      c.program,
		depth:       c.depth + 1,
	}
	return fn(child)
}

// Emit records an event. Events are published only after the transaction
// commits.
func (c *InvokeContext) Emit(eventType event.EventType, data any) {
	evt := event.NewEvent(eventType, data)
	evt.Timestamp = c.exec.now
	c.exec.events = append(c.exec.events, evt)
}
