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

package runtime_test

import (
	"context"
	"crypto/ed25519"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/Abraham12611/creator-claim/event"
	"github.com/Abraham12611/creator-claim/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	opCreate byte = iota + 1
	opWrite
	opCreateThenFail
	opInvokeCreate
)

const testEventType event.EventType = "test.created"

var errBoom = errors.New("boom")

// recordProgram creates and writes small records. The first account is the
// payer and the second the target.
type recordProgram struct {
	id    address.Address
	name  string
	other address.Address
}

func (p *recordProgram) ID() address.Address { return p.id }
func (p *recordProgram) Name() string        { return p.name }

func (p *recordProgram) Process(
	ictx *runtime.InvokeContext,
	ix runtime.Instruction,
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
	switch ix.Data[0] {
	case opCreate:
		if err := ictx.Create(target.Address, payer.Address, 8, ix.Data[1:]); err != nil {
			return err
		}
		ictx.Emit(testEventType, target.Address)
		return nil
	case opWrite:
		return ictx.Write(target.Address, ix.Data[1:])
	case opCreateThenFail:
		if err := ictx.Create(target.Address, payer.Address, 8, ix.Data[1:]); err != nil {
			return err
		}
		ictx.Emit(testEventType, target.Address)
		return errBoom
	case opInvokeCreate:
		return ictx.Invoke(p.other, func(child *runtime.InvokeContext) error {
			if child.Caller() != p.id {
				return errors.New("unexpected caller")
			}
			return child.Create(target.Address, payer.Address, 8, ix.Data[1:])
		})
	}
	return runtime.ErrInvalidInstructionData
}

type fixture struct {
	rt       *runtime.Runtime
	db       *database.Database
	bus      *event.EventBus
	reg      *prometheus.Registry
	program  *recordProgram
	other    *recordProgram
	key      ed25519.PrivateKey
	payer    address.Address
	now      time.Time
	nonce    uint64
	hookErr  error
	hookRuns int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		reg: prometheus.NewRegistry(),
		now: time.Unix(1_700_000_000, 0).UTC(),
	}
	var err error
	f.db, err = database.New(&database.Config{})
	require.NoError(t, err)
	f.bus = event.NewEventBus(nil, nil)
	t.Cleanup(func() {
		f.bus.Stop()
		_ = f.db.Close()
	})
	f.rt, err = runtime.New(runtime.RuntimeConfig{
		Database:     f.db,
		EventBus:     f.bus,
		PromRegistry: f.reg,
		Clock:        func() time.Time { return f.now },
	})
	require.NoError(t, err)
	f.other = &recordProgram{id: address.ProgramID("other"), name: "other"}
	f.program = &recordProgram{
		id:    address.ProgramID("records"),
		name:  "records",
		other: f.other.id,
	}
	require.NoError(t, f.rt.Register(f.program))
	require.NoError(t, f.rt.Register(f.other))
	f.rt.AddCommitHook(runtime.CommitHookFunc(
		func(*database.Txn, *runtime.Receipt) error {
			f.hookRuns++
			return f.hookErr
		},
	))
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	f.key = priv
	f.payer = address.FromPublicKey(pub)
	return f
}

func (f *fixture) tx(t *testing.T, ixs ...runtime.Instruction) *runtime.Transaction {
	t.Helper()
	f.nonce++
	tx := runtime.NewTransaction(f.payer, f.nonce, ixs...)
	require.NoError(t, tx.Sign(f.key))
	return tx
}

func (f *fixture) ix(op byte, target address.Address, data string) runtime.Instruction {
	return runtime.Instruction{
		ProgramID: f.program.id,
		Accounts: []runtime.AccountMeta{
			runtime.Signer(f.payer, true),
			runtime.Writable(target),
		},
		Data: append([]byte{op}, data...),
	}
}

func TestSubmitCommitsAndPublishes(t *testing.T) {
	f := newFixture(t)
	_, evtCh := f.bus.Subscribe(testEventType)
	target := address.ProgramID("target")
	receipt, err := f.rt.Submit(context.Background(), f.tx(t, f.ix(opCreate, target, "abc")))
	require.NoError(t, err)
	assert.Equal(t, f.now, receipt.Timestamp)
	assert.Equal(t, []address.Address{target}, receipt.Touched)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, 1, f.hookRuns)

	acct, err := f.db.GetAccount(target, nil)
	require.NoError(t, err)
	assert.Equal(t, f.program.id, acct.Owner)
	assert.Equal(t, f.payer, acct.Payer)
	assert.Equal(t, []byte("abc"), acct.Data)

	select {
	case evt := <-evtCh:
		assert.Equal(t, target, evt.Data)
		assert.Equal(t, f.now, evt.Timestamp)
	case <-time.After(time.Second):
		require.FailNow(t, "event not published")
	}
}

func TestFailedInstructionRollsBackTransaction(t *testing.T) {
	f := newFixture(t)
	_, evtCh := f.bus.Subscribe(testEventType)
	first := address.ProgramID("first")
	second := address.ProgramID("second")
	_, err := f.rt.Submit(context.Background(), f.tx(t,
		f.ix(opCreate, first, "a"),
		f.ix(opCreateThenFail, second, "b"),
	))
	require.ErrorIs(t, err, errBoom)
	var ixErr *runtime.InstructionError
	require.ErrorAs(t, err, &ixErr)
	assert.Equal(t, 1, ixErr.Index)
	assert.Equal(t, 0, f.hookRuns)

	for _, addr := range []address.Address{first, second} {
		exists, err := f.db.AccountExists(addr, nil)
		require.NoError(t, err)
		assert.False(t, exists)
	}
	assert.Empty(t, evtCh)
}

func TestCreateCollision(t *testing.T) {
	f := newFixture(t)
	target := address.ProgramID("target")
	_, err := f.rt.Submit(context.Background(), f.tx(t, f.ix(opCreate, target, "a")))
	require.NoError(t, err)
	_, err = f.rt.Submit(context.Background(), f.tx(t, f.ix(opCreate, target, "b")))
	require.ErrorIs(t, err, runtime.ErrAccountAlreadyInUse)
	assert.Equal(t, runtime.KindConflict, runtime.KindOf(err))

	acct, err := f.db.GetAccount(target, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), acct.Data)
}

func TestWriteRules(t *testing.T) {
	f := newFixture(t)
	target := address.ProgramID("target")
	_, err := f.rt.Submit(context.Background(), f.tx(t, f.ix(opCreate, target, "a")))
	require.NoError(t, err)

	// Another program cannot write the record
	ix := f.ix(opWrite, target, "b")
	ix.ProgramID = f.other.id
	_, err = f.rt.Submit(context.Background(), f.tx(t, ix))
	require.ErrorIs(t, err, runtime.ErrIllegalOwner)

	// Accounts must be declared writable
	ix = f.ix(opWrite, target, "b")
	ix.Accounts[1].Writable = false
	_, err = f.rt.Submit(context.Background(), f.tx(t, ix))
	require.ErrorIs(t, err, runtime.ErrAccountNotWritable)

	// Records cannot outgrow their account
	_, err = f.rt.Submit(context.Background(), f.tx(t, f.ix(opWrite, target, "much too long")))
	require.ErrorIs(t, err, runtime.ErrAccountDataTooSmall)

	_, err = f.rt.Submit(context.Background(), f.tx(t, f.ix(opWrite, target, "b")))
	require.NoError(t, err)
}

func TestInvokeRunsAsCallee(t *testing.T) {
	f := newFixture(t)
	target := address.ProgramID("target")
	_, err := f.rt.Submit(context.Background(), f.tx(t, f.ix(opInvokeCreate, target, "a")))
	require.NoError(t, err)
	acct, err := f.db.GetAccount(target, nil)
	require.NoError(t, err)
	assert.Equal(t, f.other.id, acct.Owner)
}

func TestSignatureChecks(t *testing.T) {
	f := newFixture(t)
	target := address.ProgramID("target")

	unsigned := runtime.NewTransaction(f.payer, 1, f.ix(opCreate, target, "a"))
	_, err := f.rt.Submit(context.Background(), unsigned)
	require.ErrorIs(t, err, runtime.ErrMissingSignature)

	tampered := f.tx(t, f.ix(opCreate, target, "a"))
	tampered.Message.Instructions[0].Data = []byte{opCreate, 'z'}
	_, err = f.rt.Submit(context.Background(), tampered)
	require.ErrorIs(t, err, runtime.ErrInvalidSignature)

	_, err = f.rt.Submit(context.Background(), f.tx(t))
	require.ErrorIs(t, err, runtime.ErrNoInstructions)
}

func TestDuplicateTransaction(t *testing.T) {
	f := newFixture(t)
	tx := f.tx(t, f.ix(opCreate, address.ProgramID("target"), "a"))
	_, err := f.rt.Submit(context.Background(), tx)
	require.NoError(t, err)
	_, err = f.rt.Submit(context.Background(), tx)
	require.ErrorIs(t, err, runtime.ErrDuplicateTransaction)
}

func TestSimulateDiscardsEffects(t *testing.T) {
	f := newFixture(t)
	target := address.ProgramID("target")
	receipt, err := f.rt.Simulate(context.Background(), f.tx(t, f.ix(opCreate, target, "a")))
	require.NoError(t, err)
	require.Len(t, receipt.Events, 1)
	exists, err := f.db.AccountExists(target, nil)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 0, f.hookRuns)
}

func TestCommitHookFailureAborts(t *testing.T) {
	f := newFixture(t)
	f.hookErr = errBoom
	target := address.ProgramID("target")
	_, err := f.rt.Submit(context.Background(), f.tx(t, f.ix(opCreate, target, "a")))
	require.ErrorIs(t, err, errBoom)
	exists, err := f.db.AccountExists(target, nil)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestUnknownProgram(t *testing.T) {
	f := newFixture(t)
	ix := f.ix(opCreate, address.ProgramID("target"), "a")
	ix.ProgramID = address.ProgramID("missing")
	_, err := f.rt.Submit(context.Background(), f.tx(t, ix))
	require.ErrorIs(t, err, runtime.ErrUnknownProgram)
	require.ErrorIs(t, f.rt.Register(f.program), runtime.ErrProgramExists)
}

func TestRuntimeMetrics(t *testing.T) {
	f := newFixture(t)
	target := address.ProgramID("target")
	_, err := f.rt.Submit(context.Background(), f.tx(t, f.ix(opCreate, target, "a")))
	require.NoError(t, err)
	_, err = f.rt.Submit(context.Background(), f.tx(t, f.ix(opCreate, target, "a")))
	require.Error(t, err)

	expected := `
# HELP creatorclaim_runtime_instruction_errors_total failed instructions by program and error
# TYPE creatorclaim_runtime_instruction_errors_total counter
creatorclaim_runtime_instruction_errors_total{error="AccountAlreadyInUse",program="records"} 1
# HELP creatorclaim_runtime_transactions_total transactions processed by result
# TYPE creatorclaim_runtime_transactions_total counter
creatorclaim_runtime_transactions_total{result="committed"} 1
creatorclaim_runtime_transactions_total{result="rejected"} 1
`
	require.NoError(t, testutil.GatherAndCompare(
		f.reg,
		strings.NewReader(expected),
		"creatorclaim_runtime_transactions_total",
		"creatorclaim_runtime_instruction_errors_total",
	))
}

func TestProgramErrorMatching(t *testing.T) {
	err := runtime.ErrAccountNotFound.WithMessage("specific")
	assert.ErrorIs(t, err, runtime.ErrAccountNotFound)
	assert.NotErrorIs(t, err, runtime.ErrIllegalOwner)
	assert.Contains(t, err.Error(), "specific")
	assert.Equal(t, "conflict", runtime.KindConflict.String())
}
