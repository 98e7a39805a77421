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

// Package runtime executes signed transactions against registered programs.
// Each transaction runs to completion under a single database transaction,
// so its instructions commit together or not at all.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/Abraham12611/creator-claim/database/types"
	"github.com/Abraham12611/creator-claim/event"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/Abraham12611/creator-claim/runtime"

// Program processes instructions addressed to its identity
type Program interface {
	ID() address.Address
	Name() string
	Process(*InvokeContext, Instruction) error
}

// CommitHook is called inside the database transaction after all
// instructions succeed. Returning an error aborts the transaction.
type CommitHook interface {
	OnCommit(*database.Txn, *Receipt) error
}

type CommitHookFunc func(*database.Txn, *Receipt) error

func (f CommitHookFunc) OnCommit(txn *database.Txn, receipt *Receipt) error {
	return f(txn, receipt)
}

// Receipt describes an executed transaction
type Receipt struct {
	Timestamp    time.Time
	Events       []event.Event
	Touched      []address.Address
	ID           TxID
	Payer        address.Address
	Instructions int
}

type RuntimeConfig struct {
	Database     *database.Database
	EventBus     *event.EventBus
	Logger       *slog.Logger
	PromRegistry prometheus.Registerer
	Clock        func() time.Time
}

type Runtime struct {
	db       *database.Database
	eventBus *event.EventBus
	logger   *slog.Logger
	clock    func() time.Time
	metrics  *runtimeMetrics
	tracer   trace.Tracer
	programs map[address.Address]Program
	hooks    []CommitHook
	mu       sync.Mutex
	progMu   sync.RWMutex
}

func New(cfg RuntimeConfig) (*Runtime, error) {
	if cfg.Database == nil {
		return nil, errors.New("runtime requires a database")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	r := &Runtime{
		db:       cfg.Database,
		eventBus: cfg.EventBus,
		logger:   cfg.Logger.With("component", "runtime"),
		clock:    cfg.Clock,
		tracer:   otel.Tracer(tracerName),
		programs: make(map[address.Address]Program),
	}
	if cfg.PromRegistry != nil {
		r.metrics = newRuntimeMetrics(cfg.PromRegistry)
	}
	return r, nil
}

// Register makes a program available to transactions
func (r *Runtime) Register(p Program) error {
	r.progMu.Lock()
	defer r.progMu.Unlock()
	if _, ok := r.programs[p.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrProgramExists, p.Name())
	}
	r.programs[p.ID()] = p
	return nil
}

func (r *Runtime) AddCommitHook(hook CommitHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks = append(r.hooks, hook)
}

func (r *Runtime) program(id address.Address) (Program, bool) {
	r.progMu.RLock()
	defer r.progMu.RUnlock()
	p, ok := r.programs[id]
	return p, ok
}

func (r *Runtime) programName(id address.Address) (string, bool) {
	p, ok := r.program(id)
	if !ok {
		return "", false
	}
	return p.Name(), true
}

// Submit executes tx and commits its effects. Events emitted by the
// instructions are published on the event bus after the commit succeeds.
func (r *Runtime) Submit(ctx context.Context, tx *Transaction) (*Receipt, error) {
	return r.run(ctx, tx, true)
}

// Simulate executes tx and discards its effects
func (r *Runtime) Simulate(ctx context.Context, tx *Transaction) (*Receipt, error) {
	return r.run(ctx, tx, false)
}

func (r *Runtime) run(
	ctx context.Context,
	tx *Transaction,
	commit bool,
) (*Receipt, error) {
	spanName := "runtime.Submit"
	if !commit {
		spanName = "runtime.Simulate"
	}
	ctx, span := r.tracer.Start(ctx, spanName)
	defer span.End()
	start := time.Now()
	receipt, err := r.execute(ctx, tx, commit)
	if r.metrics != nil {
		r.metrics.observe(start, commit, err)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("tx.id", receipt.ID.String()),
		attribute.Int("tx.instructions", receipt.Instructions),
		attribute.Int("tx.events", len(receipt.Events)),
	)
	return receipt, nil
}

func (r *Runtime) execute(
	ctx context.Context,
	tx *Transaction,
	commit bool,
) (*Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := tx.Verify(); err != nil {
		return nil, err
	}
	txId, err := tx.ID()
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	exec := &execution{
		rt:      r,
		tx:      tx,
		now:     r.clock(),
		txn:     r.db.Transaction(true),
		touched: make(map[address.Address]struct{}),
	}
	defer exec.txn.Release()
	// Replay protection
	txKey := types.TransactionBlobKey(txId[:])
	if _, err := r.db.Blob().Get(exec.txn.Blob(), txKey); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateTransaction, txId)
	} else if !errors.Is(err, types.ErrBlobKeyNotFound) {
		return nil, err
	}
	for idx, ix := range tx.Message.Instructions {
		if err := r.processInstruction(exec, ix); err != nil {
			r.logger.Debug(
				"instruction failed",
				"tx", txId.String(),
				"index", idx,
				"error", err,
			)
			if r.metrics != nil {
				r.metrics.instructionError(r, ix.ProgramID, err)
			}
			return nil, &InstructionError{Index: idx, Err: err}
		}
	}
	receipt := &Receipt{
		ID:           txId,
		Payer:        tx.Message.Payer,
		Timestamp:    exec.now,
		Events:       exec.events,
		Instructions: len(tx.Message.Instructions),
	}
	for addr := range exec.touched {
		receipt.Touched = append(receipt.Touched, addr)
	}
	if !commit {
		return receipt, nil
	}
	if err := r.db.Blob().Set(exec.txn.Blob(), txKey, exec.now.AppendFormat(nil, time.RFC3339Nano)); err != nil {
		return nil, err
	}
	for _, hook := range r.hooks {
		if err := hook.OnCommit(exec.txn, receipt); err != nil {
			return nil, fmt.Errorf("commit hook: %w", err)
		}
	}
	if err := exec.txn.Commit(); err != nil {
		return nil, err
	}
	r.logger.Debug(
		"transaction committed",
		"tx", txId.String(),
		"instructions", receipt.Instructions,
		"events", len(receipt.Events),
	)
	if r.eventBus != nil {
		for _, evt := range receipt.Events {
			r.eventBus.Publish(evt.Type, evt)
		}
	}
	return receipt, nil
}

func (r *Runtime) processInstruction(exec *execution, ix Instruction) error {
	prog, ok := r.program(ix.ProgramID)
	if !ok {
		return ErrUnknownProgram.WithMessage("%s", ix.ProgramID)
	}
	exec.writable = make(map[address.Address]bool, len(ix.Accounts))
	for _, meta := range ix.Accounts {
		if meta.Writable {
			exec.writable[meta.Address] = true
		}
	}
	ictx := &InvokeContext{
		exec:        exec,
		logger:      r.logger.With("program", prog.Name()),
		instruction: ix,
		program:     prog.ID(),
	}
	return prog.Process(ictx, ix)
}
