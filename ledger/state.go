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

// Package ledger assembles the registries on top of the runtime and exposes
// transaction builders and queries for clients.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Abraham12611/creator-claim/certificate"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/Abraham12611/creator-claim/event"
	"github.com/Abraham12611/creator-claim/indexer"
	"github.com/Abraham12611/creator-claim/licence"
	"github.com/Abraham12611/creator-claim/payment"
	"github.com/Abraham12611/creator-claim/runtime"
)

type Ledger struct {
	config   Config
	db       *database.Database
	eventBus *event.EventBus
	ownsBus  bool
	runtime  *runtime.Runtime
	payments *payment.Extension
	metrics  ledgerMetrics
	nonce    atomic.Uint64
}

func New(cfg Config) (*Ledger, error) {
	l := &Ledger{
		config: cfg,
	}
	if l.config.logger == nil {
		l.config = NewConfig()
	}
	logger := l.config.logger.With("component", "ledger")
	db, err := database.New(&database.Config{
		Logger:         l.config.logger,
		PromRegistry:   l.config.promRegistry,
		DataDir:        l.config.dataDir,
		BlobPlugin:     l.config.blobPlugin,
		MetadataPlugin: l.config.metadataPlugin,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	l.db = db
	if err := l.init(); err != nil {
		_ = l.Close()
		return nil, err
	}
	logger.Info(
		"ledger ready",
		"data_dir", l.config.dataDir,
		"mint", l.config.mint.String(),
		"platform_fee_bps", l.config.platformFeeBps,
	)
	return l, nil
}

func (l *Ledger) init() error {
	l.eventBus = l.config.eventBus
	if l.eventBus == nil {
		l.eventBus = event.NewEventBus(l.config.promRegistry, l.config.logger)
		l.ownsBus = true
	}
	rt, err := runtime.New(runtime.RuntimeConfig{
		Database:     l.db,
		EventBus:     l.eventBus,
		Logger:       l.config.logger,
		PromRegistry: l.config.promRegistry,
		Clock:        l.config.clock,
	})
	if err != nil {
		return err
	}
	l.runtime = rt
	l.payments, err = payment.New(payment.Config{
		Mint:           l.config.mint,
		MintAuthority:  l.config.mintAuthority,
		Treasury:       l.config.treasury,
		PlatformFeeBps: l.config.platformFeeBps,
	})
	if err != nil {
		return err
	}
	licences, err := licence.New(licence.Config{
		Payments: l.payments,
		Admin:    l.config.admin,
	})
	if err != nil {
		return err
	}
	for _, p := range []runtime.Program{certificate.New(), l.payments, licences} {
		if err := rt.Register(p); err != nil {
			return err
		}
	}
	rt.AddCommitHook(indexer.New(l.db, l.config.logger))
	// Seed the nonce so restarts do not replay earlier transaction ids
	l.nonce.Store(uint64(l.config.clock().UnixNano())) //nolint:gosec
	return l.initMetrics()
}

func (l *Ledger) initMetrics() error {
	l.metrics.init(l.config.promRegistry)
	certs, err := l.db.ListCertificateRecords(models.CertificateFilter{}, nil)
	if err != nil {
		return fmt.Errorf("count certificates: %w", err)
	}
	l.metrics.certificates.Set(float64(len(certs)))
	active, err := l.db.ListLicenceRecords(
		models.LicenceFilter{Status: models.LicenceStatusActive},
		nil,
	)
	if err != nil {
		return fmt.Errorf("count licences: %w", err)
	}
	l.metrics.activeLicences.Set(float64(len(active)))
	return nil
}

func (l *Ledger) Close() error {
	if l.ownsBus && l.eventBus != nil {
		l.eventBus.Stop()
	}
	var err error
	if l.db != nil {
		err = errors.Join(err, l.db.Close())
	}
	return err
}

func (l *Ledger) Database() *database.Database {
	return l.db
}

func (l *Ledger) EventBus() *event.EventBus {
	return l.eventBus
}

func (l *Ledger) Runtime() *runtime.Runtime {
	return l.runtime
}

// PaymentConfig returns the mint, treasury and fee settings of the payment
// extension
func (l *Ledger) PaymentConfig() payment.Config {
	return l.payments.Config()
}

// Submit executes a signed transaction and commits its effects
func (l *Ledger) Submit(
	ctx context.Context,
	tx *runtime.Transaction,
) (*runtime.Receipt, error) {
	receipt, err := l.runtime.Submit(ctx, tx)
	if err != nil {
		return nil, err
	}
	l.metrics.observe(receipt)
	return receipt, nil
}

// Simulate executes a signed transaction without committing it
func (l *Ledger) Simulate(
	ctx context.Context,
	tx *runtime.Transaction,
) (*runtime.Receipt, error) {
	return l.runtime.Simulate(ctx, tx)
}
