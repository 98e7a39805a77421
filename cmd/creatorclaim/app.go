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

package main

import (
	"context"
	"crypto/ed25519"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/internal/config"
	"github.com/Abraham12611/creator-claim/keystore"
	"github.com/Abraham12611/creator-claim/ledger"
	"github.com/Abraham12611/creator-claim/runtime"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var errNoConfig = errors.New("no config found in context")

// app bundles what a subcommand needs to build and submit transactions
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	keys   *keystore.KeyStore
	ledger *ledger.Ledger
}

func newKeyStore(cfg *config.Config) *keystore.KeyStore {
	return keystore.NewKeyStore(keystore.KeyStoreConfig{
		Dir:    cfg.KeyDir,
		Logger: slog.Default(),
	})
}

// openApp opens the ledger described by the config on the command context
func openApp(cmd *cobra.Command) (*app, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, errNoConfig
	}
	a := &app{
		cfg:    cfg,
		logger: slog.Default(),
		keys:   newKeyStore(cfg),
	}
	opts := []ledger.ConfigOptionFunc{
		ledger.WithLogger(a.logger),
		ledger.WithDataDir(cfg.DataDir),
		ledger.WithBlobPlugin(cfg.BlobPlugin),
		ledger.WithMetadataPlugin(cfg.MetadataPlugin),
		ledger.WithPromRegistry(prometheus.NewRegistry()),
		ledger.WithPlatformFeeBps(cfg.PlatformFeeBps),
	}
	addressOpts := []struct {
		name  string
		value string
		apply func(address.Address) ledger.ConfigOptionFunc
	}{
		{"admin", cfg.Admin, ledger.WithAdmin},
		{"paymentMint", cfg.PaymentMint, ledger.WithPaymentMint},
		{"mintAuthority", cfg.MintAuthority, ledger.WithMintAuthority},
		{"treasury", cfg.Treasury, ledger.WithTreasury},
	}
	for _, opt := range addressOpts {
		if opt.value == "" {
			continue
		}
		addr, err := a.keys.ResolveAddress(opt.value)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", opt.name, err)
		}
		opts = append(opts, opt.apply(addr))
	}
	l, err := ledger.New(ledger.NewConfig(opts...))
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	a.ledger = l
	return a, nil
}

func (a *app) Close() {
	if err := a.ledger.Close(); err != nil {
		a.logger.Error(
			"failed to close ledger",
			"component", programName,
			"error", err,
		)
	}
}

// resolve turns a key name or base58 string into an address
func (a *app) resolve(value string) (address.Address, error) {
	if value == "" {
		return address.Zero, errors.New("missing address")
	}
	return a.keys.ResolveAddress(value)
}

// signer loads a signing key by name
func (a *app) signer(name string) (*keystore.Key, error) {
	if name == "" {
		return nil, errors.New("missing signing key name")
	}
	return a.keys.Load(name)
}

// submit signs tx with keys and submits it, or only simulates it when
// dryRun is set
func (a *app) submit(
	ctx context.Context,
	tx *runtime.Transaction,
	dryRun bool,
	keys ...*keystore.Key,
) (*runtime.Receipt, error) {
	privs := make([]ed25519.PrivateKey, 0, len(keys))
	for _, key := range keys {
		privs = append(privs, key.Private)
	}
	if err := tx.Sign(privs...); err != nil {
		return nil, err
	}
	if dryRun {
		return a.ledger.Simulate(ctx, tx)
	}
	receipt, err := a.ledger.Submit(ctx, tx)
	if err != nil {
		return nil, err
	}
	a.logger.Info(
		"transaction committed",
		"component", programName,
		"tx", receipt.ID.String(),
		"events", len(receipt.Events),
	)
	return receipt, nil
}

// withApp wraps a RunE body with opening and closing the ledger
func withApp(
	run func(cmd *cobra.Command, args []string, a *app) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd, args, a)
	}
}
