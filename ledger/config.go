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
	"io"
	"log/slog"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/event"
	"github.com/prometheus/client_golang/prometheus"
)

// DefaultMint identifies the payment token when no mint is configured
var DefaultMint = address.ProgramID("creatorclaim_token")

type Config struct {
	logger         *slog.Logger
	promRegistry   prometheus.Registerer
	eventBus       *event.EventBus
	clock          func() time.Time
	dataDir        string
	blobPlugin     string
	metadataPlugin string
	admin          address.Address
	mint           address.Address
	mintAuthority  address.Address
	treasury       address.Address
	platformFeeBps uint16
}

// ConfigOptionFunc is a type that represents functions that modify the ledger config
type ConfigOptionFunc func(*Config)

// NewConfig creates a new ledger config with the specified options
func NewConfig(opts ...ConfigOptionFunc) Config {
	c := Config{
		// Default logger will throw away logs
		// We do this so we don't have to add guards around every log operation
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
		clock:  time.Now,
		mint:   DefaultMint,
	}
	for _, opt := range opts {
		opt(&c)
	}
	// Fees go to the mint authority unless a treasury is set
	if c.treasury.IsZero() {
		c.treasury = c.mintAuthority
	}
	return c
}

// WithLogger specifies the logger to use
func WithLogger(logger *slog.Logger) ConfigOptionFunc {
	return func(c *Config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithDataDir specifies the persistent data directory. An empty value keeps
// everything in memory.
func WithDataDir(dataDir string) ConfigOptionFunc {
	return func(c *Config) {
		c.dataDir = dataDir
	}
}

// WithBlobPlugin specifies the blob storage plugin to use.
func WithBlobPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.blobPlugin = plugin
	}
}

// WithMetadataPlugin specifies the metadata storage plugin to use.
func WithMetadataPlugin(plugin string) ConfigOptionFunc {
	return func(c *Config) {
		c.metadataPlugin = plugin
	}
}

// WithPromRegistry specifies a prometheus.Registerer instance to add metrics to
func WithPromRegistry(registry prometheus.Registerer) ConfigOptionFunc {
	return func(c *Config) {
		c.promRegistry = registry
	}
}

// WithEventBus shares an existing event bus. The ledger does not stop a bus
// it did not create.
func WithEventBus(bus *event.EventBus) ConfigOptionFunc {
	return func(c *Config) {
		c.eventBus = bus
	}
}

// WithClock overrides the time source used for purchase and expiry checks
func WithClock(clock func() time.Time) ConfigOptionFunc {
	return func(c *Config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithAdmin sets the administrator allowed to revoke any licence
func WithAdmin(admin address.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.admin = admin
	}
}

func WithPaymentMint(mint address.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.mint = mint
	}
}

func WithMintAuthority(authority address.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.mintAuthority = authority
	}
}

// WithTreasury sets the owner of the token account receiving platform fees
func WithTreasury(treasury address.Address) ConfigOptionFunc {
	return func(c *Config) {
		c.treasury = treasury
	}
}

func WithPlatformFeeBps(feeBps uint16) ConfigOptionFunc {
	return func(c *Config) {
		c.platformFeeBps = feeBps
	}
}
