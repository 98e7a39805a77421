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

package badger

import (
	"sync"
	"time"

	"github.com/Abraham12611/creator-claim/database/plugin"
)

// cmdlineOptions holds the values bound to the badger plugin flags
type cmdlineOptions struct {
	dataDir        string
	blockCacheSize uint64
	indexCacheSize uint64
	gcIntervalMins uint64
	gcEnabled      bool
	syncWrites     bool
}

var (
	cmdline = cmdlineOptions{
		dataDir:        ".creatorclaim",
		blockCacheSize: DefaultBlockCacheSize,
		indexCacheSize: DefaultIndexCacheSize,
		gcIntervalMins: uint64(DefaultGcInterval / time.Minute),
		gcEnabled:      true,
		syncWrites:     true,
	}
	cmdlineMutex sync.RWMutex
)

func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeBlob,
			Name:               "badger",
			Description:        "BadgerDB local key-value store",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options:            cmdline.pluginOptions(),
		},
	)
}

func (o *cmdlineOptions) pluginOptions() []plugin.PluginOption {
	return []plugin.PluginOption{
		{
			Name:         "data-dir",
			Type:         plugin.PluginOptionTypeString,
			Description:  "Data directory for badger storage (empty for in-memory)",
			DefaultValue: o.dataDir,
			Dest:         &o.dataDir,
		},
		{
			Name:         "block-cache-size",
			Type:         plugin.PluginOptionTypeUint,
			Description:  "Badger block cache size in bytes",
			DefaultValue: o.blockCacheSize,
			Dest:         &o.blockCacheSize,
		},
		{
			Name:         "index-cache-size",
			Type:         plugin.PluginOptionTypeUint,
			Description:  "Badger index cache size in bytes",
			DefaultValue: o.indexCacheSize,
			Dest:         &o.indexCacheSize,
		},
		{
			Name:         "gc",
			Type:         plugin.PluginOptionTypeBool,
			Description:  "Enable value log garbage collection",
			DefaultValue: o.gcEnabled,
			Dest:         &o.gcEnabled,
		},
		{
			Name:         "gc-interval",
			Type:         plugin.PluginOptionTypeUint,
			Description:  "Minutes between value log garbage collection passes",
			DefaultValue: o.gcIntervalMins,
			Dest:         &o.gcIntervalMins,
		},
		{
			Name:         "sync-writes",
			Type:         plugin.PluginOptionTypeBool,
			Description:  "Fsync every commit before acknowledging it",
			DefaultValue: o.syncWrites,
			Dest:         &o.syncWrites,
		},
	}
}

func (o *cmdlineOptions) storeOptions() []BlobStoreBadgerOptionFunc {
	return []BlobStoreBadgerOptionFunc{
		WithDataDir(o.dataDir),
		WithBlockCacheSize(o.blockCacheSize),
		WithIndexCacheSize(o.indexCacheSize),
		WithGc(o.gcEnabled),
		WithGcInterval(time.Duration(min(o.gcIntervalMins, 1<<20)) * time.Minute),
		WithSyncWrites(o.syncWrites),
	}
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineMutex.RLock()
	opts := cmdline.storeOptions()
	cmdlineMutex.RUnlock()
	p, err := New(opts...)
	if err != nil {
		// Return a plugin that defers the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
