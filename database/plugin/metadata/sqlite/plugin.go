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

package sqlite

import (
	"sync"
	"time"

	"github.com/Abraham12611/creator-claim/database/plugin"
)

var (
	cmdlineOptions = struct {
		dataDir             string
		busyTimeoutMs       uint64
		vacuumIntervalHours uint64
	}{
		dataDir:             ".creatorclaim",
		busyTimeoutMs:       uint64(DefaultBusyTimeout / time.Millisecond),
		vacuumIntervalHours: uint64(DefaultVacuumInterval / time.Hour),
	}
	cmdlineOptionsMutex sync.RWMutex
)

func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "sqlite",
			Description:        "SQLite relational database",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: []plugin.PluginOption{
				{
					Name:         "data-dir",
					Type:         plugin.PluginOptionTypeString,
					Description:  "Data directory for sqlite storage (empty for in-memory)",
					DefaultValue: cmdlineOptions.dataDir,
					Dest:         &(cmdlineOptions.dataDir),
				},
				{
					Name:         "busy-timeout",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Milliseconds to wait for a locked replica file",
					DefaultValue: cmdlineOptions.busyTimeoutMs,
					Dest:         &(cmdlineOptions.busyTimeoutMs),
				},
				{
					Name:         "vacuum-interval",
					Type:         plugin.PluginOptionTypeUint,
					Description:  "Hours between VACUUM runs (0 to disable)",
					DefaultValue: cmdlineOptions.vacuumIntervalHours,
					Dest:         &(cmdlineOptions.vacuumIntervalHours),
				},
			},
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineOptionsMutex.RLock()
	opts := []SqliteOptionFunc{
		WithDataDir(cmdlineOptions.dataDir),
		WithBusyTimeout(
			time.Duration(min(cmdlineOptions.busyTimeoutMs, 1<<31)) * time.Millisecond,
		),
		WithVacuumInterval(
			time.Duration(min(cmdlineOptions.vacuumIntervalHours, 1<<20)) * time.Hour,
		),
	}
	cmdlineOptionsMutex.RUnlock()
	p, err := NewWithOptions(opts...)
	if err != nil {
		// Return a plugin that defers the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
