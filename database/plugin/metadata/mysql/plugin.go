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

package mysql

import (
	"sync"

	"github.com/Abraham12611/creator-claim/database/plugin"
)

var (
	cmdlineSettings      = DefaultSettings
	cmdlineSettingsMutex sync.RWMutex
)

// The conventional client variables configure the connection
var mysqlEnvVars = map[string]string{
	"host":     "MYSQL_HOST",
	"port":     "MYSQL_PORT",
	"user":     "MYSQL_USER",
	"password": "MYSQL_PASSWORD",
	"database": "MYSQL_DATABASE",
	"dsn":      "MYSQL_DSN",
}

func init() {
	plugin.Register(
		plugin.PluginEntry{
			Type:               plugin.PluginTypeMetadata,
			Name:               "mysql",
			Description:        "MySQL relational database",
			NewFromOptionsFunc: NewFromCmdlineOptions,
			Options: cmdlineSettings.PluginOptions(
				"MySQL",
				DefaultSettings,
				mysqlEnvVars,
			),
		},
	)
}

func NewFromCmdlineOptions() plugin.Plugin {
	cmdlineSettingsMutex.RLock()
	settings := cmdlineSettings
	cmdlineSettingsMutex.RUnlock()
	p, err := NewWithOptions(WithSettings(settings))
	if err != nil {
		// Return a plugin that defers the error to Start()
		return plugin.NewErrorPlugin(err)
	}
	return p
}
