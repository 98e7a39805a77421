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

package mysql_test

import (
	"testing"
	"time"

	"github.com/Abraham12611/creator-claim/database/plugin/metadata/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	db, err := mysql.NewWithOptions(
		mysql.WithSettings(mysql.Settings{
			Host:     "db.internal",
			User:     "claim",
			Password: "secret",
			SSLMode:  "skip-verify",
		}),
	)
	require.NoError(t, err)
	dsn := db.DSN()
	assert.Contains(t, dsn, "claim:secret@tcp(db.internal:3306)/creatorclaim")
	assert.Contains(t, dsn, "tls=skip-verify")
	assert.Contains(t, dsn, "parseTime=true")

	db, err = mysql.NewWithOptions(mysql.WithDSN("u:p@tcp(h:1)/x"))
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(h:1)/x", db.DSN())
}

func TestDefaultSettings(t *testing.T) {
	db, err := mysql.NewWithOptions(
		mysql.WithSettings(mysql.Settings{MaxOpenConns: 8}),
	)
	require.NoError(t, err)
	settings := db.Settings()
	assert.Equal(t, "localhost", settings.Host)
	assert.Equal(t, uint64(3306), settings.Port)
	pool := settings.Pool()
	assert.Equal(t, 8, pool.MaxOpenConns)
	assert.Equal(t, 10, pool.MaxIdleConns)
	assert.Equal(t, time.Hour, pool.ConnMaxLifetime)
}

func TestInvalidTimeZone(t *testing.T) {
	_, err := mysql.NewWithOptions(
		mysql.WithSettings(mysql.Settings{TimeZone: "Mars/Olympus_Mons"}),
	)
	require.Error(t, err)
}
