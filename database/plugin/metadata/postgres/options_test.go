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

package postgres_test

import (
	"os"
	"testing"

	"github.com/Abraham12611/creator-claim/database/models"
	"github.com/Abraham12611/creator-claim/database/plugin/metadata/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAndDSN(t *testing.T) {
	db, err := postgres.NewWithOptions(
		postgres.WithSettings(postgres.Settings{
			Host:     "db.internal",
			Password: "secret",
		}),
	)
	require.NoError(t, err)
	assert.Equal(
		t,
		"host=db.internal port=5432 user=postgres password=secret dbname=creatorclaim sslmode=disable TimeZone=UTC",
		db.DSN(),
	)
	db, err = postgres.NewWithOptions(
		postgres.WithDSN(" postgres://u:p@h/db "),
	)
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h/db", db.DSN())
}

func TestDSNQuoting(t *testing.T) {
	db, err := postgres.NewWithOptions(
		postgres.WithSettings(postgres.Settings{Password: `it's a secret`}),
	)
	require.NoError(t, err)
	assert.Contains(t, db.DSN(), `password='it\'s a secret'`)
}

// TestLiveDatabase runs against a real server when CREATORCLAIM_TEST_POSTGRES_DSN is set
func TestLiveDatabase(t *testing.T) {
	dsn := os.Getenv("CREATORCLAIM_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("CREATORCLAIM_TEST_POSTGRES_DSN not set")
	}
	db, err := postgres.NewWithOptions(postgres.WithDSN(dsn))
	require.NoError(t, err)
	require.NoError(t, db.Start())
	defer db.Close()
	txn := db.Transaction()
	require.NoError(t, db.SetLicence(&models.Licence{
		Address: make([]byte, 32),
		Status:  models.LicenceStatusActive,
	}, txn))
	require.NoError(t, txn.Rollback())
}
