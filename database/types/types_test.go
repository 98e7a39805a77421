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

package types_test

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/Abraham12611/creator-claim/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUint64ScanValue(t *testing.T) {
	orig := types.Uint64(18446744073709551615)
	var valuer driver.Valuer = orig
	valueOut, err := valuer.Value()
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551615", valueOut)
	var tmp types.Uint64
	var scanner sql.Scanner = &tmp
	require.NoError(t, scanner.Scan(valueOut))
	assert.Equal(t, orig, tmp)
}

func TestUint64ScanTypes(t *testing.T) {
	testDefs := []struct {
		name     string
		input    any
		expected types.Uint64
		wantErr  bool
	}{
		{name: "string", input: "42", expected: 42},
		{name: "bytes", input: []byte("7"), expected: 7},
		{name: "int64", input: int64(99), expected: 99},
		{name: "negative", input: int64(-1), wantErr: true},
		{name: "float", input: 1.5, wantErr: true},
		{name: "garbage", input: "abc", wantErr: true},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			var tmp types.Uint64
			err := tmp.Scan(testDef.input)
			if testDef.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, tmp)
		})
	}
}

func TestAccountBlobKey(t *testing.T) {
	addr := []byte{1, 2, 3}
	key := types.AccountBlobKey(addr)
	assert.Equal(t, []byte("acct\x01\x02\x03"), key)
}
