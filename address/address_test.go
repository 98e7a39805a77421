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

package address_test

import (
	"bytes"
	"crypto/ed25519"
	"testing"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRoundTrip(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	addr := address.FromPublicKey(pub)
	parsed, err := address.Parse(addr.String())
	require.NoError(t, err)
	assert.Equal(t, addr, parsed)
	assert.False(t, addr.IsZero())
}

func TestParseInvalid(t *testing.T) {
	testDefs := []struct {
		name  string
		input string
		err   error
	}{
		{name: "empty", input: "", err: address.ErrInvalidEncoding},
		{name: "bad alphabet", input: "0OIl", err: address.ErrInvalidEncoding},
		{name: "short", input: "3mJr7AoUXx2Wqd", err: address.ErrInvalidLength},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := address.Parse(testDef.input)
			require.ErrorIs(t, err, testDef.err)
		})
	}
}

func TestTextMarshal(t *testing.T) {
	addr := address.ProgramID("test")
	text, err := addr.MarshalText()
	require.NoError(t, err)
	var decoded address.Address
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, addr, decoded)
}

func TestFindProgramAddressDeterministic(t *testing.T) {
	program := address.ProgramID("program")
	seeds := [][]byte{[]byte("licence"), bytes.Repeat([]byte{1}, 32)}
	addr1, bump1, err := address.FindProgramAddress(seeds, program)
	require.NoError(t, err)
	addr2, bump2, err := address.FindProgramAddress(seeds, program)
	require.NoError(t, err)
	assert.Equal(t, addr1, addr2)
	assert.Equal(t, bump1, bump2)
	assert.False(t, address.IsOnCurve(addr1))

	// Different seeds or program produce different addresses
	other, _, err := address.FindProgramAddress(
		[][]byte{[]byte("licence"), bytes.Repeat([]byte{2}, 32)},
		program,
	)
	require.NoError(t, err)
	assert.NotEqual(t, addr1, other)
	other, _, err = address.FindProgramAddress(
		seeds,
		address.ProgramID("other"),
	)
	require.NoError(t, err)
	assert.NotEqual(t, addr1, other)

	// The returned bump recreates the same address
	recreated, err := address.CreateProgramAddress(
		append(seeds, []byte{bump1}),
		program,
	)
	require.NoError(t, err)
	assert.Equal(t, addr1, recreated)
}

func TestVerifyProgramAddress(t *testing.T) {
	program := address.ProgramID("program")
	seeds := [][]byte{[]byte("certificate_details"), []byte("asset")}
	addr, bump, err := address.FindProgramAddress(seeds, program)
	require.NoError(t, err)
	gotBump, err := address.VerifyProgramAddress(addr, seeds, program)
	require.NoError(t, err)
	assert.Equal(t, bump, gotBump)
	_, err = address.VerifyProgramAddress(
		address.ProgramID("elsewhere"),
		seeds,
		program,
	)
	require.ErrorIs(t, err, address.ErrDerivationMismatch)
}

func TestPublicKeysAreOnCurve(t *testing.T) {
	for range 8 {
		pub, _, err := ed25519.GenerateKey(nil)
		require.NoError(t, err)
		assert.True(t, address.IsOnCurve(address.FromPublicKey(pub)))
	}
}

func TestSeedLimits(t *testing.T) {
	program := address.ProgramID("program")
	_, _, err := address.FindProgramAddress(
		[][]byte{bytes.Repeat([]byte{1}, address.MaxSeedLength+1)},
		program,
	)
	require.ErrorIs(t, err, address.ErrSeedTooLong)
	seeds := make([][]byte, address.MaxSeeds)
	for i := range seeds {
		seeds[i] = []byte{byte(i)}
	}
	_, _, err = address.FindProgramAddress(seeds, program)
	require.ErrorIs(t, err, address.ErrTooManySeeds)
}
