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

package keystore

import (
	"bytes"
	"crypto/ed25519"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isWindows() bool {
	return runtime.GOOS == "windows"
}

func newTestKeyStore(t *testing.T) *KeyStore {
	t.Helper()
	return NewKeyStore(KeyStoreConfig{
		Dir: filepath.Join(t.TempDir(), "keys"),
	})
}

func TestGenerateAndLoad(t *testing.T) {
	ks := newTestKeyStore(t)
	key, err := ks.Generate("alice", "Alice's key")
	require.NoError(t, err)
	assert.Equal(t, "alice", key.Name)
	assert.True(t, address.IsOnCurve(key.Address))

	// A fresh store reads the same key back from disk
	reloaded := NewKeyStore(ks.config)
	loaded, err := reloaded.Load("alice")
	require.NoError(t, err)
	assert.Equal(t, key.Address, loaded.Address)
	assert.True(t, key.Private.Equal(loaded.Private))

	addr, err := reloaded.Address("alice")
	require.NoError(t, err)
	assert.Equal(t, key.Address, addr)

	if !isWindows() {
		fi, err := os.Stat(filepath.Join(ks.config.Dir, "alice.skey"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())
	}
}

func TestGenerateDeterministic(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	ks := NewKeyStore(KeyStoreConfig{
		Dir:    t.TempDir(),
		Random: bytes.NewReader(seed),
	})
	key, err := ks.Generate("fixed", "")
	require.NoError(t, err)
	expected := ed25519.NewKeyFromSeed(seed).Public().(ed25519.PublicKey)
	assert.Equal(t, address.FromPublicKey(expected), key.Address)
}

func TestGenerateExisting(t *testing.T) {
	ks := newTestKeyStore(t)
	_, err := ks.Generate("bob", "")
	require.NoError(t, err)
	_, err = ks.Generate("bob", "")
	require.ErrorIs(t, err, ErrKeyExists)
}

func TestLoadMissing(t *testing.T) {
	ks := newTestKeyStore(t)
	_, err := ks.Load("nobody")
	require.ErrorIs(t, err, ErrKeyNotFound)
	_, err = ks.Address("nobody")
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestInvalidKeyNames(t *testing.T) {
	ks := newTestKeyStore(t)
	for _, name := range []string{"", "../escape", "a/b", ".hidden"} {
		_, err := ks.Generate(name, "")
		require.ErrorIs(t, err, ErrInvalidKeyName, name)
	}
}

func TestInsecureFileMode(t *testing.T) {
	if isWindows() {
		t.Skip("file modes are not used on Windows")
	}
	ks := newTestKeyStore(t)
	_, err := ks.Generate("carol", "")
	require.NoError(t, err)
	skeyPath := filepath.Join(ks.config.Dir, "carol.skey")
	require.NoError(t, os.Chmod(skeyPath, 0o644))

	_, err = NewKeyStore(ks.config).Load("carol")
	require.ErrorIs(t, err, ErrInsecureFileMode)

	// Verification keys are public
	_, err = ks.Address("carol")
	require.NoError(t, err)
}

func TestListKeys(t *testing.T) {
	ks := newTestKeyStore(t)
	names, err := ks.List()
	require.NoError(t, err)
	assert.Empty(t, names)
	for _, name := range []string{"zed", "amy"} {
		_, err := ks.Generate(name, "")
		require.NoError(t, err)
	}
	names, err = ks.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"amy", "zed"}, names)
}

func TestResolveAddress(t *testing.T) {
	ks := newTestKeyStore(t)
	key, err := ks.Generate("dave", "")
	require.NoError(t, err)
	addr, err := ks.ResolveAddress("dave")
	require.NoError(t, err)
	assert.Equal(t, key.Address, addr)

	other := address.ProgramID("other")
	addr, err = ks.ResolveAddress(other.String())
	require.NoError(t, err)
	assert.Equal(t, other, addr)

	_, err = ks.ResolveAddress("not-a-key")
	require.Error(t, err)
}

func TestParseKeyEnvelope(t *testing.T) {
	seed := bytes.Repeat([]byte{1}, ed25519.SeedSize)
	validSigning, err := encodeKeyEnvelope(SigningKeyType, "", seed)
	require.NoError(t, err)
	shortSigning, err := encodeKeyEnvelope(SigningKeyType, "", seed[:31])
	require.NoError(t, err)
	unknown, err := encodeKeyEnvelope("VrfSigningKey_PraosVRF", "", seed)
	require.NoError(t, err)

	testDefs := []struct {
		name  string
		input []byte
		err   error
	}{
		{name: "valid", input: validSigning},
		{name: "short key", input: shortSigning, err: ErrInvalidKeyLength},
		{name: "unknown type", input: unknown, err: ErrUnknownKeyType},
		{
			name:  "bad hex",
			input: []byte(`{"type":"SigningKeyEd25519","cborHex":"zz"}`),
		},
		{name: "not json", input: []byte("garbage")},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			lk, err := parseKeyEnvelope(testDef.input)
			switch {
			case testDef.name == "valid":
				require.NoError(t, err)
				assert.Equal(t, SigningKeyType, lk.Type)
				assert.True(t, ed25519.NewKeyFromSeed(seed).Equal(lk.SKey))
			case testDef.err != nil:
				require.ErrorIs(t, err, testDef.err)
			default:
				require.Error(t, err)
			}
		})
	}
}
