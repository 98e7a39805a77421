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
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"
)

const (
	SigningKeyType      = "SigningKeyEd25519"
	VerificationKeyType = "VerificationKeyEd25519"

	// Valid key files are well under this size
	maxKeyFileSize = 1 << 20
)

var (
	ErrUnknownKeyType   = errors.New("unknown key type")
	ErrInvalidKeyLength = errors.New("invalid key length")
)

// keyFileEnvelope is the JSON text envelope of a key file. The key bytes
// are CBOR encoded and hex armoured.
type keyFileEnvelope struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	CborHex     string `json:"cborHex"`
}

// loadedKey holds the parsed contents of a key file
type loadedKey struct {
	Type        string
	Description string
	SKey        ed25519.PrivateKey
	VKey        ed25519.PublicKey
}

// loadKeyFromFile loads a key from path. Signing keys must be private to their
// owner, otherwise ErrInsecureFileMode is returned.
//
// Permissions are checked on the open handle to avoid a race between the
// check and the read.
func loadKeyFromFile(path string) (*loadedKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open key file %q: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxKeyFileSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read key file %q: %w", path, err)
	}
	key, err := parseKeyEnvelope(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key file %q: %w", path, err)
	}
	if key.SKey != nil {
		if err := checkOpenFilePermissions(f); err != nil {
			return nil, err
		}
	}
	return key, nil
}

func parseKeyEnvelope(fileBytes []byte) (*loadedKey, error) {
	var env keyFileEnvelope
	if err := json.Unmarshal(fileBytes, &env); err != nil {
		return nil, fmt.Errorf("could not parse key file envelope: %w", err)
	}
	cborData, err := hex.DecodeString(env.CborHex)
	if err != nil {
		return nil, fmt.Errorf("could not decode key from hex: %w", err)
	}
	var keyBytes []byte
	if _, err := cbor.UnmarshalFirst(cborData, &keyBytes); err != nil {
		return nil, fmt.Errorf("could not decode key from CBOR: %w", err)
	}
	lk := &loadedKey{
		Type:        env.Type,
		Description: env.Description,
	}
	switch env.Type {
	case SigningKeyType:
		if len(keyBytes) != ed25519.SeedSize {
			return nil, fmt.Errorf(
				"%w: signing key has %d bytes, expected %d",
				ErrInvalidKeyLength,
				len(keyBytes),
				ed25519.SeedSize,
			)
		}
		lk.SKey = ed25519.NewKeyFromSeed(keyBytes)
		lk.VKey = lk.SKey.Public().(ed25519.PublicKey) //nolint:forcetypeassert
		return lk, nil
	case VerificationKeyType:
		if len(keyBytes) != ed25519.PublicKeySize {
			return nil, fmt.Errorf(
				"%w: verification key has %d bytes, expected %d",
				ErrInvalidKeyLength,
				len(keyBytes),
				ed25519.PublicKeySize,
			)
		}
		lk.VKey = ed25519.PublicKey(keyBytes)
		return lk, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownKeyType, env.Type)
	}
}

func encodeKeyEnvelope(keyType string, description string, keyBytes []byte) ([]byte, error) {
	cborData, err := cbor.Marshal(keyBytes)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(
		keyFileEnvelope{
			Type:        keyType,
			Description: description,
			CborHex:     hex.EncodeToString(cborData),
		},
		"",
		"    ",
	)
}

// writeKeyFile creates path with the given mode. An existing file is never
// overwritten.
func writeKeyFile(path string, mode os.FileMode, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return fmt.Errorf("failed to create key file %q: %w", path, err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write key file %q: %w", path, err)
	}
	return f.Close()
}
