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

// Package keystore manages the ed25519 signing keys of registry users. Keys
// live in a directory as JSON text envelopes, one signing key and one
// verification key file per name.
package keystore

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/Abraham12611/creator-claim/address"
)

const (
	signingKeyExt      = ".skey"
	verificationKeyExt = ".vkey"
)

// Common errors returned by KeyStore operations.
var (
	ErrInsecureFileMode = errors.New("insecure file permissions")
	ErrKeyNotFound      = errors.New("key not found")
	ErrKeyExists        = errors.New("key already exists")
	ErrInvalidKeyName   = errors.New("invalid key name")
)

var keyNameRegexp = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// Key is a loaded signing key
type Key struct {
	Name    string
	Private ed25519.PrivateKey
	Address address.Address
}

// KeyStoreConfig holds configuration for the KeyStore.
type KeyStoreConfig struct {
	// Dir holds the key files. It is created on first use.
	Dir string
	// Random overrides the entropy source for key generation.
	Random io.Reader
	Logger *slog.Logger
}

type KeyStore struct {
	config KeyStoreConfig
	logger *slog.Logger
	mu     sync.Mutex
	cache  map[string]*Key
}

func NewKeyStore(config KeyStoreConfig) *KeyStore {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Random == nil {
		config.Random = rand.Reader
	}
	return &KeyStore{
		config: config,
		logger: config.Logger.With("component", "keystore"),
		cache:  make(map[string]*Key),
	}
}

func (ks *KeyStore) paths(name string) (string, string, error) {
	if !keyNameRegexp.MatchString(name) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidKeyName, name)
	}
	base := filepath.Join(ks.config.Dir, name)
	return base + signingKeyExt, base + verificationKeyExt, nil
}

// Generate creates a new key pair under name and writes both key files
func (ks *KeyStore) Generate(name string, description string) (*Key, error) {
	skeyPath, vkeyPath, err := ks.paths(name)
	if err != nil {
		return nil, err
	}
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if _, err := os.Stat(skeyPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrKeyExists, name)
	}
	if err := os.MkdirAll(ks.config.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	pub, priv, err := ed25519.GenerateKey(ks.config.Random)
	if err != nil {
		return nil, err
	}
	skeyData, err := encodeKeyEnvelope(SigningKeyType, description, priv.Seed())
	if err != nil {
		return nil, err
	}
	vkeyData, err := encodeKeyEnvelope(VerificationKeyType, description, pub)
	if err != nil {
		return nil, err
	}
	if err := writeKeyFile(skeyPath, 0o600, skeyData); err != nil {
		return nil, err
	}
	if err := writeKeyFile(vkeyPath, 0o644, vkeyData); err != nil {
		return nil, err
	}
	key := &Key{
		Name:    name,
		Private: priv,
		Address: address.FromPublicKey(pub),
	}
	ks.cache[name] = key
	ks.logger.Info(
		"generated key",
		"name", name,
		"address", key.Address.String(),
	)
	return key, nil
}

// Load reads the signing key stored under name
func (ks *KeyStore) Load(name string) (*Key, error) {
	skeyPath, _, err := ks.paths(name)
	if err != nil {
		return nil, err
	}
	ks.mu.Lock()
	defer ks.mu.Unlock()
	if key, ok := ks.cache[name]; ok {
		return key, nil
	}
	lk, err := loadKeyFromFile(skeyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
		}
		return nil, err
	}
	if lk.SKey == nil {
		return nil, fmt.Errorf(
			"%w: %s holds a %s",
			ErrUnknownKeyType,
			skeyPath,
			lk.Type,
		)
	}
	key := &Key{
		Name:    name,
		Private: lk.SKey,
		Address: address.FromPublicKey(lk.VKey),
	}
	ks.cache[name] = key
	return key, nil
}

// Address returns the address of name from its verification key file, so
// that other users' keys can be referenced without their signing key
func (ks *KeyStore) Address(name string) (address.Address, error) {
	_, vkeyPath, err := ks.paths(name)
	if err != nil {
		return address.Zero, err
	}
	lk, err := loadKeyFromFile(vkeyPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return address.Zero, fmt.Errorf("%w: %s", ErrKeyNotFound, name)
		}
		return address.Zero, err
	}
	return address.FromPublicKey(lk.VKey), nil
}

// List returns the names of all keys with a verification key file
func (ks *KeyStore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.config.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var ret []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), verificationKeyExt) {
			continue
		}
		ret = append(ret, strings.TrimSuffix(entry.Name(), verificationKeyExt))
	}
	sort.Strings(ret)
	return ret, nil
}

// ResolveAddress accepts either a base58 address or the name of a key in
// the store
func (ks *KeyStore) ResolveAddress(value string) (address.Address, error) {
	if keyNameRegexp.MatchString(value) {
		if addr, err := ks.Address(value); err == nil {
			return addr, nil
		}
	}
	addr, err := address.Parse(value)
	if err != nil {
		return address.Zero, fmt.Errorf(
			"%q is neither a key name nor an address: %w",
			value,
			err,
		)
	}
	return addr, nil
}
