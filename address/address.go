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

// Package address implements the 32-byte account addresses used by the
// registries, their base58 text form and program-derived addresses.
package address

import (
	"bytes"
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

const Size = 32

var (
	ErrInvalidLength   = errors.New("invalid address length")
	ErrInvalidEncoding = errors.New("invalid address encoding")
)

// Address identifies an account. It is either an ed25519 public key or a
// program-derived address.
type Address [Size]byte

// Zero is the all-zero address
var Zero Address

func New(data []byte) (Address, error) {
	var ret Address
	if len(data) != Size {
		return ret, fmt.Errorf(
			"%w: expected %d bytes, got %d",
			ErrInvalidLength,
			Size,
			len(data),
		)
	}
	copy(ret[:], data)
	return ret, nil
}

// MustNew is like New but panics on error. It is meant for tests and
// well-known constants.
func MustNew(data []byte) Address {
	ret, err := New(data)
	if err != nil {
		panic(err)
	}
	return ret
}

// Parse decodes the base58 text form of an address
func Parse(s string) (Address, error) {
	if s == "" {
		return Zero, ErrInvalidEncoding
	}
	data := base58.Decode(s)
	if len(data) == 0 {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidEncoding, s)
	}
	return New(data)
}

func FromPublicKey(pub ed25519.PublicKey) Address {
	var ret Address
	copy(ret[:], pub)
	return ret
}

// ProgramID returns the well-known identity of a program given its name
func ProgramID(name string) Address {
	return Address(blake2b.Sum256([]byte(name)))
}

func (a Address) Bytes() []byte {
	return bytes.Clone(a[:])
}

func (a Address) IsZero() bool {
	return a == Zero
}

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) Equal(other Address) bool {
	return a == other
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(data []byte) error {
	tmp, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = tmp
	return nil
}

// Decode implements envconfig.Decoder
func (a *Address) Decode(value string) error {
	if value == "" {
		*a = Zero
		return nil
	}
	return a.UnmarshalText([]byte(value))
}
