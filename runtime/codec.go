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

package runtime

import (
	"bytes"
	"fmt"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

const DiscriminatorSize = 8

// Discriminator prefixes encoded records and instruction data so that one
// kind can never be decoded as another
type Discriminator [DiscriminatorSize]byte

func newDiscriminator(namespace string, name string) Discriminator {
	var ret Discriminator
	sum := blake2b.Sum256([]byte(namespace + ":" + name))
	copy(ret[:], sum[:DiscriminatorSize])
	return ret
}

// AccountDiscriminator returns the type tag for a record kind
func AccountDiscriminator(name string) Discriminator {
	return newDiscriminator("account", name)
}

// InstructionDiscriminator returns the tag selecting a program operation
func InstructionDiscriminator(name string) Discriminator {
	return newDiscriminator("instruction", name)
}

// Encode returns the discriminator followed by the CBOR encoding of v
func Encode(d Discriminator, v any) ([]byte, error) {
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append(d[:], data...), nil
}

// Decode checks the discriminator prefix of data and decodes the rest into v
func Decode(d Discriminator, data []byte, v any) error {
	if len(data) < DiscriminatorSize ||
		!bytes.Equal(data[:DiscriminatorSize], d[:]) {
		return ErrInvalidAccountData.WithMessage("unexpected discriminator")
	}
	if err := cbor.Unmarshal(data[DiscriminatorSize:], v); err != nil {
		return ErrInvalidAccountData.WithMessage("decode: %s", err)
	}
	return nil
}

// DecodeAccount decodes a record after checking that owner created it
func DecodeAccount(
	acct *database.Account,
	owner address.Address,
	d Discriminator,
	v any,
) error {
	if acct.Owner != owner {
		return ErrIllegalOwner.WithMessage(
			"expected owner %s, got %s",
			owner,
			acct.Owner,
		)
	}
	return Decode(d, acct.Data, v)
}

// SplitInstruction separates the operation tag from its arguments
func SplitInstruction(data []byte) (Discriminator, []byte, error) {
	var d Discriminator
	if len(data) < DiscriminatorSize {
		return d, nil, ErrInvalidInstructionData.WithMessage(
			"instruction data too short: %d bytes",
			len(data),
		)
	}
	copy(d[:], data[:DiscriminatorSize])
	return d, data[DiscriminatorSize:], nil
}

// DecodeArgs decodes CBOR instruction arguments into v
func DecodeArgs(data []byte, v any) error {
	if err := cbor.Unmarshal(data, v); err != nil {
		return ErrInvalidInstructionData.WithMessage("%s", err)
	}
	return nil
}

// MustSize returns the encoded size of v plus its discriminator. It is used
// to size accounts for their largest possible record.
func MustSize(v any) uint32 {
	data, err := encMode.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("size record: %s", err))
	}
	//nolint:gosec
	return uint32(DiscriminatorSize + len(data))
}
