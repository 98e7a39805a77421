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

package address

import (
	"errors"
	"fmt"

	"filippo.io/edwards25519"
	"golang.org/x/crypto/blake2b"
)

const (
	MaxSeeds      = 16
	MaxSeedLength = 32

	derivedAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrTooManySeeds       = errors.New("too many seeds")
	ErrSeedTooLong        = errors.New("seed exceeds maximum length")
	ErrOnCurve            = errors.New("derived address lies on the ed25519 curve")
	ErrNoViableBump       = errors.New("no viable bump seed found")
	ErrDerivationMismatch = errors.New("address does not match derivation")
)

// IsOnCurve reports whether the address decodes as a valid ed25519 point.
// Such addresses may have a private key and can never be program-derived.
func IsOnCurve(addr Address) bool {
	_, err := new(edwards25519.Point).SetBytes(addr[:])
	return err == nil
}

// CreateProgramAddress hashes the seeds together with the owning program.
// The result must fall outside the ed25519 curve so that no private key
// can exist for it.
func CreateProgramAddress(seeds [][]byte, program Address) (Address, error) {
	if len(seeds) > MaxSeeds {
		return Zero, ErrTooManySeeds
	}
	h, err := blake2b.New256(nil)
	if err != nil {
		return Zero, err
	}
	for idx, seed := range seeds {
		if len(seed) > MaxSeedLength {
			return Zero, fmt.Errorf("%w: seed %d", ErrSeedTooLong, idx)
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(derivedAddressMarker))
	var ret Address
	copy(ret[:], h.Sum(nil))
	if IsOnCurve(ret) {
		return Zero, ErrOnCurve
	}
	return ret, nil
}

// FindProgramAddress searches for the first bump, counting down from 255,
// that yields an off-curve address for the given seeds
func FindProgramAddress(
	seeds [][]byte,
	program Address,
) (Address, uint8, error) {
	if len(seeds) >= MaxSeeds {
		return Zero, 0, ErrTooManySeeds
	}
	tmpSeeds := make([][]byte, len(seeds), len(seeds)+1)
	copy(tmpSeeds, seeds)
	for bump := 255; bump >= 0; bump-- {
		//nolint:gosec // bump is bounded to uint8 range
		addr, err := CreateProgramAddress(
			append(tmpSeeds, []byte{uint8(bump)}),
			program,
		)
		if err == nil {
			//nolint:gosec
			return addr, uint8(bump), nil
		}
		if !errors.Is(err, ErrOnCurve) {
			return Zero, 0, err
		}
	}
	return Zero, 0, ErrNoViableBump
}

// VerifyProgramAddress checks that addr is the canonical derivation of the
// seeds under program and returns the bump
func VerifyProgramAddress(
	addr Address,
	seeds [][]byte,
	program Address,
) (uint8, error) {
	expected, bump, err := FindProgramAddress(seeds, program)
	if err != nil {
		return 0, err
	}
	if expected != addr {
		return 0, fmt.Errorf(
			"%w: expected %s, got %s",
			ErrDerivationMismatch,
			expected,
			addr,
		)
	}
	return bump, nil
}
