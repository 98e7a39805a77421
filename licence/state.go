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

package licence

import (
	"math"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/Abraham12611/creator-claim/runtime"
)

type Status uint8

const (
	StatusActive Status = iota + 1
	StatusRevoked
	// StatusExpired is never stored. It is reported by EffectiveStatus once
	// an active licence passes its expiry.
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusRevoked:
		return "revoked"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

var LicenceDiscriminator = runtime.AccountDiscriminator("Licence")

// Licence records a purchase of usage rights against a certificate
type Licence struct {
	_                  struct{} `cbor:",toarray"`
	CertificateDetails address.Address
	Buyer              address.Address
	PurchasePrice      uint64
	PurchaseTimestamp  int64
	ExpiryTimestamp    *int64
	Status             Status
	Bump               uint8
}

var LicenceSize = func() uint32 {
	// CBOR integers are widest at the extremes
	widest := int64(math.MinInt64)
	return runtime.MustSize(&Licence{
		PurchasePrice:     ^uint64(0),
		PurchaseTimestamp: widest,
		ExpiryTimestamp:   &widest,
		Status:            StatusExpired,
		Bump:              255,
	})
}()

// Perpetual reports whether the licence has no expiry
func (l *Licence) Perpetual() bool {
	return l.ExpiryTimestamp == nil
}

// Expired reports whether now is past the expiry timestamp
func (l *Licence) Expired(now time.Time) bool {
	return l.ExpiryTimestamp != nil && now.Unix() > *l.ExpiryTimestamp
}

// EffectiveStatus derives the status at time now. Revocation takes
// precedence over expiry.
func (l *Licence) EffectiveStatus(now time.Time) Status {
	if l.Status == StatusActive && l.Expired(now) {
		return StatusExpired
	}
	return l.Status
}

// Verify checks that holder may use the licence at time now
func (l *Licence) Verify(holder address.Address, now time.Time) error {
	switch l.EffectiveStatus(now) {
	case StatusRevoked:
		return ErrLicenceRevoked
	case StatusExpired:
		return ErrLicenceExpired.WithMessage(
			"expired at %s",
			time.Unix(*l.ExpiryTimestamp, 0).UTC().Format(time.RFC3339),
		)
	}
	if l.Buyer != holder {
		return ErrBuyerMismatch.WithMessage(
			"licence belongs to %s, not %s",
			l.Buyer,
			holder,
		)
	}
	return nil
}

func Decode(acct *database.Account) (*Licence, error) {
	ret := &Licence{}
	if err := runtime.DecodeAccount(acct, ProgramID, LicenceDiscriminator, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// DeriveAddress returns the licence address for a certificate and buyer
func DeriveAddress(
	cert address.Address,
	buyer address.Address,
) (address.Address, uint8, error) {
	return address.FindProgramAddress(
		[][]byte{[]byte(SeedPrefix), cert[:], buyer[:]},
		ProgramID,
	)
}
