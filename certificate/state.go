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

package certificate

import (
	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/Abraham12611/creator-claim/runtime"
)

const (
	// MaxRecipients bounds the royalty split list
	MaxRecipients = 10
	// TotalShareBps is the required sum of all royalty shares
	TotalShareBps = 10_000
)

var DetailsDiscriminator = runtime.AccountDiscriminator("CertificateDetails")

// RoyaltySplit assigns a share of each sale, in basis points, to a beneficiary
type RoyaltySplit struct {
	_           struct{} `cbor:",toarray"`
	Beneficiary address.Address
	ShareBps    uint16
}

// CertificateDetails records the authority, licence terms and royalty
// distribution of a registered work
type CertificateDetails struct {
	_                 struct{} `cbor:",toarray"`
	Authority         address.Address
	MetadataURIHash   [32]byte
	LicenceTemplateID uint16
	Price             uint64
	RoyaltySplits     []RoyaltySplit
	Bump              uint8
}

// DetailsSize is the account size reserved for a certificate, large enough
// for the maximum number of splits
var DetailsSize = func() uint32 {
	full := CertificateDetails{
		Price:             ^uint64(0),
		LicenceTemplateID: ^uint16(0),
		Bump:              255,
		RoyaltySplits:     make([]RoyaltySplit, MaxRecipients),
	}
	for i := range full.RoyaltySplits {
		full.RoyaltySplits[i].ShareBps = ^uint16(0)
	}
	return runtime.MustSize(&full)
}()

// Decode validates that acct is a certificate owned by the registry and
// returns its contents
func Decode(acct *database.Account) (*CertificateDetails, error) {
	ret := &CertificateDetails{}
	if err := runtime.DecodeAccount(acct, ProgramID, DetailsDiscriminator, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// DeriveAddress returns the certificate address for an asset identifier
func DeriveAddress(asset address.Address) (address.Address, uint8, error) {
	return address.FindProgramAddress(
		[][]byte{[]byte(SeedPrefix), asset[:]},
		ProgramID,
	)
}
