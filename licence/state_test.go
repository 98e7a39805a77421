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

package licence_test

import (
	"testing"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/licence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEffectiveStatus(t *testing.T) {
	purchased := time.Unix(1_000, 0)
	expiry := int64(2_000)
	testDefs := []struct {
		name   string
		status licence.Status
		expiry *int64
		now    time.Time
		want   licence.Status
	}{
		{name: "perpetual", status: licence.StatusActive, now: purchased.Add(1000 * time.Hour), want: licence.StatusActive},
		{name: "before expiry", status: licence.StatusActive, expiry: &expiry, now: time.Unix(1_999, 0), want: licence.StatusActive},
		{name: "at expiry", status: licence.StatusActive, expiry: &expiry, now: time.Unix(2_000, 0), want: licence.StatusActive},
		{name: "after expiry", status: licence.StatusActive, expiry: &expiry, now: time.Unix(2_001, 0), want: licence.StatusExpired},
		{name: "revoked before expiry", status: licence.StatusRevoked, expiry: &expiry, now: time.Unix(1_500, 0), want: licence.StatusRevoked},
		{name: "revoked after expiry", status: licence.StatusRevoked, expiry: &expiry, now: time.Unix(3_000, 0), want: licence.StatusRevoked},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			lic := &licence.Licence{
				PurchaseTimestamp: purchased.Unix(),
				ExpiryTimestamp:   testDef.expiry,
				Status:            testDef.status,
			}
			assert.Equal(t, testDef.want, lic.EffectiveStatus(testDef.now))
			assert.Equal(t, testDef.expiry == nil, lic.Perpetual())
		})
	}
}

func TestVerify(t *testing.T) {
	holder := address.ProgramID("holder")
	expiry := int64(2_000)
	testDefs := []struct {
		name   string
		status licence.Status
		holder address.Address
		now    int64
		err    error
	}{
		{name: "valid", status: licence.StatusActive, holder: holder, now: 1_500},
		{name: "revoked", status: licence.StatusRevoked, holder: holder, now: 1_500, err: licence.ErrLicenceRevoked},
		{name: "expired", status: licence.StatusActive, holder: holder, now: 2_500, err: licence.ErrLicenceExpired},
		{name: "other holder", status: licence.StatusActive, holder: address.ProgramID("other"), now: 1_500, err: licence.ErrBuyerMismatch},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			lic := &licence.Licence{
				Buyer:           holder,
				ExpiryTimestamp: &expiry,
				Status:          testDef.status,
			}
			err := lic.Verify(testDef.holder, time.Unix(testDef.now, 0))
			if testDef.err == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, testDef.err)
		})
	}
}

func TestExpiry(t *testing.T) {
	assert.Nil(t, licence.Expiry(time.Time{}))
	got := licence.Expiry(time.Unix(42, 0))
	require.NotNil(t, got)
	assert.Equal(t, int64(42), *got)
	assert.Equal(t, "expired", licence.StatusExpired.String())
}
