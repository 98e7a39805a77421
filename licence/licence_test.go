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
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/certificate"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/Abraham12611/creator-claim/event"
	"github.com/Abraham12611/creator-claim/internal/test/testutil"
	"github.com/Abraham12611/creator-claim/licence"
	"github.com/Abraham12611/creator-claim/payment"
	"github.com/Abraham12611/creator-claim/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMint = address.ProgramID("test_mint")

type harness struct {
	rt        *runtime.Runtime
	db        *database.Database
	bus       *event.EventBus
	admin     testutil.Key
	mint      testutil.Key
	creator   testutil.Key
	asset     testutil.Key
	buyer     testutil.Key
	treasury  testutil.Key
	alice     testutil.Key
	bob       testutil.Key
	cert      address.Address
	now       time.Time
	nonce     uint64
	nonceLock sync.Mutex
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		db:       testutil.NewDatabase(t),
		bus:      event.NewEventBus(nil, nil),
		admin:    testutil.NewKey(t),
		mint:     testutil.NewKey(t),
		creator:  testutil.NewKey(t),
		asset:    testutil.NewKey(t),
		buyer:    testutil.NewKey(t),
		treasury: testutil.NewKey(t),
		alice:    testutil.NewKey(t),
		bob:      testutil.NewKey(t),
		now:      time.Unix(1_700_000_000, 0),
	}
	t.Cleanup(h.bus.Stop)
	var err error
	h.rt, err = runtime.New(runtime.RuntimeConfig{
		Database: h.db,
		EventBus: h.bus,
		Clock:    func() time.Time { return h.now },
	})
	require.NoError(t, err)
	ext, err := payment.New(payment.Config{
		Mint:           testMint,
		MintAuthority:  h.mint.Address,
		Treasury:       h.treasury.Address,
		PlatformFeeBps: 2000,
	})
	require.NoError(t, err)
	prog, err := licence.New(licence.Config{Payments: ext, Admin: h.admin.Address})
	require.NoError(t, err)
	require.NoError(t, h.rt.Register(certificate.New()))
	require.NoError(t, h.rt.Register(ext))
	require.NoError(t, h.rt.Register(prog))

	for _, key := range []testutil.Key{h.buyer, h.treasury, h.alice, h.bob} {
		ix, err := payment.InitializeAccountInstruction(h.mint.Address, key.Address, testMint)
		require.NoError(t, err)
		require.NoError(t, h.submit(t, h.mint, ix))
	}
	ix, err := payment.MintToInstruction(h.mint.Address, h.buyer.Address, testMint, 1_000)
	require.NoError(t, err)
	require.NoError(t, h.submit(t, h.mint, ix))

	ix, err = certificate.RegisterInstruction(h.creator.Address, h.asset.Address, certificate.RegisterArgs{
		MetadataURIHash: [32]byte{9},
		Price:           100,
		RoyaltySplits: []certificate.RoyaltySplit{
			{Beneficiary: h.alice.Address, ShareBps: 6000},
			{Beneficiary: h.bob.Address, ShareBps: 4000},
		},
	})
	require.NoError(t, err)
	require.NoError(t, h.submit(t, h.creator, ix, h.asset))
	h.cert, _, err = certificate.DeriveAddress(h.asset.Address)
	require.NoError(t, err)
	return h
}

func (h *harness) submit(
	t *testing.T,
	payer testutil.Key,
	ix runtime.Instruction,
	others ...testutil.Key,
) error {
	t.Helper()
	h.nonceLock.Lock()
	h.nonce++
	nonce := h.nonce
	h.nonceLock.Unlock()
	tx := runtime.NewTransaction(payer.Address, nonce, ix)
	require.NoError(t, tx.Sign(payer.Private))
	for _, other := range others {
		require.NoError(t, tx.Sign(other.Private))
	}
	_, err := h.rt.Submit(context.Background(), tx)
	return err
}

func (h *harness) purchaseIx(
	t *testing.T,
	price uint64,
	beneficiaries ...address.Address,
) runtime.Instruction {
	t.Helper()
	ix, err := licence.PurchaseInstruction(licence.PurchaseAccounts{
		Buyer:         h.buyer.Address,
		Certificate:   h.cert,
		Treasury:      h.treasury.Address,
		Mint:          testMint,
		Beneficiaries: beneficiaries,
	}, licence.PurchaseArgs{PurchasePrice: price})
	require.NoError(t, err)
	return ix
}

func (h *harness) licenceRecord(t *testing.T) (*licence.Licence, address.Address) {
	t.Helper()
	addr, _, err := licence.DeriveAddress(h.cert, h.buyer.Address)
	require.NoError(t, err)
	acct, err := h.db.GetAccount(addr, nil)
	require.NoError(t, err)
	lic, err := licence.Decode(acct)
	require.NoError(t, err)
	return lic, addr
}

func (h *harness) balance(t *testing.T, owner address.Address) uint64 {
	t.Helper()
	addr, _, err := payment.DeriveTokenAccount(owner, testMint)
	require.NoError(t, err)
	acct, err := h.db.GetAccount(addr, nil)
	require.NoError(t, err)
	tokenAcct, err := payment.DecodeTokenAccount(acct)
	require.NoError(t, err)
	return tokenAcct.Balance
}

func TestPurchaseLicence(t *testing.T) {
	h := newHarness(t)
	_, evtCh := h.bus.Subscribe(licence.PurchasedEventType)
	require.NoError(t, h.submit(t, h.buyer, h.purchaseIx(t, 100, h.alice.Address, h.bob.Address)))

	lic, addr := h.licenceRecord(t)
	assert.Equal(t, h.cert, lic.CertificateDetails)
	assert.Equal(t, h.buyer.Address, lic.Buyer)
	assert.Equal(t, uint64(100), lic.PurchasePrice)
	assert.Equal(t, h.now.Unix(), lic.PurchaseTimestamp)
	assert.Equal(t, licence.StatusActive, lic.Status)
	assert.True(t, lic.Perpetual())

	assert.Equal(t, uint64(900), h.balance(t, h.buyer.Address))
	// 20% platform fee, the rest split 60/40
	assert.Equal(t, uint64(20), h.balance(t, h.treasury.Address))
	assert.Equal(t, uint64(48), h.balance(t, h.alice.Address))
	assert.Equal(t, uint64(32), h.balance(t, h.bob.Address))

	evt := testutil.RequireReceive(t, evtCh, testutil.DefaultTimeout, "purchase event")
	assert.Equal(t, licence.LicencePurchased{
		Licence:     addr,
		Certificate: h.cert,
		Buyer:       h.buyer.Address,
		Price:       100,
		Timestamp:   h.now.Unix(),
	}, evt.Data)
}

func TestPurchaseRejections(t *testing.T) {
	testDefs := []struct {
		name   string
		price  uint64
		recips func(h *harness) []address.Address
		err    error
	}{
		{
			name:   "incorrect price",
			price:  99,
			recips: func(h *harness) []address.Address { return []address.Address{h.alice.Address, h.bob.Address} },
			err:    licence.ErrIncorrectPrice,
		},
		{
			name:   "missing recipient",
			price:  100,
			recips: func(h *harness) []address.Address { return []address.Address{h.alice.Address} },
			err:    payment.ErrMissingRecipientAccount,
		},
		{
			name:   "wrong recipient",
			price:  100,
			recips: func(h *harness) []address.Address { return []address.Address{h.alice.Address, h.treasury.Address} },
			err:    payment.ErrInvalidRecipientAccount,
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			h := newHarness(t)
			err := h.submit(t, h.buyer, h.purchaseIx(t, testDef.price, testDef.recips(h)...))
			require.ErrorIs(t, err, testDef.err)
			addr, _, err := licence.DeriveAddress(h.cert, h.buyer.Address)
			require.NoError(t, err)
			exists, err := h.db.AccountExists(addr, nil)
			require.NoError(t, err)
			assert.False(t, exists, "no licence after a failed purchase")
			assert.Equal(t, uint64(1_000), h.balance(t, h.buyer.Address))
		})
	}
}

func TestPurchaseRejectsBuyerChosenTreasury(t *testing.T) {
	h := newHarness(t)
	ix, err := licence.PurchaseInstruction(licence.PurchaseAccounts{
		Buyer:         h.buyer.Address,
		Certificate:   h.cert,
		Treasury:      h.buyer.Address,
		Mint:          testMint,
		Beneficiaries: []address.Address{h.alice.Address, h.bob.Address},
	}, licence.PurchaseArgs{PurchasePrice: 100})
	require.NoError(t, err)
	require.ErrorIs(t, h.submit(t, h.buyer, ix), payment.ErrInvalidDestinationAccount)

	assert.Equal(t, uint64(1_000), h.balance(t, h.buyer.Address))
	assert.Zero(t, h.balance(t, h.treasury.Address))
	addr, _, err := licence.DeriveAddress(h.cert, h.buyer.Address)
	require.NoError(t, err)
	_, err = h.db.GetAccount(addr, nil)
	require.Error(t, err)
}

func TestPurchaseRejectsElapsedExpiry(t *testing.T) {
	testDefs := []struct {
		name   string
		expiry time.Time
		err    error
	}{
		{name: "in the past", expiry: time.Unix(1_600_000_000, 0), err: licence.ErrInvalidExpiry},
		{name: "at purchase time", expiry: time.Unix(1_700_000_000, 0), err: licence.ErrInvalidExpiry},
		{name: "one second later", expiry: time.Unix(1_700_000_001, 0)},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			h := newHarness(t)
			ix, err := licence.PurchaseInstruction(licence.PurchaseAccounts{
				Buyer:         h.buyer.Address,
				Certificate:   h.cert,
				Treasury:      h.treasury.Address,
				Mint:          testMint,
				Beneficiaries: []address.Address{h.alice.Address, h.bob.Address},
			}, licence.PurchaseArgs{
				PurchasePrice:   100,
				ExpiryTimestamp: licence.Expiry(testDef.expiry),
			})
			require.NoError(t, err)
			err = h.submit(t, h.buyer, ix)
			if testDef.err == nil {
				require.NoError(t, err)
				lic, _ := h.licenceRecord(t)
				assert.Equal(t, licence.StatusActive, lic.EffectiveStatus(h.now))
				return
			}
			require.ErrorIs(t, err, testDef.err)
			assert.Equal(t, uint64(1_000), h.balance(t, h.buyer.Address))
		})
	}
}

func TestPurchaseAgainstForgedCertificate(t *testing.T) {
	h := newHarness(t)
	// A token account is a valid record but not a certificate
	forged, _, err := payment.DeriveTokenAccount(h.alice.Address, testMint)
	require.NoError(t, err)
	ix, err := licence.PurchaseInstruction(licence.PurchaseAccounts{
		Buyer:       h.buyer.Address,
		Certificate: forged,
		Treasury:    h.treasury.Address,
		Mint:        testMint,
	}, licence.PurchaseArgs{PurchasePrice: 1})
	require.NoError(t, err)
	require.ErrorIs(t, h.submit(t, h.buyer, ix), licence.ErrInvalidCertificateAccount)
}

func TestConcurrentPurchases(t *testing.T) {
	h := newHarness(t)
	const attempts = 4
	ix := h.purchaseIx(t, 100, h.alice.Address, h.bob.Address)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = h.submit(t, h.buyer, ix)
		}()
	}
	wg.Wait()
	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, runtime.ErrAccountAlreadyInUse)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, uint64(900), h.balance(t, h.buyer.Address), "only one payment settles")
}

func TestRevokeLicence(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.submit(t, h.buyer, h.purchaseIx(t, 100, h.alice.Address, h.bob.Address)))
	_, licAddr := h.licenceRecord(t)
	_, evtCh := h.bus.Subscribe(licence.RevokedEventType)

	revoke := func(revoker testutil.Key, cert address.Address) error {
		ix, err := licence.RevokeInstruction(revoker.Address, licAddr, cert)
		require.NoError(t, err)
		return h.submit(t, revoker, ix)
	}

	// A certificate the licence does not refer to
	other := testutil.NewKey(t)
	ix, err := certificate.RegisterInstruction(other.Address, other.Address, certificate.RegisterArgs{
		MetadataURIHash: [32]byte{1},
		Price:           5,
		RoyaltySplits:   []certificate.RoyaltySplit{{Beneficiary: other.Address, ShareBps: 10_000}},
	})
	require.NoError(t, err)
	require.NoError(t, h.submit(t, other, ix))
	otherCert, _, err := certificate.DeriveAddress(other.Address)
	require.NoError(t, err)
	require.ErrorIs(t, revoke(other, otherCert), licence.ErrCertificateMismatch)

	require.ErrorIs(t, revoke(h.buyer, h.cert), licence.ErrUnauthorizedRevoker)
	lic, _ := h.licenceRecord(t)
	assert.Equal(t, licence.StatusActive, lic.Status)

	require.NoError(t, revoke(h.creator, h.cert))
	lic, _ = h.licenceRecord(t)
	assert.Equal(t, licence.StatusRevoked, lic.Status)
	evt := testutil.RequireReceive(t, evtCh, testutil.DefaultTimeout, "revoke event")
	assert.Equal(t, licence.LicenceRevoked{
		Licence:     licAddr,
		Certificate: h.cert,
		Revoker:     h.creator.Address,
	}, evt.Data)

	require.ErrorIs(t, revoke(h.creator, h.cert), licence.ErrLicenceRevoked)
	require.ErrorIs(t, revoke(h.admin, h.cert), licence.ErrLicenceRevoked)
	testutil.RequireNoReceive(t, evtCh, 50*time.Millisecond, "failed revokes publish nothing")
}

func TestAdminRevokesExpiredLicence(t *testing.T) {
	h := newHarness(t)
	ix, err := licence.PurchaseInstruction(licence.PurchaseAccounts{
		Buyer:         h.buyer.Address,
		Certificate:   h.cert,
		Treasury:      h.treasury.Address,
		Mint:          testMint,
		Beneficiaries: []address.Address{h.alice.Address, h.bob.Address},
	}, licence.PurchaseArgs{
		PurchasePrice:   100,
		ExpiryTimestamp: licence.Expiry(h.now.Add(time.Hour)),
	})
	require.NoError(t, err)
	require.NoError(t, h.submit(t, h.buyer, ix))

	h.now = h.now.Add(2 * time.Hour)
	lic, licAddr := h.licenceRecord(t)
	assert.Equal(t, licence.StatusExpired, lic.EffectiveStatus(h.now))

	ix, err = licence.RevokeInstruction(h.admin.Address, licAddr, h.cert)
	require.NoError(t, err)
	require.NoError(t, h.submit(t, h.admin, ix))
	lic, _ = h.licenceRecord(t)
	assert.Equal(t, licence.StatusRevoked, lic.EffectiveStatus(h.now))

	// The derived address stays taken after expiry
	ix = h.purchaseIx(t, 100, h.alice.Address, h.bob.Address)
	require.ErrorIs(t, h.submit(t, h.buyer, ix), runtime.ErrAccountAlreadyInUse)
}

func TestRevokeMissingLicence(t *testing.T) {
	h := newHarness(t)
	licAddr, _, err := licence.DeriveAddress(h.cert, h.buyer.Address)
	require.NoError(t, err)
	ix, err := licence.RevokeInstruction(h.creator.Address, licAddr, h.cert)
	require.NoError(t, err)
	require.ErrorIs(t, h.submit(t, h.creator, ix), licence.ErrInvalidLicenceAccount)
}
