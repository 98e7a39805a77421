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

package payment

import (
	"github.com/Abraham12611/creator-claim/address"
	"github.com/Abraham12611/creator-claim/database"
	"github.com/Abraham12611/creator-claim/runtime"
)

var TokenAccountDiscriminator = runtime.AccountDiscriminator("TokenAccount")

// TokenAccount holds a balance of one mint for one owner
type TokenAccount struct {
	_       struct{} `cbor:",toarray"`
	Owner   address.Address
	Mint    address.Address
	Balance uint64
	Bump    uint8
}

var TokenAccountSize = runtime.MustSize(&TokenAccount{
	Balance: ^uint64(0),
	Bump:    255,
})

// DeriveTokenAccount returns the token account address for owner and mint
func DeriveTokenAccount(
	owner address.Address,
	mint address.Address,
) (address.Address, uint8, error) {
	return address.FindProgramAddress(
		[][]byte{[]byte(SeedPrefix), owner[:], mint[:]},
		ProgramID,
	)
}

func DecodeTokenAccount(acct *database.Account) (*TokenAccount, error) {
	ret := &TokenAccount{}
	if err := runtime.DecodeAccount(acct, ProgramID, TokenAccountDiscriminator, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func readTokenAccount(
	ictx *runtime.InvokeContext,
	addr address.Address,
) (*TokenAccount, error) {
	acct, err := ictx.Read(addr)
	if err != nil {
		return nil, err
	}
	return DecodeTokenAccount(acct)
}

func writeTokenAccount(
	ictx *runtime.InvokeContext,
	addr address.Address,
	acct *TokenAccount,
) error {
	data, err := runtime.Encode(TokenAccountDiscriminator, acct)
	if err != nil {
		return err
	}
	return ictx.Write(addr, data)
}
