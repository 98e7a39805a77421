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
	"crypto/ed25519"
	"encoding/hex"
	"fmt"

	"github.com/Abraham12611/creator-claim/address"
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"
)

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
}

// AccountMeta declares an account touched by an instruction
type AccountMeta struct {
	_        struct{} `cbor:",toarray"`
	Address  address.Address
	Signer   bool
	Writable bool
}

func ReadOnly(addr address.Address) AccountMeta {
	return AccountMeta{Address: addr}
}

func Writable(addr address.Address) AccountMeta {
	return AccountMeta{Address: addr, Writable: true}
}

func Signer(addr address.Address, writable bool) AccountMeta {
	return AccountMeta{Address: addr, Signer: true, Writable: writable}
}

type Instruction struct {
	_         struct{} `cbor:",toarray"`
	ProgramID address.Address
	Accounts  []AccountMeta
	Data      []byte
}

// Message is the signed portion of a transaction
type Message struct {
	_            struct{} `cbor:",toarray"`
	Payer        address.Address
	Nonce        uint64
	Instructions []Instruction
}

func (m *Message) Bytes() ([]byte, error) {
	return encMode.Marshal(m)
}

// TxID identifies a transaction by the hash of its message
type TxID [32]byte

func (id TxID) String() string {
	return hex.EncodeToString(id[:])
}

type Transaction struct {
	Signatures map[address.Address][]byte
	Message    Message
}

func NewTransaction(
	payer address.Address,
	nonce uint64,
	instructions ...Instruction,
) *Transaction {
	return &Transaction{
		Message: Message{
			Payer:        payer,
			Nonce:        nonce,
			Instructions: instructions,
		},
		Signatures: make(map[address.Address][]byte),
	}
}

func (t *Transaction) ID() (TxID, error) {
	msg, err := t.Message.Bytes()
	if err != nil {
		return TxID{}, err
	}
	return TxID(blake2b.Sum256(msg)), nil
}

// RequiredSigners returns the payer followed by every account flagged as a
// signer, without duplicates
func (t *Transaction) RequiredSigners() []address.Address {
	seen := map[address.Address]bool{t.Message.Payer: true}
	ret := []address.Address{t.Message.Payer}
	for _, ix := range t.Message.Instructions {
		for _, meta := range ix.Accounts {
			if meta.Signer && !seen[meta.Address] {
				seen[meta.Address] = true
				ret = append(ret, meta.Address)
			}
		}
	}
	return ret
}

// Sign adds a signature for each key over the encoded message
func (t *Transaction) Sign(keys ...ed25519.PrivateKey) error {
	msg, err := t.Message.Bytes()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if t.Signatures == nil {
		t.Signatures = make(map[address.Address][]byte)
	}
	for _, key := range keys {
		pub, ok := key.Public().(ed25519.PublicKey)
		if !ok {
			return fmt.Errorf("unexpected public key type %T", key.Public())
		}
		t.Signatures[address.FromPublicKey(pub)] = ed25519.Sign(key, msg)
	}
	return nil
}

// Verify checks that every required signer signed the message and that
// every attached signature is valid
func (t *Transaction) Verify() error {
	if len(t.Message.Instructions) == 0 {
		return ErrNoInstructions
	}
	msg, err := t.Message.Bytes()
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	for _, signer := range t.RequiredSigners() {
		if _, ok := t.Signatures[signer]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingSignature, signer)
		}
	}
	for signer, sig := range t.Signatures {
		if !ed25519.Verify(ed25519.PublicKey(signer[:]), msg, sig) {
			return fmt.Errorf("%w: %s", ErrInvalidSignature, signer)
		}
	}
	return nil
}
