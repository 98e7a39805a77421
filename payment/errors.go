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
	"github.com/Abraham12611/creator-claim/runtime"
)

var (
	ErrInsufficientFunds = runtime.NewProgramError(
		ProgramName, 7000, "InsufficientFunds", runtime.KindDependency,
		"source balance is too low",
	)
	ErrMissingRecipientAccount = runtime.NewProgramError(
		ProgramName, 7001, "MissingRecipientAccount", runtime.KindDependency,
		"a declared recipient account was not supplied",
	)
	ErrInvalidRecipientAccount = runtime.NewProgramError(
		ProgramName, 7002, "InvalidRecipientAccount", runtime.KindDependency,
		"a recipient account does not match its share",
	)
	ErrInvalidSourceAccount = runtime.NewProgramError(
		ProgramName, 7003, "InvalidSourceAccount", runtime.KindDependency,
		"source is not a token account of the authority",
	)
	ErrMintMismatch = runtime.NewProgramError(
		ProgramName, 7004, "MintMismatch", runtime.KindDependency,
		"token accounts hold different mints",
	)
	ErrUnauthorizedMintAuthority = runtime.NewProgramError(
		ProgramName, 7005, "UnauthorizedMintAuthority", runtime.KindAuthorization,
		"signer is not the mint authority",
	)
	ErrAmountOverflow = runtime.NewProgramError(
		ProgramName, 7006, "AmountOverflow", runtime.KindValidation,
		"balance would overflow",
	)
	ErrInvalidShares = runtime.NewProgramError(
		ProgramName, 7007, "InvalidShares", runtime.KindValidation,
		"shares exceed 10,000 basis points",
	)
	ErrSeedsMismatch = runtime.NewProgramError(
		ProgramName, 7008, "SeedsMismatch", runtime.KindValidation,
		"token account is not derived from owner and mint",
	)
	ErrInvalidDestinationAccount = runtime.NewProgramError(
		ProgramName, 7009, "InvalidDestinationAccount", runtime.KindValidation,
		"destination is not the treasury token account",
	)
)
