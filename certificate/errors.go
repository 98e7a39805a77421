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
	"github.com/Abraham12611/creator-claim/runtime"
)

var (
	ErrInvalidRoyaltySum = runtime.NewProgramError(
		ProgramName, 6000, "InvalidRoyaltySum", runtime.KindValidation,
		"royalty splits must sum to exactly 10,000 basis points",
	)
	ErrTooManyRecipients = runtime.NewProgramError(
		ProgramName, 6001, "TooManyRecipients", runtime.KindValidation,
		"cannot have more than 10 royalty recipients",
	)
	ErrMissingMetadataHash = runtime.NewProgramError(
		ProgramName, 6002, "MissingMetadataHash", runtime.KindValidation,
		"metadata hash cannot be empty",
	)
	ErrZeroPriceNotAllowed = runtime.NewProgramError(
		ProgramName, 6003, "ZeroPriceNotAllowed", runtime.KindValidation,
		"price cannot be zero",
	)
	ErrSeedsMismatch = runtime.NewProgramError(
		ProgramName, 6004, "SeedsMismatch", runtime.KindValidation,
		"certificate account is not derived from the asset identifier",
	)
)
