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
	"github.com/Abraham12611/creator-claim/runtime"
)

var (
	ErrIncorrectPrice = runtime.NewProgramError(
		ProgramName, 6100, "IncorrectPrice", runtime.KindValidation,
		"purchase price does not match the certificate price",
	)
	ErrCertificateMismatch = runtime.NewProgramError(
		ProgramName, 6101, "CertificateMismatch", runtime.KindConflict,
		"the provided certificate details account does not match",
	)
	ErrUnauthorizedRevoker = runtime.NewProgramError(
		ProgramName, 6102, "UnauthorizedRevoker", runtime.KindAuthorization,
		"revoker is neither the certificate authority nor the administrator",
	)
	ErrLicenceRevoked = runtime.NewProgramError(
		ProgramName, 6103, "LicenceRevoked", runtime.KindConflict,
		"licence has been revoked",
	)
	ErrLicenceExpired = runtime.NewProgramError(
		ProgramName, 6104, "LicenceExpired", runtime.KindConflict,
		"licence has expired",
	)
	ErrBuyerMismatch = runtime.NewProgramError(
		ProgramName, 6105, "BuyerMismatch", runtime.KindAuthorization,
		"the buyer account does not match",
	)
	ErrInvalidCertificateAccount = runtime.NewProgramError(
		ProgramName, 6106, "InvalidCertificateAccount", runtime.KindValidation,
		"account is not a registered certificate",
	)
	ErrInvalidLicenceAccount = runtime.NewProgramError(
		ProgramName, 6107, "InvalidLicenceAccount", runtime.KindValidation,
		"account is not a licence",
	)
	ErrSeedsMismatch = runtime.NewProgramError(
		ProgramName, 6108, "SeedsMismatch", runtime.KindValidation,
		"licence account is not derived from certificate and buyer",
	)
	ErrInvalidExpiry = runtime.NewProgramError(
		ProgramName, 6109, "InvalidExpiry", runtime.KindValidation,
		"licence expiry must be after the purchase time",
	)
)
