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
	"errors"
	"fmt"
)

// ErrorKind classifies a program failure for callers
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1
	KindAuthorization
	KindConflict
	KindDependency
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindConflict:
		return "conflict"
	case KindDependency:
		return "dependency"
	default:
		return "unknown"
	}
}

// ProgramError is a typed rejection returned by a program. Two program
// errors match with errors.Is when they share program and code, so the
// package-level values can be used as sentinels.
type ProgramError struct {
	Program string
	Name    string
	Message string
	Code    uint32
	Kind    ErrorKind
}

func NewProgramError(
	program string,
	code uint32,
	name string,
	kind ErrorKind,
	message string,
) *ProgramError {
	return &ProgramError{
		Program: program,
		Code:    code,
		Name:    name,
		Kind:    kind,
		Message: message,
	}
}

func (e *ProgramError) Error() string {
	return fmt.Sprintf("%s: %s (%d): %s", e.Program, e.Name, e.Code, e.Message)
}

func (e *ProgramError) Is(target error) bool {
	t, ok := target.(*ProgramError)
	if !ok {
		return false
	}
	return e.Program == t.Program && e.Code == t.Code
}

// WithMessage returns a copy of the error with a more specific message
func (e *ProgramError) WithMessage(format string, args ...any) *ProgramError {
	ret := *e
	ret.Message = fmt.Sprintf(format, args...)
	return &ret
}

// InstructionError identifies the instruction of a transaction that failed
type InstructionError struct {
	Err   error
	Index int
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d: %s", e.Index, e.Err)
}

func (e *InstructionError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first ProgramError in err's chain
func KindOf(err error) ErrorKind {
	var progErr *ProgramError
	if errors.As(err, &progErr) {
		return progErr.Kind
	}
	return 0
}

const programName = "runtime"

var (
	ErrAccountAlreadyInUse = NewProgramError(
		programName, 1, "AccountAlreadyInUse", KindConflict,
		"account already holds a record",
	)
	ErrAccountNotWritable = NewProgramError(
		programName, 2, "AccountNotWritable", KindValidation,
		"account was not declared writable",
	)
	ErrIllegalOwner = NewProgramError(
		programName, 3, "IllegalOwner", KindAuthorization,
		"account is owned by another program",
	)
	ErrAccountNotFound = NewProgramError(
		programName, 4, "AccountNotFound", KindValidation,
		"account does not exist",
	)
	ErrNotEnoughAccounts = NewProgramError(
		programName, 5, "NotEnoughAccounts", KindValidation,
		"instruction is missing accounts",
	)
	ErrMissingRequiredSignature = NewProgramError(
		programName, 6, "MissingRequiredSignature", KindAuthorization,
		"account must sign the transaction",
	)
	ErrAccountDataTooSmall = NewProgramError(
		programName, 7, "AccountDataTooSmall", KindValidation,
		"record does not fit its account",
	)
	ErrInvalidInstructionData = NewProgramError(
		programName, 8, "InvalidInstructionData", KindValidation,
		"instruction data could not be decoded",
	)
	ErrCallDepthExceeded = NewProgramError(
		programName, 9, "CallDepthExceeded", KindValidation,
		"cross-program invocation too deep",
	)
	ErrUnknownProgram = NewProgramError(
		programName, 10, "UnknownProgram", KindValidation,
		"no program registered with this identity",
	)
	ErrInvalidAccountData = NewProgramError(
		programName, 11, "InvalidAccountData", KindValidation,
		"account does not hold the expected record type",
	)
)

// Transaction level failures, raised before any instruction runs
var (
	ErrNoInstructions       = errors.New("transaction has no instructions")
	ErrMissingSignature     = errors.New("missing signature")
	ErrInvalidSignature     = errors.New("invalid signature")
	ErrDuplicateTransaction = errors.New("transaction already processed")
	ErrProgramExists        = errors.New("program already registered")
)
