//go:build !windows

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

package keystore

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// checkOpenFilePermissions accepts a key file only when it is private to the
// current user. The check runs on the open descriptor.
func checkOpenFilePermissions(f *os.File) error {
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat key file %q: %w", f.Name(), err)
	}
	if mode := fi.Mode().Perm(); mode&0o077 != 0 {
		return fmt.Errorf(
			"key file %q is readable beyond its owner (mode %04o): %w",
			f.Name(),
			mode,
			ErrInsecureFileMode,
		)
	}
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return nil
	}
	// root may read keys provisioned for service accounts
	if uid := unix.Getuid(); uid != 0 && int(st.Uid) != uid {
		return fmt.Errorf(
			"key file %q is owned by uid %d, not %d: %w",
			f.Name(),
			st.Uid,
			uid,
			ErrInsecureFileMode,
		)
	}
	return nil
}
