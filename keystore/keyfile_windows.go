//go:build windows

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
	"strings"

	"golang.org/x/sys/windows"
)

// Well-known groups that must never be granted access to a signing key,
// by SDDL abbreviation and full SID
var insecureTrustees = map[string]string{
	"WD":           "Everyone",
	"S-1-1-0":      "Everyone",
	"BU":           "BUILTIN\\Users",
	"S-1-5-32-545": "BUILTIN\\Users",
	"AU":           "Authenticated Users",
	"S-1-5-11":     "Authenticated Users",
}

// checkOpenFilePermissions reads the DACL of the open key file and rejects
// it when a broad group is allowed access. NTFS does not let an open file
// be replaced, so checking by name is safe here.
func checkOpenFilePermissions(f *os.File) error {
	sd, err := windows.GetNamedSecurityInfo(
		f.Name(),
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION,
	)
	if err != nil {
		return fmt.Errorf("failed to get security info for %q: %w", f.Name(), err)
	}
	sddl := sd.String()
	if sddl == "" {
		return fmt.Errorf("failed to read security descriptor for %q", f.Name())
	}
	return checkDACL(f.Name(), sddl)
}

func checkDACL(path string, sddl string) error {
	idx := strings.Index(sddl, "D:")
	if idx < 0 {
		return fmt.Errorf(
			"key file %q has no DACL: %w",
			path,
			ErrInsecureFileMode,
		)
	}
	dacl := sddl[idx+2:]
	if end := strings.Index(dacl, "S:"); end >= 0 {
		dacl = dacl[:end]
	}
	// Each ACE reads (type;flags;rights;object;inherit;trustee)
	for _, entry := range strings.Split(dacl, "(") {
		entry = strings.TrimSuffix(strings.TrimSpace(entry), ")")
		fields := strings.Split(entry, ";")
		if len(fields) < 6 || fields[0] != "A" {
			continue
		}
		if group, ok := insecureTrustees[fields[5]]; ok {
			return fmt.Errorf(
				"key file %q grants access to %s: %w",
				path,
				group,
				ErrInsecureFileMode,
			)
		}
	}
	return nil
}
