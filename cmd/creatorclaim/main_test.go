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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abraham12611/creator-claim/licence"
	"github.com/Abraham12611/creator-claim/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cliHarness struct {
	t          *testing.T
	configPath string
}

func newCLIHarness(t *testing.T) *cliHarness {
	t.Helper()
	dir := t.TempDir()
	configPath := filepath.Join(dir, "creatorclaim.yaml")
	content := "dataDir: " + filepath.Join(dir, "data") + "\n" +
		"keyDir: " + filepath.Join(dir, "keys") + "\n" +
		"mintAuthority: authority\n" +
		"admin: admin\n"
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	h := &cliHarness{t: t, configPath: configPath}
	// The configured roles must resolve before the ledger opens
	h.mustRun("keygen", "authority")
	h.mustRun("keygen", "admin")
	return h
}

func (h *cliHarness) run(args ...string) (string, error) {
	h.t.Helper()
	rootCmd, err := newRootCommand()
	require.NoError(h.t, err)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{"--config", h.configPath}, args...))
	err = rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (h *cliHarness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	require.NoError(h.t, err, "command %v", args)
	return out
}

func (h *cliHarness) runJSON(args ...string) map[string]any {
	h.t.Helper()
	out := h.mustRun(append([]string{"--json"}, args...)...)
	ret := make(map[string]any)
	require.NoError(h.t, json.Unmarshal([]byte(out), &ret), out)
	return ret
}

func (h *cliHarness) runJSONList(args ...string) []map[string]any {
	h.t.Helper()
	out := h.mustRun(append([]string{"--json"}, args...)...)
	var ret []map[string]any
	require.NoError(h.t, json.Unmarshal([]byte(out), &ret), out)
	return ret
}

func TestCLILicenceLifecycle(t *testing.T) {
	h := newCLIHarness(t)
	for _, name := range []string{"creator", "asset", "alice", "buyer"} {
		h.mustRun("keygen", name)
	}
	keys := h.runJSONList("address")
	require.Len(t, keys, 6)

	for _, owner := range []string{"authority", "alice", "buyer"} {
		h.mustRun("token", "init", owner)
	}
	h.mustRun("token", "mint", "buyer", "1000")

	registered := h.runJSON(
		"certificate", "register",
		"--creator", "creator",
		"--asset", "asset",
		"--metadata-uri", "ipfs://bafy-example",
		"--price", "100",
		"--template", "3",
		"--split", "alice=10000",
	)
	certAddr, ok := registered["certificate"].(string)
	require.True(t, ok)

	shown := h.runJSON("certificate", "show", "--asset", "asset")
	assert.Equal(t, certAddr, shown["address"])
	assert.InDelta(t, 100, shown["price"], 0)

	// A dry run leaves no licence behind
	simulated := h.runJSON("licence", "purchase", "--buyer", "buyer", "--certificate", certAddr, "--dry-run")
	receipt, ok := simulated["receipt"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, receipt["simulated"])
	_, err := h.run("licence", "show", "--certificate", certAddr, "--buyer", "buyer")
	require.Error(t, err)

	purchased := h.runJSON("licence", "purchase", "--buyer", "buyer", "--asset", "asset")
	licenceAddr, ok := purchased["licence"].(string)
	require.True(t, ok)

	balance := h.runJSON("token", "balance", "alice")
	assert.InDelta(t, 100, balance["balance"], 0)
	balance = h.runJSON("token", "balance", "buyer")
	assert.InDelta(t, 900, balance["balance"], 0)

	h.mustRun("licence", "verify", licenceAddr, "--holder", "buyer")
	_, err = h.run("licence", "verify", licenceAddr, "--holder", "alice")
	require.ErrorIs(t, err, licence.ErrBuyerMismatch)

	active := h.runJSONList("licence", "list", "--status", "active")
	require.Len(t, active, 1)
	assert.Equal(t, licenceAddr, active[0]["address"])

	_, err = h.run("licence", "revoke", licenceAddr, "--revoker", "alice")
	require.ErrorIs(t, err, licence.ErrUnauthorizedRevoker)
	h.mustRun("licence", "revoke", licenceAddr, "--revoker", "admin")

	_, err = h.run("licence", "verify", licenceAddr, "--holder", "buyer")
	require.ErrorIs(t, err, licence.ErrLicenceRevoked)
	revoked := h.runJSONList("licence", "list", "--status", "revoked")
	require.Len(t, revoked, 1)
	assert.Equal(t, "revoked", revoked[0]["status"])
	assert.Empty(t, h.runJSONList("licence", "list", "--status", "active"))
}

func TestCLIMintRequiresAuthorityKey(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("keygen", "mallory")
	h.mustRun("token", "init", "mallory")
	_, err := h.run("token", "mint", "mallory", "50", "--authority", "mallory")
	require.ErrorIs(t, err, runtime.ErrMissingSignature)
	balance := h.runJSON("token", "balance", "mallory")
	assert.InDelta(t, 0, balance["balance"], 0)
}

func TestCLIInvalidInput(t *testing.T) {
	h := newCLIHarness(t)
	h.mustRun("keygen", "creator")
	h.mustRun("keygen", "asset")
	testDefs := []struct {
		name string
		args []string
	}{
		{
			name: "no metadata",
			args: []string{"certificate", "register", "--creator", "creator", "--asset", "asset", "--price", "1"},
		},
		{
			name: "short metadata hash",
			args: []string{"certificate", "register", "--creator", "creator", "--asset", "asset", "--metadata-hash", "abcd"},
		},
		{
			name: "malformed split",
			args: []string{"certificate", "register", "--creator", "creator", "--asset", "asset", "--metadata-uri", "x", "--split", "creator"},
		},
		{
			name: "bad mint amount",
			args: []string{"token", "mint", "creator", "lots"},
		},
		{
			name: "unknown licence status",
			args: []string{"licence", "list", "--status", "pending"},
		},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.name, func(t *testing.T) {
			_, err := h.run(testDef.args...)
			require.Error(t, err)
		})
	}
}

func TestListAllPlugins(t *testing.T) {
	out := listAllPlugins()
	assert.Contains(t, out, "badger")
	assert.Contains(t, out, "sqlite")
}
