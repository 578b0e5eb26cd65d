package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckMissingBinary(t *testing.T) {
	playbook := filepath.Join(t.TempDir(), "site.yml")
	require.NoError(t, os.WriteFile(playbook, []byte("- hosts: all\n"), 0o600))

	out, err := execute(t, "--output", "json", "check", "--binary", "no-such-binary-for-frameworks-tests", playbook)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preflight check(s) failed")

	var checks []checkJSON
	require.NoError(t, json.Unmarshal([]byte(out), &checks))

	byName := map[string]checkJSON{}
	for _, c := range checks {
		byName[c.Name] = c
	}
	assert.False(t, byName["binary"].OK)
	assert.True(t, byName["playbook:"+playbook].OK)
}

func TestCheckText(t *testing.T) {
	out, err := execute(t, "check", "--binary", "no-such-binary-for-frameworks-tests", "missing.yml")
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(out, "Preflight:\n"))
	assert.Contains(t, out, "✗ binary")
	assert.Contains(t, out, "playbook:missing.yml")
}

func TestVersionJSON(t *testing.T) {
	out, err := execute(t, "--output", "json", "version")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "dev", info["version"])
	assert.NotEmpty(t, info["go_version"])
	assert.NotEmpty(t, info["ansible_core"])
}
