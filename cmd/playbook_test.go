package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"frameworks/ansible/pkg/ansible/result"
	envconfig "frameworks/ansible/pkg/config"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(envconfig.AnsibleBinaryEnv, "")
	t.Chdir(t.TempDir())

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPlaybookDryRun(t *testing.T) {
	out, err := execute(t, "playbook", "--dry-run",
		"--connection", "local", "--timeout", "10",
		"--become", "--become-method", "sudo",
		"site.yml")
	require.NoError(t, err)
	assert.Equal(t, "ansible-playbook --connection local --timeout 10 --become --become-method sudo site.yml\n", out)
}

func TestPlaybookDryRunExtraVars(t *testing.T) {
	out, err := execute(t, "playbook", "--dry-run",
		"-e", `{"app":"web"}`,
		"-e", "env=prod",
		"-e", "@vars.yml",
		"--extra-vars-file", "more/../common.yml",
		"--verbosity", "3",
		"site.yml")
	require.NoError(t, err)
	assert.Equal(t,
		`ansible-playbook --extra-vars {"app":"web","env":"prod"} --extra-vars @vars.yml --extra-vars @common.yml -vvv site.yml`+"\n",
		out)
}

func TestPlaybookFlagsOverrideFile(t *testing.T) {
	t.Setenv(envconfig.AnsibleBinaryEnv, "")
	file := filepath.Join(t.TempDir(), "deploy.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
playbooks: [site.yml]
options:
  limit: all
  check: true
connection:
  user: deploy
`), 0o600))

	out, err := execute(t, "playbook", "--dry-run", "--file", file, "--limit", "web01", "--check=false", "extra.yml")
	require.NoError(t, err)
	assert.Equal(t, "ansible-playbook --limit web01 --user deploy site.yml extra.yml\n", out)
}

func TestPlaybookFileWithoutPlaybooks(t *testing.T) {
	file := filepath.Join(t.TempDir(), "deploy.yaml")
	require.NoError(t, os.WriteFile(file, []byte("options:\n  check: true\n"), 0o600))

	out, err := execute(t, "playbook", "--dry-run", "--file", file, "site.yml")
	require.NoError(t, err)
	assert.Equal(t, "ansible-playbook --check site.yml\n", out)

	_, err = execute(t, "playbook", "--dry-run", "--file", file)
	assert.ErrorContains(t, err, "no playbook given")
}

func TestPlaybookExtraVarsFilesKeepOrder(t *testing.T) {
	out, err := execute(t, "playbook", "--dry-run",
		"--extra-vars-file", "b.yml",
		"-e", "@a.yml",
		"--extra-vars-file", "c.yml",
		"site.yml")
	require.NoError(t, err)
	assert.Equal(t,
		"ansible-playbook --extra-vars @b.yml --extra-vars @a.yml --extra-vars @c.yml site.yml\n",
		out)

	out, err = execute(t, "playbook", "--dry-run",
		"-e", "@z.yml",
		"-e", "env=prod",
		"--extra-vars-file", "a.yml",
		"site.yml")
	require.NoError(t, err)
	assert.Equal(t,
		`ansible-playbook --extra-vars {"env":"prod"} --extra-vars @z.yml --extra-vars @a.yml site.yml`+"\n",
		out)
}

func TestPlaybookErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		err  string
	}{
		{name: "no playbook", args: []string{"playbook", "--dry-run"}, err: "no playbook given"},
		{name: "verbosity", args: []string{"playbook", "--dry-run", "--verbosity", "7", "a.yml"}, err: "--verbosity"},
		{name: "timeout", args: []string{"playbook", "--dry-run", "--timeout", "-3", "a.yml"}, err: "--timeout"},
		{name: "extra vars", args: []string{"playbook", "--dry-run", "-e", "novalue", "a.yml"}, err: "--extra-vars"},
		{name: "missing file", args: []string{"playbook", "--file", "nope.yaml"}, err: "failed to load invocation"},
		{name: "missing binary", args: []string{"playbook", "--binary", "no-such-binary-for-frameworks-tests", "a.yml"}, err: "does not exist"},
		{name: "output format", args: []string{"--output", "yaml", "playbook", "a.yml"}, err: "invalid output format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.err)
		})
	}
}

func TestPlaybookVersionNeedsNoPlaybook(t *testing.T) {
	out, err := execute(t, "playbook", "--dry-run", "--version")
	require.NoError(t, err)
	assert.Equal(t, "ansible-playbook --version\n", out)
}

// "true" and "false" stand in for ansible-playbook: they ignore their
// arguments and exit with a known status
func TestPlaybookRun(t *testing.T) {
	out, err := execute(t, "playbook", "--binary", "true", "site.yml")
	require.NoError(t, err)
	assert.Contains(t, out, "exit status 0")
}

func TestPlaybookRunFailure(t *testing.T) {
	_, err := execute(t, "playbook", "--binary", "false", "site.yml")
	require.Error(t, err)

	var exitErr *result.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 1, exitErr.ExitCode)
}

func TestPlaybookRunJSON(t *testing.T) {
	out, err := execute(t, "--output", "json", "playbook", "--binary", "true", "site.yml")
	require.NoError(t, err)

	var recap recapJSON
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &recap))
	assert.Equal(t, 0, recap.ExitCode)
	assert.True(t, recap.Success)
}

func TestPlaybookRunJSONFailureOutputTail(t *testing.T) {
	t.Setenv(envconfig.AnsibleBinaryEnv, "")
	t.Setenv(envconfig.OutputTailBytesEnv, "6")
	script := filepath.Join(t.TempDir(), "fake-playbook")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho first line\necho boom\nexit 2\n"), 0o700))
	t.Chdir(t.TempDir())

	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"--output", "json", "playbook", "--binary", script, "site.yml"})
	require.Error(t, root.Execute())

	var recap recapJSON
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &recap))
	assert.Equal(t, 2, recap.ExitCode)
	assert.False(t, recap.Success)
	assert.Equal(t, "\nboom\n", recap.Output)
	assert.Contains(t, stderr.String(), "first line")
}

func TestPlaybookRunJSONSuccessOmitsOutput(t *testing.T) {
	out, err := execute(t, "--output", "json", "playbook", "--binary", "true", "site.yml")
	require.NoError(t, err)
	assert.NotContains(t, out, `"output"`)
}
