package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"frameworks/ansible/pkg/ansible"
)

// Load reads, parses and validates an invocation file. Relative playbook,
// vars file and work_dir paths are left as written; they are resolved by
// ansible-playbook against the working directory.
func Load(path string) (*Invocation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read invocation file: %w", err)
	}

	inv, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return inv, nil
}

// Parse decodes an invocation from YAML. Unknown keys are rejected.
func Parse(data []byte) (*Invocation, error) {
	var inv Invocation

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&inv); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse invocation YAML: %w", err)
	}

	if err := inv.Validate(); err != nil {
		return nil, fmt.Errorf("invalid invocation: %w", err)
	}

	return &inv, nil
}

// Validate checks the invocation for errors. A file may list no playbooks;
// callers append their own before running.
func (inv *Invocation) Validate() error {
	for i, pb := range inv.Playbooks {
		if strings.TrimSpace(pb) == "" {
			return fmt.Errorf("playbooks[%d] is empty", i)
		}
	}

	if inv.Options.Verbosity < 0 || inv.Options.Verbosity > ansible.MaxVerbosity {
		return fmt.Errorf("options.verbosity must be between 0 and %d, got: %d", ansible.MaxVerbosity, inv.Options.Verbosity)
	}

	if inv.Connection.Timeout < -1 {
		return fmt.Errorf("connection.timeout must be -1 (unset) or positive, got: %d", inv.Connection.Timeout)
	}

	if k := inv.Options.ExtraVars.Kind(); k != ansible.NullKind && k != ansible.MapKind {
		return fmt.Errorf("options.extra_vars must be a mapping, got: %s", k)
	}

	for i, f := range inv.Options.ExtraVarsFiles {
		if strings.TrimPrefix(strings.TrimSpace(f), "@") == "" {
			return fmt.Errorf("options.extra_vars_files[%d] is empty", i)
		}
	}

	for i, f := range inv.SopsVarsFiles {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("sops_vars_files[%d] is empty", i)
		}
	}

	return nil
}

// Resolve decrypts the sops vars files and merges them over the inline
// extra vars, in file order
func (inv *Invocation) Resolve() error {
	for _, path := range inv.SopsVarsFiles {
		vars, err := DecryptVars(path)
		if err != nil {
			return err
		}
		inv.Options.ExtraVars = inv.Options.ExtraVars.Merge(vars)
	}
	inv.SopsVarsFiles = nil
	return nil
}

// PlaybookCmd builds the command described by the invocation
func (inv *Invocation) PlaybookCmd() *ansible.PlaybookCmd {
	opts := &ansible.PlaybookOptions{
		AskVaultPassword:  inv.Options.AskVaultPassword,
		Check:             inv.Options.Check,
		Diff:              inv.Options.Diff,
		ExtraVars:         inv.Options.ExtraVars,
		ExtraVarsFiles:    VarsFileArgs(inv.Options.ExtraVarsFiles),
		FlushCache:        inv.Options.FlushCache,
		ForceHandlers:     inv.Options.ForceHandlers,
		Forks:             inv.Options.Forks,
		Inventory:         inv.Options.Inventory,
		Limit:             inv.Options.Limit,
		ListHosts:         inv.Options.ListHosts,
		ListTags:          inv.Options.ListTags,
		ListTasks:         inv.Options.ListTasks,
		ModulePath:        inv.Options.ModulePath,
		SkipTags:          inv.Options.SkipTags,
		StartAtTask:       inv.Options.StartAtTask,
		Step:              inv.Options.Step,
		SyntaxCheck:       inv.Options.SyntaxCheck,
		Tags:              inv.Options.Tags,
		VaultID:           inv.Options.VaultID,
		VaultPasswordFile: inv.Options.VaultPasswordFile,
		Version:           inv.Options.Version,
	}
	opts.SetVerbosity(inv.Options.Verbosity)

	timeout := inv.Connection.Timeout
	if timeout == 0 {
		timeout = -1
	}

	return &ansible.PlaybookCmd{
		Binary:    inv.Binary,
		Executor:  &ansible.DefaultExecutor{Dir: inv.WorkDir},
		Playbooks: append([]string{}, inv.Playbooks...),
		Options:   opts,
		ConnectionOptions: &ansible.ConnectionOptions{
			AskPass:       inv.Connection.AskPass,
			Connection:    inv.Connection.Connection,
			PrivateKey:    inv.Connection.PrivateKey,
			SCPExtraArgs:  inv.Connection.SCPExtraArgs,
			SFTPExtraArgs: inv.Connection.SFTPExtraArgs,
			SSHCommonArgs: inv.Connection.SSHCommonArgs,
			SSHExtraArgs:  inv.Connection.SSHExtraArgs,
			Timeout:       timeout,
			User:          inv.Connection.User,
		},
		PrivilegeEscalationOptions: &ansible.PrivilegeEscalationOptions{
			AskBecomePass: inv.Become.AskBecomePass,
			Become:        inv.Become.Become,
			BecomeMethod:  inv.Become.BecomeMethod,
			BecomeUser:    inv.Become.BecomeUser,
		},
	}
}

// ApplyEnv performs the environment changes requested by the invocation.
// They affect the whole process.
func (inv *Invocation) ApplyEnv() error {
	if inv.Env.ForceColor {
		if err := ansible.ForceColor(); err != nil {
			return fmt.Errorf("failed to set %s: %w", ansible.ForceColorEnv, err)
		}
	}

	if inv.Env.HostKeyChecking != nil {
		if *inv.Env.HostKeyChecking {
			if err := ansible.SetEnv(ansible.HostKeyCheckingEnv, "true"); err != nil {
				return fmt.Errorf("failed to set %s: %w", ansible.HostKeyCheckingEnv, err)
			}
		} else if err := ansible.AvoidHostKeyChecking(); err != nil {
			return fmt.Errorf("failed to set %s: %w", ansible.HostKeyCheckingEnv, err)
		}
	}

	named := []struct{ key, value string }{
		{ansible.StdoutCallbackEnv, inv.Env.StdoutCallback},
		{ansible.ConfigEnv, inv.Env.Config},
	}
	for _, e := range named {
		if e.value == "" {
			continue
		}
		if err := ansible.SetEnv(e.key, e.value); err != nil {
			return fmt.Errorf("failed to set %s: %w", e.key, err)
		}
	}

	keys := make([]string, 0, len(inv.Env.Vars))
	for k := range inv.Env.Vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := ansible.SetEnv(k, inv.Env.Vars[k]); err != nil {
			return fmt.Errorf("failed to set %s: %w", k, err)
		}
	}

	return nil
}

// VarsFileArgs prefixes each vars file path with "@", which is how
// ansible-playbook tells a file apart from inline key=value pairs
func VarsFileArgs(files []string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		f = strings.TrimSpace(f)
		if !strings.HasPrefix(f, "@") {
			f = "@" + filepath.Clean(f)
		}
		out = append(out, f)
	}
	return out
}
