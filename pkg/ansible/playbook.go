package ansible

import (
	"context"
	"fmt"
	"strings"
)

// DefaultPlaybookBinary is the binary used when PlaybookCmd.Binary is empty
const DefaultPlaybookBinary = "ansible-playbook"

// CompileError reports options that cannot be turned into a command line
type CompileError struct {
	Group string
	Err   error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to generate %s options: %v", e.Group, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// PlaybookCmd is an ansible-playbook invocation and how to execute it
type PlaybookCmd struct {
	Binary                     string                      // ansible-playbook binary, DefaultPlaybookBinary when empty
	Executor                   Executor                    // runs the command, a DefaultExecutor when nil
	Playbooks                  []string                    // playbooks to run, in order
	Options                    *PlaybookOptions            // execution behaviour
	ConnectionOptions          *ConnectionOptions          // how to connect to hosts
	PrivilegeEscalationOptions *PrivilegeEscalationOptions // how to become on hosts
}

// NewPlaybookCmd returns a command for the given playbooks with every
// option group unset
func NewPlaybookCmd(playbooks ...string) *PlaybookCmd {
	return &PlaybookCmd{
		Binary:                     DefaultPlaybookBinary,
		Playbooks:                  playbooks,
		Options:                    &PlaybookOptions{},
		ConnectionOptions:          NewConnectionOptions(),
		PrivilegeEscalationOptions: &PrivilegeEscalationOptions{},
	}
}

// BinaryName returns the binary that Command and Run use
func (p *PlaybookCmd) BinaryName() string {
	if p.Binary == "" {
		return DefaultPlaybookBinary
	}
	return p.Binary
}

// Command generates the full argv: binary, playbook options, connection
// options, privilege escalation options and finally the playbooks.
func (p *PlaybookCmd) Command() ([]string, error) {
	cmd := []string{p.BinaryName()}

	if p.Options != nil {
		cmd = append(cmd, p.Options.Flags()...)
	}

	if p.ConnectionOptions != nil {
		cmd = append(cmd, p.ConnectionOptions.Flags()...)
	}

	if p.PrivilegeEscalationOptions != nil {
		cmd = append(cmd, p.PrivilegeEscalationOptions.Flags()...)
	}

	cmd = append(cmd, p.Playbooks...)

	return cmd, nil
}

// Run verifies the binary and starts the playbooks. It returns as soon as
// the process is started; waiting and reading output is up to the caller.
func (p *PlaybookCmd) Run(ctx context.Context) (*Process, error) {
	binary := p.BinaryName()
	if err := VerifyBinary(binary); err != nil {
		return nil, fmt.Errorf("(playbook run) %w", err)
	}

	command, err := p.Command()
	if err != nil {
		return nil, fmt.Errorf("(playbook run) %w", err)
	}

	executor := p.Executor
	if executor == nil {
		executor = &DefaultExecutor{}
	}

	return executor.Run(ctx, command)
}

// Describe returns the command line as a single space separated string
func (p *PlaybookCmd) Describe() (string, error) {
	command, err := p.Command()
	if err != nil {
		return "", fmt.Errorf("(playbook describe) %w", err)
	}
	return strings.Join(command, " "), nil
}
