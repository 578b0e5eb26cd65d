package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"frameworks/ansible/internal/config"
	"frameworks/ansible/pkg/ansible"
	"frameworks/ansible/pkg/ansible/result"
	envconfig "frameworks/ansible/pkg/config"
	"frameworks/ansible/pkg/logging"
)

// overlay applies command line flags on top of a command loaded from a
// file (or a fresh one). Only flags set by the user are applied.
type overlay struct {
	fs    *pflag.FlagSet
	apply map[string]func(pc *ansible.PlaybookCmd) error
}

func newOverlay(fs *pflag.FlagSet) *overlay {
	return &overlay{fs: fs, apply: map[string]func(pc *ansible.PlaybookCmd) error{}}
}

func (o *overlay) boolFlag(name string, field func(pc *ansible.PlaybookCmd) *bool, usage string) {
	var v bool
	o.fs.BoolVar(&v, name, false, usage)
	o.apply[name] = func(pc *ansible.PlaybookCmd) error {
		*field(pc) = v
		return nil
	}
}

func (o *overlay) stringFlag(name string, field func(pc *ansible.PlaybookCmd) *string, usage string) {
	var v string
	o.fs.StringVar(&v, name, "", usage)
	o.apply[name] = func(pc *ansible.PlaybookCmd) error {
		*field(pc) = v
		return nil
	}
}

func (o *overlay) Apply(pc *ansible.PlaybookCmd) error {
	var errs []error
	o.fs.Visit(func(f *pflag.Flag) {
		if fn, ok := o.apply[f.Name]; ok {
			if err := fn(pc); err != nil {
				errs = append(errs, fmt.Errorf("--%s: %w", f.Name, err))
			}
		}
	})
	return errors.Join(errs...)
}

// extraVarsArg is one --extra-vars or --extra-vars-file occurrence
type extraVarsArg struct {
	raw  string
	file bool
}

// extraVarsFlag collects --extra-vars and --extra-vars-file into one list
// in command line order. Both flags share the same list, so a later file
// still overrides an earlier one whichever flag named it.
type extraVarsFlag struct {
	args *[]extraVarsArg
	file bool
}

func (f *extraVarsFlag) String() string {
	var out []string
	for _, a := range *f.args {
		if a.file == f.file {
			out = append(out, a.raw)
		}
	}
	return "[" + strings.Join(out, ",") + "]"
}

func (f *extraVarsFlag) Set(value string) error {
	*f.args = append(*f.args, extraVarsArg{raw: value, file: f.file})
	return nil
}

func (f *extraVarsFlag) Type() string { return "stringArray" }

// applyExtraVars merges inline vars and appends files in command line order
func applyExtraVars(pc *ansible.PlaybookCmd, args []extraVarsArg) error {
	for _, a := range args {
		switch {
		case a.file:
			pc.Options.ExtraVarsFiles = append(pc.Options.ExtraVarsFiles, config.VarsFileArgs([]string{a.raw})...)
		case strings.HasPrefix(a.raw, "@"):
			pc.Options.ExtraVarsFiles = append(pc.Options.ExtraVarsFiles, a.raw)
		default:
			v, err := ansible.ParseExtraVars(a.raw)
			if err != nil {
				return fmt.Errorf("--extra-vars: %w", err)
			}
			pc.Options.ExtraVars = pc.Options.ExtraVars.Merge(v)
		}
	}
	return nil
}

type playbookRun struct {
	file              string
	workDir           string
	dryRun            bool
	forceColor        bool
	noHostKeyChecking bool
	tailBytes         int
	extraVars         []extraVarsArg
	overlay           *overlay
}

// newPlaybookCmd creates the playbook command
func newPlaybookCmd() *cobra.Command {
	run := &playbookRun{}

	cmd := &cobra.Command{
		Use:   "playbook [PLAYBOOK...]",
		Short: "Run ansible-playbook with the given options",
		Long: `Compile options into an ansible-playbook command line and run it.

Options come from an invocation file (--file) and/or flags; flags given on
the command line override the file. Positional arguments are appended to
the playbook list. Output is streamed while the playbook runs and the
PLAY RECAP is summarised at the end.`,
		Example: `  # Run a playbook locally
  frameworks-ansible playbook --connection local --inventory 127.0.0.1, site.yml

  # Show the command line without running it
  frameworks-ansible playbook --file deploy.yaml --dry-run

  # Override the file's limit and raise verbosity
  frameworks-ansible playbook --file deploy.yaml --limit web01 --verbosity 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlaybook(cmd, run, args)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&run.file, "file", "f", "", "YAML invocation file")
	fs.StringVar(&run.workDir, "workdir", "", "working directory for ansible-playbook")
	fs.BoolVar(&run.dryRun, "dry-run", false, "print the command line without running it")
	fs.BoolVar(&run.forceColor, "force-color", envconfig.ForceColor(), "set "+ansible.ForceColorEnv+"=true (default $"+envconfig.ForceColorEnv+")")
	fs.IntVar(&run.tailBytes, "tail-bytes", envconfig.OutputTailBytes(), "playbook output kept for the JSON summary of a failed run (default 8192 or $"+envconfig.OutputTailBytesEnv+")")
	fs.BoolVar(&run.noHostKeyChecking, "no-host-key-checking", false, "set "+ansible.HostKeyCheckingEnv+"=false")

	o := newOverlay(fs)
	run.overlay = o

	o.stringFlag("binary", func(pc *ansible.PlaybookCmd) *string { return &pc.Binary }, "ansible-playbook binary (default $"+envconfig.AnsibleBinaryEnv+" or ansible-playbook)")

	// Options
	o.boolFlag("ask-vault-password", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.AskVaultPassword }, "ask for vault password")
	o.boolFlag("check", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.Check }, "don't make any changes; try to predict them instead")
	o.boolFlag("diff", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.Diff }, "show the differences in changed files and templates")
	o.boolFlag("flush-cache", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.FlushCache }, "clear the fact cache for every host in inventory")
	o.boolFlag("force-handlers", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.ForceHandlers }, "run handlers even if a task fails")
	o.stringFlag("forks", func(pc *ansible.PlaybookCmd) *string { return &pc.Options.Forks }, "number of parallel processes to use")
	o.stringFlag("inventory", func(pc *ansible.PlaybookCmd) *string { return &pc.Options.Inventory }, "inventory host path or comma separated host list")
	o.stringFlag("limit", func(pc *ansible.PlaybookCmd) *string { return &pc.Options.Limit }, "further limit selected hosts to an additional pattern")
	o.boolFlag("list-hosts", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.ListHosts }, "outputs a list of matching hosts")
	o.boolFlag("list-tags", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.ListTags }, "list all available tags")
	o.boolFlag("list-tasks", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.ListTasks }, "list all tasks that would be executed")
	o.stringFlag("module-path", func(pc *ansible.PlaybookCmd) *string { return &pc.Options.ModulePath }, "prepend colon-separated paths to the module library")
	o.stringFlag("skip-tags", func(pc *ansible.PlaybookCmd) *string { return &pc.Options.SkipTags }, "only run plays and tasks whose tags do not match")
	o.stringFlag("start-at-task", func(pc *ansible.PlaybookCmd) *string { return &pc.Options.StartAtTask }, "start the playbook at the task matching this name")
	o.boolFlag("step", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.Step }, "confirm each task before running")
	o.boolFlag("syntax-check", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.SyntaxCheck }, "perform a syntax check on the playbook")
	o.stringFlag("tags", func(pc *ansible.PlaybookCmd) *string { return &pc.Options.Tags }, "only run plays and tasks tagged with these values")
	o.stringFlag("vault-id", func(pc *ansible.PlaybookCmd) *string { return &pc.Options.VaultID }, "the vault identity to use")
	o.stringFlag("vault-password-file", func(pc *ansible.PlaybookCmd) *string { return &pc.Options.VaultPasswordFile }, "vault password file")
	o.boolFlag("version", func(pc *ansible.PlaybookCmd) *bool { return &pc.Options.Version }, "pass --version to ansible-playbook")

	fs.VarP(&extraVarsFlag{args: &run.extraVars}, "extra-vars", "e", "extra variables: JSON object, key=value pairs, or @file (repeatable)")
	fs.Var(&extraVarsFlag{args: &run.extraVars, file: true}, "extra-vars-file", "extra variables file (repeatable)")

	var verbosity int
	fs.IntVar(&verbosity, "verbosity", 0, "ansible-playbook verbosity, 0-5")
	o.apply["verbosity"] = func(pc *ansible.PlaybookCmd) error {
		if verbosity < 0 || verbosity > ansible.MaxVerbosity {
			return fmt.Errorf("must be between 0 and %d, got: %d", ansible.MaxVerbosity, verbosity)
		}
		pc.Options.SetVerbosity(verbosity)
		return nil
	}

	// Connection options
	o.boolFlag("ask-pass", func(pc *ansible.PlaybookCmd) *bool { return &pc.ConnectionOptions.AskPass }, "ask for connection password")
	o.stringFlag("connection", func(pc *ansible.PlaybookCmd) *string { return &pc.ConnectionOptions.Connection }, "connection type to use")
	o.stringFlag("private-key", func(pc *ansible.PlaybookCmd) *string { return &pc.ConnectionOptions.PrivateKey }, "private key file used to authenticate the connection")
	o.stringFlag("scp-extra-args", func(pc *ansible.PlaybookCmd) *string { return &pc.ConnectionOptions.SCPExtraArgs }, "extra arguments passed to scp only")
	o.stringFlag("sftp-extra-args", func(pc *ansible.PlaybookCmd) *string { return &pc.ConnectionOptions.SFTPExtraArgs }, "extra arguments passed to sftp only")
	o.stringFlag("ssh-common-args", func(pc *ansible.PlaybookCmd) *string { return &pc.ConnectionOptions.SSHCommonArgs }, "common arguments passed to sftp, scp and ssh")
	o.stringFlag("ssh-extra-args", func(pc *ansible.PlaybookCmd) *string { return &pc.ConnectionOptions.SSHExtraArgs }, "extra arguments passed to ssh only")
	o.stringFlag("user", func(pc *ansible.PlaybookCmd) *string { return &pc.ConnectionOptions.User }, "connect as this user")

	var timeout int
	fs.IntVar(&timeout, "timeout", -1, "connection timeout in seconds")
	o.apply["timeout"] = func(pc *ansible.PlaybookCmd) error {
		if timeout < -1 {
			return fmt.Errorf("must be -1 (unset) or positive, got: %d", timeout)
		}
		pc.ConnectionOptions.Timeout = timeout
		return nil
	}

	// Privilege escalation options
	o.boolFlag("ask-become-pass", func(pc *ansible.PlaybookCmd) *bool { return &pc.PrivilegeEscalationOptions.AskBecomePass }, "ask for privilege escalation password")
	o.boolFlag("become", func(pc *ansible.PlaybookCmd) *bool { return &pc.PrivilegeEscalationOptions.Become }, "run operations with become")
	o.stringFlag("become-method", func(pc *ansible.PlaybookCmd) *string { return &pc.PrivilegeEscalationOptions.BecomeMethod }, "privilege escalation method (sudo, su, doas, ...)")
	o.stringFlag("become-user", func(pc *ansible.PlaybookCmd) *string { return &pc.PrivilegeEscalationOptions.BecomeUser }, "run operations as this user")

	return cmd
}

// buildPlaybookCmd loads the invocation file when given, applies its
// environment and appends positional playbooks
func buildPlaybookCmd(file string, args []string) (*ansible.PlaybookCmd, error) {
	pc := ansible.NewPlaybookCmd()
	pc.Binary = envconfig.AnsibleBinary(ansible.DefaultPlaybookBinary)
	pc.Executor = &ansible.DefaultExecutor{}

	if file != "" {
		inv, err := config.Load(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load invocation: %w", err)
		}
		if err := inv.Resolve(); err != nil {
			return nil, fmt.Errorf("failed to resolve invocation: %w", err)
		}
		if err := inv.ApplyEnv(); err != nil {
			return nil, err
		}
		pc = inv.PlaybookCmd()
		if pc.Binary == "" {
			pc.Binary = envconfig.AnsibleBinary(ansible.DefaultPlaybookBinary)
		}
	}

	pc.Playbooks = append(pc.Playbooks, args...)
	return pc, nil
}

// runPlaybook executes the playbook command
func runPlaybook(cmd *cobra.Command, run *playbookRun, args []string) error {
	pc, err := buildPlaybookCmd(run.file, args)
	if err != nil {
		return err
	}
	if err := run.overlay.Apply(pc); err != nil {
		return err
	}
	if err := applyExtraVars(pc, run.extraVars); err != nil {
		return err
	}
	if len(pc.Playbooks) == 0 && !pc.Options.Version {
		return fmt.Errorf("no playbook given: pass one as an argument or in --file")
	}

	executor, ok := pc.Executor.(*ansible.DefaultExecutor)
	if !ok || executor == nil {
		executor = &ansible.DefaultExecutor{}
		pc.Executor = executor
	}
	if run.workDir != "" {
		executor.Dir = run.workDir
	}

	if run.dryRun {
		line, err := pc.Describe()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
		return nil
	}

	if run.forceColor {
		if err := ansible.ForceColor(); err != nil {
			return fmt.Errorf("failed to set %s: %w", ansible.ForceColorEnv, err)
		}
	}
	if run.noHostKeyChecking {
		if err := ansible.AvoidHostKeyChecking(); err != nil {
			return fmt.Errorf("failed to set %s: %w", ansible.HostKeyCheckingEnv, err)
		}
	}

	log := logger.WithFields(logging.Fields{
		"run_id":    uuid.New().String(),
		"binary":    pc.BinaryName(),
		"playbooks": pc.Playbooks,
	})

	if needsPrompt(pc) {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			executor.Stdin = os.Stdin
		} else {
			log.Warn("Password prompt requested but stdin is not a terminal")
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if line, err := pc.Describe(); err == nil {
		log.WithField("command", line).Debug("Starting ansible-playbook")
	}

	proc, err := pc.Run(ctx)
	if err != nil {
		var resErr *ansible.ResolutionError
		if errors.As(err, &resErr) {
			return fmt.Errorf("%w; install ansible or point --binary / $%s at it", err, envconfig.AnsibleBinaryEnv)
		}
		return err
	}
	log = log.WithField("pid", proc.Pid())
	log.Info("Playbook started")

	// keep stdout clean for the JSON summary
	stdout := cmd.OutOrStdout()
	if output == "json" {
		stdout = cmd.ErrOrStderr()
	}

	res, waitErr := result.Wait(proc, result.Options{
		Stdout:    stdout,
		Stderr:    cmd.ErrOrStderr(),
		TailBytes: run.tailBytes,
	})

	log.WithFields(logging.Fields{
		"exit_code": res.ExitCode,
		"duration":  res.Duration.String(),
	}).Info("Playbook finished")

	if err := printRecap(cmd, res); err != nil {
		return err
	}

	return waitErr
}

func needsPrompt(pc *ansible.PlaybookCmd) bool {
	return (pc.Options != nil && pc.Options.AskVaultPassword) ||
		(pc.ConnectionOptions != nil && pc.ConnectionOptions.AskPass) ||
		(pc.PrivilegeEscalationOptions != nil && pc.PrivilegeEscalationOptions.AskBecomePass)
}
