package ansible

import "strings"

// Playbook options flags
const (
	AskVaultPasswordFlag  = "--ask-vault-password"
	CheckFlag             = "--check"
	DiffFlag              = "--diff"
	ExtraVarsFlag         = "--extra-vars"
	FlushCacheFlag        = "--flush-cache"
	ForceHandlersFlag     = "--force-handlers"
	ForksFlag             = "--forks"
	InventoryFlag         = "--inventory"
	LimitFlag             = "--limit"
	ListHostsFlag         = "--list-hosts"
	ListTagsFlag          = "--list-tags"
	ListTasksFlag         = "--list-tasks"
	ModulePathFlag        = "--module-path"
	SkipTagsFlag          = "--skip-tags"
	StartAtTaskFlag       = "--start-at-task"
	StepFlag              = "--step"
	SyntaxCheckFlag       = "--syntax-check"
	TagsFlag              = "--tags"
	VaultIDFlag           = "--vault-id"
	VaultPasswordFileFlag = "--vault-password-file"
	VersionFlag           = "--version"
)

// Verbosity flags. Level 5 reuses the level 4 token.
const (
	VerboseVFlag    = "-v"
	VerboseVVFlag   = "-vv"
	VerboseVVVFlag  = "-vvv"
	VerboseVVVVFlag = "-vvvv"
	VerboseFlag     = "-vvvv"
)

// MaxVerbosity is the highest level accepted by SetVerbosity
const MaxVerbosity = 5

// PlaybookOptions holds the parameters from the "Options" section of the
// ansible-playbook man page, which drive the execution behaviour.
type PlaybookOptions struct {
	AskVaultPassword  bool     // ask for vault password
	Check             bool     // don't make any changes, try to predict them instead
	Diff              bool     // show the differences in changed files and templates
	ExtraVars         Value    // inline extra variables; null leaves the flag out
	ExtraVarsFiles    []string // extra variable files, usually prefixed with @
	FlushCache        bool     // clear the fact cache for every host in inventory
	ForceHandlers     bool     // run handlers even if a task fails
	Forks             string   // number of parallel processes to use
	Inventory         string   // inventory host path or comma separated host list
	Limit             string   // further limit selected hosts to an additional pattern
	ListHosts         bool     // outputs a list of matching hosts
	ListTags          bool     // list all available tags
	ListTasks         bool     // list all tasks that would be executed
	ModulePath        string   // prepend colon-separated paths to the module library
	SkipTags          string   // only run plays and tasks whose tags do not match
	StartAtTask       string   // start the playbook at the task matching this name
	Step              bool     // confirm each task before running
	SyntaxCheck       bool     // perform a syntax check on the playbook, but do not execute it
	Tags              string   // only run plays and tasks tagged with these values
	VaultID           string   // the vault identity to use
	VaultPasswordFile string   // vault password file
	VerboseV          bool     // verbosity level 1, -v
	VerboseVV         bool     // verbosity level 2, -vv
	VerboseVVV        bool     // verbosity level 3, -vvv
	VerboseVVVV       bool     // verbosity level 4, -vvvv
	Verbose           bool     // verbosity level 5, also -vvvv
	Version           bool     // show program's version number and exit
}

// Verbosity returns the level Flags would emit, 0 when none is set.
// Lower levels take precedence when several toggles are set.
func (o *PlaybookOptions) Verbosity() int {
	switch {
	case o.VerboseV:
		return 1
	case o.VerboseVV:
		return 2
	case o.VerboseVVV:
		return 3
	case o.VerboseVVVV:
		return 4
	case o.Verbose:
		return 5
	}
	return 0
}

// SetVerbosity clears every verbosity toggle and sets the one for level.
// Levels above MaxVerbosity are clamped; zero or below clears them all.
func (o *PlaybookOptions) SetVerbosity(level int) {
	o.VerboseV, o.VerboseVV, o.VerboseVVV, o.VerboseVVVV, o.Verbose = false, false, false, false, false

	if level > MaxVerbosity {
		level = MaxVerbosity
	}

	switch level {
	case 1:
		o.VerboseV = true
	case 2:
		o.VerboseVV = true
	case 3:
		o.VerboseVVV = true
	case 4:
		o.VerboseVVVV = true
	case 5:
		o.Verbose = true
	}
}

func (o *PlaybookOptions) verbosityFlag() string {
	switch o.Verbosity() {
	case 1:
		return VerboseVFlag
	case 2:
		return VerboseVVFlag
	case 3:
		return VerboseVVVFlag
	case 4:
		return VerboseVVVVFlag
	case 5:
		return VerboseFlag
	}
	return ""
}

// Flags returns the playbook options in ansible-playbook argv form.
// Inline extra vars come before the extra vars files, which keep their
// list order.
func (o *PlaybookOptions) Flags() []string {
	cmd := []string{}

	cmd = appendBool(cmd, AskVaultPasswordFlag, o.AskVaultPassword)
	cmd = appendBool(cmd, CheckFlag, o.Check)
	cmd = appendBool(cmd, DiffFlag, o.Diff)

	if !o.ExtraVars.IsNull() {
		cmd = append(cmd, ExtraVarsFlag, o.ExtraVars.String())
	}

	for _, file := range o.ExtraVarsFiles {
		cmd = append(cmd, ExtraVarsFlag, file)
	}

	cmd = appendBool(cmd, FlushCacheFlag, o.FlushCache)
	cmd = appendBool(cmd, ForceHandlersFlag, o.ForceHandlers)
	cmd = appendValue(cmd, ForksFlag, o.Forks)
	cmd = appendValue(cmd, InventoryFlag, o.Inventory)
	cmd = appendValue(cmd, LimitFlag, o.Limit)
	cmd = appendBool(cmd, ListHostsFlag, o.ListHosts)
	cmd = appendBool(cmd, ListTagsFlag, o.ListTags)
	cmd = appendBool(cmd, ListTasksFlag, o.ListTasks)
	cmd = appendValue(cmd, ModulePathFlag, o.ModulePath)
	cmd = appendValue(cmd, SkipTagsFlag, o.SkipTags)
	cmd = appendValue(cmd, StartAtTaskFlag, o.StartAtTask)
	cmd = appendBool(cmd, StepFlag, o.Step)
	cmd = appendBool(cmd, SyntaxCheckFlag, o.SyntaxCheck)
	cmd = appendValue(cmd, TagsFlag, o.Tags)
	cmd = appendValue(cmd, VaultIDFlag, o.VaultID)
	cmd = appendValue(cmd, VaultPasswordFileFlag, o.VaultPasswordFile)

	if flag := o.verbosityFlag(); flag != "" {
		cmd = append(cmd, flag)
	}

	cmd = appendBool(cmd, VersionFlag, o.Version)

	return cmd
}

// String returns the playbook options joined by spaces
func (o *PlaybookOptions) String() string {
	return strings.Join(o.Flags(), " ")
}

func appendBool(cmd []string, flag string, set bool) []string {
	if !set {
		return cmd
	}
	return append(cmd, flag)
}
