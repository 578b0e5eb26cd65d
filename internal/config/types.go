package config

import "frameworks/ansible/pkg/ansible"

// Invocation is a YAML description of one ansible-playbook run
type Invocation struct {
	Binary        string     `yaml:"binary,omitempty"`
	WorkDir       string     `yaml:"work_dir,omitempty"`
	Playbooks     []string   `yaml:"playbooks"`
	Options       Options    `yaml:"options"`
	Connection    Connection `yaml:"connection"`
	Become        Become     `yaml:"become"`
	SopsVarsFiles []string   `yaml:"sops_vars_files,omitempty"` // sops-encrypted files merged into extra_vars
	Env           Env        `yaml:"env"`
}

// Options mirrors ansible.PlaybookOptions with a single verbosity level
type Options struct {
	AskVaultPassword  bool          `yaml:"ask_vault_password"`
	Check             bool          `yaml:"check"`
	Diff              bool          `yaml:"diff"`
	ExtraVars         ansible.Value `yaml:"extra_vars"`
	ExtraVarsFiles    []string      `yaml:"extra_vars_files"`
	FlushCache        bool          `yaml:"flush_cache"`
	ForceHandlers     bool          `yaml:"force_handlers"`
	Forks             string        `yaml:"forks"`
	Inventory         string        `yaml:"inventory"`
	Limit             string        `yaml:"limit"`
	ListHosts         bool          `yaml:"list_hosts"`
	ListTags          bool          `yaml:"list_tags"`
	ListTasks         bool          `yaml:"list_tasks"`
	ModulePath        string        `yaml:"module_path"`
	SkipTags          string        `yaml:"skip_tags"`
	StartAtTask       string        `yaml:"start_at_task"`
	Step              bool          `yaml:"step"`
	SyntaxCheck       bool          `yaml:"syntax_check"`
	Tags              string        `yaml:"tags"`
	VaultID           string        `yaml:"vault_id"`
	VaultPasswordFile string        `yaml:"vault_password_file"`
	Verbosity         int           `yaml:"verbosity"` // 0-5
	Version           bool          `yaml:"version"`
}

// Connection mirrors ansible.ConnectionOptions
type Connection struct {
	AskPass       bool   `yaml:"ask_pass"`
	Connection    string `yaml:"connection"`
	PrivateKey    string `yaml:"private_key"`
	SCPExtraArgs  string `yaml:"scp_extra_args"`
	SFTPExtraArgs string `yaml:"sftp_extra_args"`
	SSHCommonArgs string `yaml:"ssh_common_args"`
	SSHExtraArgs  string `yaml:"ssh_extra_args"`
	Timeout       int    `yaml:"timeout"` // seconds; 0 or -1 keeps the ansible default
	User          string `yaml:"user"`
}

// Become mirrors ansible.PrivilegeEscalationOptions
type Become struct {
	AskBecomePass bool   `yaml:"ask_become_pass"`
	Become        bool   `yaml:"become"`
	BecomeMethod  string `yaml:"become_method"`
	BecomeUser    string `yaml:"become_user"`
}

// Env lists process environment changes applied before the run
type Env struct {
	ForceColor      bool              `yaml:"force_color"`
	HostKeyChecking *bool             `yaml:"host_key_checking,omitempty"` // nil leaves ansible's default
	StdoutCallback  string            `yaml:"stdout_callback,omitempty"`   // ANSIBLE_STDOUT_CALLBACK
	Config          string            `yaml:"config,omitempty"`            // ANSIBLE_CONFIG, path to an ansible.cfg
	Vars            map[string]string `yaml:"vars,omitempty"`              // applied last, in key order
}
