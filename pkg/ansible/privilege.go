package ansible

import "strings"

// Privilege escalation flags
const (
	AskBecomePassFlag = "--ask-become-pass"
	BecomeFlag        = "--become"
	BecomeMethodFlag  = "--become-method"
	BecomeUserFlag    = "--become-user"
)

// Become methods shipped with ansible-core and the common collections.
// BecomeMethod accepts any other plugin name as well.
const (
	BecomeMethodKsu        = "ksu"        // Kerberos substitute user
	BecomeMethodPbrun      = "pbrun"      // PowerBroker run
	BecomeMethodEnable     = "enable"     // elevated permissions on a network device
	BecomeMethodSesu       = "sesu"       // CA Privileged Access Manager
	BecomeMethodPmrun      = "pmrun"      // Privilege Manager run
	BecomeMethodRunas      = "runas"      // Windows Run As
	BecomeMethodSudo       = "sudo"       // substitute user do
	BecomeMethodSu         = "su"         // substitute user
	BecomeMethodDoas       = "doas"       // do as user
	BecomeMethodPfexec     = "pfexec"     // profile based execution
	BecomeMethodMachinectl = "machinectl" // systemd machinectl
	BecomeMethodDzdo       = "dzdo"       // Centrify direct authorize
)

// PrivilegeEscalationOptions holds the parameters from the "Privilege
// Escalation Options" section of the ansible-playbook man page: how and
// which user to become on target hosts.
type PrivilegeEscalationOptions struct {
	AskBecomePass bool
	Become        bool
	BecomeMethod  string
	BecomeUser    string
}

// Flags returns the privilege escalation flags in ansible-playbook argv form
func (o *PrivilegeEscalationOptions) Flags() []string {
	cmd := []string{}

	cmd = appendBool(cmd, AskBecomePassFlag, o.AskBecomePass)
	cmd = appendBool(cmd, BecomeFlag, o.Become)
	cmd = appendValue(cmd, BecomeMethodFlag, o.BecomeMethod)
	cmd = appendValue(cmd, BecomeUserFlag, o.BecomeUser)

	return cmd
}

// String returns the privilege escalation flags joined by spaces
func (o *PrivilegeEscalationOptions) String() string {
	return strings.Join(o.Flags(), " ")
}
