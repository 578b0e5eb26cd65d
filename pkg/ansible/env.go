package ansible

import "os"

// Environment variables read by ansible-playbook
const (
	ForceColorEnv      = "ANSIBLE_FORCE_COLOR"
	HostKeyCheckingEnv = "ANSIBLE_HOST_KEY_CHECKING"
	StdoutCallbackEnv  = "ANSIBLE_STDOUT_CALLBACK"
	ConfigEnv          = "ANSIBLE_CONFIG"
)

// ForceColor makes ansible-playbook colorize its output even when stdout
// is a pipe. It changes the environment of the whole process.
func ForceColor() error {
	return os.Setenv(ForceColorEnv, "true")
}

// AvoidHostKeyChecking disables SSH host key verification for every
// playbook started afterwards by this process.
func AvoidHostKeyChecking() error {
	return os.Setenv(HostKeyCheckingEnv, "false")
}

// SetEnv sets an arbitrary variable in the process environment
func SetEnv(key, value string) error {
	return os.Setenv(key, value)
}
