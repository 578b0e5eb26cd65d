package ansible

import (
	"strconv"
	"strings"
)

// Connection options flags
const (
	AskPassFlag       = "--ask-pass"
	ConnectionFlag    = "--connection"
	PrivateKeyFlag    = "--private-key"
	SCPExtraArgsFlag  = "--scp-extra-args"
	SFTPExtraArgsFlag = "--sftp-extra-args"
	SSHCommonArgsFlag = "--ssh-common-args"
	SSHExtraArgsFlag  = "--ssh-extra-args"
	TimeoutFlag       = "--timeout"
	UserFlag          = "--user"
)

// ConnectionOptions holds the parameters from the "Connection Options"
// section of the ansible-playbook man page: how to reach target hosts.
type ConnectionOptions struct {
	AskPass       bool   // ask for connection password
	Connection    string // connection type to use (default=smart)
	PrivateKey    string // private key file used to authenticate the connection
	SCPExtraArgs  string // extra arguments passed to scp only
	SFTPExtraArgs string // extra arguments passed to sftp only
	SSHCommonArgs string // common arguments passed to sftp, scp and ssh
	SSHExtraArgs  string // extra arguments passed to ssh only
	Timeout       int    // connection timeout in seconds; -1 or 0 leaves the tool default
	User          string // connect as this user
}

// NewConnectionOptions returns connection options with every field unset
func NewConnectionOptions() *ConnectionOptions {
	return &ConnectionOptions{Timeout: -1}
}

// Flags returns the connection flags in ansible-playbook argv form.
// Unset fields are skipped; the order of the groups never changes.
func (o *ConnectionOptions) Flags() []string {
	cmd := []string{}

	cmd = appendBool(cmd, AskPassFlag, o.AskPass)
	cmd = appendValue(cmd, ConnectionFlag, o.Connection)
	cmd = appendValue(cmd, PrivateKeyFlag, o.PrivateKey)
	cmd = appendValue(cmd, SCPExtraArgsFlag, o.SCPExtraArgs)
	cmd = appendValue(cmd, SFTPExtraArgsFlag, o.SFTPExtraArgs)
	cmd = appendValue(cmd, SSHCommonArgsFlag, o.SSHCommonArgs)
	cmd = appendValue(cmd, SSHExtraArgsFlag, o.SSHExtraArgs)

	if o.Timeout > 0 {
		cmd = append(cmd, TimeoutFlag, strconv.Itoa(o.Timeout))
	}

	cmd = appendValue(cmd, UserFlag, o.User)

	return cmd
}

// String returns the connection flags joined by spaces
func (o *ConnectionOptions) String() string {
	return strings.Join(o.Flags(), " ")
}

// appendValue adds flag followed by value when value is not empty
func appendValue(cmd []string, flag, value string) []string {
	if value == "" {
		return cmd
	}
	return append(cmd, flag, value)
}
