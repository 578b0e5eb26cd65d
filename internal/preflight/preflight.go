package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"frameworks/ansible/pkg/ansible"
)

// minNoFile is the open files soft limit below which large forks counts
// start failing with "too many open files"
const minNoFile = 1024

type Check struct {
	Name   string
	OK     bool
	Detail string
	Error  string
}

type Summary struct {
	Checks []Check
}

// OK reports whether every check passed
func (s *Summary) OK() bool {
	for _, c := range s.Checks {
		if !c.OK {
			return false
		}
	}
	return true
}

// Failed returns the checks that did not pass
func (s *Summary) Failed() []Check {
	var out []Check
	for _, c := range s.Checks {
		if !c.OK {
			out = append(out, c)
		}
	}
	return out
}

func (s *Summary) add(checks ...Check) {
	s.Checks = append(s.Checks, checks...)
}

// Run checks everything a playbook command needs before it is started
func Run(ctx context.Context, cmd *ansible.PlaybookCmd) *Summary {
	s := &Summary{}

	binary := Binary(cmd.BinaryName())
	s.add(binary)
	if binary.OK {
		s.add(AnsibleVersion(ctx, cmd.BinaryName()))
	}

	s.add(Files("playbook", cmd.Playbooks)...)
	if cmd.Options != nil {
		s.add(Files("extra-vars-file", cmd.Options.ExtraVarsFiles)...)
		if cmd.Options.VaultPasswordFile != "" {
			s.add(Files("vault-password-file", []string{cmd.Options.VaultPasswordFile})...)
		}
	}
	if cmd.ConnectionOptions != nil && cmd.ConnectionOptions.PrivateKey != "" {
		s.add(Files("private-key", []string{cmd.ConnectionOptions.PrivateKey})...)
	}

	s.add(UlimitNoFile())
	return s
}

// Binary checks that a binary resolves on PATH
func Binary(name string) Check {
	if err := ansible.VerifyBinary(name); err != nil {
		return Check{Name: "binary", OK: false, Detail: name + " not found", Error: errString(err)}
	}
	return Check{Name: "binary", OK: true, Detail: name + " found"}
}

// AnsibleVersion reports the ansible-core version behind binary
func AnsibleVersion(ctx context.Context, binary string) Check {
	v, err := ansible.InstalledVersion(ctx, binary)
	if err != nil {
		return Check{Name: "ansible-version", OK: false, Detail: "cannot determine version", Error: err.Error()}
	}
	return Check{Name: "ansible-version", OK: true, Detail: "ansible-core " + v}
}

// Files checks that each path exists and is a regular file. A leading "@"
// (the vars file marker) is ignored.
func Files(kind string, paths []string) []Check {
	out := make([]Check, 0, len(paths))
	for _, p := range paths {
		path := strings.TrimPrefix(p, "@")
		name := fmt.Sprintf("%s:%s", kind, path)

		info, err := os.Stat(path)
		switch {
		case err != nil:
			out = append(out, Check{Name: name, OK: false, Detail: "not readable", Error: err.Error()})
		case info.IsDir():
			out = append(out, Check{Name: name, OK: false, Detail: "is a directory"})
		default:
			out = append(out, Check{Name: name, OK: true, Detail: fmt.Sprintf("%d bytes", info.Size())})
		}
	}
	return out
}

// UlimitNoFile checks the open files limit of this process, which the
// spawned playbook inherits
func UlimitNoFile() Check {
	var r syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &r); err != nil {
		return Check{Name: "ulimit-nofile", OK: false, Detail: "", Error: err.Error()}
	}
	detail := fmt.Sprintf("soft=%d hard=%d", r.Cur, r.Max)
	if r.Cur < minNoFile {
		return Check{Name: "ulimit-nofile", OK: false, Detail: detail, Error: fmt.Sprintf("soft limit below %d", minNoFile)}
	}
	return Check{Name: "ulimit-nofile", OK: true, Detail: detail}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
