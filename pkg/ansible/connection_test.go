package ansible

import (
	"reflect"
	"testing"
)

func TestConnectionOptionsFlags(t *testing.T) {
	tests := []struct {
		name string
		opts *ConnectionOptions
		want []string
	}{
		{
			name: "empty",
			opts: NewConnectionOptions(),
			want: []string{},
		},
		{
			name: "connection only",
			opts: &ConnectionOptions{Connection: "local", Timeout: -1},
			want: []string{"--connection", "local"},
		},
		{
			name: "zero timeout is left out",
			opts: &ConnectionOptions{User: "deploy"},
			want: []string{"--user", "deploy"},
		},
		{
			name: "all fields in order",
			opts: &ConnectionOptions{
				AskPass:       true,
				Connection:    "ssh",
				PrivateKey:    "id_rsa",
				SCPExtraArgs:  "-l",
				SFTPExtraArgs: "-f",
				SSHCommonArgs: "-o ProxyCommand=none",
				SSHExtraArgs:  "-R",
				Timeout:       10,
				User:          "apenella",
			},
			want: []string{
				"--ask-pass",
				"--connection", "ssh",
				"--private-key", "id_rsa",
				"--scp-extra-args", "-l",
				"--sftp-extra-args", "-f",
				"--ssh-common-args", "-o ProxyCommand=none",
				"--ssh-extra-args", "-R",
				"--timeout", "10",
				"--user", "apenella",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.opts.Flags()
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Flags() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConnectionOptionsString(t *testing.T) {
	opts := &ConnectionOptions{Connection: "local", Timeout: 5}
	if got, want := opts.String(), "--connection local --timeout 5"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}

	if got := NewConnectionOptions().String(); got != "" {
		t.Fatalf("String() of empty options = %q, want empty", got)
	}
}

func TestConnectionOptionsDeterministic(t *testing.T) {
	opts := &ConnectionOptions{AskPass: true, Connection: "ssh", Timeout: 3, User: "root"}
	first := opts.Flags()
	for i := 0; i < 10; i++ {
		if got := opts.Flags(); !reflect.DeepEqual(got, first) {
			t.Fatalf("Flags() changed between calls: %q vs %q", got, first)
		}
	}
}
