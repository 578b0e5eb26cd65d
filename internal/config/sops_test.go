package config

import (
	"testing"

	"frameworks/ansible/pkg/ansible"
)

func TestSopsFormat(t *testing.T) {
	tests := map[string]string{
		"secrets.yaml":     "yaml",
		"secrets.yml":      "yaml",
		"secrets.JSON":     "json",
		"prod.env":         "dotenv",
		"no-extension":     "yaml",
		"dir.json/vars.sl": "yaml",
	}
	for path, want := range tests {
		if got := SopsFormat(path); got != want {
			t.Errorf("SopsFormat(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestParseVars(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		format  string
		want    string
		wantErr bool
	}{
		{name: "yaml", data: "b: 1\na: [x]\n", format: "yaml", want: `{"b":1,"a":["x"]}`},
		{name: "json", data: `{"token":"abc","n":2}`, format: "json", want: `{"token":"abc","n":2}`},
		{name: "dotenv sorted", data: "ZED=1\nALPHA=two\n", format: "dotenv", want: `{"ALPHA":"two","ZED":"1"}`},
		{name: "top level list", data: "- a\n- b\n", format: "yaml", wantErr: true},
		{name: "invalid yaml", data: "a: [", format: "yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVars([]byte(tt.data), tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %s", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Kind() != ansible.MapKind || got.String() != tt.want {
				t.Fatalf("parseVars() = %s, want %s", got, tt.want)
			}
		})
	}
}
