package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/getsops/sops/v3/decrypt"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"frameworks/ansible/pkg/ansible"
)

// SopsFormat returns the sops store format for a file, from its extension
func SopsFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json"
	case ".env":
		return "dotenv"
	default:
		return "yaml"
	}
}

// DecryptVars decrypts a sops-encrypted vars file with the keys available
// to this process (age, PGP, cloud KMS) and returns its top-level mapping
func DecryptVars(path string) (ansible.Value, error) {
	format := SopsFormat(path)

	cleartext, err := decrypt.File(path, format)
	if err != nil {
		return ansible.Null(), fmt.Errorf("failed to decrypt vars file %s: %w", path, err)
	}

	vars, err := parseVars(cleartext, format)
	if err != nil {
		return ansible.Null(), fmt.Errorf("failed to parse decrypted vars file %s: %w", path, err)
	}

	return vars, nil
}

func parseVars(data []byte, format string) (ansible.Value, error) {
	switch format {
	case "dotenv":
		env, err := godotenv.UnmarshalBytes(data)
		if err != nil {
			return ansible.Null(), err
		}
		keys := make([]string, 0, len(env))
		for k := range env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]ansible.Field, 0, len(keys))
		for _, k := range keys {
			fields = append(fields, ansible.F(k, ansible.String(env[k])))
		}
		return ansible.Map(fields...), nil
	}

	// JSON is valid YAML
	var out ansible.Value
	if err := yaml.Unmarshal(data, &out); err != nil {
		return ansible.Null(), err
	}
	if out.Kind() != ansible.MapKind {
		return ansible.Null(), fmt.Errorf("expected a mapping at the top level, got: %s", out.Kind())
	}
	return out, nil
}
