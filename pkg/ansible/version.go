package ansible

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

var (
	coreVersionRe   = regexp.MustCompile(`^\S+ \[core ([\d.]+\w*)\]`)
	legacyVersionRe = regexp.MustCompile(`^\S+ ([\d.]+\w*)`)
)

// InstalledVersion runs `<binary> --version` and returns the ansible-core
// version it reports.
func InstalledVersion(ctx context.Context, binary string) (string, error) {
	if binary == "" {
		binary = DefaultPlaybookBinary
	}
	if err := VerifyBinary(binary); err != nil {
		return "", err
	}

	output, err := exec.CommandContext(ctx, binary, VersionFlag).Output()
	if err != nil {
		return "", fmt.Errorf("failed to run %s %s: %w", binary, VersionFlag, err)
	}

	return ParseVersion(string(output))
}

// ParseVersion extracts the version from the first line of --version output
func ParseVersion(output string) (string, error) {
	first, _, _ := strings.Cut(output, "\n")
	first = strings.TrimSpace(first)

	if m := coreVersionRe.FindStringSubmatch(first); len(m) > 1 {
		return m[1], nil
	}
	// ansible < 2.11 prints "ansible-playbook 2.9.27"
	if m := legacyVersionRe.FindStringSubmatch(first); len(m) > 1 {
		return m[1], nil
	}

	return "", fmt.Errorf("could not parse ansible version from output %q", first)
}
