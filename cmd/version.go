package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"frameworks/ansible/pkg/ansible"
	"frameworks/ansible/pkg/config"
	"frameworks/ansible/pkg/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print wrapper and ansible-core version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.GetInfo()
			binary := config.AnsibleBinary(ansible.DefaultPlaybookBinary)
			ansibleVersion, err := ansible.InstalledVersion(cmd.Context(), binary)
			if err != nil {
				logger.WithError(err).Debug("Could not determine ansible-core version")
				ansibleVersion = "unknown"
			}

			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					version.Info
					AnsibleCore string `json:"ansible_core"`
				}{info, ansibleVersion})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Frameworks Ansible\n")
			fmt.Fprintf(cmd.OutOrStdout(), " - version: %s\n", info.Version)
			fmt.Fprintf(cmd.OutOrStdout(), " - git: %s\n", version.GetShortCommit())
			fmt.Fprintf(cmd.OutOrStdout(), " - built: %s (%s, %s)\n", info.BuildDate, info.GoVersion, info.Platform)
			fmt.Fprintf(cmd.OutOrStdout(), " - ansible-core: %s (%s)\n", ansibleVersion, binary)
			return nil
		},
	}
}
