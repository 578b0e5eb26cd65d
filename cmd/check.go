package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"frameworks/ansible/internal/preflight"
)

type checkJSON struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

func newCheckCmd() *cobra.Command {
	var file string
	var binary string

	cmd := &cobra.Command{
		Use:   "check [PLAYBOOK...]",
		Short: "Check that a playbook run can start",
		Long: `Resolve the ansible-playbook binary, report its version and check that
every file the invocation refers to (playbooks, vars files, vault password
file, private key) exists. Nothing is executed on any host.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			pc, err := buildPlaybookCmd(file, args)
			if err != nil {
				return err
			}
			if binary != "" {
				pc.Binary = binary
			}

			summary := preflight.Run(cmd.Context(), pc)

			if output == "json" {
				checks := make([]checkJSON, 0, len(summary.Checks))
				for _, c := range summary.Checks {
					checks = append(checks, checkJSON(c))
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(checks); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				p := newPalette(out)
				fmt.Fprintln(out, "Preflight:")
				for _, c := range summary.Checks {
					if c.Error != "" {
						fmt.Fprintf(out, " %s %-32s %s (%s)\n", p.mark(c.OK), c.Name, c.Detail, c.Error)
					} else {
						fmt.Fprintf(out, " %s %-32s %s\n", p.mark(c.OK), c.Name, c.Detail)
					}
				}
			}

			if failed := summary.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d preflight check(s) failed", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML invocation file")
	cmd.Flags().StringVar(&binary, "binary", "", "ansible-playbook binary to check")
	return cmd
}
