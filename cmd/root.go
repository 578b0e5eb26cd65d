package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"frameworks/ansible/pkg/config"
	"frameworks/ansible/pkg/logging"
)

var (
	output  string
	verbose bool
	logger  = logging.NewLogger()
)

// NewRootCmd returns the root command for the ansible-playbook wrapper
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "frameworks-ansible",
		Short:         "Compile and run ansible-playbook invocations",
		Long:          "Build ansible-playbook command lines from flags or YAML invocation files, check the environment and run them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv(logger)
			// LOG_LEVEL may come from a .env file
			logger.SetLevel(config.GetLogLevel())
			if verbose {
				logger.SetLevel(logging.DebugLevel)
			}
			if output != "" && output != "text" && output != "json" {
				return fmt.Errorf("invalid output format: %s (must be text or json)", output)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&output, "output", "", "output format: json|text (default: text)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug logging")

	rootCmd.AddCommand(newPlaybookCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
