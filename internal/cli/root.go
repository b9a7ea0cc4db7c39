// Package cli implements the plantctl command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/okian/plantmetrics/pkg/logger"
)

// NewRootCmd builds the plantctl root command. Logs go to stderr so command
// output on stdout stays machine readable.
func NewRootCmd(version string) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:     "plantctl",
		Short:   "Plant energy and emissions toolkit",
		Long:    "plantctl computes energy, emissions and efficiency KPIs from plant sheets, generates sample sheets, and uploads sheets to a plantmetrics server.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.InitWithOptions(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		NewProcessCmd(),
		NewGenerateCmd(),
		NewUploadCmd(),
	)
	return cmd
}
