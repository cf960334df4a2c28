package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-converter/internal/buildinfo"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "statement-converter %s\n", buildinfo.String())
			return err
		},
	}
}
