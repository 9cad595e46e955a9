package cli

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-gitcontent/internal/logging"
)

func newBuildCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Load every collection once and write the page to disk",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := a.module()
			if err != nil {
				return err
			}
			target, err := module.Build(cmd.Context())
			if err != nil {
				return err
			}
			logging.CLILogger(module.Container().LoggerProvider()).Info("cli.build.written", "path", target)
			printf(cmd.OutOrStdout(), "%s\n", target)
			return nil
		},
	}
	cmd.Flags().String("output", "", "output file (default dist/index.html)")
	return cmd
}
