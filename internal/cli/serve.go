package cli

import (
	"github.com/spf13/cobra"
)

func NewServeCommand(rootOpts *RootOptions, deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the scheduled rebuild",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, cleanup, err := deps.InitApp(rootOpts.flags())
			if err != nil {
				return err
			}
			defer cleanup()
			return app.Run()
		},
	}
}
