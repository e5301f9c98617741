package cli

import (
	"fmt"
	"reactledger/internal/models"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func NewRebuildCommand(rootOpts *RootOptions, deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the ledger from the guild's full history",
		Long: `Scans every readable text channel of the configured guild and replaces
the stored ledger with the result. Channels the bot cannot read are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := deps.InitRuntime(rootOpts.flags())
			if err != nil {
				return err
			}
			defer cleanup()
			defer rt.Logger.Close()

			report, err := rt.Service.Rebuild(cmd.Context())
			if report != nil {
				if werr := writeReport(cmd, rootOpts.Format, report); werr != nil {
					return werr
				}
			}
			return err
		},
	}
}

func writeReport(cmd *cobra.Command, format string, report *models.RebuildReport) error {
	out := cmd.OutOrStdout()
	if format == "json" {
		gson, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(gson))
		return err
	}

	status := "Reconstruction complete!"
	if report.Aborted {
		status = "Reconstruction aborted!"
	}
	_, err := fmt.Fprintf(out, "%s Messages scanned: %d, Reactions updated: %d, Channels skipped: %d\n",
		status, report.MessagesScanned, report.ObservationsProcessed, report.ChannelsSkipped)
	return err
}
