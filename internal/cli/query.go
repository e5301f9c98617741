package cli

import (
	"fmt"
	"reactledger/internal/ledger"
	"reactledger/internal/services"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

type queryKind struct {
	name   string
	short  string
	render func(string, map[string]int) string
}

var queryKinds = []queryKind{
	{services.QueryCredit, "Distinct users who reacted to a user's messages, per emoji", ledger.RenderCredit},
	{services.QueryDebit, "Messages a user reacted to, per emoji", ledger.RenderDebit},
	{services.QueryBalance, "Net reactions received minus given, per emoji", ledger.RenderBalance},
}

type queryOutput struct {
	User   string         `json:"user"`
	Kind   string         `json:"kind"`
	Totals map[string]int `json:"totals"`
}

func NewQueryCommand(rootOpts *RootOptions, deps Deps, kind queryKind) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   kind.name + " <user-id>",
		Short: kind.short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, cleanup, err := deps.InitRuntime(rootOpts.flags())
			if err != nil {
				return err
			}
			defer cleanup()
			defer rt.Logger.Close()

			userID := args[0]
			totals, err := rt.Service.Query(kind.name, userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if rootOpts.Format == "json" {
				gson, err := json.Marshal(queryOutput{User: userID, Kind: kind.name, Totals: totals})
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, string(gson))
				return err
			}

			if name == "" {
				name = userID
			}
			_, err = fmt.Fprintln(out, strings.TrimSuffix(kind.render(name, totals), "\n"))
			return err
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "display name used in text output")
	return cmd
}
