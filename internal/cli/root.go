package cli

import (
	"fmt"
	"reactledger/internal/di"
	"reactledger/internal/structures"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Debug      bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Runner is a long running process such as the HTTP server.
type Runner interface {
	Run() error
}

// Deps builds what the commands run against. Tests swap in fakes. The
// returned cleanup releases what the build acquired.
type Deps struct {
	InitApp     func(*structures.CliFlags) (Runner, func(), error)
	InitRuntime func(*structures.CliFlags) (*di.Runtime, func(), error)
}

func DefaultDeps() Deps {
	return Deps{
		InitApp: func(flags *structures.CliFlags) (Runner, func(), error) {
			return di.InitApp(flags)
		},
		InitRuntime: di.InitRuntime,
	}
}

func (o *RootOptions) flags() *structures.CliFlags {
	return &structures.CliFlags{ConfigPath: o.ConfigPath, DebugMode: o.Debug}
}

func NewRootCommand(deps Deps) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "reactledger",
		Short: "Reaction ledger for Discord guilds",
		Long: `Rebuilds a ledger of who reacted to whose messages from a guild's full
history, and answers credit, debit and balance queries from it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.yml", "path to the config file")
	cmd.PersistentFlags().BoolVarP(&opts.Debug, "debug", "d", false, "also log to the console")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewServeCommand(opts, deps))
	cmd.AddCommand(NewRebuildCommand(opts, deps))
	for _, kind := range queryKinds {
		cmd.AddCommand(NewQueryCommand(opts, deps, kind))
	}

	return cmd
}
