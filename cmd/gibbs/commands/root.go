package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gocalphad/database"
	"github.com/njchilds90/gocalphad/internal/config"
	"github.com/njchilds90/gocalphad/internal/logging"
	"github.com/njchilds90/gocalphad/model"
)

// app carries the settings resolved before any subcommand runs.
type app struct {
	cfgFile string
	cfg     *config.Config
	log     zerolog.Logger
}

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	return NewRootCommand(version, commit, buildDate).ExecuteContext(ctx)
}

// NewRootCommand assembles the gibbs command tree.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	a := &app{log: zerolog.Nop()}

	rootCmd := &cobra.Command{
		Use:   "gibbs",
		Short: "Build CALPHAD Gibbs energy models",
		Long: `gibbs assembles the molar Gibbs energy of a phase as a symbolic expression
from a thermodynamic database of phases, parameters and symbols.

Databases are read from YAML (.yaml, .yml) or SQLite (.db, .sqlite) files.
Settings come from flags, GIBBS_* environment variables and gibbs.yaml.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log, err = logging.Setup(cfg.Log.Level, cmd.ErrOrStderr())
			return err
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default ./gibbs.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringP("database", "d", "", "thermodynamic database file (.yaml or .db)")

	rootCmd.AddCommand(newEnergyCommand(a))
	rootCmd.AddCommand(newPhasesCommand(a))
	rootCmd.AddCommand(newConvertCommand(a))
	rootCmd.AddCommand(newServeCommand(a))
	rootCmd.AddCommand(newVersionCommand(version, commit, buildDate))

	return rootCmd
}

var errNoDatabase = errors.New("no database: pass --database or set database in gibbs.yaml")

// openDatabase loads the configured database into memory.
func (a *app) openDatabase(ctx context.Context) (*database.Memory, error) {
	if a.cfg.Database == "" {
		return nil, errNoDatabase
	}
	db, err := loadDatabase(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.log.Debug().
		Str("path", a.cfg.Database).
		Int("phases", len(db.PhaseNames())).
		Int("symbols", len(db.SymbolNames())).
		Msg("database loaded")
	return db, nil
}

func (a *app) modelOptions(extra ...model.Option) []model.Option {
	opts := []model.Option{
		model.WithLogger(a.log),
		model.WithSymbolDepth(a.cfg.Model.SymbolDepth),
		model.WithParallel(a.cfg.Model.Parallel),
	}
	return append(opts, extra...)
}
