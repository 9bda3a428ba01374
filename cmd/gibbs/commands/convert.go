package commands

import (
	"github.com/spf13/cobra"
)

func newConvertCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <src> <dst>",
		Short: "Copy a database between YAML and SQLite",
		Long: `Read a database from src and write it to dst. The format of each file
follows its extension: .yaml or .yml for YAML, .db or .sqlite for SQLite.
An existing SQLite destination is replaced.`,
		Example: `  gibbs convert alni.yaml alni.db
  gibbs convert alni.db alni-copy.yaml`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]
			db, err := loadDatabase(cmd.Context(), src)
			if err != nil {
				return err
			}
			if err := saveDatabase(cmd.Context(), dst, db); err != nil {
				return err
			}
			a.log.Info().
				Str("src", src).
				Str("dst", dst).
				Int("phases", len(db.PhaseNames())).
				Int("parameters", len(db.Parameters())).
				Msg("database converted")
			return nil
		},
	}
}
