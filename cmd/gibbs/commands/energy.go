package commands

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gocalphad/internal/output"
	"github.com/njchilds90/gocalphad/model"
)

func newEnergyCommand(a *app) *cobra.Command {
	var (
		phase    string
		comps    []string
		params   []string
		gradient bool
	)

	cmd := &cobra.Command{
		Use:   "energy",
		Short: "Print the Gibbs energy of a phase",
		Long: `Build the molar Gibbs energy of one phase restricted to the given
components and print it, optionally with its partial derivatives.

Symbols of the database can be overridden with --param NAME=EXPR, where
EXPR is an infix expression such as "-1000 + 2.5*T".`,
		Example: `  # Liquid Al-Ni energy as text
  gibbs energy -d alni.yaml --phase LIQUID --comps AL,NI

  # Ordered FCC with an overridden symbol, as LaTeX
  gibbs energy -d alni.db --phase L12_FCC --comps AL,NI,VA \
      --param "GFCCALNI=-160000 + 16*T" --format latex`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase(cmd.Context())
			if err != nil {
				return err
			}
			assignments, err := output.ParseAssignments(params)
			if err != nil {
				return err
			}
			overrides, err := output.ParseParameters(assignments)
			if err != nil {
				return err
			}

			m, err := model.New(db, comps, phase, a.modelOptions(model.WithParameters(overrides))...)
			if err != nil {
				return err
			}
			a.log.Info().
				Str("phase", m.Phase()).
				Strs("components", m.Components()).
				Int("variables", len(m.Variables())).
				Msg("model built")

			report, err := output.Describe(m, a.cfg.Output.Format, gradient)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), report, a.cfg.Output.Format)
		},
	}

	cmd.Flags().StringVarP(&phase, "phase", "p", "", "phase name")
	cmd.Flags().StringSliceVar(&comps, "comps", nil, "active components, comma separated (include VA for vacancies)")
	cmd.Flags().StringArrayVar(&params, "param", nil, "override a symbol as NAME=EXPR (repeatable)")
	cmd.Flags().BoolVar(&gradient, "gradient", false, "also print the derivative with respect to every variable")
	cmd.Flags().StringP("format", "f", "string", "output format: string, latex, json")
	cmd.Flags().Bool("parallel", false, "build independent energy contributions concurrently")
	cmd.Flags().Int("symbol-depth", model.DefaultSymbolDepth, "levels of nested symbol references to resolve")
	_ = cmd.MarkFlagRequired("phase")
	_ = cmd.MarkFlagRequired("comps")

	return cmd
}

func writeReport(w io.Writer, r output.Report, format string) error {
	if format != "json" {
		return output.WriteText(w, r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}
