package commands

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newPhasesCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "phases",
		Short: "List the phases of a database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDatabase(cmd.Context())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Phase", "Sites", "Constituents", "Hints"})
			for _, name := range db.PhaseNames() {
				p, err := db.Phase(name)
				if err != nil {
					return err
				}
				subls := make([]string, len(p.Constituents))
				for i, c := range p.Constituents {
					subls[i] = strings.Join(c, ",")
				}
				var hints []string
				if _, _, ok := p.Hints.Magnetic(); ok {
					hints = append(hints, "magnetic")
				}
				if _, _, ok := p.Hints.OrderDisorder(); ok {
					hints = append(hints, "order-disorder")
				}
				t.AppendRow(table.Row{p.Name, fmt.Sprint(p.Sublattices), strings.Join(subls, " : "), strings.Join(hints, ",")})
			}
			t.Render()
			return nil
		},
	}
}
