package main

import (
	"encoding/json"
	"fmt"

	"github.com/hanpama/gqlmodel/internal/engine"
	"github.com/hanpama/gqlmodel/internal/run"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

type inspectUnit struct {
	*engine.Result
	RunID string `json:"runId"`
}

func (a *app) inspectCommand() *cobra.Command {
	var color bool
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print the generated class tree as JSON",
		Long: `Run the generator without writing any output and print the classes, enums,
input types and imports of every unit as JSON.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, _, err := a.loadConfig()
			if err != nil {
				return err
			}
			outcomes, err := a.build(cmd.Context(), conf)
			if err != nil {
				return err
			}
			units := make([]inspectUnit, 0, len(outcomes))
			for _, o := range outcomes {
				if o.Result != nil {
					units = append(units, inspectUnit{Result: o.Result, RunID: o.RunID})
				}
			}
			data, err := json.Marshal(units)
			if err != nil {
				return err
			}
			data = pretty.Pretty(data)
			if color {
				data = pretty.Color(data, nil)
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return run.Err(outcomes)
		},
	}
	cmd.Flags().BoolVar(&color, "color", false, "Colorize the JSON output")
	return cmd
}
