package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List configured model aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client(cmd.Context())
			if err != nil {
				return err
			}

			cfg := client.Config()
			if asJSON {
				return writeJSON(cmd, cfg.ModelMap)
			}

			rows := make([][]string, 0, len(cfg.ModelMap))
			for _, alias := range client.Models() {
				rows = append(rows, []string{alias, cfg.ModelMap[alias]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Alias", "Model ID"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
