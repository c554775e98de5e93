package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWhoamiCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the AWS identity used for signing and the active gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client(cmd.Context())
			if err != nil {
				return err
			}

			id, err := client.Identity(cmd.Context())
			if err != nil {
				return err
			}

			cfg := client.Config()
			if asJSON {
				return writeJSON(cmd, map[string]any{
					"identity": id,
					"gateway":  cfg,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "account: %s\n", id.Account)
			fmt.Fprintf(out, "arn:     %s\n", id.ARN)
			fmt.Fprintf(out, "user_id: %s\n", id.UserID)
			fmt.Fprintf(out, "gateway: %s (%s)\n", cfg.GatewayURL, cfg.Region)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	return cmd
}
