package main

import (
	"fmt"

	"github.com/spf13/cobra"

	gatewayclient "github.com/felipepmaragno/bedrock-gateway-client"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/config"
)

func newConfigureCommand(ctx *commandContext) *cobra.Command {
	var opts gatewayclient.ConfigureOptions

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Save gateway settings to the configuration file",
		Long: "Merge the given settings over the environment and the existing configuration " +
			"file, then write the result back to the file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Profile = ctx.profile
			opts.ConfigPath = ctx.configPath
			if opts.ConfigPath == "" {
				opts.ConfigPath = ctx.settings.ConfigPath
			}
			opts.Save = true

			cfg, err := gatewayclient.Configure(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved configuration to %s\n", opts.ConfigPath)
			fmt.Fprintf(out, "  gateway_url: %s\n", cfg.GatewayURL)
			fmt.Fprintf(out, "  region:      %s\n", cfg.Region)
			if cfg.APIID != "" {
				fmt.Fprintf(out, "  api_id:      %s\n", cfg.APIID)
			}
			if cfg.Profile != "" {
				fmt.Fprintf(out, "  profile:     %s\n", cfg.Profile)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.GatewayURL, "gateway-url", "", "Gateway invoke URL (env "+config.EnvGatewayURL+")")
	cmd.Flags().StringVar(&opts.Region, "region", "", "AWS region of the gateway (env "+config.EnvRegion+")")
	cmd.Flags().StringVar(&opts.APIID, "api-id", "", "API Gateway id for private endpoints (env "+config.EnvAPIID+")")
	cmd.Flags().StringToStringVar(&opts.ModelMap, "model", nil, "Model alias mapping alias=model-id (repeatable)")
	return cmd
}
