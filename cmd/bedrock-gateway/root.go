package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	gatewayclient "github.com/felipepmaragno/bedrock-gateway-client"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/config"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/telemetry"
)

const envOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"

// commandContext carries the persistent flags shared by every command.
type commandContext struct {
	configPath   string
	profile      string
	verbose      bool
	debug        bool
	timeout      time.Duration
	otlpEndpoint string

	settings *config.Settings
	shutdown func(context.Context) error
}

func (c *commandContext) options() gatewayclient.Options {
	return gatewayclient.Options{
		Profile:    c.profile,
		Verbose:    c.verbose,
		ConfigPath: c.configPath,
		Timeout:    c.timeout,
		Logger:     slog.Default(),
	}
}

func (c *commandContext) client(ctx context.Context) (*gatewayclient.Client, error) {
	return gatewayclient.New(ctx, c.options())
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "bedrock-gateway",
		Short:         "Chat with Bedrock models through a private API Gateway",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.settings = config.Load()

			level := ctx.settings.LogLevel
			if ctx.debug {
				level = "debug"
			}
			setupLogger(cmd, level)

			if ctx.otlpEndpoint == "" {
				ctx.otlpEndpoint = os.Getenv(envOTLPEndpoint)
			}
			if ctx.otlpEndpoint == "" {
				return nil
			}
			shutdown, err := telemetry.Init(cmd.Context(), "bedrock-gateway", version, ctx.otlpEndpoint)
			if err != nil {
				slog.Warn("failed to initialize telemetry, continuing without tracing", "error", err)
				return nil
			}
			ctx.shutdown = shutdown
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if ctx.shutdown == nil {
				return nil
			}
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := ctx.shutdown(shutdownCtx); err != nil {
				slog.Warn("telemetry shutdown failed", "error", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&ctx.configPath, "config", "c", "", "Configuration file path (default ~/.bedrock-gateway/config.yaml)")
	flags.StringVar(&ctx.profile, "profile", "", "AWS profile used for signing")
	flags.BoolVarP(&ctx.verbose, "verbose", "v", false, "Print token usage and latency")
	flags.BoolVar(&ctx.debug, "debug", false, "Debug logging; print raw gateway errors")
	flags.DurationVar(&ctx.timeout, "timeout", 0, "Request timeout (default 30s)")
	flags.StringVar(&ctx.otlpEndpoint, "otlp-endpoint", "", "OTLP gRPC endpoint for traces")

	rootCmd.AddCommand(newConfigureCommand(ctx))
	rootCmd.AddCommand(newChatCommand(ctx))
	rootCmd.AddCommand(newWhoamiCommand(ctx))
	rootCmd.AddCommand(newModelsCommand(ctx))

	return rootCmd
}

// setupLogger logs JSON to stderr so stdout stays reserved for replies.
func setupLogger(cmd *cobra.Command, level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelWarn
	}

	handler := slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}
