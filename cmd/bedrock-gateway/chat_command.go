package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	gatewayclient "github.com/felipepmaragno/bedrock-gateway-client"
)

type chatFlags struct {
	model       string
	system      string
	maxTokens   int
	temperature float64
	topP        float64
	direct      bool
	output      string
}

func newChatCommand(ctx *commandContext) *cobra.Command {
	var flags chatFlags

	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Send one message and print the reply",
		Long:  "Send one message and print the reply. With no arguments, or \"-\", the message is read from stdin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.output != "text" && flags.output != "json" {
				return fmt.Errorf("%w: --output must be text or json", gatewayclient.ErrValidation)
			}

			message, err := readMessage(cmd, args)
			if err != nil {
				return err
			}

			client, err := ctx.client(cmd.Context())
			if err != nil {
				return err
			}

			req := gatewayclient.ChatRequest{
				Message: message,
				System:  flags.system,
				Model:   flags.model,
			}
			if cmd.Flags().Changed("max-tokens") {
				req.MaxTokens = &flags.maxTokens
			}
			if cmd.Flags().Changed("temperature") {
				req.Temperature = &flags.temperature
			}
			if cmd.Flags().Changed("top-p") {
				req.TopP = &flags.topP
			}

			var resp *gatewayclient.ChatResponse
			if flags.direct {
				resp, err = client.Direct(cmd.Context(), req)
			} else {
				resp, err = client.Send(cmd.Context(), req)
			}
			if err != nil {
				reportError(cmd, ctx.debug, err)
				return err
			}

			if flags.output == "json" {
				if !ctx.debug {
					resp.Raw = nil
				}
				return writeJSON(cmd, resp)
			}

			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			if ctx.verbose || client.Config().Verbose {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%s] tokens: %d in / %d out, %dms, stop: %s, request: %s\n",
					resp.Model, resp.InputTokens, resp.OutputTokens, resp.LatencyMs, resp.StopReason, resp.RequestID)
				if usd, ok := client.EstimateCost(resp); ok {
					fmt.Fprintf(cmd.ErrOrStderr(), "estimated cost: $%.6f\n", usd)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Model alias (default sonnet-4.5)")
	cmd.Flags().StringVarP(&flags.system, "system", "s", "", "System prompt")
	cmd.Flags().IntVar(&flags.maxTokens, "max-tokens", 0, "Maximum output tokens (default 2000)")
	cmd.Flags().Float64Var(&flags.temperature, "temperature", 0, "Sampling temperature, 0 to 1")
	cmd.Flags().Float64Var(&flags.topP, "top-p", 0, "Nucleus sampling, 0 to 1")
	cmd.Flags().BoolVar(&flags.direct, "direct", false, "Call Bedrock directly, bypassing the gateway")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "text", "Output format: text or json")
	return cmd
}

func readMessage(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}

	in := cmd.InOrStdin()
	if isTerminal(in) {
		return "", fmt.Errorf("%w: no message given (pass it as an argument or pipe it on stdin)", gatewayclient.ErrValidation)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read message from stdin: %w", err)
	}
	message := strings.TrimSpace(string(data))
	if message == "" {
		return "", fmt.Errorf("%w: message is empty", gatewayclient.ErrValidation)
	}
	return message, nil
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// reportError prints the raw gateway status and body when debugging.
func reportError(cmd *cobra.Command, debug bool, err error) {
	var httpErr *gatewayclient.HTTPError
	if !errors.As(err, &httpErr) {
		return
	}
	slog.Debug("gateway error", "status", httpErr.StatusCode, "body", httpErr.Body)
	if debug {
		fmt.Fprintf(cmd.ErrOrStderr(), "status: %d\nbody: %s\n", httpErr.StatusCode, httpErr.Body)
	}
}
