package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gatewayclient "github.com/felipepmaragno/bedrock-gateway-client"
)

const version = "0.3.0"

const (
	exitOK = iota
	exitFailure
	exitConfiguration
	exitAuthentication
	exitValidation
	exitRateLimited
	exitGateway
	exitNetwork
	exitMalformed
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	if !errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, "error:", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, gatewayclient.ErrConfiguration):
		return exitConfiguration
	case errors.Is(err, gatewayclient.ErrAuthentication):
		return exitAuthentication
	case errors.Is(err, gatewayclient.ErrValidation):
		return exitValidation
	case errors.Is(err, gatewayclient.ErrRateLimited):
		return exitRateLimited
	case errors.Is(err, gatewayclient.ErrGateway):
		return exitGateway
	case errors.Is(err, gatewayclient.ErrNetwork):
		return exitNetwork
	case errors.Is(err, gatewayclient.ErrMalformedResponse):
		return exitMalformed
	default:
		return exitFailure
	}
}
