package gatewayclient

import (
	"github.com/felipepmaragno/bedrock-gateway-client/internal/config"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/credentials"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
	"github.com/felipepmaragno/bedrock-gateway-client/internal/transport"
)

type (
	GatewayConfig = domain.GatewayConfig
	ChatRequest   = domain.ChatRequest
	ChatResponse  = domain.ChatResponse
	Turn          = domain.Turn
	ContentBlock  = domain.ContentBlock
	StopReason    = domain.StopReason
	Identity      = domain.Identity
	HTTPError     = domain.HTTPError

	// CredentialProvider yields signing credentials for each call.
	CredentialProvider = credentials.Provider
	// HTTPDoer is satisfied by *http.Client.
	HTTPDoer = transport.Doer
	// LookupFunc reads one environment variable, like os.LookupEnv.
	LookupFunc = config.LookupFunc
)

var (
	ErrConfiguration     = domain.ErrConfiguration
	ErrAuthentication    = domain.ErrAuthentication
	ErrValidation        = domain.ErrValidation
	ErrRateLimited       = domain.ErrRateLimited
	ErrGateway           = domain.ErrGateway
	ErrNetwork           = domain.ErrNetwork
	ErrMalformedResponse = domain.ErrMalformedResponse
)

var (
	TextBlock     = domain.TextBlock
	UserTurn      = domain.UserTurn
	AssistantTurn = domain.AssistantTurn
)

// StaticCredentials signs with explicitly supplied keys.
func StaticCredentials(accessKeyID, secretAccessKey, sessionToken string) CredentialProvider {
	return credentials.NewStatic(accessKeyID, secretAccessKey, sessionToken)
}
