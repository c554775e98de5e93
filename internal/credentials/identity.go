package credentials

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/felipepmaragno/bedrock-gateway-client/internal/domain"
)

type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// IdentityChecker reports who the resolved credentials belong to.
type IdentityChecker struct {
	client STSAPI
}

func NewIdentityChecker(cfg aws.Config) *IdentityChecker {
	return &IdentityChecker{client: sts.NewFromConfig(cfg)}
}

func NewIdentityCheckerWithClient(client STSAPI) *IdentityChecker {
	return &IdentityChecker{client: client}
}

func (c *IdentityChecker) Identity(ctx context.Context) (domain.Identity, error) {
	out, err := c.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return domain.Identity{}, fmt.Errorf("%w: get caller identity: %w", domain.ErrAuthentication, err)
	}

	return domain.Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}
