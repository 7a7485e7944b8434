package report

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/ec2recon/ec2recon/internal/types"
)

// PreflightSTSClient defines the STS client methods used during preflight
type PreflightSTSClient interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// ResolveCallerIdentity confirms that ambient credentials resolve to an AWS
// identity and returns the account and principal for the report metadata.
// Secret material never leaves the SDK.
func ResolveCallerIdentity(ctx context.Context, stsClient PreflightSTSClient) (*types.CallerIdentity, error) {
	output, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return nil, fmt.Errorf("error resolving caller identity: %v", err)
	}

	return &types.CallerIdentity{
		Account: aws.ToString(output.Account),
		Arn:     aws.ToString(output.Arn),
		UserID:  aws.ToString(output.UserId),
	}, nil
}
