package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"golang.org/x/time/rate"
)

type RateLimitedEC2Client struct {
	*ec2.Client
	limiter *rate.Limiter
}

func NewEC2Client(region string, requestsPerSecond float64, burstSize int) (*RateLimitedEC2Client, error) {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		// https://docs.aws.amazon.com/sdk-for-go/v2/developer-guide/configure-retries-timeouts.html
		config.WithRetryer(func() aws.Retryer {
			return retry.NewStandard(func(opts *retry.StandardOptions) {
				opts.MaxAttempts = 3
				opts.MaxBackoff = 20 * time.Second
			})
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to load AWS config: %v", err)
	}

	if region != "" {
		cfg.Region = region
	}

	ec2Client := ec2.NewFromConfig(cfg)
	limiter := rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize)

	return &RateLimitedEC2Client{
		Client:  ec2Client,
		limiter: limiter,
	}, nil
}

func (c *RateLimitedEC2Client) Wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// Security group reporting issues a rule query per group, so regions with
// many groups are the most likely to hit EC2 request throttling. On a
// RequestLimitExceeded we wait for a new token from our rate limiter and try
// again, outside the AWS SDK's standard retryer.
func (c *RateLimitedEC2Client) DescribeSecurityGroupRules(ctx context.Context, params *ec2.DescribeSecurityGroupRulesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupRulesOutput, error) {
	const maxExtraRetries = 5
	var lastErr error

	for i := 0; i <= maxExtraRetries; i++ {
		if err := c.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter cancelled: %w", err)
		}

		output, err := c.Client.DescribeSecurityGroupRules(ctx, params, optFns...)
		if err == nil {
			return output, nil
		}

		lastErr = err
		errMsg := err.Error()
		if strings.Contains(errMsg, "RequestLimitExceeded") ||
			strings.Contains(errMsg, "retry quota exceeded") {

			if i < maxExtraRetries {
				continue
			}
		} else {
			// Not a rate limit error, return immediately
			return nil, err
		}
	}

	return nil, lastErr
}
