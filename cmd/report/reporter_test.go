package report

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/ec2recon/ec2recon/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultRegion = "eu-west-1"

// MockReportEC2Client implements ReportEC2Client; unset funcs return empty
// results so tests only stub the categories they care about.
type MockReportEC2Client struct {
	DescribeImagesFunc             func(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	DescribeInstanceTypesFunc      func(ctx context.Context, params *ec2.DescribeInstanceTypesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypesOutput, error)
	DescribeVpcsFunc               func(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeSubnetsFunc            func(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	DescribeSecurityGroupsFunc     func(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeSecurityGroupRulesFunc func(ctx context.Context, params *ec2.DescribeSecurityGroupRulesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupRulesOutput, error)
	DescribeKeyPairsFunc           func(ctx context.Context, params *ec2.DescribeKeyPairsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error)
}

func (m *MockReportEC2Client) DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error) {
	if m.DescribeImagesFunc == nil {
		return &ec2.DescribeImagesOutput{}, nil
	}
	return m.DescribeImagesFunc(ctx, params, optFns...)
}

func (m *MockReportEC2Client) DescribeInstanceTypes(ctx context.Context, params *ec2.DescribeInstanceTypesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypesOutput, error) {
	if m.DescribeInstanceTypesFunc == nil {
		return &ec2.DescribeInstanceTypesOutput{}, nil
	}
	return m.DescribeInstanceTypesFunc(ctx, params, optFns...)
}

func (m *MockReportEC2Client) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	if m.DescribeVpcsFunc == nil {
		return &ec2.DescribeVpcsOutput{}, nil
	}
	return m.DescribeVpcsFunc(ctx, params, optFns...)
}

func (m *MockReportEC2Client) DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	if m.DescribeSubnetsFunc == nil {
		return &ec2.DescribeSubnetsOutput{}, nil
	}
	return m.DescribeSubnetsFunc(ctx, params, optFns...)
}

func (m *MockReportEC2Client) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	if m.DescribeSecurityGroupsFunc == nil {
		return &ec2.DescribeSecurityGroupsOutput{}, nil
	}
	return m.DescribeSecurityGroupsFunc(ctx, params, optFns...)
}

func (m *MockReportEC2Client) DescribeSecurityGroupRules(ctx context.Context, params *ec2.DescribeSecurityGroupRulesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupRulesOutput, error) {
	if m.DescribeSecurityGroupRulesFunc == nil {
		return &ec2.DescribeSecurityGroupRulesOutput{}, nil
	}
	return m.DescribeSecurityGroupRulesFunc(ctx, params, optFns...)
}

func (m *MockReportEC2Client) DescribeKeyPairs(ctx context.Context, params *ec2.DescribeKeyPairsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error) {
	if m.DescribeKeyPairsFunc == nil {
		return &ec2.DescribeKeyPairsOutput{}, nil
	}
	return m.DescribeKeyPairsFunc(ctx, params, optFns...)
}

func newTestReporter(mockClient *MockReportEC2Client) *RegionReporter {
	return NewRegionReporter(mockClient, RegionReporterOpts{
		Region: defaultRegion,
		Identity: types.CallerIdentity{
			Account: "123456789012",
			Arn:     "arn:aws:iam::123456789012:user/tester",
		},
	})
}

func TestRegionReporter_Generate_FixedSectionOrder(t *testing.T) {
	reporter := newTestReporter(&MockReportEC2Client{})

	var buf bytes.Buffer
	err := reporter.generate(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()

	// Section order is fixed regardless of result counts.
	sections := []string{
		"# EC2 Region Discovery Report",
		"## Contents",
		"## Machine Images",
		"## Instance Types",
		"## Networks",
		"## Subnets",
		"## Security Groups",
		"## Key Pairs",
		"## Terraform Scaffold",
		"## Next Steps",
	}

	lastIndex := -1
	for _, section := range sections {
		index := strings.Index(out, section)
		require.GreaterOrEqual(t, index, 0, "missing section %q", section)
		assert.Greater(t, index, lastIndex, "section %q out of order", section)
		lastIndex = index
	}
}

func TestRegionReporter_Generate_EmptyCategoriesRenderPlaceholders(t *testing.T) {
	reporter := newTestReporter(&MockReportEC2Client{})

	var buf bytes.Buffer
	err := reporter.generate(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "No VPCs found in this region.")
	assert.Contains(t, out, "No security groups found in this region.")
	assert.Contains(t, out, "No key pairs found in this region.")
	assert.Contains(t, out, "No Public Subnets found in this region.")
	assert.Contains(t, out, "No Private Subnets found in this region.")
}

func TestRegionReporter_Generate_HeaderMetadata(t *testing.T) {
	reporter := newTestReporter(&MockReportEC2Client{})

	var buf bytes.Buffer
	err := reporter.generate(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "| Region | "+defaultRegion+" |")
	assert.Contains(t, out, "| Account | 123456789012 |")
	assert.Contains(t, out, "| Principal | arn:aws:iam::123456789012:user/tester |")
	assert.Contains(t, out, "[Machine Images](#machine-images)")
}

func TestRegionReporter_Generate_ScaffoldInterpolatesRegion(t *testing.T) {
	reporter := newTestReporter(&MockReportEC2Client{})

	var buf bytes.Buffer
	err := reporter.generate(context.Background(), &buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "```hcl")
	assert.Contains(t, out, defaultRegion)
	assert.Contains(t, out, `resource "aws_instance" "discovered"`)
}

func TestRegionReporter_Generate_StopsAtFirstError(t *testing.T) {
	mockClient := &MockReportEC2Client{
		DescribeVpcsFunc: func(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
			return nil, errors.New("UnauthorizedOperation: not authorized to perform ec2:DescribeVpcs")
		},
	}
	reporter := newTestReporter(mockClient)

	var buf bytes.Buffer
	err := reporter.generate(context.Background(), &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Networks")
	assert.Contains(t, err.Error(), "UnauthorizedOperation")

	// Completed sections were already flushed; the failing one was not.
	out := buf.String()
	assert.Contains(t, out, "## Machine Images")
	assert.Contains(t, out, "## Instance Types")
	assert.NotContains(t, out, "## Networks")
	assert.NotContains(t, out, "## Subnets")
}

func TestRegionReporter_GetMarkdownPath(t *testing.T) {
	reporter := newTestReporter(&MockReportEC2Client{})

	path := reporter.GetMarkdownPath()
	assert.True(t, strings.HasPrefix(path, "ec2recon-report_"))
	assert.True(t, strings.HasSuffix(path, ".md"))
}
