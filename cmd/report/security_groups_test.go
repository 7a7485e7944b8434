package report

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/ec2recon/ec2recon/internal/services/markdown"
	"github.com/ec2recon/ec2recon/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRuleSource(t *testing.T) {
	tests := []struct {
		name string
		rule ec2types.SecurityGroupRule
		want string
	}{
		{
			name: "ipv4_cidr_wins",
			rule: ec2types.SecurityGroupRule{
				CidrIpv4: aws.String("10.0.0.0/16"),
				CidrIpv6: aws.String("::/0"),
			},
			want: "10.0.0.0/16",
		},
		{
			name: "ipv6_cidr_when_no_ipv4",
			rule: ec2types.SecurityGroupRule{
				CidrIpv6: aws.String("2001:db8::/32"),
			},
			want: "2001:db8::/32",
		},
		{
			name: "referenced_group",
			rule: ec2types.SecurityGroupRule{
				ReferencedGroupInfo: &ec2types.ReferencedSecurityGroup{
					GroupId: aws.String("sg-0123456789abcdef0"),
				},
			},
			want: "sg-0123456789abcdef0",
		},
		{
			name: "nothing_set",
			rule: ec2types.SecurityGroupRule{},
			want: notAvailableToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveRuleSource(tt.rule))
		})
	}
}

func TestListGroupRules_PartitionsByDirection(t *testing.T) {
	var captured *ec2.DescribeSecurityGroupRulesInput
	mockClient := &MockReportEC2Client{
		DescribeSecurityGroupRulesFunc: func(ctx context.Context, params *ec2.DescribeSecurityGroupRulesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupRulesOutput, error) {
			captured = params
			return &ec2.DescribeSecurityGroupRulesOutput{
				SecurityGroupRules: []ec2types.SecurityGroupRule{
					{
						IsEgress:   aws.Bool(false),
						IpProtocol: aws.String("tcp"),
						FromPort:   aws.Int32(443),
						ToPort:     aws.Int32(443),
						CidrIpv4:   aws.String("0.0.0.0/0"),
					},
					{
						IsEgress:   aws.Bool(true),
						IpProtocol: aws.String("-1"),
						FromPort:   aws.Int32(-1),
						ToPort:     aws.Int32(-1),
						CidrIpv4:   aws.String("0.0.0.0/0"),
					},
				},
			}, nil
		},
	}
	reporter := newTestReporter(mockClient)

	ingress, egress, err := reporter.listGroupRules(context.Background(), "sg-123")
	require.NoError(t, err)

	require.NotNil(t, captured)
	require.Len(t, captured.Filters, 1)
	assert.Equal(t, "group-id", aws.ToString(captured.Filters[0].Name))
	assert.Equal(t, []string{"sg-123"}, captured.Filters[0].Values)

	require.Len(t, ingress, 1)
	assert.Equal(t, "tcp", ingress[0].Protocol)
	assert.Equal(t, "0.0.0.0/0", ingress[0].Source)

	require.Len(t, egress, 1)
	assert.Equal(t, "all", egress[0].PortRange())
}

func TestListFirewallRuleSets_QueriesRulesPerGroup(t *testing.T) {
	ruleQueries := []string{}
	mockClient := &MockReportEC2Client{
		DescribeSecurityGroupsFunc: func(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
			return &ec2.DescribeSecurityGroupsOutput{
				SecurityGroups: []ec2types.SecurityGroup{
					{GroupId: aws.String("sg-1"), GroupName: aws.String("web"), VpcId: aws.String("vpc-1"), Description: aws.String("web tier")},
					{GroupId: aws.String("sg-2"), GroupName: aws.String("db"), VpcId: aws.String("vpc-1"), Description: aws.String("db tier")},
				},
			}, nil
		},
		DescribeSecurityGroupRulesFunc: func(ctx context.Context, params *ec2.DescribeSecurityGroupRulesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupRulesOutput, error) {
			ruleQueries = append(ruleQueries, params.Filters[0].Values[0])
			return &ec2.DescribeSecurityGroupRulesOutput{}, nil
		},
	}
	reporter := newTestReporter(mockClient)

	ruleSets, err := reporter.listFirewallRuleSets(context.Background())
	require.NoError(t, err)

	require.Len(t, ruleSets, 2)
	assert.Equal(t, []string{"sg-1", "sg-2"}, ruleQueries)
	assert.Equal(t, "web", ruleSets[0].GroupName)
	assert.Equal(t, "db", ruleSets[1].GroupName)
}

func TestRenderRuleTable(t *testing.T) {
	rules := []types.FirewallRule{
		{Protocol: "tcp", FromPort: aws.Int32(443), ToPort: aws.Int32(443), Source: "0.0.0.0/0"},
		{Protocol: "tcp", FromPort: aws.Int32(8000), ToPort: aws.Int32(8080), Source: "sg-0abc"},
		{Protocol: "-1", Source: "::/0"},
	}

	md := markdown.New()
	renderRuleTable(md, "Inbound Rules", rules)
	out := md.String()

	assert.Contains(t, out, "#### Inbound Rules")
	assert.Contains(t, out, "| tcp | 443 | 0.0.0.0/0 | anywhere (IPv4) |")
	assert.Contains(t, out, "| tcp | 8000-8080 | sg-0abc | security-group reference |")
	assert.Contains(t, out, "| all | all | ::/0 | anywhere (IPv6) |")
}

func TestRenderRuleTable_EmptyDirection(t *testing.T) {
	md := markdown.New()
	renderRuleTable(md, "Outbound Rules", nil)

	out := md.String()
	assert.Contains(t, out, "#### Outbound Rules")
	assert.Contains(t, out, "No Outbound Rules found for this security group.")
}
