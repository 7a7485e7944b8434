package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/ec2recon/ec2recon/internal/services/markdown"
	"github.com/ec2recon/ec2recon/internal/types"
)

// notAvailableToken ends the source resolution fallback chain.
const notAvailableToken = "N/A"

func (r *RegionReporter) addSecurityGroupsSection(ctx context.Context, md *markdown.Markdown) error {
	slog.Info("🔍 scanning for security groups", "region", r.region)

	ruleSets, err := r.listFirewallRuleSets(ctx)
	if err != nil {
		return err
	}

	slog.Info("✨ found security groups", "count", len(ruleSets))

	if len(ruleSets) == 0 {
		md.AddParagraph("No security groups found in this region.")
		return nil
	}

	for _, ruleSet := range ruleSets {
		md.AddHeading(fmt.Sprintf("%s (%s)", ruleSet.GroupName, ruleSet.GroupID), 3)
		md.AddParagraph(fmt.Sprintf("**VPC:** %s. %s", ruleSet.VpcID, ruleSet.Description))

		renderRuleTable(md, "Inbound Rules", ruleSet.Ingress)
		renderRuleTable(md, "Outbound Rules", ruleSet.Egress)
	}

	return nil
}

// listFirewallRuleSets fetches the base group records, then resolves each
// group's rules with a per-group rule query partitioned into the two
// directions.
func (r *RegionReporter) listFirewallRuleSets(ctx context.Context) ([]types.FirewallRuleSet, error) {
	var ruleSets []types.FirewallRuleSet
	var nextToken *string

	for {
		output, err := r.ec2Client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("error listing security groups: %v", err)
		}

		for _, group := range output.SecurityGroups {
			ruleSet := types.FirewallRuleSet{
				GroupID:     aws.ToString(group.GroupId),
				GroupName:   aws.ToString(group.GroupName),
				VpcID:       aws.ToString(group.VpcId),
				Description: aws.ToString(group.Description),
			}

			ingress, egress, err := r.listGroupRules(ctx, ruleSet.GroupID)
			if err != nil {
				return nil, err
			}
			ruleSet.Ingress = ingress
			ruleSet.Egress = egress

			ruleSets = append(ruleSets, ruleSet)
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return ruleSets, nil
}

func (r *RegionReporter) listGroupRules(ctx context.Context, groupID string) (ingress, egress []types.FirewallRule, err error) {
	var nextToken *string

	for {
		output, err := r.ec2Client.DescribeSecurityGroupRules(ctx, &ec2.DescribeSecurityGroupRulesInput{
			Filters: []ec2types.Filter{
				{Name: aws.String("group-id"), Values: []string{groupID}},
			},
			NextToken: nextToken,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("error listing rules for security group %s: %v", groupID, err)
		}

		for _, rule := range output.SecurityGroupRules {
			normalized := types.FirewallRule{
				Protocol: aws.ToString(rule.IpProtocol),
				FromPort: rule.FromPort,
				ToPort:   rule.ToPort,
				Source:   resolveRuleSource(rule),
			}

			if aws.ToBool(rule.IsEgress) {
				egress = append(egress, normalized)
			} else {
				ingress = append(ingress, normalized)
			}
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return ingress, egress, nil
}

// resolveRuleSource walks the fallback chain: IPv4 CIDR, IPv6 CIDR,
// referenced security group, not-available token.
func resolveRuleSource(rule ec2types.SecurityGroupRule) string {
	if v := aws.ToString(rule.CidrIpv4); v != "" {
		return v
	}
	if v := aws.ToString(rule.CidrIpv6); v != "" {
		return v
	}
	if rule.ReferencedGroupInfo != nil {
		if v := aws.ToString(rule.ReferencedGroupInfo.GroupId); v != "" {
			return v
		}
	}
	return notAvailableToken
}

func renderRuleTable(md *markdown.Markdown, title string, rules []types.FirewallRule) {
	md.AddHeading(title, 4)

	if len(rules) == 0 {
		md.AddParagraph(fmt.Sprintf("No %s found for this security group.", title))
		return
	}

	headers := []string{"Protocol", "Ports", "Source/Destination", "Classification"}
	var tableData [][]string
	for _, rule := range rules {
		tableData = append(tableData, []string{
			rule.ProtocolDisplay(),
			rule.PortRange(),
			rule.Source,
			types.ClassifySource(rule.Source),
		})
	}
	md.AddTable(headers, tableData)
}
