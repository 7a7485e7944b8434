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

// missingNamePlaceholder is rendered when a resource carries no Name tag.
const missingNamePlaceholder = "-"

func (r *RegionReporter) addNetworksSection(ctx context.Context, md *markdown.Markdown) error {
	slog.Info("🔍 scanning for VPCs", "region", r.region)

	networks, err := r.listNetworks(ctx)
	if err != nil {
		return err
	}

	slog.Info("✨ found VPCs", "count", len(networks))

	if len(networks) == 0 {
		md.AddParagraph("No VPCs found in this region.")
		return nil
	}

	headers := []string{"VPC ID", "Name", "CIDR Block", "Default", "State"}
	var tableData [][]string
	for _, network := range networks {
		tableData = append(tableData, []string{
			network.VpcID,
			network.Name,
			network.CidrBlock,
			yesNo(network.IsDefault),
			network.State,
		})
	}
	md.AddTable(headers, tableData)

	return nil
}

func (r *RegionReporter) listNetworks(ctx context.Context) ([]types.Network, error) {
	var networks []types.Network
	var nextToken *string

	for {
		output, err := r.ec2Client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("error listing vpcs: %v", err)
		}

		for _, vpc := range output.Vpcs {
			networks = append(networks, types.Network{
				VpcID:     aws.ToString(vpc.VpcId),
				CidrBlock: aws.ToString(vpc.CidrBlock),
				IsDefault: aws.ToBool(vpc.IsDefault),
				State:     string(vpc.State),
				Name:      nameTag(vpc.Tags),
			})
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return networks, nil
}

func nameTag(tags []ec2types.Tag) string {
	for _, tag := range tags {
		if aws.ToString(tag.Key) == "Name" {
			return aws.ToString(tag.Value)
		}
	}
	return missingNamePlaceholder
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
