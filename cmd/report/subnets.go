package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/ec2recon/ec2recon/internal/services/markdown"
	"github.com/ec2recon/ec2recon/internal/types"
)

func (r *RegionReporter) addSubnetsSection(ctx context.Context, md *markdown.Markdown) error {
	slog.Info("🔍 scanning for subnets", "region", r.region)

	subnets, err := r.listSubnets(ctx)
	if err != nil {
		return err
	}

	public, private := partitionSubnets(subnets)
	slog.Info("✨ found subnets", "public", len(public), "private", len(private))

	renderSubnetTable(md, "Public Subnets", public)
	renderSubnetTable(md, "Private Subnets", private)

	return nil
}

func (r *RegionReporter) listSubnets(ctx context.Context) ([]types.Subnetwork, error) {
	var subnets []types.Subnetwork
	var nextToken *string

	for {
		output, err := r.ec2Client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
			NextToken: nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("error listing subnets: %v", err)
		}

		for _, subnet := range output.Subnets {
			subnets = append(subnets, types.Subnetwork{
				SubnetID:            aws.ToString(subnet.SubnetId),
				VpcID:               aws.ToString(subnet.VpcId),
				CidrBlock:           aws.ToString(subnet.CidrBlock),
				AvailabilityZone:    aws.ToString(subnet.AvailabilityZone),
				AvailableIPs:        aws.ToInt32(subnet.AvailableIpAddressCount),
				MapPublicIPOnLaunch: aws.ToBool(subnet.MapPublicIpOnLaunch),
				State:               string(subnet.State),
				Name:                nameTag(subnet.Tags),
			})
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	return subnets, nil
}

// partitionSubnets splits subnets purely by the map-public-IP-on-launch flag.
// Every input row lands in exactly one of the two slices.
func partitionSubnets(subnets []types.Subnetwork) (public, private []types.Subnetwork) {
	for _, subnet := range subnets {
		if subnet.MapPublicIPOnLaunch {
			public = append(public, subnet)
		} else {
			private = append(private, subnet)
		}
	}
	return public, private
}

func renderSubnetTable(md *markdown.Markdown, title string, subnets []types.Subnetwork) {
	md.AddHeading(title, 3)

	if len(subnets) == 0 {
		md.AddParagraph(fmt.Sprintf("No %s found in this region.", title))
		return
	}

	headers := []string{"Subnet ID", "Name", "VPC ID", "CIDR Block", "AZ", "Free IPs", "Auto-assign Public IP", "State"}
	var tableData [][]string
	for _, subnet := range subnets {
		tableData = append(tableData, []string{
			subnet.SubnetID,
			subnet.Name,
			subnet.VpcID,
			subnet.CidrBlock,
			subnet.AvailabilityZone,
			fmt.Sprintf("%d", subnet.AvailableIPs),
			yesNo(subnet.MapPublicIPOnLaunch),
			subnet.State,
		})
	}
	md.AddTable(headers, tableData)
}
