package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/ec2recon/ec2recon/internal/services/markdown"
	"github.com/ec2recon/ec2recon/internal/types"
	"github.com/ec2recon/ec2recon/internal/utils"
)

const (
	imageLimit          = 5
	imageNameMax        = 45
	imageDescriptionMax = 35
)

// imagePublisher is one of the two fixed publisher identities the report
// covers.
type imagePublisher struct {
	label       string
	owner       string
	namePattern string
}

func imagePublishers() []imagePublisher {
	return []imagePublisher{
		{
			label:       "Canonical Ubuntu Server",
			owner:       "099720109477",
			namePattern: "ubuntu/images/hvm-ssd*/ubuntu-*-server-*",
		},
		{
			label:       "Amazon Linux 2023",
			owner:       "amazon",
			namePattern: "al2023-ami-2023*-x86_64",
		},
	}
}

func (r *RegionReporter) addMachineImagesSection(ctx context.Context, md *markdown.Markdown) error {
	for _, publisher := range imagePublishers() {
		slog.Info("🔍 scanning for machine images", "region", r.region, "publisher", publisher.label)

		images, err := r.listImages(ctx, publisher)
		if err != nil {
			return err
		}

		slog.Info("✨ found machine images", "publisher", publisher.label, "count", len(images))

		md.AddHeading(publisher.label, 3)

		if len(images) == 0 {
			md.AddParagraph(fmt.Sprintf("No %s images found in this region.", publisher.label))
			continue
		}

		headers := []string{"Image ID", "Name", "Created", "Description"}
		var tableData [][]string
		for _, image := range images {
			tableData = append(tableData, []string{
				image.ImageID,
				utils.Truncate(image.Name, imageNameMax),
				image.CreationDate,
				utils.Truncate(image.Description, imageDescriptionMax),
			})
		}
		md.AddTable(headers, tableData)
	}

	return nil
}

// listImages returns the publisher's most recent images, newest first,
// truncated to imageLimit.
func (r *RegionReporter) listImages(ctx context.Context, publisher imagePublisher) ([]types.MachineImage, error) {
	output, err := r.ec2Client.DescribeImages(ctx, &ec2.DescribeImagesInput{
		Owners: []string{publisher.owner},
		Filters: []ec2types.Filter{
			{Name: aws.String("name"), Values: []string{publisher.namePattern}},
			{Name: aws.String("state"), Values: []string{"available"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error listing images for %s: %v", publisher.label, err)
	}

	images := make([]types.MachineImage, 0, len(output.Images))
	for _, image := range output.Images {
		images = append(images, types.MachineImage{
			ImageID:      aws.ToString(image.ImageId),
			Name:         aws.ToString(image.Name),
			CreationDate: aws.ToString(image.CreationDate),
			Description:  aws.ToString(image.Description),
		})
	}

	// CreationDate is ISO 8601, so a lexicographic sort is chronological.
	sort.Slice(images, func(i, j int) bool {
		return images[i].CreationDate > images[j].CreationDate
	})

	if len(images) > imageLimit {
		images = images[:imageLimit]
	}

	return images, nil
}
