package report

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/ec2recon/ec2recon/internal/services/markdown"
	"github.com/ec2recon/ec2recon/internal/types"
)

func (r *RegionReporter) addInstanceTypesSection(ctx context.Context, md *markdown.Markdown) error {
	slog.Info("🔍 scanning instance type catalog", "region", r.region)

	specs, err := r.listInstanceTypes(ctx)
	if err != nil {
		return err
	}

	slog.Info("✨ found instance types", "count", len(specs))

	if len(specs) == 0 {
		md.AddParagraph("No instance types found in this region.")
		return nil
	}

	renderInstanceTypeGroups(md, specs)
	renderFamilySummary(md, specs)

	return nil
}

// listInstanceTypes returns the full regional catalog sorted by type name,
// which also orders it by family for grouped rendering.
func (r *RegionReporter) listInstanceTypes(ctx context.Context) ([]types.InstanceTypeSpec, error) {
	var specs []types.InstanceTypeSpec
	var nextToken *string
	maxResults := int32(100)

	for {
		output, err := r.ec2Client.DescribeInstanceTypes(ctx, &ec2.DescribeInstanceTypesInput{
			MaxResults: &maxResults,
			NextToken:  nextToken,
		})
		if err != nil {
			return nil, fmt.Errorf("error listing instance types: %v", err)
		}

		for _, info := range output.InstanceTypes {
			spec := types.InstanceTypeSpec{
				Name: string(info.InstanceType),
			}
			if info.VCpuInfo != nil {
				spec.VCpus = aws.ToInt32(info.VCpuInfo.DefaultVCpus)
			}
			if info.MemoryInfo != nil {
				spec.MemoryMiB = aws.ToInt64(info.MemoryInfo.SizeInMiB)
			}
			if info.InstanceStorageInfo != nil {
				spec.StorageGB = aws.ToInt64(info.InstanceStorageInfo.TotalSizeInGB)
			}
			if info.NetworkInfo != nil {
				spec.NetworkPerformance = aws.ToString(info.NetworkInfo.NetworkPerformance)
			}
			if info.ProcessorInfo != nil {
				for _, arch := range info.ProcessorInfo.SupportedArchitectures {
					spec.Architectures = append(spec.Architectures, string(arch))
				}
			}
			specs = append(specs, spec)
		}

		if output.NextToken == nil {
			break
		}
		nextToken = output.NextToken
	}

	sort.Slice(specs, func(i, j int) bool {
		return specs[i].Name < specs[j].Name
	})

	return specs, nil
}

// renderInstanceTypeGroups writes one table per family. The input must
// already be sorted by name; a new section starts whenever the family prefix
// changes from the previous row.
func renderInstanceTypeGroups(md *markdown.Markdown, specs []types.InstanceTypeSpec) {
	headers := []string{"Type", "vCPUs", "Memory (GiB)", "Storage", "Network", "Architectures"}

	var family string
	var tableData [][]string

	flush := func() {
		if len(tableData) > 0 {
			md.AddHeading(fmt.Sprintf("Family %s", family), 3)
			md.AddTable(headers, tableData)
			tableData = nil
		}
	}

	for _, spec := range specs {
		if spec.Family() != family {
			flush()
			family = spec.Family()
		}

		storage := "EBS only"
		if spec.StorageGB > 0 {
			storage = fmt.Sprintf("%d GB", spec.StorageGB)
		}

		tableData = append(tableData, []string{
			spec.Name,
			fmt.Sprintf("%d", spec.VCpus),
			fmt.Sprintf("%d", spec.MemoryGiB()),
			storage,
			spec.NetworkPerformance,
			strings.Join(spec.Architectures, ", "),
		})
	}
	flush()
}

// renderFamilySummary writes the trailing per-family type counts.
func renderFamilySummary(md *markdown.Markdown, specs []types.InstanceTypeSpec) {
	counts := make(map[string]int)
	families := []string{}
	for _, spec := range specs {
		if _, seen := counts[spec.Family()]; !seen {
			families = append(families, spec.Family())
		}
		counts[spec.Family()]++
	}

	md.AddHeading("Family Summary", 3)

	var tableData [][]string
	for _, family := range families {
		tableData = append(tableData, []string{family, fmt.Sprintf("%d", counts[family])})
	}
	tableData = append(tableData, []string{"**Total**", fmt.Sprintf("%d", len(specs))})

	md.AddTable([]string{"Family", "Types"}, tableData)
}
