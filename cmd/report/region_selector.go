package report

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/charmbracelet/huh"
)

// listToken, entered at the prompt in any case, enumerates all regions and
// re-prompts. It never selects a region itself.
const listToken = "list"

// RegionLister defines the EC2 client methods used by RegionSelector
type RegionLister interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

// RegionSelector validates interactive region input against the provider's
// authoritative region list, fetched once against the bootstrap region.
type RegionSelector struct {
	regions []string
	prompt  func() (string, error)
}

func NewRegionSelector(ctx context.Context, ec2Client RegionLister) (*RegionSelector, error) {
	output, err := ec2Client.DescribeRegions(ctx, &ec2.DescribeRegionsInput{})
	if err != nil {
		return nil, fmt.Errorf("error listing regions: %v", err)
	}

	regions := make([]string, 0, len(output.Regions))
	for _, r := range output.Regions {
		regions = append(regions, aws.ToString(r.RegionName))
	}
	slices.Sort(regions)

	return &RegionSelector{
		regions: regions,
		prompt:  promptForRegion,
	}, nil
}

// NewRegionSelectorWithPrompt creates a RegionSelector with a custom prompt function (useful for testing)
func NewRegionSelectorWithPrompt(regions []string, prompt func() (string, error)) *RegionSelector {
	return &RegionSelector{
		regions: regions,
		prompt:  prompt,
	}
}

func (s *RegionSelector) Regions() []string {
	return s.regions
}

// IsValid reports whether code matches a region exactly. Region codes are
// lowercase, so mixed-case input does not validate.
func (s *RegionSelector) IsValid(code string) bool {
	return slices.Contains(s.regions, code)
}

// Select prompts until a valid region code is entered. There is no retry
// limit and no timeout, and nothing is recorded until validation passes.
func (s *RegionSelector) Select() (string, error) {
	for {
		input, err := s.prompt()
		if err != nil {
			return "", fmt.Errorf("error reading region input: %v", err)
		}

		trimmed := strings.TrimSpace(input)

		if strings.EqualFold(trimmed, listToken) {
			s.printRegionList()
			continue
		}

		if s.IsValid(trimmed) {
			slog.Info("🌍 region selected", "region", trimmed)
			return trimmed, nil
		}

		slog.Warn(fmt.Sprintf("⚠️ '%s' is not a valid AWS region, enter 'list' to see all available regions", trimmed))
	}
}

func (s *RegionSelector) printRegionList() {
	fmt.Println("\nAvailable AWS regions:")
	for i, region := range s.regions {
		fmt.Printf("%3d. %s\n", i+1, region)
	}
	fmt.Println()
}

func promptForRegion() (string, error) {
	var value string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Select an AWS region").
				Description("Enter a region code (e.g. eu-west-1), or 'list' to see all available regions").
				Value(&value),
		),
	)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("form error: %w", err)
	}

	return value, nil
}
