package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ec2recon/ec2recon/internal/client"
	"github.com/ec2recon/ec2recon/internal/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// bootstrapRegion is the fixed region used to resolve credentials and fetch
// the authoritative region list before a region has been selected.
const bootstrapRegion = "us-east-1"

var (
	region string
)

func NewReportCmd() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:           "report",
		Short:         "Discover EC2 resources in a region and write a markdown report",
		Long:          "Queries AMIs, instance types, VPCs, subnets, security groups and key pairs in a selected AWS region and renders them into a timestamped markdown report with a Terraform scaffold.",
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PreRunE:       preRunReport,
		RunE:          runReport,
	}

	optionalFlags := pflag.NewFlagSet("optional", pflag.ExitOnError)
	optionalFlags.SortFlags = false
	optionalFlags.StringVar(&region, "region", "", "The AWS region to report on (skips the interactive prompt)")

	reportCmd.Flags().AddFlagSet(optionalFlags)

	reportCmd.SetUsageFunc(func(c *cobra.Command) error {
		fmt.Printf("%s\n\n", c.Short)

		usage := optionalFlags.FlagUsages()
		if usage != "" {
			fmt.Printf("Optional Flags:\n%s\n", usage)
		}

		fmt.Println("All flags can be provided via environment variables (uppercase, with underscores).")

		return nil
	})

	return reportCmd
}

// sets flag values from corresponding environment variables if flags weren't explicitly provided
func preRunReport(cmd *cobra.Command, args []string) error {
	if err := utils.BindEnvToFlags(cmd); err != nil {
		return err
	}

	return nil
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	stsClient, err := client.NewSTSClient(bootstrapRegion)
	if err != nil {
		return fmt.Errorf("❌ Failed to create sts client: %v", err)
	}

	identity, err := ResolveCallerIdentity(ctx, stsClient)
	if err != nil {
		return fmt.Errorf("❌ Failed to resolve AWS credentials: %v", err)
	}
	slog.Info("🔐 resolved AWS identity", "account", identity.Account, "principal", identity.Arn)

	// Conservative rate limits to avoid AWS 429 Too Many Requests errors.
	bootstrapClient, err := client.NewEC2Client(bootstrapRegion, 8, 1)
	if err != nil {
		return fmt.Errorf("❌ Failed to create ec2 client: %v", err)
	}

	selector, err := NewRegionSelector(ctx, bootstrapClient)
	if err != nil {
		return fmt.Errorf("❌ Failed to list AWS regions: %v", err)
	}

	selectedRegion := region
	if selectedRegion != "" {
		// There is no interactive retry on the flag path, so a bad value is fatal.
		if !selector.IsValid(selectedRegion) {
			return fmt.Errorf("❌ '%s' is not a valid AWS region", selectedRegion)
		}
	} else {
		selectedRegion, err = selector.Select()
		if err != nil {
			return fmt.Errorf("❌ Failed to select region: %v", err)
		}
	}

	ec2Client, err := client.NewEC2Client(selectedRegion, 8, 1)
	if err != nil {
		return fmt.Errorf("❌ Failed to create ec2 client: %v", err)
	}

	reporter := NewRegionReporter(ec2Client, RegionReporterOpts{
		Region:   selectedRegion,
		Identity: *identity,
	})

	if err := reporter.Run(ctx); err != nil {
		return fmt.Errorf("❌ Failed to generate report: %v", err)
	}

	return nil
}
