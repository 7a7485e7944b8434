package report

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/ec2recon/ec2recon/internal/services/hcl"
	"github.com/ec2recon/ec2recon/internal/services/markdown"
	"github.com/ec2recon/ec2recon/internal/types"
)

// ReportEC2Client defines the EC2 client methods used by RegionReporter
type ReportEC2Client interface {
	DescribeImages(ctx context.Context, params *ec2.DescribeImagesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeImagesOutput, error)
	DescribeInstanceTypes(ctx context.Context, params *ec2.DescribeInstanceTypesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypesOutput, error)
	DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error)
	DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error)
	DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	DescribeSecurityGroupRules(ctx context.Context, params *ec2.DescribeSecurityGroupRulesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupRulesOutput, error)
	DescribeKeyPairs(ctx context.Context, params *ec2.DescribeKeyPairsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeKeyPairsOutput, error)
}

type RegionReporterOpts struct {
	Region   string
	Identity types.CallerIdentity
}

// RegionReporter runs the fixed sequence of category stages against one
// region and assembles the report. Each completed section is flushed to the
// report file before the next stage starts, so a mid-run failure leaves a
// valid document up to the last completed category.
type RegionReporter struct {
	region          string
	identity        types.CallerIdentity
	ec2Client       ReportEC2Client
	scaffoldService *hcl.InstanceScaffoldService
	timestamp       time.Time
	full            *markdown.Markdown
}

// reportStage is one fetch, normalize and render pipeline step. Every category
// shares this shape, so adding a category means adding one entry to stages().
type reportStage struct {
	title string
	fn    func(ctx context.Context, md *markdown.Markdown) error
}

func NewRegionReporter(ec2Client ReportEC2Client, opts RegionReporterOpts) *RegionReporter {
	return &RegionReporter{
		region:          opts.Region,
		identity:        opts.Identity,
		ec2Client:       ec2Client,
		scaffoldService: hcl.NewInstanceScaffoldService(),
		timestamp:       time.Now(),
		full:            markdown.New(),
	}
}

func (r *RegionReporter) GetMarkdownPath() string {
	return fmt.Sprintf("ec2recon-report_%s.md", r.timestamp.Format("2006-01-02_15-04-05"))
}

func (r *RegionReporter) stages() []reportStage {
	return []reportStage{
		{title: "Machine Images", fn: r.addMachineImagesSection},
		{title: "Instance Types", fn: r.addInstanceTypesSection},
		{title: "Networks", fn: r.addNetworksSection},
		{title: "Subnets", fn: r.addSubnetsSection},
		{title: "Security Groups", fn: r.addSecurityGroupsSection},
		{title: "Key Pairs", fn: r.addKeyPairsSection},
		{title: "Terraform Scaffold", fn: r.addScaffoldSection},
		{title: "Next Steps", fn: r.addGuidanceSection},
	}
}

func (r *RegionReporter) Run(ctx context.Context) error {
	slog.Info("🚀 starting EC2 region report", "region", r.region)

	filePath := r.GetMarkdownPath()
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("❌ Failed to create report file: %v", err)
	}
	defer file.Close()

	if err := r.generate(ctx, file); err != nil {
		return err
	}

	// The file already holds the raw markdown; render the assembled document
	// to the terminal for the operator.
	if err := r.full.Print(markdown.PrintOptions{ToTerminal: true}); err != nil {
		return fmt.Errorf("❌ Failed to render report: %v", err)
	}

	slog.Info("✅ region report complete", "region", r.region, "markdownPath", filePath)

	return nil
}

// generate runs the header and every stage, flushing each section to out as
// it completes.
func (r *RegionReporter) generate(ctx context.Context, out io.Writer) error {
	if err := r.flushSection(out, r.headerSection()); err != nil {
		return err
	}

	for _, stage := range r.stages() {
		md := markdown.New()
		md.AddHeading(stage.title, 2)

		if err := stage.fn(ctx, md); err != nil {
			return fmt.Errorf("❌ Failed to report %s: %v", stage.title, err)
		}

		if err := r.flushSection(out, md); err != nil {
			return err
		}

		slog.Info("✅ section complete", "section", stage.title)
	}

	return nil
}

func (r *RegionReporter) flushSection(out io.Writer, md *markdown.Markdown) error {
	if _, err := md.WriteTo(out); err != nil {
		return fmt.Errorf("❌ Failed to write report section: %v", err)
	}
	r.full.AddParagraph(md.String())
	return nil
}

func (r *RegionReporter) headerSection() *markdown.Markdown {
	md := markdown.New()

	md.AddHeading("EC2 Region Discovery Report", 1)
	md.AddParagraph(fmt.Sprintf("This report provides an inventory of EC2 resources in the **%s** region.", r.region))

	md.AddTable(
		[]string{"Field", "Value"},
		[][]string{
			{"Region", r.region},
			{"Account", r.identity.Account},
			{"Principal", r.identity.Arn},
			{"Generated", r.timestamp.Format("2006-01-02 15:04:05 MST")},
		},
	)

	md.AddHeading("Contents", 2)
	titles := []string{}
	for _, stage := range r.stages() {
		titles = append(titles, stage.title)
	}
	// The links resolve against the stage headings emitted below, so stage
	// titles must not change without this block following.
	md.AddTableOfContents(titles)

	return md
}

func (r *RegionReporter) addScaffoldSection(ctx context.Context, md *markdown.Markdown) error {
	md.AddParagraph("A starting point for provisioning an instance from the discovered resources. Replace the variable placeholders with IDs from the tables above; they are not validated against the discovery results.")
	md.AddCodeBlock(r.scaffoldService.GenerateMainTf(r.region), "hcl")
	return nil
}

func (r *RegionReporter) addGuidanceSection(ctx context.Context, md *markdown.Markdown) error {
	md.AddList([]string{
		"Save the scaffold above as `main.tf` in an empty directory.",
		"Fill in `ami_id`, `subnet_id`, `security_group_ids` and `key_name` from the tables in this report.",
		"Run `terraform init` followed by `terraform plan` to review the proposed changes.",
		"Run `terraform apply` when the plan looks correct.",
	})
	md.AddHorizontalRule()
	md.AddParagraph(fmt.Sprintf("_Generated by ec2recon against account %s._", r.identity.Account))
	return nil
}
