package hcl

import (
	"github.com/ec2recon/ec2recon/internal/utils"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/zclconf/go-cty/cty"
)

// scaffoldVariable is one variable declaration in the generated scaffold.
type scaffoldVariable struct {
	Name        string
	Description string
	Type        string
	Default     cty.Value // cty.NilVal = no default
}

// InstanceScaffoldService renders the static Terraform scaffold that closes
// the report. Only the selected region is interpolated; the variable values
// are placeholders the operator fills in from the discovered tables, and they
// are deliberately not cross-checked against the discovery results.
type InstanceScaffoldService struct {
}

func NewInstanceScaffoldService() *InstanceScaffoldService {
	return &InstanceScaffoldService{}
}

func (s *InstanceScaffoldService) scaffoldVariables(region string) []scaffoldVariable {
	return []scaffoldVariable{
		{
			Name:        "aws_region",
			Description: "The AWS region",
			Type:        "string",
			Default:     cty.StringVal(region),
		},
		{
			Name:        "ami_id",
			Description: "AMI ID from the machine images section of the report",
			Type:        "string",
		},
		{
			Name:        "instance_type",
			Description: "Instance type from the catalog section of the report",
			Type:        "string",
			Default:     cty.StringVal("t3.micro"),
		},
		{
			Name:        "subnet_id",
			Description: "Subnet ID from the subnets section of the report",
			Type:        "string",
		},
		{
			Name:        "security_group_ids",
			Description: "Security group IDs from the security groups section of the report",
			Type:        "list(string)",
		},
		{
			Name:        "key_name",
			Description: "Key pair name from the key pairs section of the report",
			Type:        "string",
		},
	}
}

// GenerateMainTf produces the full single-file scaffold: terraform/provider
// blocks, variable declarations, one aws_instance wired to the variables with
// hardened defaults, and three outputs.
func (s *InstanceScaffoldService) GenerateMainTf(region string) string {
	f := hclwrite.NewEmptyFile()
	rootBody := f.Body()

	terraformBlock := rootBody.AppendNewBlock("terraform", nil)
	terraformBody := terraformBlock.Body()
	terraformBody.SetAttributeValue("required_version", cty.StringVal(">= 1.5.0"))

	requiredProvidersBlock := terraformBody.AppendNewBlock("required_providers", nil)
	requiredProvidersBlock.Body().SetAttributeValue("aws", cty.ObjectVal(map[string]cty.Value{
		"source":  cty.StringVal("hashicorp/aws"),
		"version": cty.StringVal("~> 5.0"),
	}))
	rootBody.AppendNewline()

	providerBlock := rootBody.AppendNewBlock("provider", []string{"aws"})
	providerBlock.Body().SetAttributeRaw("region", utils.TokensForVarReference("aws_region"))
	rootBody.AppendNewline()

	for _, v := range s.scaffoldVariables(region) {
		variableBlock := rootBody.AppendNewBlock("variable", []string{v.Name})
		variableBody := variableBlock.Body()
		variableBody.SetAttributeValue("description", cty.StringVal(v.Description))
		variableBody.SetAttributeRaw("type", utils.TokensForResourceReference(v.Type))
		if v.Default != cty.NilVal {
			variableBody.SetAttributeValue("default", v.Default)
		}
		rootBody.AppendNewline()
	}

	resourceBlock := rootBody.AppendNewBlock("resource", []string{"aws_instance", "discovered"})
	resourceBody := resourceBlock.Body()
	resourceBody.SetAttributeRaw("ami", utils.TokensForVarReference("ami_id"))
	resourceBody.SetAttributeRaw("instance_type", utils.TokensForVarReference("instance_type"))
	resourceBody.SetAttributeRaw("subnet_id", utils.TokensForVarReference("subnet_id"))
	resourceBody.SetAttributeRaw("vpc_security_group_ids", utils.TokensForVarReference("security_group_ids"))
	resourceBody.SetAttributeRaw("key_name", utils.TokensForVarReference("key_name"))
	resourceBody.SetAttributeValue("monitoring", cty.BoolVal(true))
	resourceBody.AppendNewline()

	rootBlockDevice := resourceBody.AppendNewBlock("root_block_device", nil)
	rootBlockDevice.Body().SetAttributeValue("encrypted", cty.BoolVal(true))
	resourceBody.AppendNewline()

	metadataOptions := resourceBody.AppendNewBlock("metadata_options", nil)
	metadataOptions.Body().SetAttributeValue("http_endpoint", cty.StringVal("enabled"))
	metadataOptions.Body().SetAttributeValue("http_tokens", cty.StringVal("required"))
	resourceBody.AppendNewline()

	resourceBody.SetAttributeValue("tags", cty.ObjectVal(map[string]cty.Value{
		"Name": cty.StringVal("ec2recon-instance"),
	}))
	rootBody.AppendNewline()

	outputs := []struct {
		name string
		ref  string
	}{
		{"instance_id", "aws_instance.discovered.id"},
		{"private_ip", "aws_instance.discovered.private_ip"},
		{"public_ip", "aws_instance.discovered.public_ip"},
	}
	for _, output := range outputs {
		outputBlock := rootBody.AppendNewBlock("output", []string{output.name})
		outputBlock.Body().SetAttributeRaw("value", utils.TokensForResourceReference(output.ref))
		rootBody.AppendNewline()
	}

	return string(f.Bytes())
}
