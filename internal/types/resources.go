package types

import (
	"fmt"
	"strings"
)

// MachineImage is one AMI row, already reduced to the fields the report shows.
type MachineImage struct {
	ImageID      string `json:"image_id"`
	Name         string `json:"name"`
	CreationDate string `json:"creation_date"`
	Description  string `json:"description"`
}

// InstanceTypeSpec is one row of the regional instance type catalog.
type InstanceTypeSpec struct {
	Name               string   `json:"name"`
	VCpus              int32    `json:"vcpus"`
	MemoryMiB          int64    `json:"memory_mib"`
	StorageGB          int64    `json:"storage_gb"` // 0 = EBS only
	NetworkPerformance string   `json:"network_performance"`
	Architectures      []string `json:"architectures"`
}

// Family returns the instance family prefix, e.g. "m5" for "m5.large". Types
// without a '.' delimiter fall back to the full name.
func (s InstanceTypeSpec) Family() string {
	name, _, found := strings.Cut(s.Name, ".")
	if !found {
		return s.Name
	}
	return name
}

// MemoryGiB converts MiB to whole GiB, truncating. 3000 MiB reports as 2 GiB.
func (s InstanceTypeSpec) MemoryGiB() int64 {
	return s.MemoryMiB / 1024
}

// Network is a VPC in the selected region.
type Network struct {
	VpcID     string `json:"vpc_id"`
	CidrBlock string `json:"cidr_block"`
	IsDefault bool   `json:"is_default"`
	State     string `json:"state"`
	Name      string `json:"name"`
}

// Subnetwork is a subnet, classified public/private purely by the
// map-public-IP-on-launch flag.
type Subnetwork struct {
	SubnetID            string `json:"subnet_id"`
	VpcID               string `json:"vpc_id"`
	CidrBlock           string `json:"cidr_block"`
	AvailabilityZone    string `json:"availability_zone"`
	AvailableIPs        int32  `json:"available_ips"`
	MapPublicIPOnLaunch bool   `json:"map_public_ip_on_launch"`
	State               string `json:"state"`
	Name                string `json:"name"`
}

// FirewallRule is one security group rule in either direction.
type FirewallRule struct {
	Protocol string `json:"protocol"`
	FromPort *int32 `json:"from_port,omitempty"`
	ToPort   *int32 `json:"to_port,omitempty"`
	Source   string `json:"source"`
}

// PortRange renders the rule's port range: "all" when no starting port is
// present, a single number when start equals end, "start-end" otherwise.
func (r FirewallRule) PortRange() string {
	if r.FromPort == nil || *r.FromPort < 0 {
		return "all"
	}
	if r.ToPort == nil || *r.FromPort == *r.ToPort {
		return fmt.Sprintf("%d", *r.FromPort)
	}
	return fmt.Sprintf("%d-%d", *r.FromPort, *r.ToPort)
}

// ProtocolDisplay maps the wire value "-1" to "all".
func (r FirewallRule) ProtocolDisplay() string {
	if r.Protocol == "-1" || r.Protocol == "" {
		return "all"
	}
	return r.Protocol
}

const (
	SourceAnywhereIPv4 = "anywhere (IPv4)"
	SourceAnywhereIPv6 = "anywhere (IPv6)"
	SourceGroupRef     = "security-group reference"
	SourceCustom       = "custom"
)

// ClassifySource labels a rule source/destination for the report.
func ClassifySource(source string) string {
	switch {
	case source == "0.0.0.0/0":
		return SourceAnywhereIPv4
	case source == "::/0":
		return SourceAnywhereIPv6
	case strings.HasPrefix(source, "sg-"):
		return SourceGroupRef
	default:
		return SourceCustom
	}
}

// FirewallRuleSet is a security group with its resolved rule lists.
type FirewallRuleSet struct {
	GroupID     string         `json:"group_id"`
	GroupName   string         `json:"group_name"`
	VpcID       string         `json:"vpc_id"`
	Description string         `json:"description"`
	Ingress     []FirewallRule `json:"ingress"`
	Egress      []FirewallRule `json:"egress"`
}

// KeyPair is an SSH key pair record, listed verbatim.
type KeyPair struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
	Type        string `json:"type"`
}

// CallerIdentity is the resolved AWS identity printed during preflight.
type CallerIdentity struct {
	Account string `json:"account"`
	Arn     string `json:"arn"`
	UserID  string `json:"user_id"`
}
