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

func (r *RegionReporter) addKeyPairsSection(ctx context.Context, md *markdown.Markdown) error {
	slog.Info("🔍 scanning for key pairs", "region", r.region)

	keyPairs, err := r.listKeyPairs(ctx)
	if err != nil {
		return err
	}

	slog.Info("✨ found key pairs", "count", len(keyPairs))

	if len(keyPairs) == 0 {
		md.AddParagraph("No key pairs found in this region.")
		return nil
	}

	headers := []string{"Name", "Key Pair ID", "Fingerprint", "Type"}
	var tableData [][]string
	for _, keyPair := range keyPairs {
		tableData = append(tableData, []string{
			keyPair.Name,
			keyPair.ID,
			keyPair.Fingerprint,
			keyPair.Type,
		})
	}
	md.AddTable(headers, tableData)

	return nil
}

func (r *RegionReporter) listKeyPairs(ctx context.Context) ([]types.KeyPair, error) {
	output, err := r.ec2Client.DescribeKeyPairs(ctx, &ec2.DescribeKeyPairsInput{})
	if err != nil {
		return nil, fmt.Errorf("error listing key pairs: %v", err)
	}

	keyPairs := make([]types.KeyPair, 0, len(output.KeyPairs))
	for _, keyPair := range output.KeyPairs {
		keyPairs = append(keyPairs, types.KeyPair{
			Name:        aws.ToString(keyPair.KeyName),
			ID:          aws.ToString(keyPair.KeyPairId),
			Fingerprint: aws.ToString(keyPair.KeyFingerprint),
			Type:        string(keyPair.KeyType),
		})
	}

	return keyPairs, nil
}
