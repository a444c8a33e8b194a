package awsx

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Clients bundles all service clients for convenience. They are constructed
// once at startup and shared across requests; the underlying SDK clients are
// safe for concurrent use.
type Clients struct {
	DynamoDB   DynamoDBAPI
	S3         S3API
	S3Presign  S3PresignAPI
	CloudWatch CloudWatchAPI
}

// NewClients loads AWS config and returns concrete service clients that
// implement our interfaces.
func NewClients(ctx context.Context, region string) (*Clients, error) {
	cfg, err := LoadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}

	s3Client := s3.NewFromConfig(cfg)

	return &Clients{
		DynamoDB:   dynamodb.NewFromConfig(cfg),
		S3:         s3Client,
		S3Presign:  s3.NewPresignClient(s3Client),
		CloudWatch: cloudwatch.NewFromConfig(cfg),
	}, nil
}
