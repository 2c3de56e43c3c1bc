package repomanager

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/snapshots"
)

const s3Prefix = "snapshots"

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) snapshots.S3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type s3Manager struct {
	repo *snapshots.S3Repository
}

// NewS3RepositoryManager builds an S3 client for an S3-compatible endpoint
// (path-style addressing, static credentials).
func NewS3RepositoryManager(ctx context.Context, c *config.Config) (RepositoryManager, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(c.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &s3Manager{repo: snapshots.NewS3Repository(client, c.S3Bucket, s3Prefix)}, nil
}

func (m *s3Manager) RunMigrations(context.Context) error { return nil }
func (m *s3Manager) Snapshots() snapshots.Repository     { return m.repo }
func (m *s3Manager) Close() error                        { return nil }
