package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Source reads course documents from an S3 bucket, optionally under a key
// prefix
type S3Source struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Source creates a source over the given bucket and prefix
func NewS3Source(client *s3.Client, bucket, prefix string) *S3Source {
	return &S3Source{client: client, bucket: bucket, prefix: prefix}
}

// NewS3SourceFromEnv builds an S3 source from environment configuration.
// The location is "bucket" or "bucket/prefix"; credentials come from
// AWS_ACCESS_KEY_ID/AWS_SECRET_ACCESS_KEY when set, otherwise from the
// default chain (environment, IAM role, etc.).
func NewS3SourceFromEnv(ctx context.Context, location string) (*S3Source, error) {
	bucket, prefix := splitBucketPrefix(location)
	if bucket == "" {
		return nil, fmt.Errorf("DOCS_PATH must name an S3 bucket")
	}

	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	var awsCfg aws.Config
	var err error
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if accessKey != "" && secretKey != "" {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				accessKey,
				secretKey,
				"",
			)),
		)
	} else {
		awsCfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewS3Source(s3.NewFromConfig(awsCfg), bucket, prefix), nil
}

// List returns the .txt object keys under the prefix, relative to it
func (s *S3Source) List(ctx context.Context) ([]string, error) {
	var names []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	}
	if s.prefix != "" {
		input.Prefix = aws.String(s.prefix + "/")
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.EqualFold(path.Ext(key), ".txt") {
				continue
			}
			if s.prefix != "" {
				key = strings.TrimPrefix(key, s.prefix+"/")
			}
			names = append(names, key)
		}
	}
	return names, nil
}

// Read fetches the named document from the bucket
func (s *S3Source) Read(ctx context.Context, name string) (io.ReadCloser, error) {
	key := name
	if s.prefix != "" {
		key = s.prefix + "/" + name
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch s3://%s/%s: %w", s.bucket, key, err)
	}
	return result.Body, nil
}

func splitBucketPrefix(location string) (bucket, prefix string) {
	location = strings.Trim(location, "/")
	if i := strings.IndexByte(location, '/'); i >= 0 {
		return location[:i], location[i+1:]
	}
	return location, ""
}
