package objectstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ListBuckets returns the names of all buckets in the account.
func (m *Manager) ListBuckets(ctx context.Context) ([]string, error) {
	output, err := m.s3.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}

	names := make([]string, 0, len(output.Buckets))
	for _, bucket := range output.Buckets {
		names = append(names, aws.ToString(bucket.Name))
	}
	return names, nil
}

// BucketExists reports whether a bucket with the given name is owned by
// this account.
func (m *Manager) BucketExists(ctx context.Context, bucket string) (bool, error) {
	names, err := m.ListBuckets(ctx)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == bucket {
			return true, nil
		}
	}
	return false, nil
}

// EnsureBucket creates the bucket when it does not exist yet. Outside
// us-east-1 the create carries the manager's region as a location
// constraint, as the provider requires.
//
// The existence check and the create are not atomic; concurrent
// callers can race, and the loser sees the provider's already-exists
// error.
func (m *Manager) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := m.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		m.log.Debug().Str("bucket", bucket).Msg("bucket exists")
		return nil
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(bucket),
	}
	if m.region != "" && m.region != "us-east-1" {
		input.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(m.region),
		}
	}

	if _, err := m.s3.CreateBucket(ctx, input); err != nil {
		return fmt.Errorf("create bucket %q: %w", bucket, err)
	}

	m.log.Info().Str("bucket", bucket).Msg("bucket created")
	return nil
}

// DeleteBucket removes an empty bucket. The provider rejects deletion
// of a non-empty bucket; call EmptyBucket first.
func (m *Manager) DeleteBucket(ctx context.Context, bucket string) error {
	if _, err := m.s3.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("delete bucket %q: %w", bucket, err)
	}

	m.log.Info().Str("bucket", bucket).Msg("bucket deleted")
	return nil
}
