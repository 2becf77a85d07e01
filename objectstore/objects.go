package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// deleteBatchSize is the provider's per-request limit for DeleteObjects.
const deleteBatchSize = 1000

// UploadFile uploads a local file to bucket/key.
func (m *Manager) UploadFile(ctx context.Context, bucket, key, path string) error {
	f, err := os.Open(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	_, err = m.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return fmt.Errorf("upload %s to s3://%s/%s: %w", path, bucket, key, err)
	}

	m.log.Debug().Str("bucket", bucket).Str("key", key).Str("path", path).Msg("object uploaded")
	return nil
}

// DownloadFile downloads bucket/key into a local file, creating parent
// directories as needed.
func (m *Manager) DownloadFile(ctx context.Context, bucket, key, path string) error {
	output, err := m.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("download s3://%s/%s: %w", bucket, key, err)
	}
	defer func() { _ = output.Body.Close() }()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, output.Body); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	m.log.Debug().Str("bucket", bucket).Str("key", key).Str("path", path).Msg("object downloaded")
	return nil
}

// ListObjects returns all keys under prefix, paginating as needed. An
// empty prefix lists the whole bucket.
func (m *Manager) ListObjects(ctx context.Context, bucket, prefix string) ([]string, error) {
	input := &s3.ListObjectsV2Input{Bucket: aws.String(bucket)}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(m.s3, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects in %q: %w", bucket, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// EmptyBucket deletes every object in the bucket in batches. Per-object
// delete failures are logged and skipped so one bad key does not stall
// the sweep; only whole-request failures abort. Returns the number of
// objects deleted.
func (m *Manager) EmptyBucket(ctx context.Context, bucket string) (int, error) {
	keys, err := m.ListObjects(ctx, bucket, "")
	if err != nil {
		return 0, err
	}

	deleted := 0
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := min(start+deleteBatchSize, len(keys))

		batch := make([]s3types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			batch = append(batch, s3types.ObjectIdentifier{Key: aws.String(key)})
		}

		output, err := m.s3.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &s3types.Delete{Objects: batch},
		})
		if err != nil {
			return deleted, fmt.Errorf("delete objects in %q: %w", bucket, err)
		}

		for _, objErr := range output.Errors {
			m.log.Warn().
				Str("bucket", bucket).
				Str("key", aws.ToString(objErr.Key)).
				Str("code", aws.ToString(objErr.Code)).
				Str("message", aws.ToString(objErr.Message)).
				Msg("object delete failed")
		}
		deleted += len(batch) - len(output.Errors)
	}

	m.log.Info().Str("bucket", bucket).Int("deleted", deleted).Msg("bucket emptied")
	return deleted, nil
}
