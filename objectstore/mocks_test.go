package objectstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// MockS3Client is an in-memory bucket store for tests. Keys are listed
// in lexical order, matching the provider.
type MockS3Client struct {
	buckets map[string]map[string][]byte

	// failKeys marks keys whose delete is rejected per-object inside an
	// otherwise successful DeleteObjects response.
	failKeys map[string]bool

	createBucketCalls []*s3.CreateBucketInput
	deleteCalls       []*s3.DeleteObjectsInput
}

func newMockS3Client() *MockS3Client {
	return &MockS3Client{buckets: make(map[string]map[string][]byte)}
}

func (m *MockS3Client) seed(bucket string, objects map[string]string) {
	store := make(map[string][]byte, len(objects))
	for key, body := range objects {
		store[key] = []byte(body)
	}
	m.buckets[bucket] = store
}

func (m *MockS3Client) ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	out := &s3.ListBucketsOutput{}
	names := make([]string, 0, len(m.buckets))
	for name := range m.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out.Buckets = append(out.Buckets, s3types.Bucket{Name: aws.String(name)})
	}
	return out, nil
}

func (m *MockS3Client) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	m.createBucketCalls = append(m.createBucketCalls, params)
	name := aws.ToString(params.Bucket)
	if _, ok := m.buckets[name]; ok {
		return nil, fmt.Errorf("BucketAlreadyOwnedByYou: %s", name)
	}
	m.buckets[name] = make(map[string][]byte)
	return &s3.CreateBucketOutput{}, nil
}

func (m *MockS3Client) DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	name := aws.ToString(params.Bucket)
	store, ok := m.buckets[name]
	if !ok {
		return nil, fmt.Errorf("NoSuchBucket: %s", name)
	}
	if len(store) > 0 {
		return nil, fmt.Errorf("BucketNotEmpty: %s", name)
	}
	delete(m.buckets, name)
	return &s3.DeleteBucketOutput{}, nil
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	store, ok := m.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, fmt.Errorf("NoSuchBucket: %s", aws.ToString(params.Bucket))
	}

	prefix := aws.ToString(params.Prefix)
	keys := make([]string, 0, len(store))
	for key := range store {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	for _, key := range keys {
		out.Contents = append(out.Contents, s3types.Object{Key: aws.String(key)})
	}
	return out, nil
}

func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	store, ok := m.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, fmt.Errorf("NoSuchBucket: %s", aws.ToString(params.Bucket))
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	store[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	store, ok := m.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, fmt.Errorf("NoSuchBucket: %s", aws.ToString(params.Bucket))
	}
	data, ok := store[aws.ToString(params.Key)]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s", aws.ToString(params.Key))
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(data)),
		ContentLength: aws.Int64(int64(len(data))),
	}, nil
}

func (m *MockS3Client) DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	m.deleteCalls = append(m.deleteCalls, params)
	store, ok := m.buckets[aws.ToString(params.Bucket)]
	if !ok {
		return nil, fmt.Errorf("NoSuchBucket: %s", aws.ToString(params.Bucket))
	}

	out := &s3.DeleteObjectsOutput{}
	for _, obj := range params.Delete.Objects {
		key := aws.ToString(obj.Key)
		if m.failKeys[key] {
			out.Errors = append(out.Errors, s3types.Error{
				Key:     obj.Key,
				Code:    aws.String("AccessDenied"),
				Message: aws.String("delete rejected"),
			})
			continue
		}
		delete(store, key)
		out.Deleted = append(out.Deleted, s3types.DeletedObject{Key: obj.Key})
	}
	return out, nil
}
