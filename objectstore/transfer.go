package objectstore

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// UploadFolder recursively uploads a local directory tree under the
// given key prefix, preserving relative structure. Path separators are
// normalized to forward slashes in keys.
func (m *Manager) UploadFolder(ctx context.Context, bucket, prefix, dir string) error {
	uploaded := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		key := joinKey(prefix, filepath.ToSlash(rel))
		if err := m.UploadFile(ctx, bucket, key, path); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	if err != nil {
		return fmt.Errorf("upload folder %s: %w", dir, err)
	}

	m.log.Info().
		Str("bucket", bucket).
		Str("prefix", prefix).
		Str("dir", dir).
		Int("files", uploaded).
		Msg("folder uploaded")
	return nil
}

// DownloadFolder mirrors every object under prefix into a local
// directory, creating intermediate directories as needed. Zero-length
// directory-marker keys (trailing slash) are skipped.
func (m *Manager) DownloadFolder(ctx context.Context, bucket, prefix, dir string) error {
	keys, err := m.ListObjects(ctx, bucket, prefix)
	if err != nil {
		return err
	}

	downloaded := 0
	for _, key := range keys {
		if strings.HasSuffix(key, "/") {
			continue
		}

		rel := relativeKey(prefix, key)
		if rel == "" {
			continue
		}

		local := filepath.Join(dir, filepath.FromSlash(rel))
		if err := m.DownloadFile(ctx, bucket, key, local); err != nil {
			return fmt.Errorf("download folder s3://%s/%s: %w", bucket, prefix, err)
		}
		downloaded++
	}

	m.log.Info().
		Str("bucket", bucket).
		Str("prefix", prefix).
		Str("dir", dir).
		Int("files", downloaded).
		Msg("folder downloaded")
	return nil
}

// joinKey composes an object key from a prefix and a slash-normalized
// relative path.
func joinKey(prefix, rel string) string {
	if prefix == "" {
		return rel
	}
	return strings.TrimSuffix(prefix, "/") + "/" + rel
}

// relativeKey strips the prefix (and its trailing separator) from an
// object key.
func relativeKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	rel := strings.TrimPrefix(key, strings.TrimSuffix(prefix, "/"))
	return strings.TrimPrefix(rel, "/")
}
