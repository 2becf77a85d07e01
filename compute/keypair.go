package compute

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// CreateKeyPair creates an EC2 key pair and writes the private key
// material to dir/<keyName>.pem with mode 0400, returning the full
// path. The write is refused when the file already exists so an
// existing key is never clobbered.
func (m *Manager) CreateKeyPair(ctx context.Context, keyName, dir string) (string, error) {
	path := filepath.Join(dir, keyName+".pem")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("create key pair %q: %s already exists", keyName, path)
	}

	output, err := m.ec2.CreateKeyPair(ctx, &ec2.CreateKeyPairInput{
		KeyName: aws.String(keyName),
	})
	if err != nil {
		return "", fmt.Errorf("create key pair %q: %w", keyName, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create key directory %s: %w", dir, err)
	}
	if err := os.WriteFile(path, []byte(aws.ToString(output.KeyMaterial)), 0o400); err != nil {
		return "", fmt.Errorf("write key material to %s: %w", path, err)
	}

	m.log.Info().Str("key", keyName).Str("path", path).Msg("key pair created")
	return path, nil
}
