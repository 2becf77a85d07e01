// Package awsauth builds AWS SDK configuration from explicit options.
// Ambient credential resolution (environment, shared config, IMDS) is
// opt-in so that no manager picks up process-wide state by accident.
package awsauth

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// ErrNoCredentials is returned when no static key pair was supplied and
// ambient resolution was not enabled.
var ErrNoCredentials = errors.New("awsauth: no credentials supplied and ambient resolution not enabled")

// Options selects region and credentials for a manager.
type Options struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string

	// AllowAmbient permits falling back to the SDK's default credential
	// chain when no static key pair is set.
	AllowAmbient bool
}

// NewConfig resolves Options into an aws.Config. A static key pair wins
// over ambient resolution when both are available.
func NewConfig(ctx context.Context, opts Options) (aws.Config, error) {
	switch {
	case opts.AccessKeyID != "" && opts.SecretAccessKey != "":
		return config.LoadDefaultConfig(ctx,
			config.WithRegion(opts.Region),
			config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken),
			),
		)
	case opts.AllowAmbient:
		return config.LoadDefaultConfig(ctx, config.WithRegion(opts.Region))
	default:
		return aws.Config{}, ErrNoCredentials
	}
}
