// Package objectstore manages S3 buckets and objects: bucket CRUD,
// single-object transfer, recursive folder transfer, and bulk delete.
// Like the compute manager it holds no local state; every read and
// write goes to the provider.
package objectstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"github.com/torvik/fleetop/awsauth"
	"github.com/torvik/fleetop/telemetry"
)

// Manager is a facade over the S3 control and data planes.
type Manager struct {
	s3     S3API
	region string
	log    zerolog.Logger
}

// New builds a Manager with a real S3 client from the given auth
// options.
func New(ctx context.Context, opts awsauth.Options) (*Manager, error) {
	cfg, err := awsauth.NewConfig(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Manager{
		s3:     s3.NewFromConfig(cfg),
		region: opts.Region,
		log:    telemetry.NewLogger("fleetop").With().Str("component", "objectstore").Logger(),
	}, nil
}

// NewWithClient builds a Manager around a caller-supplied client.
func NewWithClient(client S3API, region string, log zerolog.Logger) *Manager {
	return &Manager{
		s3:     client,
		region: region,
		log:    log,
	}
}
