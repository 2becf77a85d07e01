// Package compute manages EC2 instances and their associated security
// groups and IAM role attachments. Every operation forwards to the
// provider; nothing is cached or persisted locally, so repeated
// invocations converge on provider state rather than local state.
//
// The manager performs no client-side locking. Find-or-create
// operations (EnsureSecurityGroup, bucket-style existence checks) are
// check-then-act against a remote service and can race with concurrent
// callers; serialize per resource name externally if that matters.
package compute

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/rs/zerolog"

	"github.com/torvik/fleetop/awsauth"
	"github.com/torvik/fleetop/telemetry"
)

// Defaults applied by EnsureInstance and the lifecycle waiters.
const (
	DefaultInstanceType  = "t2.micro"
	DefaultRootDevice    = "/dev/xvda"
	DefaultRootVolumeGiB = 120

	DefaultPollInterval = 5 * time.Second
	DefaultWaitTimeout  = 5 * time.Minute
)

// Manager is a facade over the EC2 and IAM control planes.
type Manager struct {
	ec2    EC2API
	iam    IAMAPI
	region string
	log    zerolog.Logger
}

// New builds a Manager with real AWS clients from the given auth
// options.
func New(ctx context.Context, opts awsauth.Options) (*Manager, error) {
	cfg, err := awsauth.NewConfig(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &Manager{
		ec2:    ec2.NewFromConfig(cfg),
		iam:    iam.NewFromConfig(cfg),
		region: opts.Region,
		log:    telemetry.NewLogger("fleetop").With().Str("component", "compute").Logger(),
	}, nil
}

// NewWithClients builds a Manager around caller-supplied clients.
func NewWithClients(ec2Client EC2API, iamClient IAMAPI, region string, log zerolog.Logger) *Manager {
	return &Manager{
		ec2:    ec2Client,
		iam:    iamClient,
		region: region,
		log:    log,
	}
}

// Region returns the region the manager was configured for.
func (m *Manager) Region() string {
	return m.region
}
