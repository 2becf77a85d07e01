// Package types holds the domain types shared by the compute and
// object-store managers. It has no AWS SDK dependency so callers and
// tests can construct values freely.
package types

import "time"

// Instance lifecycle states as reported by the provider. WaitForState
// compares raw strings, so any provider-defined label works as a target;
// these constants cover the conventional set.
const (
	StatePending      = "pending"
	StateRunning      = "running"
	StateStopping     = "stopping"
	StateStopped      = "stopped"
	StateShuttingDown = "shutting-down"
	StateTerminated   = "terminated"
)

// Instance describes a provisioned compute instance. Identity is the
// provider-assigned ID; Name is the mutable Name tag and may be empty
// or shared by several instances.
type Instance struct {
	ID         string
	Name       string
	State      string
	Type       string
	PublicIP   string
	PrivateIP  string
	LaunchTime time.Time
	Tags       map[string]string
}

// BlockDeviceMapping describes one EBS root or data volume attachment
// for a launch request.
type BlockDeviceMapping struct {
	DeviceName          string
	VolumeSizeGiB       int32
	DeleteOnTermination bool
}

// InstanceSpec is the input to EnsureInstance. A non-empty ExistingID
// short-circuits provisioning entirely: the ID is returned as-is and
// the caller is trusted to have supplied a valid, still-existing
// instance.
type InstanceSpec struct {
	ExistingID   string
	Name         string
	ImageID      string
	InstanceType string
	KeyName      string

	// BlockDeviceMappings overrides the default root volume mapping
	// when non-empty.
	BlockDeviceMappings []BlockDeviceMapping

	// RootVolumeGiB sizes the default root volume. Zero means the
	// package default.
	RootVolumeGiB int32

	// KeepRootVolume preserves the root volume after termination.
	KeepRootVolume bool

	MinCount int32
	MaxCount int32
}

// IngressRule is a single security group ingress permission.
type IngressRule struct {
	Protocol string
	Port     int32
	CIDR     string
}
