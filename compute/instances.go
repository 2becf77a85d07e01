package compute

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/torvik/fleetop/types"
)

// ListInstances returns descriptors for every instance in the account.
func (m *Manager) ListInstances(ctx context.Context) ([]types.Instance, error) {
	paginator := ec2.NewDescribeInstancesPaginator(m.ec2, &ec2.DescribeInstancesInput{})

	var instances []types.Instance
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe instances: %w", err)
		}
		for _, reservation := range output.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, toInstance(inst))
			}
		}
	}

	m.log.Debug().Int("count", len(instances)).Msg("listed instances")
	return instances, nil
}

// InstancesByState filters ListInstances down to instances in the given
// state.
func (m *Manager) InstancesByState(ctx context.Context, state string) ([]types.Instance, error) {
	all, err := m.ListInstances(ctx)
	if err != nil {
		return nil, err
	}

	var matched []types.Instance
	for _, inst := range all {
		if inst.State == state {
			matched = append(matched, inst)
		}
	}
	return matched, nil
}

// InstanceByID returns the descriptor for a single instance, or
// types.ErrNotFound if no such instance exists.
func (m *Manager) InstanceByID(ctx context.Context, instanceID string) (types.Instance, error) {
	output, err := m.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return types.Instance{}, fmt.Errorf("describe instance %s: %w", instanceID, err)
	}

	for _, reservation := range output.Reservations {
		if len(reservation.Instances) > 0 {
			return toInstance(reservation.Instances[0]), nil
		}
	}
	return types.Instance{}, fmt.Errorf("instance %s: %w", instanceID, types.ErrNotFound)
}

// InstanceByName resolves a Name tag and returns the instance
// descriptor. Composition of FindInstanceIDByName and InstanceByID.
func (m *Manager) InstanceByName(ctx context.Context, name string) (types.Instance, error) {
	id, err := m.FindInstanceIDByName(ctx, name)
	if err != nil {
		return types.Instance{}, err
	}
	return m.InstanceByID(ctx, id)
}

// FindInstanceIDByName returns the ID of the first instance whose Name
// tag equals name, in whatever order the provider returns reservations.
// The order is provider-defined and not stable; when several instances
// share a name the result is effectively arbitrary. Absence is
// types.ErrNotFound.
func (m *Manager) FindInstanceIDByName(ctx context.Context, name string) (string, error) {
	output, err := m.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("tag:Name"), Values: []string{name}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("describe instances by name %q: %w", name, err)
	}

	for _, reservation := range output.Reservations {
		for _, inst := range reservation.Instances {
			return aws.ToString(inst.InstanceId), nil
		}
	}
	return "", fmt.Errorf("instance named %q: %w", name, types.ErrNotFound)
}

// EnsureInstance launches an instance unless spec.ExistingID is set, in
// which case that ID is returned untouched without any provider call.
// The caller is trusted to have supplied a valid ID; no existence check
// is made. Name-based deduplication is likewise the caller's job,
// composed from FindInstanceIDByName.
//
// A fresh launch issues exactly one RunInstances with the default root
// volume mapping (unless spec supplies mappings) and exactly one
// CreateTags for the Name tag, and returns the new instance ID.
func (m *Manager) EnsureInstance(ctx context.Context, spec types.InstanceSpec) (string, error) {
	if spec.ExistingID != "" {
		m.log.Debug().Str("instance_id", spec.ExistingID).Msg("instance already provisioned")
		return spec.ExistingID, nil
	}

	if spec.ImageID == "" {
		return "", fmt.Errorf("ensure instance %q: image ID is required", spec.Name)
	}

	input := &ec2.RunInstancesInput{
		ImageId:             aws.String(spec.ImageID),
		InstanceType:        ec2types.InstanceType(orDefault(spec.InstanceType, DefaultInstanceType)),
		MinCount:            aws.Int32(orDefaultInt32(spec.MinCount, 1)),
		MaxCount:            aws.Int32(orDefaultInt32(spec.MaxCount, 1)),
		BlockDeviceMappings: blockDeviceMappings(spec),
	}
	if spec.KeyName != "" {
		input.KeyName = aws.String(spec.KeyName)
	}

	output, err := m.ec2.RunInstances(ctx, input)
	if err != nil {
		return "", fmt.Errorf("run instance %q: %w", spec.Name, err)
	}
	if len(output.Instances) == 0 {
		return "", fmt.Errorf("run instance %q: provider returned no instances", spec.Name)
	}
	instanceID := aws.ToString(output.Instances[0].InstanceId)

	_, err = m.ec2.CreateTags(ctx, &ec2.CreateTagsInput{
		Resources: []string{instanceID},
		Tags: []ec2types.Tag{
			{Key: aws.String("Name"), Value: aws.String(spec.Name)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("tag instance %s: %w", instanceID, err)
	}

	m.log.Info().
		Str("instance_id", instanceID).
		Str("name", spec.Name).
		Str("image_id", spec.ImageID).
		Msg("instance launched")
	return instanceID, nil
}

// InstancePublicIP returns the public address of an instance, or an
// empty string when none is assigned.
func (m *Manager) InstancePublicIP(ctx context.Context, instanceID string) (string, error) {
	inst, err := m.InstanceByID(ctx, instanceID)
	if err != nil {
		return "", err
	}
	if inst.PublicIP == "" {
		m.log.Debug().Str("instance_id", instanceID).Msg("instance has no public IP")
	}
	return inst.PublicIP, nil
}

func blockDeviceMappings(spec types.InstanceSpec) []ec2types.BlockDeviceMapping {
	if len(spec.BlockDeviceMappings) > 0 {
		mappings := make([]ec2types.BlockDeviceMapping, 0, len(spec.BlockDeviceMappings))
		for _, bdm := range spec.BlockDeviceMappings {
			mappings = append(mappings, ec2types.BlockDeviceMapping{
				DeviceName: aws.String(bdm.DeviceName),
				Ebs: &ec2types.EbsBlockDevice{
					VolumeSize:          aws.Int32(bdm.VolumeSizeGiB),
					DeleteOnTermination: aws.Bool(bdm.DeleteOnTermination),
				},
			})
		}
		return mappings
	}

	return []ec2types.BlockDeviceMapping{
		{
			DeviceName: aws.String(DefaultRootDevice),
			Ebs: &ec2types.EbsBlockDevice{
				VolumeSize:          aws.Int32(orDefaultInt32(spec.RootVolumeGiB, DefaultRootVolumeGiB)),
				DeleteOnTermination: aws.Bool(!spec.KeepRootVolume),
			},
		},
	}
}

func toInstance(inst ec2types.Instance) types.Instance {
	out := types.Instance{
		ID:        aws.ToString(inst.InstanceId),
		Type:      string(inst.InstanceType),
		PublicIP:  aws.ToString(inst.PublicIpAddress),
		PrivateIP: aws.ToString(inst.PrivateIpAddress),
		Tags:      make(map[string]string, len(inst.Tags)),
	}
	if inst.State != nil {
		out.State = string(inst.State.Name)
	}
	if inst.LaunchTime != nil {
		out.LaunchTime = *inst.LaunchTime
	}
	for _, tag := range inst.Tags {
		out.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	out.Name = out.Tags["Name"]
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultInt32(v, def int32) int32 {
	if v == 0 {
		return def
	}
	return v
}
