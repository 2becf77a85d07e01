package compute

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// MockEC2Client is an in-memory EC2 control plane for tests. It records
// mutating calls so tests can assert exact call counts.
type MockEC2Client struct {
	instances []ec2types.Instance

	// stateSequence, when set, overrides the state reported for
	// DescribeInstances-by-ID: each call returns the next entry and the
	// last entry repeats.
	stateSequence []string
	stateCalls    int

	describeErr error

	runOutputID string
	runErr      error
	runCalls    []*ec2.RunInstancesInput
	tagCalls    []*ec2.CreateTagsInput

	startCalls     []string
	stopCalls      []string
	terminateCalls []string

	groups           map[string]string
	createGroupCalls []*ec2.CreateSecurityGroupInput
	nextGroupID      string

	authorizeErr   error
	authorizeCalls []*ec2.AuthorizeSecurityGroupIngressInput

	modifyCalls    []*ec2.ModifyInstanceAttributeInput
	associateCalls []*ec2.AssociateIamInstanceProfileInput

	keyMaterial     string
	createKeyErr    error
	createdKeyNames []string
}

func (m *MockEC2Client) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if m.describeErr != nil {
		return nil, m.describeErr
	}

	if len(params.InstanceIds) > 0 {
		var matched []ec2types.Instance
		for _, inst := range m.instances {
			for _, id := range params.InstanceIds {
				if aws.ToString(inst.InstanceId) == id {
					matched = append(matched, m.withSequencedState(inst))
				}
			}
		}
		return wrapReservation(matched), nil
	}

	for _, f := range params.Filters {
		if aws.ToString(f.Name) != "tag:Name" {
			continue
		}
		var matched []ec2types.Instance
		for _, inst := range m.instances {
			for _, tag := range inst.Tags {
				if aws.ToString(tag.Key) != "Name" {
					continue
				}
				for _, want := range f.Values {
					if aws.ToString(tag.Value) == want {
						matched = append(matched, inst)
					}
				}
			}
		}
		return wrapReservation(matched), nil
	}

	return wrapReservation(m.instances), nil
}

func (m *MockEC2Client) withSequencedState(inst ec2types.Instance) ec2types.Instance {
	if len(m.stateSequence) == 0 {
		return inst
	}
	idx := m.stateCalls
	if idx >= len(m.stateSequence) {
		idx = len(m.stateSequence) - 1
	}
	m.stateCalls++
	inst.State = &ec2types.InstanceState{
		Name: ec2types.InstanceStateName(m.stateSequence[idx]),
	}
	return inst
}

func wrapReservation(instances []ec2types.Instance) *ec2.DescribeInstancesOutput {
	out := &ec2.DescribeInstancesOutput{}
	if len(instances) > 0 {
		out.Reservations = []ec2types.Reservation{{Instances: instances}}
	}
	return out
}

func (m *MockEC2Client) RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	m.runCalls = append(m.runCalls, params)
	if m.runErr != nil {
		return nil, m.runErr
	}

	inst := ec2types.Instance{
		InstanceId:   aws.String(m.runOutputID),
		InstanceType: params.InstanceType,
		State:        &ec2types.InstanceState{Name: ec2types.InstanceStateNamePending},
	}
	m.instances = append(m.instances, inst)
	return &ec2.RunInstancesOutput{Instances: []ec2types.Instance{inst}}, nil
}

func (m *MockEC2Client) CreateTags(ctx context.Context, params *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	m.tagCalls = append(m.tagCalls, params)
	for i, inst := range m.instances {
		for _, id := range params.Resources {
			if aws.ToString(inst.InstanceId) == id {
				m.instances[i].Tags = append(m.instances[i].Tags, params.Tags...)
			}
		}
	}
	return &ec2.CreateTagsOutput{}, nil
}

func (m *MockEC2Client) StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error) {
	m.startCalls = append(m.startCalls, params.InstanceIds...)
	m.setStates(params.InstanceIds, ec2types.InstanceStateNameRunning)
	return &ec2.StartInstancesOutput{}, nil
}

func (m *MockEC2Client) StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error) {
	m.stopCalls = append(m.stopCalls, params.InstanceIds...)
	m.setStates(params.InstanceIds, ec2types.InstanceStateNameStopped)
	return &ec2.StopInstancesOutput{}, nil
}

func (m *MockEC2Client) TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error) {
	m.terminateCalls = append(m.terminateCalls, params.InstanceIds...)
	m.setStates(params.InstanceIds, ec2types.InstanceStateNameTerminated)
	return &ec2.TerminateInstancesOutput{}, nil
}

func (m *MockEC2Client) setStates(ids []string, state ec2types.InstanceStateName) {
	for i, inst := range m.instances {
		for _, id := range ids {
			if aws.ToString(inst.InstanceId) == id {
				m.instances[i].State = &ec2types.InstanceState{Name: state}
			}
		}
	}
}

func (m *MockEC2Client) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	out := &ec2.DescribeSecurityGroupsOutput{}
	for _, f := range params.Filters {
		if aws.ToString(f.Name) != "group-name" {
			continue
		}
		for _, name := range f.Values {
			if id, ok := m.groups[name]; ok {
				out.SecurityGroups = append(out.SecurityGroups, ec2types.SecurityGroup{
					GroupId:   aws.String(id),
					GroupName: aws.String(name),
				})
			}
		}
	}
	return out, nil
}

func (m *MockEC2Client) CreateSecurityGroup(ctx context.Context, params *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	m.createGroupCalls = append(m.createGroupCalls, params)
	if m.groups == nil {
		m.groups = make(map[string]string)
	}
	m.groups[aws.ToString(params.GroupName)] = m.nextGroupID
	return &ec2.CreateSecurityGroupOutput{GroupId: aws.String(m.nextGroupID)}, nil
}

func (m *MockEC2Client) AuthorizeSecurityGroupIngress(ctx context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	m.authorizeCalls = append(m.authorizeCalls, params)
	if m.authorizeErr != nil {
		return nil, m.authorizeErr
	}
	return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
}

func (m *MockEC2Client) ModifyInstanceAttribute(ctx context.Context, params *ec2.ModifyInstanceAttributeInput, optFns ...func(*ec2.Options)) (*ec2.ModifyInstanceAttributeOutput, error) {
	m.modifyCalls = append(m.modifyCalls, params)
	return &ec2.ModifyInstanceAttributeOutput{}, nil
}

func (m *MockEC2Client) AssociateIamInstanceProfile(ctx context.Context, params *ec2.AssociateIamInstanceProfileInput, optFns ...func(*ec2.Options)) (*ec2.AssociateIamInstanceProfileOutput, error) {
	m.associateCalls = append(m.associateCalls, params)
	return &ec2.AssociateIamInstanceProfileOutput{}, nil
}

func (m *MockEC2Client) CreateKeyPair(ctx context.Context, params *ec2.CreateKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.CreateKeyPairOutput, error) {
	if m.createKeyErr != nil {
		return nil, m.createKeyErr
	}
	m.createdKeyNames = append(m.createdKeyNames, aws.ToString(params.KeyName))
	return &ec2.CreateKeyPairOutput{
		KeyName:     params.KeyName,
		KeyMaterial: aws.String(m.keyMaterial),
	}, nil
}

// MockIAMClient covers the role and instance profile lookups used by
// AttachRole.
type MockIAMClient struct {
	roleErr       error
	profileExists bool
	getProfileErr error

	createProfileCalls []string
	addRoleCalls       []string
}

func (m *MockIAMClient) GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error) {
	if m.roleErr != nil {
		return nil, m.roleErr
	}
	name := aws.ToString(params.RoleName)
	return &iam.GetRoleOutput{
		Role: &iamtypes.Role{
			RoleName: params.RoleName,
			Arn:      aws.String(fmt.Sprintf("arn:aws:iam::123456789012:role/%s", name)),
		},
	}, nil
}

func (m *MockIAMClient) GetInstanceProfile(ctx context.Context, params *iam.GetInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.GetInstanceProfileOutput, error) {
	if m.getProfileErr != nil {
		return nil, m.getProfileErr
	}
	if !m.profileExists {
		return nil, &iamtypes.NoSuchEntityException{Message: aws.String("profile not found")}
	}
	return &iam.GetInstanceProfileOutput{
		InstanceProfile: &iamtypes.InstanceProfile{InstanceProfileName: params.InstanceProfileName},
	}, nil
}

func (m *MockIAMClient) CreateInstanceProfile(ctx context.Context, params *iam.CreateInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.CreateInstanceProfileOutput, error) {
	m.createProfileCalls = append(m.createProfileCalls, aws.ToString(params.InstanceProfileName))
	m.profileExists = true
	return &iam.CreateInstanceProfileOutput{
		InstanceProfile: &iamtypes.InstanceProfile{InstanceProfileName: params.InstanceProfileName},
	}, nil
}

func (m *MockIAMClient) AddRoleToInstanceProfile(ctx context.Context, params *iam.AddRoleToInstanceProfileInput, optFns ...func(*iam.Options)) (*iam.AddRoleToInstanceProfileOutput, error) {
	m.addRoleCalls = append(m.addRoleCalls, aws.ToString(params.RoleName))
	return &iam.AddRoleToInstanceProfileOutput{}, nil
}
