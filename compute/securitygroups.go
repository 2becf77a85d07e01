package compute

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/torvik/fleetop/types"
)

const securityGroupDescription = "Managed by fleetop"

// Error code EC2 returns when an identical ingress rule already exists.
const errCodeDuplicatePermission = "InvalidPermission.Duplicate"

// EnsureSecurityGroup returns the ID of the security group named name,
// creating it when absent.
//
// This is check-then-act against the provider with no client-side
// locking: two concurrent callers for the same unseen name can both
// observe absence and both create, and the provider's duplicate-name
// rejection of the loser propagates as an error. Serialize per group
// name externally when concurrent provisioning is possible.
func (m *Manager) EnsureSecurityGroup(ctx context.Context, name string) (string, error) {
	output, err := m.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("group-name"), Values: []string{name}},
		},
	})
	if err != nil {
		return "", fmt.Errorf("describe security group %q: %w", name, err)
	}

	if len(output.SecurityGroups) > 0 {
		groupID := aws.ToString(output.SecurityGroups[0].GroupId)
		m.log.Debug().Str("group", name).Str("group_id", groupID).Msg("security group exists")
		return groupID, nil
	}

	created, err := m.ec2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(securityGroupDescription),
	})
	if err != nil {
		return "", fmt.Errorf("create security group %q: %w", name, err)
	}

	groupID := aws.ToString(created.GroupId)
	m.log.Info().Str("group", name).Str("group_id", groupID).Msg("security group created")
	return groupID, nil
}

// AuthorizeIngress adds an ingress rule to a security group. Rule
// addition is set union: a provider report that the identical rule
// already exists counts as success, so the call is idempotent. Any
// other provider failure returns (false, err).
func (m *Manager) AuthorizeIngress(ctx context.Context, groupID string, rule types.IngressRule) (bool, error) {
	_, err := m.ec2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
		GroupId: aws.String(groupID),
		IpPermissions: []ec2types.IpPermission{
			{
				IpProtocol: aws.String(rule.Protocol),
				FromPort:   aws.Int32(rule.Port),
				ToPort:     aws.Int32(rule.Port),
				IpRanges:   []ec2types.IpRange{{CidrIp: aws.String(rule.CIDR)}},
			},
		},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == errCodeDuplicatePermission {
			m.log.Debug().
				Str("group_id", groupID).
				Str("protocol", rule.Protocol).
				Int32("port", rule.Port).
				Str("cidr", rule.CIDR).
				Msg("ingress rule already present")
			return true, nil
		}
		return false, fmt.Errorf("authorize ingress on %s: %w", groupID, err)
	}

	m.log.Info().
		Str("group_id", groupID).
		Str("protocol", rule.Protocol).
		Int32("port", rule.Port).
		Str("cidr", rule.CIDR).
		Msg("ingress rule added")
	return true, nil
}

// ReplaceInstanceSecurityGroups overwrites the security group set
// attached to an instance.
func (m *Manager) ReplaceInstanceSecurityGroups(ctx context.Context, instanceID string, groupIDs []string) error {
	_, err := m.ec2.ModifyInstanceAttribute(ctx, &ec2.ModifyInstanceAttributeInput{
		InstanceId: aws.String(instanceID),
		Groups:     groupIDs,
	})
	if err != nil {
		return fmt.Errorf("modify security groups of %s: %w", instanceID, err)
	}

	m.log.Info().
		Str("instance_id", instanceID).
		Strs("group_ids", groupIDs).
		Msg("instance security groups replaced")
	return nil
}
