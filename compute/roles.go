package compute

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// AttachRole binds an IAM role to an instance through an instance
// profile named after the role. Three strictly sequential steps:
//
//  1. Resolve the role to its ARN. The role must already exist; this
//     never creates one.
//  2. Ensure an instance profile with the role's name exists, creating
//     it and adding the role when absent. An already-existing profile
//     is used as-is; its role binding is not verified, so a profile
//     reused across roles can produce a mismatched attachment.
//  3. Associate the profile with the instance.
//
// A failure aborts the remaining steps with no rollback: a profile
// created in step 2 is left behind if step 3 fails.
func (m *Manager) AttachRole(ctx context.Context, instanceID, roleName string) error {
	role, err := m.iam.GetRole(ctx, &iam.GetRoleInput{
		RoleName: aws.String(roleName),
	})
	if err != nil {
		return fmt.Errorf("get role %q: %w", roleName, err)
	}
	m.log.Debug().
		Str("role", roleName).
		Str("arn", aws.ToString(role.Role.Arn)).
		Msg("role resolved")

	profileName := roleName
	if err := m.ensureInstanceProfile(ctx, profileName, roleName); err != nil {
		return err
	}

	_, err = m.ec2.AssociateIamInstanceProfile(ctx, &ec2.AssociateIamInstanceProfileInput{
		IamInstanceProfile: &ec2types.IamInstanceProfileSpecification{
			Name: aws.String(profileName),
		},
		InstanceId: aws.String(instanceID),
	})
	if err != nil {
		return fmt.Errorf("associate instance profile %q with %s: %w", profileName, instanceID, err)
	}

	m.log.Info().
		Str("instance_id", instanceID).
		Str("role", roleName).
		Str("profile", profileName).
		Msg("role attached to instance")
	return nil
}

func (m *Manager) ensureInstanceProfile(ctx context.Context, profileName, roleName string) error {
	_, err := m.iam.GetInstanceProfile(ctx, &iam.GetInstanceProfileInput{
		InstanceProfileName: aws.String(profileName),
	})
	if err == nil {
		m.log.Debug().Str("profile", profileName).Msg("instance profile exists")
		return nil
	}

	var noSuchEntity *iamtypes.NoSuchEntityException
	if !errors.As(err, &noSuchEntity) {
		return fmt.Errorf("get instance profile %q: %w", profileName, err)
	}

	_, err = m.iam.CreateInstanceProfile(ctx, &iam.CreateInstanceProfileInput{
		InstanceProfileName: aws.String(profileName),
	})
	if err != nil {
		return fmt.Errorf("create instance profile %q: %w", profileName, err)
	}

	_, err = m.iam.AddRoleToInstanceProfile(ctx, &iam.AddRoleToInstanceProfileInput{
		InstanceProfileName: aws.String(profileName),
		RoleName:            aws.String(roleName),
	})
	if err != nil {
		return fmt.Errorf("add role %q to instance profile %q: %w", roleName, profileName, err)
	}

	m.log.Info().Str("profile", profileName).Str("role", roleName).Msg("instance profile created")
	return nil
}
