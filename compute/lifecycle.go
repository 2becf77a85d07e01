package compute

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/ec2"

	"github.com/torvik/fleetop/types"
)

// WaitForState polls the instance at a fixed interval until it reports
// the target state or timeout elapses. The target is compared as a raw
// string so any provider-defined label works.
//
// A timeout is not an error: the returned WaitResult has Reached=false
// and carries the last observed state. Only provider failures and
// context cancellation produce a non-nil error. There is no backoff or
// jitter; this is a plain fixed-interval poll.
func (m *Manager) WaitForState(ctx context.Context, instanceID, target string, interval, timeout time.Duration) (types.WaitResult, error) {
	var res types.WaitResult
	if interval <= 0 {
		return res, fmt.Errorf("wait for state: interval must be positive, got %s", interval)
	}

	for elapsed := time.Duration(0); elapsed < timeout; elapsed += interval {
		state, err := m.instanceState(ctx, instanceID)
		if err != nil {
			return res, err
		}
		res.Polls++
		res.LastState = state
		res.Elapsed = elapsed

		if state == target {
			res.Reached = true
			m.log.Info().
				Str("instance_id", instanceID).
				Str("state", target).
				Int("polls", res.Polls).
				Msg("instance reached target state")
			return res, nil
		}

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(interval):
		}
	}

	m.log.Warn().
		Str("instance_id", instanceID).
		Str("target", target).
		Str("last_state", res.LastState).
		Dur("timeout", timeout).
		Msg("timed out waiting for instance state")
	return res, nil
}

// StartInstance requests a start and waits for the instance to report
// running. Check WaitResult.Reached: a nil error only means the request
// and polling succeeded, not that the state was reached.
func (m *Manager) StartInstance(ctx context.Context, instanceID string, interval, timeout time.Duration) (types.WaitResult, error) {
	m.log.Info().Str("instance_id", instanceID).Msg("starting instance")
	_, err := m.ec2.StartInstances(ctx, &ec2.StartInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return types.WaitResult{}, fmt.Errorf("start instance %s: %w", instanceID, err)
	}
	return m.WaitForState(ctx, instanceID, types.StateRunning, interval, timeout)
}

// StopInstance requests a stop and waits for the stopped state.
func (m *Manager) StopInstance(ctx context.Context, instanceID string, interval, timeout time.Duration) (types.WaitResult, error) {
	m.log.Info().Str("instance_id", instanceID).Msg("stopping instance")
	_, err := m.ec2.StopInstances(ctx, &ec2.StopInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return types.WaitResult{}, fmt.Errorf("stop instance %s: %w", instanceID, err)
	}
	return m.WaitForState(ctx, instanceID, types.StateStopped, interval, timeout)
}

// TerminateInstance requests termination and waits for the terminated
// state.
func (m *Manager) TerminateInstance(ctx context.Context, instanceID string, interval, timeout time.Duration) (types.WaitResult, error) {
	m.log.Info().Str("instance_id", instanceID).Msg("terminating instance")
	_, err := m.ec2.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{instanceID},
	})
	if err != nil {
		return types.WaitResult{}, fmt.Errorf("terminate instance %s: %w", instanceID, err)
	}
	return m.WaitForState(ctx, instanceID, types.StateTerminated, interval, timeout)
}

func (m *Manager) instanceState(ctx context.Context, instanceID string) (string, error) {
	inst, err := m.InstanceByID(ctx, instanceID)
	if err != nil {
		return "", err
	}
	return inst.State, nil
}
