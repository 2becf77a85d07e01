package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/torvik/fleetop/types"
)

var (
	launchName       string
	launchImage      string
	launchType       string
	launchKeyName    string
	launchVolumeGiB  int32
	launchExistingID string
	launchReuseName  bool

	listState string
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "Manage EC2 instances",
}

var instancesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List instances",
	Example: `  fleetop instances list
  fleetop instances list --state running`,
	RunE: runInstancesList,
}

var instancesLaunchCmd = &cobra.Command{
	Use:   "launch",
	Short: "Launch an instance unless one is already known",
	Long: `Launch a tagged instance. With --reuse-name, an existing instance
carrying the same Name tag is returned instead of launching a new one.`,
	Example: `  fleetop instances launch --name web-1 --image ami-012967cc5a8c9f891
  fleetop instances launch --name web-1 --image ami-x --type t3.small --reuse-name`,
	RunE: runInstancesLaunch,
}

var instancesStartCmd = &cobra.Command{
	Use:   "start <instance-id>",
	Short: "Start an instance and wait for it to run",
	Args:  cobra.ExactArgs(1),
	RunE:  runLifecycle("start"),
}

var instancesStopCmd = &cobra.Command{
	Use:   "stop <instance-id>",
	Short: "Stop an instance and wait for it to stop",
	Args:  cobra.ExactArgs(1),
	RunE:  runLifecycle("stop"),
}

var instancesTerminateCmd = &cobra.Command{
	Use:   "terminate <instance-id>",
	Short: "Terminate an instance and wait for termination",
	Args:  cobra.ExactArgs(1),
	RunE:  runLifecycle("terminate"),
}

var instancesWaitCmd = &cobra.Command{
	Use:   "wait <instance-id> <state>",
	Short: "Wait for an instance to reach a state",
	Args:  cobra.ExactArgs(2),
	RunE:  runInstancesWait,
}

var instancesIPCmd = &cobra.Command{
	Use:   "ip <instance-id>",
	Short: "Print the public IP of an instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runInstancesIP,
}

func init() {
	rootCmd.AddCommand(instancesCmd)
	instancesCmd.AddCommand(instancesListCmd, instancesLaunchCmd, instancesStartCmd,
		instancesStopCmd, instancesTerminateCmd, instancesWaitCmd, instancesIPCmd)

	instancesListCmd.Flags().StringVar(&listState, "state", "", "only show instances in this state")

	instancesLaunchCmd.Flags().StringVar(&launchName, "name", "", "Name tag for the instance")
	instancesLaunchCmd.Flags().StringVar(&launchImage, "image", "", "AMI ID")
	instancesLaunchCmd.Flags().StringVar(&launchType, "type", "", "instance type")
	instancesLaunchCmd.Flags().StringVar(&launchKeyName, "key", "", "key pair name")
	instancesLaunchCmd.Flags().Int32Var(&launchVolumeGiB, "volume-size", 0, "root volume size in GiB")
	instancesLaunchCmd.Flags().StringVar(&launchExistingID, "existing-id", "", "known instance ID to reuse as-is")
	instancesLaunchCmd.Flags().BoolVar(&launchReuseName, "reuse-name", false, "reuse an instance with the same Name tag if one exists")
	_ = instancesLaunchCmd.MarkFlagRequired("name")
}

func runInstancesList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, _, err := newComputeManager(ctx)
	if err != nil {
		return err
	}

	var instances []types.Instance
	if listState != "" {
		instances, err = mgr.InstancesByState(ctx, listState)
	} else {
		instances, err = mgr.ListInstances(ctx)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tSTATE\tTYPE\tPUBLIC IP\tPRIVATE IP\tLAUNCHED")
	for _, inst := range instances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			orDash(inst.Name), inst.ID, inst.State, inst.Type,
			orDash(inst.PublicIP), orDash(inst.PrivateIP), formatLaunchTime(inst.LaunchTime))
	}
	return w.Flush()
}

func runInstancesLaunch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, _, err := newComputeManager(ctx)
	if err != nil {
		return err
	}

	existingID := launchExistingID
	if existingID == "" && launchReuseName {
		id, err := mgr.FindInstanceIDByName(ctx, launchName)
		switch {
		case err == nil:
			existingID = id
		case types.IsNotFound(err):
			// fall through to launch
		default:
			return err
		}
	}

	id, err := mgr.EnsureInstance(ctx, types.InstanceSpec{
		ExistingID:    existingID,
		Name:          launchName,
		ImageID:       launchImage,
		InstanceType:  launchType,
		KeyName:       launchKeyName,
		RootVolumeGiB: launchVolumeGiB,
	})
	if err != nil {
		return err
	}

	fmt.Println(id)
	return nil
}

func runLifecycle(action string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		mgr, wait, err := newComputeManager(ctx)
		if err != nil {
			return err
		}

		var res types.WaitResult
		switch action {
		case "start":
			res, err = mgr.StartInstance(ctx, args[0], wait.PollInterval, wait.Timeout)
		case "stop":
			res, err = mgr.StopInstance(ctx, args[0], wait.PollInterval, wait.Timeout)
		case "terminate":
			res, err = mgr.TerminateInstance(ctx, args[0], wait.PollInterval, wait.Timeout)
		}
		if err != nil {
			return err
		}
		return reportWait(args[0], res)
	}
}

func runInstancesWait(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, wait, err := newComputeManager(ctx)
	if err != nil {
		return err
	}

	res, err := mgr.WaitForState(ctx, args[0], args[1], wait.PollInterval, wait.Timeout)
	if err != nil {
		return err
	}
	return reportWait(args[0], res)
}

func runInstancesIP(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, _, err := newComputeManager(ctx)
	if err != nil {
		return err
	}

	ip, err := mgr.InstancePublicIP(ctx, args[0])
	if err != nil {
		return err
	}
	if ip == "" {
		return fmt.Errorf("instance %s has no public IP", args[0])
	}

	fmt.Println(ip)
	return nil
}

func reportWait(instanceID string, res types.WaitResult) error {
	if !res.Reached {
		return fmt.Errorf("instance %s did not reach target state (last observed %q after %d polls)",
			instanceID, res.LastState, res.Polls)
	}
	fmt.Printf("%s is %s\n", instanceID, res.LastState)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
