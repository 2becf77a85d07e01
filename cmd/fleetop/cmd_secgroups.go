package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/torvik/fleetop/types"
)

var (
	ingressProtocol string
	ingressPort     int32
	ingressCIDR     string
)

var sgCmd = &cobra.Command{
	Use:   "sg",
	Short: "Manage security groups",
}

var sgEnsureCmd = &cobra.Command{
	Use:   "ensure <name>",
	Short: "Find or create a security group by name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSGEnsure,
}

var sgAuthorizeCmd = &cobra.Command{
	Use:   "authorize <group-id>",
	Short: "Add an ingress rule (idempotent)",
	Example: `  fleetop sg authorize sg-0123 --protocol tcp --port 22 --cidr 0.0.0.0/0
  fleetop sg authorize sg-0123 --protocol tcp --port 443 --cidr 10.0.0.0/8`,
	Args: cobra.ExactArgs(1),
	RunE: runSGAuthorize,
}

var sgReplaceCmd = &cobra.Command{
	Use:   "replace <instance-id> <group-id>...",
	Short: "Replace the security groups attached to an instance",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSGReplace,
}

func init() {
	rootCmd.AddCommand(sgCmd)
	sgCmd.AddCommand(sgEnsureCmd, sgAuthorizeCmd, sgReplaceCmd)

	sgAuthorizeCmd.Flags().StringVar(&ingressProtocol, "protocol", "tcp", "IP protocol")
	sgAuthorizeCmd.Flags().Int32Var(&ingressPort, "port", 0, "port to open")
	sgAuthorizeCmd.Flags().StringVar(&ingressCIDR, "cidr", "", "source CIDR range")
	_ = sgAuthorizeCmd.MarkFlagRequired("port")
	_ = sgAuthorizeCmd.MarkFlagRequired("cidr")
}

func runSGEnsure(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, _, err := newComputeManager(ctx)
	if err != nil {
		return err
	}

	groupID, err := mgr.EnsureSecurityGroup(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Println(groupID)
	return nil
}

func runSGAuthorize(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, _, err := newComputeManager(ctx)
	if err != nil {
		return err
	}

	ok, err := mgr.AuthorizeIngress(ctx, args[0], types.IngressRule{
		Protocol: ingressProtocol,
		Port:     ingressPort,
		CIDR:     ingressCIDR,
	})
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("ingress rule was not applied to %s", args[0])
	}
	return nil
}

func runSGReplace(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, _, err := newComputeManager(ctx)
	if err != nil {
		return err
	}
	return mgr.ReplaceInstanceSecurityGroups(ctx, args[0], args[1:])
}
