package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var keypairDir string

var roleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage IAM role attachment",
}

var roleAttachCmd = &cobra.Command{
	Use:   "attach <instance-id> <role-name>",
	Short: "Attach an IAM role to an instance via an instance profile",
	Args:  cobra.ExactArgs(2),
	RunE:  runRoleAttach,
}

var keypairCmd = &cobra.Command{
	Use:   "keypair",
	Short: "Manage key pairs",
}

var keypairCreateCmd = &cobra.Command{
	Use:   "create <key-name>",
	Short: "Create a key pair and save the private key",
	Args:  cobra.ExactArgs(1),
	RunE:  runKeypairCreate,
}

func init() {
	rootCmd.AddCommand(roleCmd, keypairCmd)
	roleCmd.AddCommand(roleAttachCmd)
	keypairCmd.AddCommand(keypairCreateCmd)

	keypairCreateCmd.Flags().StringVar(&keypairDir, "dir", ".", "directory for the .pem file")
}

func runRoleAttach(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, _, err := newComputeManager(ctx)
	if err != nil {
		return err
	}
	return mgr.AttachRole(ctx, args[0], args[1])
}

func runKeypairCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, _, err := newComputeManager(ctx)
	if err != nil {
		return err
	}

	path, err := mgr.CreateKeyPair(ctx, args[0], keypairDir)
	if err != nil {
		return err
	}

	fmt.Println(path)
	return nil
}
