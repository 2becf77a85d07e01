package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Manage S3 buckets",
}

var bucketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List buckets",
	RunE:  runBucketsList,
}

var bucketsCreateCmd = &cobra.Command{
	Use:   "create <bucket>",
	Short: "Create a bucket if it does not exist",
	Args:  cobra.ExactArgs(1),
	RunE:  runBucketsCreate,
}

var bucketsDeleteCmd = &cobra.Command{
	Use:   "delete <bucket>",
	Short: "Delete an empty bucket",
	Args:  cobra.ExactArgs(1),
	RunE:  runBucketsDelete,
}

var bucketsEmptyCmd = &cobra.Command{
	Use:   "empty <bucket>",
	Short: "Delete every object in a bucket",
	Args:  cobra.ExactArgs(1),
	RunE:  runBucketsEmpty,
}

func init() {
	rootCmd.AddCommand(bucketsCmd)
	bucketsCmd.AddCommand(bucketsListCmd, bucketsCreateCmd, bucketsDeleteCmd, bucketsEmptyCmd)
}

func runBucketsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, err := newObjectStoreManager(ctx)
	if err != nil {
		return err
	}

	names, err := mgr.ListBuckets(ctx)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func runBucketsCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, err := newObjectStoreManager(ctx)
	if err != nil {
		return err
	}
	return mgr.EnsureBucket(ctx, args[0])
}

func runBucketsDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, err := newObjectStoreManager(ctx)
	if err != nil {
		return err
	}
	return mgr.DeleteBucket(ctx, args[0])
}

func runBucketsEmpty(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, err := newObjectStoreManager(ctx)
	if err != nil {
		return err
	}

	deleted, err := mgr.EmptyBucket(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("deleted %d objects from %s\n", deleted, args[0])
	return nil
}
