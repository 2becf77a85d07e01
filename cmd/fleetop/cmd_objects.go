package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var objectsCmd = &cobra.Command{
	Use:   "objects",
	Short: "Move objects in and out of buckets",
}

var objectsPutCmd = &cobra.Command{
	Use:   "put <bucket> <key> <local-file>",
	Short: "Upload a file",
	Args:  cobra.ExactArgs(3),
	RunE:  runObjectsPut,
}

var objectsGetCmd = &cobra.Command{
	Use:   "get <bucket> <key> <local-file>",
	Short: "Download an object",
	Args:  cobra.ExactArgs(3),
	RunE:  runObjectsGet,
}

var objectsLsCmd = &cobra.Command{
	Use:   "ls <bucket> [prefix]",
	Short: "List object keys under a prefix",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runObjectsLs,
}

var objectsSyncUpCmd = &cobra.Command{
	Use:   "sync-up <local-dir> <bucket> [prefix]",
	Short: "Upload a directory tree under a prefix",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runObjectsSyncUp,
}

var objectsSyncDownCmd = &cobra.Command{
	Use:   "sync-down <bucket> <prefix> <local-dir>",
	Short: "Mirror a prefix into a local directory",
	Args:  cobra.ExactArgs(3),
	RunE:  runObjectsSyncDown,
}

func init() {
	rootCmd.AddCommand(objectsCmd)
	objectsCmd.AddCommand(objectsPutCmd, objectsGetCmd, objectsLsCmd,
		objectsSyncUpCmd, objectsSyncDownCmd)
}

func runObjectsPut(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, err := newObjectStoreManager(ctx)
	if err != nil {
		return err
	}
	return mgr.UploadFile(ctx, args[0], args[1], args[2])
}

func runObjectsGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, err := newObjectStoreManager(ctx)
	if err != nil {
		return err
	}
	return mgr.DownloadFile(ctx, args[0], args[1], args[2])
}

func runObjectsLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, err := newObjectStoreManager(ctx)
	if err != nil {
		return err
	}

	prefix := ""
	if len(args) > 1 {
		prefix = args[1]
	}

	keys, err := mgr.ListObjects(ctx, args[0], prefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		fmt.Println(key)
	}
	return nil
}

func runObjectsSyncUp(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, err := newObjectStoreManager(ctx)
	if err != nil {
		return err
	}

	prefix := ""
	if len(args) > 2 {
		prefix = args[2]
	}
	return mgr.UploadFolder(ctx, args[1], prefix, args[0])
}

func runObjectsSyncDown(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mgr, err := newObjectStoreManager(ctx)
	if err != nil {
		return err
	}
	return mgr.DownloadFolder(ctx, args[0], args[1], args[2])
}
