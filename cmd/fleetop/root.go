package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/torvik/fleetop/awsauth"
	"github.com/torvik/fleetop/compute"
	"github.com/torvik/fleetop/config"
	"github.com/torvik/fleetop/objectstore"
)

var (
	version = "0.1.0"

	cfgFile   string
	awsRegion string

	rootCmd = &cobra.Command{
		Use:   "fleetop",
		Short: "EC2 and S3 convenience tooling",
		Long: `Fleetop wraps the EC2 and S3 control planes with idempotent
provisioning helpers: launch-or-reuse instances, find-or-create
security groups, attach IAM roles, wait for lifecycle states, and
move files and folder trees in and out of buckets.`,
		Version: version,
	}
)

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVarP(&awsRegion, "region", "r", "", "AWS region (overrides config)")
}

// loadSettings resolves the effective auth options and wait tuning from
// the config file and flags. Without a config file the CLI runs on
// ambient credentials.
func loadSettings() (awsauth.Options, config.Wait, error) {
	opts := awsauth.Options{AllowAmbient: true}
	wait := config.Wait{
		PollInterval: compute.DefaultPollInterval,
		Timeout:      compute.DefaultWaitTimeout,
	}

	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return awsauth.Options{}, config.Wait{}, err
		}
		opts = awsauth.Options{
			Region:          cfg.Region,
			AccessKeyID:     cfg.Credentials.AccessKeyID,
			SecretAccessKey: cfg.Credentials.SecretAccessKey,
			SessionToken:    cfg.Credentials.SessionToken,
			AllowAmbient:    cfg.AllowAmbient,
		}
		wait = cfg.Wait
	}

	if awsRegion != "" {
		opts.Region = awsRegion
	}
	return opts, wait, nil
}

func newComputeManager(ctx context.Context) (*compute.Manager, config.Wait, error) {
	opts, wait, err := loadSettings()
	if err != nil {
		return nil, config.Wait{}, err
	}
	mgr, err := compute.New(ctx, opts)
	if err != nil {
		return nil, config.Wait{}, err
	}
	return mgr, wait, nil
}

func newObjectStoreManager(ctx context.Context) (*objectstore.Manager, error) {
	opts, _, err := loadSettings()
	if err != nil {
		return nil, err
	}
	return objectstore.New(ctx, opts)
}

func formatLaunchTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(time.RFC3339)
}
