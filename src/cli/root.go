// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/H0llyW00dzZ/root-remediator/src/config"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/app"
	"github.com/H0llyW00dzZ/root-remediator/src/internal/helper/posix"
	"github.com/H0llyW00dzZ/root-remediator/src/logger"
)

// ErrRemediationFailed is returned by "run --strict" when the run failed.
var ErrRemediationFailed = errors.New("remediation failed")

// options are the flags shared by every subcommand.
type options struct {
	configPath string
	debug      bool
	mode       string
	platform   string

	// env is built by the persistent pre-run from the loaded configuration.
	env *app.Env
}

// New builds the root command. Output goes to out; logs go to stderr.
func New(version string, out io.Writer) *cobra.Command {
	opts := &options{}
	exe := posix.ExecutableName()

	rootCmd := &cobra.Command{
		Use:     exe,
		Short:   "Distrust or remove the Superfish root CA",
		Version: version,
		Long: `root-remediator neutralizes the "Superfish, Inc." root certificate that the
VisualDiscovery adware installed on some Windows machines. It either marks the
root explicitly untrusted or deletes every copy from the trust store, and then
tears down cached TLS session material.`,
		Example: fmt.Sprintf(`  %[1]s run
  %[1]s --mode remove run --json
  %[1]s --config dry-run.yaml --platform windows scan
  %[1]s fingerprint root.pem`, exe),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.env == nil {
				return nil
			}
			return opts.env.Close()
		},
	}
	rootCmd.SetOut(out)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "configuration file (JSON or YAML, default: $"+config.EnvConfigFile+")")
	pf.BoolVar(&opts.debug, "debug", false, "write log lines to stderr")
	pf.StringVar(&opts.mode, "mode", "", `remediation mode, "distrust" or "remove" (overrides config)`)
	pf.StringVar(&opts.platform, "platform", "", "pretend to run on this OS, for dry runs with a static registry")

	rootCmd.AddCommand(
		newRunCmd(opts),
		newCheckCmd(opts),
		newScanCmd(opts),
		newFingerprintCmd(),
		newMCPCmd(opts, version),
	)
	return rootCmd
}

// Execute runs the root command with the process arguments.
func Execute(ctx context.Context, version string) error {
	return New(version, os.Stdout).ExecuteContext(ctx)
}

func (o *options) setup(cmd *cobra.Command) error {
	// fingerprint works on files alone.
	if cmd.Name() == "fingerprint" {
		return nil
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.debug {
		cfg.Debug = true
	}
	if o.mode != "" {
		cfg.Mode = o.mode
	}
	if o.platform != "" {
		cfg.Platform = o.platform
	}

	var log logger.Logger
	if cmd.Name() == "mcp" {
		// stdout carries the protocol.
		log = logger.NewMCPLogger(os.Stderr, !cfg.Debug)
	} else {
		log = logger.NewCLILogger(logger.DefaultPrefix, cfg.Debug)
	}

	env, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	o.env = env
	return nil
}
