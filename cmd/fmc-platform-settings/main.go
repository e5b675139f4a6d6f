// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Command fmc-platform-settings assigns an FTD platform settings policy to
// a device. It is meant to be run as a Terraform external data source:
// progress goes to stderr and stdout carries a single JSON object.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	// Respect container CPU quotas
	_ "go.uber.org/automaxprocs"

	"github.com/sapcc/go-api-declarations/bininfo"

	// Import all supported provider implementations.
	_ "github.com/ironcore-dev/fmc-automation/internal/provider/cisco/firepower"

	"github.com/ironcore-dev/fmc-automation/internal/cli"
	"github.com/ironcore-dev/fmc-automation/internal/config"
	"github.com/ironcore-dev/fmc-automation/internal/controller"
	"github.com/ironcore-dev/fmc-automation/internal/progress"
	"github.com/ironcore-dev/fmc-automation/internal/provider"
)

func main() {
	// if called with `--version`, report version and exit
	bininfo.HandleVersionArgument()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Getenv, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func usage(fs *flag.FlagSet) func() {
	return func() {
		w := fs.Output()
		fmt.Fprintf(w, "Usage: %s [flags]\n\n", fs.Name())
		fmt.Fprintf(w, "Assigns the platform settings policy with the given name to a device and\n")
		fmt.Fprintf(w, "prints {\"platform_policy_id\":\"<id>\"} to stdout.\n\n")
		fmt.Fprintf(w, "Flags:\n")
		fs.PrintDefaults()
	}
}

// output is the document read by the Terraform external data source. Its
// values must be strings.
type output struct {
	PlatformPolicyID string `json:"platform_policy_id"`
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fmc-platform-settings", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)
	flags := config.RegisterFlags(fs, false)
	policyName := fs.String("platform-policy-name", "", "Name of the platform settings policy to assign (required).")
	deviceID := fs.String("device-id", "", "Id of the device to assign the policy to (required).")
	if code, done := cli.Parse(fs, args); done {
		return code
	}

	cfg, err := flags.Load(getenv)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.ExitFailure
	}
	ctx, log, err := cli.Logger(ctx, cfg.LogLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.ExitFailure
	}

	pr := progress.New(stderr)
	s, err := cli.Connect(ctx, &cfg)
	if err != nil {
		log.Error(err, "Failed to connect")
		pr.Failure("Authentication failed: %v", err)
		return cli.ExitFailure
	}
	defer s.Close(ctx)

	p, err := cli.As[provider.PlatformSettingsProvider](s, "platform settings")
	if err != nil {
		pr.Failure("%v", err)
		return cli.ExitFailure
	}

	r := &controller.PlatformSettingsReconciler{Provider: p, Printer: pr}
	policy, err := r.Reconcile(ctx, controller.PlatformSettingsRequest{PolicyName: *policyName, DeviceID: *deviceID})
	if err != nil {
		log.Error(err, "Failed to assign platform settings policy")
		return cli.ExitFailure
	}

	if err := json.NewEncoder(stdout).Encode(output{PlatformPolicyID: policy.ID}); err != nil {
		log.Error(err, "Failed to write output")
		return cli.ExitFailure
	}
	return cli.ExitOK
}
