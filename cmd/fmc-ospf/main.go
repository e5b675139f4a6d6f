// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Command fmc-ospf reconciles the OSPF configuration of a device managed
// by a Cisco Firepower Management Center.
package main

import (
	"context"
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
		fmt.Fprintf(w, "Replaces the OSPF configuration of a device with a single area 0 process.\n\n")
		fmt.Fprintf(w, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExample:\n")
		fmt.Fprintf(w, "  %s --fmc-url=https://tenant.app.eu.cdo.cisco.com --api-key=\"$TOKEN\" \\\n", fs.Name())
		fmt.Fprintf(w, "    --device-id=dev-1 --network-ids='{\"attacker_id\":\"net-a\",\"dmz_id\":\"net-d\"}'\n")
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fmc-ospf", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)
	flags := config.RegisterFlags(fs, true)
	if code, done := cli.Parse(fs, args); done {
		return code
	}

	cfg, err := flags.Load(getenv)
	if err == nil {
		err = cfg.ValidateOSPF()
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

	pr := progress.New(stdout)
	pr.Title("OSPF configuration for device %s", cfg.DeviceID)
	pr.Detail("Management center: %s", cfg.URL)
	if cfg.Provider == config.ProviderCloudDelivered {
		pr.Detail("API key: %s", cfg.MaskedAPIKey())
	} else {
		pr.Detail("Username: %s", cfg.Username)
	}

	s, err := cli.Connect(ctx, &cfg)
	if err != nil {
		log.Error(err, "Failed to connect")
		pr.Failure("Failed to connect to management center: %v", err)
		return cli.ExitFailure
	}
	defer s.Close(ctx)

	p, err := cli.As[provider.OSPFProvider](s, "OSPF")
	if err != nil {
		pr.Failure("%v", err)
		return cli.ExitFailure
	}

	r := controller.NewOSPFReconciler(p, &cfg, pr)
	report, err := r.Reconcile(ctx, controller.OSPFRequest{DeviceID: cfg.DeviceID, NetworkIDs: cfg.NetworkIDs})
	for _, w := range report.Warnings {
		pr.Warning("%s", w)
	}
	if err != nil {
		log.Error(err, "Failed to reconcile OSPF configuration", "device", cfg.DeviceID)
		pr.Failure("OSPF configuration failed: %v", err)
		return cli.ExitFailure
	}
	pr.Done("OSPF configuration completed: %s", report.Summary())
	return cli.ExitOK
}
