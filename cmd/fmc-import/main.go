// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Command fmc-import uploads a configuration backup (.sfo) to a Cisco
// Firepower Management Center and starts importing it for a set of
// devices.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
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

const defaultBackupFile = "automation_backup.sfo"

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
		fmt.Fprintf(w, "Imports a configuration backup for one or more devices.\n")
		fmt.Fprintf(w, "Backups whose file name contains \"s2s\" are imported with site-to-site VPN policies only.\n\n")
		fmt.Fprintf(w, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExample:\n")
		fmt.Fprintf(w, "  FMC_PASSWORD=... %s --fmc-url=fmc.example.com --provider=cisco-fmc --username=admin \\\n", fs.Name())
		fmt.Fprintf(w, "    --backup-file=automation_backup.sfo --device-id=cf76391c-1087-11ee-a9af-e1a3028a9c82\n")
	}
}

// deviceIDs collects device ids from repeated or comma separated flags.
type deviceIDs []string

func (d *deviceIDs) String() string { return strings.Join(*d, ",") }

func (d *deviceIDs) Set(s string) error {
	for id := range strings.SplitSeq(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			*d = append(*d, id)
		}
	}
	return nil
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("fmc-import", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)
	flags := config.RegisterFlags(fs, false)
	backupFile := fs.String("backup-file", defaultBackupFile, "Path of the backup file to import.")
	name := fs.String("name", controller.DefaultImportName, "Name of the import job.")
	var devices deviceIDs
	fs.Var(&devices, "device-id", "Id of a device to import the backup for. May be repeated or comma separated (required).")
	if code, done := cli.Parse(fs, args); done {
		return code
	}

	cfg, err := flags.Load(getenv)
	if err == nil {
		err = cfg.Validate()
	}
	if err == nil && len(devices) == 0 {
		err = errors.New("at least one device id is required")
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
	s, err := cli.Connect(ctx, &cfg)
	if err != nil {
		log.Error(err, "Failed to connect")
		pr.Failure("Authentication failed: %v", err)
		return cli.ExitFailure
	}
	defer s.Close(ctx)
	if cfg.Provider == config.ProviderOnPrem {
		pr.Success("Successfully authenticated with on-prem management center")
	}

	p, err := cli.As[provider.ImportProvider](s, "backup import")
	if err != nil {
		pr.Failure("%v", err)
		return cli.ExitFailure
	}

	r := &controller.ImportReconciler{Provider: p, Printer: pr}
	res, err := r.Reconcile(ctx, controller.ImportRequest{Path: *backupFile, Name: *name, DeviceIDs: devices})
	if err != nil {
		log.Error(err, "Failed to import backup", "file", *backupFile)
		return cli.ExitFailure
	}

	var out bytes.Buffer
	if err := json.Indent(&out, res.Raw, "", "  "); err != nil {
		out.Reset()
		out.Write(res.Raw)
	}
	fmt.Fprintf(stdout, "Response JSON:\n%s\n", out.String())
	return cli.ExitOK
}
