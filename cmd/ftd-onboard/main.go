// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Command ftd-onboard registers a Firepower Threat Defense device with its
// management center by running the generated "configure manager add"
// command on the device over SSH.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Respect container CPU quotas
	_ "go.uber.org/automaxprocs"

	"github.com/sapcc/go-api-declarations/bininfo"

	"github.com/ironcore-dev/fmc-automation/internal/cli"
	"github.com/ironcore-dev/fmc-automation/internal/ftd"
)

const (
	envUsername = "FTD_USERNAME"
	envPassword = "FTD_PASSWORD" // #nosec G101
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
		fmt.Fprintf(w, "Runs the command generated by the management center on a device.\n\n")
		fmt.Fprintf(w, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExample:\n")
		fmt.Fprintf(w, "  %s --host=10.0.0.10 --username=admin --password-file=... \\\n", fs.Name())
		fmt.Fprintf(w, "    --gen-command='configure manager add fmc.example.com key nat-id'\n")
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ftd-onboard", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = usage(fs)
	var opts ftd.Options
	var passwordFile, command, logLevel string
	fs.StringVar(&opts.Host, "host", "", "Address of the device, optionally with a port (required).")
	fs.StringVar(&opts.Username, "username", "", "Username on the device. Defaults to $"+envUsername+".")
	fs.StringVar(&opts.Password, "password", "", "Password on the device. Defaults to $"+envPassword+".")
	fs.StringVar(&passwordFile, "password-file", "", "Path to a file containing the password.")
	fs.StringVar(&command, "gen-command", "", "Command generated by the management center (required).")
	fs.StringVar(&opts.KnownHostsPath, "known-hosts", "", "Path of the known_hosts file. Defaults to ~/.ssh/known_hosts.")
	fs.BoolVar(&opts.InsecureSkipHostKeyCheck, "insecure-skip-host-key-check", false, "Accept any host key.")
	fs.DurationVar(&opts.Timeout, "timeout", ftd.DefaultTimeout, "Timeout for connecting and for the command to complete.")
	fs.StringVar(&logLevel, "log-level", "info", "Log level, one of [debug, info, warn, error].")
	if code, done := cli.Parse(fs, args); done {
		return code
	}

	if opts.Username == "" {
		opts.Username = getenv(envUsername)
	}
	if opts.Password == "" {
		opts.Password = getenv(envPassword)
	}
	var err error
	if passwordFile != "" {
		var b []byte
		b, err = os.ReadFile(passwordFile)
		opts.Password = string(trimNewline(b))
	}
	if err == nil && command == "" {
		err = errors.New("a command is required")
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.ExitFailure
	}
	ctx, log, err := cli.Logger(ctx, logLevel, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return cli.ExitFailure
	}

	start := time.Now()
	c, err := ftd.Dial(ctx, opts)
	if err != nil {
		log.Error(err, "Failed to connect", "host", opts.Host)
		return cli.ExitFailure
	}
	defer func() {
		if err := c.Close(); err != nil {
			log.V(1).Info("Failed to close connection", "error", err.Error())
		}
	}()

	out, err := c.SendCommand(ctx, command)
	if out != "" {
		fmt.Fprintln(stdout, out)
	}
	if err != nil {
		log.Error(err, "Failed to run command", "host", opts.Host)
		return cli.ExitFailure
	}
	log.Info("Command completed", "host", opts.Host, "duration", time.Since(start).Round(time.Millisecond).String())
	return cli.ExitOK
}

func trimNewline(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}
