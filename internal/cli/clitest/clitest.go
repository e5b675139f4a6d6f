// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package clitest runs the command line tools in-process from scripts.
package clitest

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"rsc.io/script"
	"rsc.io/script/scripttest"
)

// RunFunc is the signature of the run function of every command.
type RunFunc func(ctx context.Context, args []string, getenv func(string) string, stdout, stderr io.Writer) int

// Main returns a script command that runs fn with the script's context,
// environment and working directory relative paths. A non-zero exit code
// is reported as an error.
func Main(summary string, fn RunFunc) script.Cmd {
	return script.Command(
		script.CmdUsage{
			Summary: summary,
			Args:    "[flags...]",
		},
		func(s *script.State, args ...string) (script.WaitFunc, error) {
			return func(s *script.State) (stdout, stderr string, err error) {
				getenv := func(key string) string {
					v, _ := s.LookupEnv(key)
					return v
				}
				var outBuf, errBuf bytes.Buffer
				if code := fn(s.Context(), args, getenv, &outBuf, &errBuf); code != 0 {
					err = fmt.Errorf("exit status %d", code)
				}
				return outBuf.String(), errBuf.String(), err
			}, nil
		})
}

// DefaultCmds returns the commands of [scripttest.DefaultCmds] extended by
// cmds.
func DefaultCmds(cmds map[string]script.Cmd) map[string]script.Cmd {
	all := scripttest.DefaultCmds()
	for name, cmd := range cmds {
		all[name] = cmd
	}
	return all
}
