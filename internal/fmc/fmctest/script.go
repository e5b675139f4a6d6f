// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package fmctest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/tidwall/gjson"
	"rsc.io/script"
)

// Environment variables set by "fmc start".
const (
	EnvURL      = "FMC_URL"
	EnvAPIKey   = "FMC_API_KEY"
	EnvUsername = "FMC_USERNAME"
	EnvPassword = "FMC_PASSWORD" // #nosec G101
)

// Script returns a script command that controls a management center
// private to each script. Servers are closed when tb ends.
func Script(tb testing.TB) script.Cmd {
	var (
		mu      sync.Mutex
		servers = make(map[*script.State]*FMC)
	)
	lookup := func(s *script.State) (*FMC, error) {
		mu.Lock()
		defer mu.Unlock()
		f, ok := servers[s]
		if !ok {
			return nil, fmt.Errorf("no management center, run 'fmc start' first")
		}
		return f, nil
	}

	return script.Command(
		script.CmdUsage{
			Summary: "control an in-memory management center",
			Args:    "start | route device json | routes device | policy name | fail method pattern code [times] | drop-writes | requests | count method pattern | assignments | deployments | imports",
			Detail: []string{
				"'start' serves a new management center and points $FMC_URL at it.",
				"$FMC_API_KEY is set to the accepted token, $FMC_USERNAME and $FMC_PASSWORD",
				"to an on-prem user. All other subcommands act on the started server.",
			},
		},
		func(s *script.State, args ...string) (script.WaitFunc, error) {
			if len(args) < 1 {
				return nil, script.ErrUsage
			}
			if args[0] == "start" {
				if len(args) != 1 {
					return nil, script.ErrUsage
				}
				f := New(WithUser("admin", "secret"))
				srv := httptest.NewServer(f)
				tb.Cleanup(srv.Close)
				f.URL = srv.URL
				mu.Lock()
				servers[s] = f
				mu.Unlock()
				for k, v := range map[string]string{EnvURL: f.URL, EnvAPIKey: f.Token, EnvUsername: "admin", EnvPassword: "secret"} {
					if err := s.Setenv(k, v); err != nil {
						return nil, err
					}
				}
				return nil, nil
			}

			f, err := lookup(s)
			if err != nil {
				return nil, err
			}
			var out strings.Builder
			switch args[0] {
			case "route":
				if len(args) != 3 {
					return nil, script.ErrUsage
				}
				if !gjson.Valid(args[2]) {
					return nil, fmt.Errorf("invalid json: %s", args[2])
				}
				fmt.Fprintln(&out, f.AddOSPFRoute(args[1], []byte(args[2])))
			case "routes":
				if len(args) != 2 {
					return nil, script.ErrUsage
				}
				if err := writeResults(&out, f.OSPFRoutes(args[1])); err != nil {
					return nil, err
				}
			case "policy":
				if len(args) != 2 {
					return nil, script.ErrUsage
				}
				fmt.Fprintln(&out, f.AddPlatformSettingsPolicy(args[1]))
			case "fail":
				if len(args) != 4 && len(args) != 5 {
					return nil, script.ErrUsage
				}
				code, err := strconv.Atoi(args[3])
				if err != nil || http.StatusText(code) == "" {
					return nil, fmt.Errorf("invalid status code %q", args[3])
				}
				times := 1
				if len(args) == 5 {
					if times, err = strconv.Atoi(args[4]); err != nil {
						return nil, fmt.Errorf("invalid count %q", args[4])
					}
				}
				f.Fail(args[1], args[2], code, times)
			case "drop-writes":
				f.DropWrites(true)
			case "requests":
				for _, r := range f.Requests() {
					fmt.Fprintf(&out, "%s %s\n", r.Method, r.Path)
				}
			case "count":
				if len(args) != 3 {
					return nil, script.ErrUsage
				}
				fmt.Fprintln(&out, f.Count(strings.ToUpper(args[1]), args[2]))
			case "assignments":
				err = writeResults(&out, f.Assignments())
			case "deployments":
				err = writeResults(&out, f.Deployments())
			case "imports":
				err = writeResults(&out, f.Imports())
			default:
				return nil, script.ErrUsage
			}
			if err != nil {
				return nil, err
			}
			return func(*script.State) (string, string, error) {
				return out.String(), "", nil
			}, nil
		})
}

// writeResults writes one compact JSON document per line.
func writeResults(w *strings.Builder, results []gjson.Result) error {
	for _, r := range results {
		var b bytes.Buffer
		if err := json.Compact(&b, []byte(r.Raw)); err != nil {
			return err
		}
		w.Write(b.Bytes())
		w.WriteByte('\n')
	}
	return nil
}
