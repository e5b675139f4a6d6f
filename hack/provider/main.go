// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	// Import all supported provider implementations.
	_ "github.com/ironcore-dev/fmc-automation/internal/provider/cisco/firepower"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/cli"
	"github.com/ironcore-dev/fmc-automation/internal/config"
	"github.com/ironcore-dev/fmc-automation/internal/provider"
)

var (
	flags    = config.RegisterFlags(flag.CommandLine, false)
	deviceID = flag.String("device", "", "Id of the device record (required for OSPF operations)")
	file     = flag.String("file", "", "Path to an OSPF route manifest (required for create)")
	id       = flag.String("id", "", "Id of the OSPF route (required for delete)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <list|get|create|delete|policies>\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "A debug tool for testing provider implementations.\n\n")
	fmt.Fprintf(os.Stderr, "Arguments:\n")
	fmt.Fprintf(os.Stderr, "  list       List the OSPF routes of the device\n")
	fmt.Fprintf(os.Stderr, "  get        Get the OSPF process of the device\n")
	fmt.Fprintf(os.Stderr, "  create     Create the OSPF route read from -file\n")
	fmt.Fprintf(os.Stderr, "  delete     Delete the OSPF route with -id\n")
	fmt.Fprintf(os.Stderr, "  policies   List the platform settings policies\n\n")
	fmt.Fprintf(os.Stderr, "Flags:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExample:\n")
	fmt.Fprintf(os.Stderr, "  FMC_API_KEY=... %s -fmc-url=https://tenant.app.eu.cdo.cisco.com -device=dev-1 -file=route.yaml create\n", os.Args[0])
}

func validateFlags(operation string) error {
	if operation != "policies" && *deviceID == "" {
		return errors.New("device flag is required")
	}
	if operation == "create" && *file == "" {
		return errors.New("file flag is required")
	}
	if operation == "delete" && *id == "" {
		return errors.New("id flag is required")
	}
	return nil
}

func validatePositionalArgs() (string, error) {
	if len(flag.Args()) != 1 {
		return "", errors.New("exactly one positional argument (list|get|create|delete|policies) is required")
	}

	operation := flag.Args()[0]
	switch operation {
	case "list", "get", "create", "delete", "policies":
	default:
		return "", fmt.Errorf("positional argument must be one of 'list', 'get', 'create', 'delete' or 'policies', got: %s", operation)
	}

	return operation, nil
}

func loadAndUnmarshalRoute(filePath string) (*v1alpha1.OSPFRoute, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}

	route := new(v1alpha1.OSPFRoute)
	if err := yaml.UnmarshalStrict(data, route); err != nil {
		return nil, fmt.Errorf("failed to decode OSPF route: %w", err)
	}
	if route.Type == "" {
		route.Type = v1alpha1.TypeOSPFRoute
	}

	return route, nil
}

func printRouteInfo(route *v1alpha1.OSPFRoute) {
	fmt.Printf("Loaded OSPF route\n")
	fmt.Printf("  Process ID: %s\n", route.ProcessID)
	for _, area := range route.Areas {
		fmt.Printf("  Area %s (%s): %d networks\n", area.AreaID, area.AreaType.Type, len(area.AreaNetworks))
	}
}

func printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}

func main() {
	flag.Usage = usage

	for _, arg := range os.Args[1:] {
		if arg == "-h" || arg == "--help" {
			flag.Usage()
			os.Exit(0)
		}
	}

	flag.Parse()

	operation, err := validatePositionalArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	if err := validateFlags(operation); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := flags.Load(os.Getenv)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var route *v1alpha1.OSPFRoute
	if operation == "create" {
		route, err = loadAndUnmarshalRoute(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading route: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("=== Debug Tool Configuration ===\n")
	fmt.Printf("Address: %s\n", cfg.URL)
	if cfg.Provider == config.ProviderOnPrem {
		fmt.Printf("Username: %s\n", cfg.Username)
		fmt.Printf("Password: %s\n", "[REDACTED]")
	} else {
		fmt.Printf("API Key: %s\n", cfg.MaskedAPIKey())
	}
	fmt.Printf("Device: %s\n", *deviceID)
	fmt.Printf("Provider: %s\n", cfg.Provider)
	fmt.Printf("Operation: %s\n", operation)
	if route != nil {
		fmt.Printf("\n=== Resource Information ===\n")
		printRouteInfo(route)
	}

	ctx, _, err := cli.Logger(context.Background(), cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	s, err := cli.Connect(ctx, &cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting provider: %v\n", err)
		os.Exit(1)
	}
	defer s.Close(ctx)

	fmt.Printf("\n=== Operation Status ===\n")
	switch operation {
	case "policies":
		var p provider.PlatformSettingsProvider
		if p, err = cli.As[provider.PlatformSettingsProvider](s, "platform settings"); err == nil {
			var policies []v1alpha1.Reference
			if policies, err = p.ListPlatformSettingsPolicies(ctx); err == nil {
				err = printJSON(policies)
			}
		}
	default:
		var p provider.OSPFProvider
		if p, err = cli.As[provider.OSPFProvider](s, "OSPF"); err != nil {
			break
		}
		switch operation {
		case "list":
			var routes []v1alpha1.OSPFRoute
			if routes, err = p.ListOSPFRoutes(ctx, *deviceID); err == nil {
				err = printJSON(routes)
			}
		case "get":
			var proc *v1alpha1.OSPFProcess
			if proc, err = p.GetOSPFProcess(ctx, *deviceID); err == nil {
				if proc == nil {
					fmt.Printf("No OSPF process configured.\n")
				} else {
					err = printJSON(proc)
				}
			}
		case "create":
			var res *v1alpha1.OSPFRoute
			if res, err = p.CreateOSPFRoute(ctx, &provider.OSPFRouteRequest{DeviceID: *deviceID, Route: route}); err == nil {
				err = printJSON(res)
			}
		case "delete":
			err = p.DeleteOSPFRoute(ctx, *deviceID, *id)
		}
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error performing operation: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Provider tool completed successfully.\n")
}
