// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/deviceutil"
)

// ErrUnimplemented is returned by providers for operations the underlying
// management center does not support.
var ErrUnimplemented = errors.New("operation not implemented by provider")

// Provider is the common interface used to establish and tear down connections to the provider.
type Provider interface {
	Connect(context.Context, *deviceutil.Connection) error
	Disconnect(context.Context, *deviceutil.Connection) error
}

// OSPFProvider is the interface for the realization of the OSPFv2 routing configuration of a device.
type OSPFProvider interface {
	Provider

	// GetOSPFProcess returns the OSPF process of the device. It returns
	// (nil, nil) if the process has not been configured yet.
	GetOSPFProcess(ctx context.Context, deviceID string) (*v1alpha1.OSPFProcess, error)
	// EnableOSPFProcess creates an enabled OSPF process on the device.
	EnableOSPFProcess(ctx context.Context, req *OSPFProcessRequest) error
	// ListOSPFRoutes returns all OSPF route configurations of the device.
	ListOSPFRoutes(ctx context.Context, deviceID string) ([]v1alpha1.OSPFRoute, error)
	// CreateOSPFRoute creates a new OSPF route configuration.
	CreateOSPFRoute(ctx context.Context, req *OSPFRouteRequest) (*v1alpha1.OSPFRoute, error)
	// UpdateOSPFRoute replaces the OSPF route configuration identified by req.Route.ID.
	UpdateOSPFRoute(ctx context.Context, req *OSPFRouteRequest) (*v1alpha1.OSPFRoute, error)
	// DeleteOSPFRoute removes a single OSPF route configuration.
	DeleteOSPFRoute(ctx context.Context, deviceID, id string) error
}

type OSPFProcessRequest struct {
	DeviceID    string
	ProcessName string
}

type OSPFRouteRequest struct {
	DeviceID string
	Route    *v1alpha1.OSPFRoute
}

// DeploymentProvider pushes pending configuration changes to devices.
type DeploymentProvider interface {
	Provider

	// Deploy requests a deployment and returns the id of the task
	// tracking it, if the management center reported one.
	Deploy(ctx context.Context, req *DeployRequest) (string, error)
}

type DeployRequest struct {
	DeviceIDs     []string
	Force         bool
	IgnoreWarning bool
}

// PlatformSettingsProvider manages the assignment of FTD platform settings policies.
type PlatformSettingsProvider interface {
	Provider

	// ListPlatformSettingsPolicies returns all FTD platform settings policies.
	ListPlatformSettingsPolicies(ctx context.Context) ([]v1alpha1.Reference, error)
	// AssignPolicy assigns a policy to devices.
	AssignPolicy(ctx context.Context, req *PolicyAssignmentRequest) error
}

type PolicyAssignmentRequest struct {
	Policy    v1alpha1.Reference
	DeviceIDs []string
}

// ImportProvider uploads configuration backups.
type ImportProvider interface {
	Provider

	// ImportBackup uploads a backup file and returns the raw response of
	// the management center.
	ImportBackup(ctx context.Context, req *ImportRequest) (*ImportResult, error)
}

type ImportRequest struct {
	// Name of the import job.
	Name      string
	DeviceIDs []string
	FileName  string
	Content   io.Reader
	Options   v1alpha1.ImportOptions
}

type ImportResult struct {
	// Raw is the JSON document returned by the management center.
	Raw []byte
}

var mu sync.RWMutex

// ProviderFunc returns a new [Provider] instance.
type ProviderFunc func() Provider

// providers holds all registered providers.
// It should be accessed in a thread-safe manner and kept private to this package.
var providers = make(map[string]ProviderFunc)

// Register registers a new provider with the given name.
// If a provider with the same name already exists, it panics.
func Register(name string, provider ProviderFunc) {
	mu.Lock()
	defer mu.Unlock()
	if providers == nil {
		panic("Register provider is nil")
	}
	if _, ok := providers[name]; ok {
		panic("Register called twice for provider " + name)
	}
	providers[name] = provider
}

// Get returns the provider with the given name.
// If the provider does not exist, it returns an error.
func Get(name string) (ProviderFunc, error) {
	mu.RLock()
	defer mu.RUnlock()
	provider, ok := providers[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return provider, nil
}

// Providers returns a slice of all registered provider names.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()
	return slices.Sorted(maps.Keys(providers))
}
