// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-logr/logr"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/config"
	"github.com/ironcore-dev/fmc-automation/internal/provider"
	"github.com/ironcore-dev/fmc-automation/internal/progress"
)

var (
	// ErrNoDevice is returned when no device id was given.
	ErrNoDevice = errors.New("no device id given")
	// ErrNoNetworks is returned when none of the roles resolved to a
	// network id. No request is made in that case.
	ErrNoNetworks = errors.New("no valid network ids found")
	// ErrNotPersisted is returned when the configuration was accepted but
	// could not be read back.
	ErrNotPersisted = errors.New("ospf configuration not found after create")
)

// OSPFRequest selects the device to configure and the network object ids
// keyed by role.
type OSPFRequest struct {
	DeviceID   string
	NetworkIDs map[string]string
}

// OSPFReconciler replaces the OSPFv2 configuration of a device with a
// single configuration placing all given networks into area 0.
type OSPFReconciler struct {
	Provider provider.OSPFProvider

	// Roles are resolved in order. Defaults to [config.DefaultRoles].
	Roles []config.Role
	// EnableProcess ensures the OSPF process is enabled first.
	EnableProcess bool
	// Deploy requests a deployment after the configuration was verified.
	// The provider must implement [provider.DeploymentProvider].
	Deploy bool
	// Strategy defaults to [config.StrategyRecreate].
	Strategy config.Strategy

	// Printer receives the progress lines, it may be nil.
	Printer *progress.Printer
}

// NewOSPFReconciler returns a reconciler configured from cfg.
func NewOSPFReconciler(p provider.OSPFProvider, cfg *config.Config, pr *progress.Printer) *OSPFReconciler {
	return &OSPFReconciler{
		Provider:      p,
		Roles:         cfg.Roles,
		EnableProcess: cfg.EnableProcess,
		Deploy:        cfg.Deploy,
		Strategy:      cfg.Strategy,
		Printer:       pr,
	}
}

// Reconcile runs a single reconciliation. The returned report is never nil
// and describes everything done up to the point of failure.
func (r *OSPFReconciler) Reconcile(ctx context.Context, req OSPFRequest) (*OSPFReport, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("device", req.DeviceID)
	ctx = logr.NewContext(ctx, log)
	report := &OSPFReport{DeviceID: req.DeviceID}

	if req.DeviceID == "" {
		return report, ErrNoDevice
	}
	log.Info("Reconciling OSPF configuration")

	r.Printer.Step(1, "Resolving network ids...")
	networks, skipped := ResolveNetworks(r.roles(), req.NetworkIDs)
	report.Networks, report.Skipped = networks, skipped
	for _, n := range networks {
		r.Printer.Success("%s: %s", n.Name, n.ID)
	}
	for _, role := range skipped {
		log.Info("Network id not provided, skipping role", "role", role.Name, "key", role.Key)
		r.Printer.Failure("%s: ID not found in provided network IDs", role.Name)
	}
	if len(networks) == 0 {
		r.Printer.Failure("No valid network IDs found!")
		return report, ErrNoNetworks
	}
	r.Printer.Success("Ready to configure %d networks", len(networks))

	step := 2
	if r.EnableProcess {
		r.Printer.Step(step, "Enabling OSPF process...")
		step++
		if err := r.enableProcess(ctx, req.DeviceID); err != nil {
			return report, err
		}
	}

	r.Printer.Step(step, "Cleaning up existing OSPF configuration...")
	step++
	keep := r.cleanup(ctx, req.DeviceID, report)

	desired := NewOSPFRoute(networks)
	r.Printer.Step(step, "Creating OSPF configuration...")
	step++
	r.Printer.Detail("Process ID: %s", desired.ProcessID)
	r.Printer.Detail("Enable Process: %s", desired.EnableProcess)
	r.Printer.Detail("Area ID: %s", desired.Areas[0].AreaID)
	r.Printer.Detail("Area Type: %s", desired.Areas[0].AreaType.Type)
	r.Printer.Detail("Networks: %d networks", len(desired.Areas[0].AreaNetworks))
	r.Printer.Detail("Redistribute Protocols: %d (empty for Internal Router)", len(desired.RedistributeProtocols))
	if err := r.apply(ctx, req.DeviceID, keep, desired, report); err != nil {
		return report, err
	}

	r.Printer.Step(step, "Verifying configuration was saved...")
	step++
	if err := r.verify(ctx, req.DeviceID, len(networks), report); err != nil {
		return report, err
	}

	if r.Deploy {
		r.Printer.Step(step, "Deploying configuration to device...")
		report.Deployment = r.deploy(ctx, req.DeviceID)
		if report.Deployment.Err != nil {
			report.warn("deployment failed: %v", report.Deployment.Err)
		}
	}

	log.Info("Reconciled OSPF configuration", "networks", len(networks), "deletions", len(report.Deletions), "clean", report.Clean())
	return report, nil
}

func (r *OSPFReconciler) roles() []config.Role {
	if len(r.Roles) == 0 {
		return config.DefaultRoles()
	}
	return r.Roles
}

func (r *OSPFReconciler) strategy() config.Strategy {
	if r.Strategy == "" {
		return config.StrategyRecreate
	}
	return r.Strategy
}

// enableProcess creates the OSPF process unless it can be read already.
// A failed read is not fatal, the process is created in that case.
func (r *OSPFReconciler) enableProcess(ctx context.Context, deviceID string) error {
	log := logr.FromContextOrDiscard(ctx)
	proc, err := r.Provider.GetOSPFProcess(ctx, deviceID)
	switch {
	case err != nil:
		log.Info("Failed to get OSPF process, trying to enable it", "error", err.Error())
	case proc != nil:
		r.Printer.Info("OSPF process already enabled")
		return nil
	}
	err = r.Provider.EnableOSPFProcess(ctx, &provider.OSPFProcessRequest{
		DeviceID:    deviceID,
		ProcessName: v1alpha1.DefaultOSPFProcessName,
	})
	if err != nil {
		r.Printer.Failure("Failed to enable OSPF process: %v", err)
		log.Error(err, "Failed to enable OSPF process")
		return fmt.Errorf("failed to enable OSPF process: %w", err)
	}
	r.Printer.Success("Enabled OSPF Process 1")
	return nil
}

// cleanup deletes the existing configurations. With the update strategy
// the first existing configuration is kept and returned.
// Deletion failures are recorded in the report and do not stop the run.
// A failure to list is treated as nothing to delete.
func (r *OSPFReconciler) cleanup(ctx context.Context, deviceID string, report *OSPFReport) *v1alpha1.OSPFRoute {
	log := logr.FromContextOrDiscard(ctx)
	existing, err := r.Provider.ListOSPFRoutes(ctx, deviceID)
	if err != nil {
		log.Info("Failed to list existing OSPF configuration, assuming there is none", "error", err.Error())
		r.Printer.Warning("Could not list existing OSPF configuration: %v", err)
		report.warn("failed to list existing configuration: %v", err)
		return nil
	}
	if len(existing) == 0 {
		r.Printer.Info("No existing OSPF configuration found")
		return nil
	}

	var keep *v1alpha1.OSPFRoute
	if r.strategy() == config.StrategyUpdate {
		keep = &existing[0]
		existing = existing[1:]
		r.Printer.Info("Keeping existing OSPF config (ID: %s) for update", keep.ID)
	}
	for _, route := range existing {
		if err := ctx.Err(); err != nil {
			report.Deletions = append(report.Deletions, DeletionResult{ID: route.ID, Err: err})
			continue
		}
		r.Printer.Delete("Deleting existing OSPF config (ID: %s)", route.ID)
		err := r.Provider.DeleteOSPFRoute(ctx, deviceID, route.ID)
		report.Deletions = append(report.Deletions, DeletionResult{ID: route.ID, Err: err})
		if err != nil {
			log.Info("Failed to delete OSPF configuration", "id", route.ID, "error", err.Error())
			r.Printer.Warning("Could not delete config: %v", err)
			continue
		}
		log.V(1).Info("Deleted OSPF configuration", "id", route.ID)
		r.Printer.Success("Deleted OSPF configuration")
	}
	return keep
}

// apply creates the desired configuration, or overwrites keep with it.
func (r *OSPFReconciler) apply(ctx context.Context, deviceID string, keep, desired *v1alpha1.OSPFRoute, report *OSPFReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log := logr.FromContextOrDiscard(ctx)
	req := &provider.OSPFRouteRequest{DeviceID: deviceID, Route: desired}

	if keep != nil {
		desired.ID = keep.ID
		if equal(keep, desired) {
			log.Info("OSPF configuration is already up-to-date", "id", keep.ID)
			r.Printer.Info("OSPF configuration is already up-to-date")
			report.Created, report.Updated = keep, true
			return nil
		}
		res, err := r.Provider.UpdateOSPFRoute(ctx, req)
		if err != nil {
			r.Printer.Failure("Failed to update OSPF configuration: %v", err)
			log.Error(err, "Failed to update OSPF configuration", "id", keep.ID)
			return fmt.Errorf("failed to update OSPF configuration: %w", err)
		}
		report.Created, report.Updated = res, true
		r.Printer.Success("Updated OSPF Process 1 configuration successfully!")
		return nil
	}

	res, err := r.Provider.CreateOSPFRoute(ctx, req)
	if err != nil {
		r.Printer.Failure("Failed to create OSPF configuration: %v", err)
		log.Error(err, "Failed to create OSPF configuration")
		return fmt.Errorf("failed to create OSPF configuration: %w", err)
	}
	report.Created = res
	r.Printer.Success("Created OSPF Process 1 configuration successfully!")
	return nil
}

// equal compares two configurations ignoring server assigned metadata.
func equal(got, want *v1alpha1.OSPFRoute) bool {
	a, b := *got, *want
	a.Links, b.Links = nil, nil
	a.RedistributeProtocols = orEmpty(a.RedistributeProtocols)
	a.FilterRules = orEmpty(a.FilterRules)
	a.SummaryAddresses = orEmpty(a.SummaryAddresses)
	return reflect.DeepEqual(a, b)
}

func (r *OSPFReconciler) verify(ctx context.Context, deviceID string, networks int, report *OSPFReport) error {
	log := logr.FromContextOrDiscard(ctx)
	routes, err := r.Provider.ListOSPFRoutes(ctx, deviceID)
	if err != nil {
		r.Printer.Failure("Could not read back OSPF configuration: %v", err)
		log.Error(err, "Failed to verify OSPF configuration")
		return fmt.Errorf("failed to verify OSPF configuration: %w", err)
	}
	report.Verified = routes
	if len(routes) == 0 {
		r.Printer.Failure("Configuration not found in the management center!")
		log.Error(ErrNotPersisted, "OSPF configuration was accepted but is missing")
		return ErrNotPersisted
	}
	r.Printer.Success("Verified: OSPF configuration exists in the management center")
	for _, route := range routes {
		r.Printer.Detail("Config ID: %s", route.ID)
		r.Printer.Detail("Process ID: %s", route.ProcessID)
		for _, area := range route.Areas {
			r.Printer.Detail("Area %s: %d networks", area.AreaID, len(area.AreaNetworks))
		}
	}
	if len(routes) > 1 {
		log.Info("More than one OSPF configuration exists", "count", len(routes))
		report.warn("%d OSPF configurations exist after reconciliation", len(routes))
	}
	if routes[0].NetworkCount() != networks {
		log.Info("Network count differs from request", "want", networks, "got", routes[0].NetworkCount())
		report.warn("configuration holds %d networks, %d were requested", routes[0].NetworkCount(), networks)
	}
	return nil
}

// deploy requests a forced deployment and falls back to a standard
// deployment if that is rejected.
func (r *OSPFReconciler) deploy(ctx context.Context, deviceID string) *DeploymentResult {
	log := logr.FromContextOrDiscard(ctx)
	dp, ok := r.Provider.(provider.DeploymentProvider)
	if !ok {
		r.Printer.Warning("Provider does not support deployments")
		return &DeploymentResult{Err: fmt.Errorf("deploy: %w", provider.ErrUnimplemented)}
	}
	res := Deploy(ctx, dp, deviceID)
	switch {
	case res.Err != nil:
		log.Error(res.Err, "Failed to deploy configuration")
		r.Printer.Failure("Standard deployment also failed: %v", res.Err)
		r.Printer.Warning("Configuration saved but deployment failed")
		r.Printer.Info("You can manually deploy from the FMC GUI")
	case res.Forced:
		r.Printer.Success("Deployment initiated successfully!")
	default:
		r.Printer.Success("Standard deployment initiated successfully!")
	}
	return res
}

// Deploy requests a forced deployment of device and retries once without
// force if the management center rejects it.
func Deploy(ctx context.Context, p provider.DeploymentProvider, deviceID string) *DeploymentResult {
	log := logr.FromContextOrDiscard(ctx)
	req := &provider.DeployRequest{DeviceIDs: []string{deviceID}, Force: true, IgnoreWarning: true}
	task, err := p.Deploy(ctx, req)
	if err == nil {
		return &DeploymentResult{TaskID: task, Forced: true}
	}
	log.Info("Forced deployment failed, trying without force", "error", err.Error())
	req.Force = false
	task, err = p.Deploy(ctx, req)
	if err != nil {
		return &DeploymentResult{Err: fmt.Errorf("failed to deploy configuration: %w", err)}
	}
	return &DeploymentResult{TaskID: task}
}
