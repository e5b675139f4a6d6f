// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"fmt"
	"strings"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/config"
)

// DeletionResult is the outcome of deleting a single pre-existing OSPF
// route configuration.
type DeletionResult struct {
	ID  string
	Err error
}

func (d DeletionResult) Succeeded() bool {
	return d.Err == nil
}

// DeploymentResult is the outcome of requesting a deployment.
type DeploymentResult struct {
	// TaskID tracks the deployment on the management center.
	TaskID string
	// Forced is set if the forced deployment was accepted. It is false if
	// the standard deployment had to be used instead.
	Forced bool
	Err    error
}

// OSPFReport summarizes a single reconciliation.
type OSPFReport struct {
	DeviceID string
	// Networks are the networks placed into area 0, in order.
	Networks []v1alpha1.Reference
	// Skipped are the roles without a network id.
	Skipped   []config.Role
	Deletions []DeletionResult
	// Updated is set if an existing configuration was overwritten in place.
	Updated  bool
	Created  *v1alpha1.OSPFRoute
	Verified []v1alpha1.OSPFRoute
	// Deployment is nil unless a deployment was requested.
	Deployment *DeploymentResult
	// Warnings collects problems that did not fail the run.
	Warnings []string
}

func (r *OSPFReport) warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Clean reports whether all pre-existing configurations were deleted.
func (r *OSPFReport) Clean() bool {
	for _, d := range r.Deletions {
		if !d.Succeeded() {
			return false
		}
	}
	return true
}

// FailedDeletions returns the deletions that did not succeed.
func (r *OSPFReport) FailedDeletions() []DeletionResult {
	var res []DeletionResult
	for _, d := range r.Deletions {
		if !d.Succeeded() {
			res = append(res, d)
		}
	}
	return res
}

// Summary returns a single line describing the outcome.
func (r *OSPFReport) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "device %s: %d networks", r.DeviceID, len(r.Networks))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&sb, ", %d roles skipped", len(r.Skipped))
	}
	fmt.Fprintf(&sb, ", %d/%d deletions succeeded", len(r.Deletions)-len(r.FailedDeletions()), len(r.Deletions))
	switch {
	case r.Created != nil && r.Updated:
		fmt.Fprintf(&sb, ", updated %s", r.Created.ID)
	case r.Created != nil:
		fmt.Fprintf(&sb, ", created %s", r.Created.ID)
	}
	fmt.Fprintf(&sb, ", %d verified", len(r.Verified))
	if d := r.Deployment; d != nil {
		if d.Err != nil {
			sb.WriteString(", deployment failed")
		} else {
			fmt.Fprintf(&sb, ", deployment %s", d.TaskID)
		}
	}
	return sb.String()
}
