// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/progress"
	"github.com/ironcore-dev/fmc-automation/internal/provider"
)

// ErrPolicyNotFound is returned when no platform settings policy carries
// the requested name.
var ErrPolicyNotFound = errors.New("platform settings policy not found")

type PlatformSettingsRequest struct {
	PolicyName string
	DeviceID   string
}

// PlatformSettingsReconciler assigns an FTD platform settings policy,
// looked up by name, to a device.
type PlatformSettingsReconciler struct {
	Provider provider.PlatformSettingsProvider
	Printer  *progress.Printer
}

// Reconcile returns the assigned policy.
func (r *PlatformSettingsReconciler) Reconcile(ctx context.Context, req PlatformSettingsRequest) (*v1alpha1.Reference, error) {
	log := logr.FromContextOrDiscard(ctx).WithValues("device", req.DeviceID, "policy", req.PolicyName)
	if req.PolicyName == "" {
		return nil, errors.New("a platform settings policy name is required")
	}
	if req.DeviceID == "" {
		return nil, ErrNoDevice
	}

	policies, err := r.Provider.ListPlatformSettingsPolicies(ctx)
	if err != nil {
		r.Printer.Failure("Failed to retrieve platform settings policies: %v", err)
		return nil, fmt.Errorf("failed to list platform settings policies: %w", err)
	}
	var policy *v1alpha1.Reference
	for i := range policies {
		if policies[i].Name == req.PolicyName {
			policy = &policies[i]
			break
		}
	}
	if policy == nil {
		r.Printer.Failure("Platform policy with name '%s' not found", req.PolicyName)
		return nil, fmt.Errorf("%w: %q", ErrPolicyNotFound, req.PolicyName)
	}
	if policy.Type == "" {
		policy.Type = v1alpha1.TypeFTDPlatformSettingsPolicy
	}
	log.V(1).Info("Found platform settings policy", "id", policy.ID)

	err = r.Provider.AssignPolicy(ctx, &provider.PolicyAssignmentRequest{
		Policy:    *policy,
		DeviceIDs: []string{req.DeviceID},
	})
	if err != nil {
		r.Printer.Failure("Failed to attach policy: %v", err)
		return nil, fmt.Errorf("failed to assign platform settings policy: %w", err)
	}
	log.Info("Assigned platform settings policy", "id", policy.ID)
	r.Printer.Success("Successfully created policy assignment")
	return policy, nil
}
