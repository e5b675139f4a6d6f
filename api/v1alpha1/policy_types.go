// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

// PolicyAssignment attaches a policy to one or more devices.
type PolicyAssignment struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Policy  Reference   `json:"policy"`
	Targets []Reference `json:"targets"`
}

// NewPolicyAssignment returns an assignment of policy to the given devices.
func NewPolicyAssignment(policy Reference, deviceIDs ...string) *PolicyAssignment {
	a := &PolicyAssignment{
		Type:    TypePolicyAssignment,
		Policy:  policy,
		Targets: make([]Reference, 0, len(deviceIDs)),
	}
	for _, id := range deviceIDs {
		a.Targets = append(a.Targets, DeviceRef(id))
	}
	return a
}
