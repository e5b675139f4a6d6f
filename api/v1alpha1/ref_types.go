// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0
package v1alpha1

// Reference identifies an existing object on the management center by its
// opaque identifier. The object itself is never created or validated by
// this module, its identifier is only forwarded.
type Reference struct {
	// Type is the FMC object type, e.g. "Network" or "Device".
	Type string `json:"type"`

	// ID is the UUID assigned by the management center.
	ID string `json:"id"`

	// Name of the referent, informational only.
	Name string `json:"name,omitempty"`
}

// Object types used in references and payloads.
const (
	TypeNetwork                   = "Network"
	TypeDevice                    = "Device"
	TypeOSPFRoute                 = "OspfRoute"
	TypeOSPFProcess               = "OspfV2Process"
	TypeDeploymentRequest         = "DeploymentRequest"
	TypePolicyAssignment          = "PolicyAssignment"
	TypeFTDPlatformSettingsPolicy = "FTDPlatformSettingsPolicy"
)

// NetworkRef returns a reference to the network object with the given id.
func NetworkRef(id, name string) Reference {
	return Reference{Type: TypeNetwork, ID: id, Name: name}
}

// DeviceRef returns a reference to the device record with the given id.
func DeviceRef(id string) Reference {
	return Reference{Type: TypeDevice, ID: id}
}

// Links contains the self link every FMC object carries.
type Links struct {
	Self   string `json:"self,omitempty"`
	Parent string `json:"parent,omitempty"`
}
