// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

// DeploymentRequest asks the management center to push pending changes to
// the listed devices.
type DeploymentRequest struct {
	Type          string   `json:"type"`
	DeviceList    []string `json:"deviceList"`
	ForceDeploy   *bool    `json:"forceDeploy,omitempty"`
	IgnoreWarning *bool    `json:"ignoreWarning,omitempty"`
	Version       string   `json:"version,omitempty"`
}

// DeploymentTask is the response to an accepted [DeploymentRequest].
type DeploymentTask struct {
	Type     string `json:"type,omitempty"`
	Metadata struct {
		Task struct {
			ID   string `json:"id,omitempty"`
			Type string `json:"type,omitempty"`
		} `json:"task,omitzero"`
	} `json:"metadata,omitzero"`
}

// TaskID returns the id of the job tracking the deployment, if any.
func (t *DeploymentTask) TaskID() string {
	if t == nil {
		return ""
	}
	return t.Metadata.Task.ID
}
