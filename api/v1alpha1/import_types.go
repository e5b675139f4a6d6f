// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package v1alpha1

import "strings"

// ConflictOption tells the management center how to resolve objects that
// already exist when importing a backup.
type ConflictOption string

const (
	ConflictOptionLatest ConflictOption = "LATEST"
	ConflictOptionNew    ConflictOption = "NEW"
)

// ImportOptions are sent as the "importOptions" form field of a
// configuration import.
type ImportOptions struct {
	IncludeSharedPolicies     bool           `json:"includeSharedPolicies,omitempty"`
	IncludeS2sVpnPoliciesOnly bool           `json:"includeS2sVpnPoliciesOnly,omitempty"`
	ConflictOption            ConflictOption `json:"conflictOption"`
}

// ImportOptionsFor returns the options used for a backup file. Files
// carrying site-to-site VPN policies only are recognised by "s2s" in their
// name.
func ImportOptionsFor(fileName string) ImportOptions {
	if strings.Contains(fileName, "s2s") {
		return ImportOptions{IncludeS2sVpnPoliciesOnly: true, ConflictOption: ConflictOptionLatest}
	}
	return ImportOptions{IncludeSharedPolicies: true, ConflictOption: ConflictOptionLatest}
}
