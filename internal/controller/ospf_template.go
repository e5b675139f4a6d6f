// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	cp "github.com/felix-kaestner/copy"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/config"
)

// routeTemplate is the configuration of an internal router announcing all
// networks into the backbone area. It must not be modified, use
// [NewOSPFRoute] to obtain a copy.
var routeTemplate = v1alpha1.OSPFRoute{
	Type:          v1alpha1.TypeOSPFRoute,
	ProcessID:     v1alpha1.DefaultOSPFProcessID,
	EnableProcess: v1alpha1.DefaultOSPFProcessName,
	ProcessConfiguration: v1alpha1.OSPFProcessConfiguration{
		RFC1583Compatible: false,
		IgnoreLsaMospf:    false,
		AdministrativeDistance: v1alpha1.AdministrativeDistance{
			InterArea: v1alpha1.DefaultDistance,
			IntraArea: v1alpha1.DefaultDistance,
			External:  v1alpha1.DefaultDistance,
		},
		Timers: v1alpha1.OSPFTimers{
			LSAGroup: v1alpha1.DefaultLSAGroupPacing,
		},
	},
	RedistributeProtocols: []v1alpha1.RedistributeProtocol{},
	FilterRules:           []v1alpha1.FilterRule{},
	SummaryAddresses:      []v1alpha1.SummaryAddress{},
	LogAdjacencyChanges: &v1alpha1.LogAdjacencyChanges{
		LogType: v1alpha1.LogTypeDefault,
	},
	Areas: []v1alpha1.OSPFArea{{
		AreaID:       v1alpha1.BackboneAreaID,
		AreaType:     v1alpha1.OSPFAreaType{Type: v1alpha1.AreaTypeNormal},
		AreaNetworks: []v1alpha1.Reference{},
	}},
}

// NewOSPFRoute returns a fresh copy of the route template with networks
// placed into area 0 in the given order.
func NewOSPFRoute(networks []v1alpha1.Reference) *v1alpha1.OSPFRoute {
	r := cp.Deep(&routeTemplate)
	// The management center rejects null where it expects a list.
	r.RedistributeProtocols = orEmpty(r.RedistributeProtocols)
	r.FilterRules = orEmpty(r.FilterRules)
	r.SummaryAddresses = orEmpty(r.SummaryAddresses)
	r.Areas[0].AreaNetworks = append(orEmpty(r.Areas[0].AreaNetworks), networks...)
	return r
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// ResolveNetworks looks up the network object id of every role in order.
// Roles without a non-empty id are returned as skipped.
func ResolveNetworks(roles []config.Role, ids map[string]string) (networks []v1alpha1.Reference, skipped []config.Role) {
	for _, role := range roles {
		id := ids[role.Key]
		if id == "" {
			skipped = append(skipped, role)
			continue
		}
		networks = append(networks, v1alpha1.NetworkRef(id, role.Name))
	}
	return networks, skipped
}
