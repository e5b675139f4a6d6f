// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/config"
)

func TestResolveNetworks(t *testing.T) {
	all := map[string]string{
		"attacker_id":    "net-1",
		"data_center_id": "net-2",
		"apps_id":        "net-3",
		"dmz_id":         "net-4",
		"outside_id":     "net-5",
		"transport_id":   "net-6",
		"unknown_id":     "net-7",
	}

	tests := []struct {
		name        string
		roles       []config.Role
		ids         map[string]string
		wantIDs     []string
		wantNames   []string
		wantSkipped int
	}{
		{
			name:      "all six roles in fixed order",
			roles:     config.DefaultRoles(),
			ids:       all,
			wantIDs:   []string{"net-1", "net-2", "net-3", "net-4", "net-5", "net-6"},
			wantNames: []string{"Attacker", "Data-Center", "Apps", "DMZ", "Outside", "Transport"},
		},
		{
			name:        "subset",
			roles:       config.DefaultRoles(),
			ids:         map[string]string{"dmz_id": "net-d", "attacker_id": "net-a"},
			wantIDs:     []string{"net-a", "net-d"},
			wantNames:   []string{"Attacker", "DMZ"},
			wantSkipped: 4,
		},
		{
			name:        "empty value is skipped",
			roles:       config.DefaultRoles(),
			ids:         map[string]string{"attacker_id": ""},
			wantSkipped: 6,
		},
		{
			name:        "nothing",
			roles:       config.DefaultRoles(),
			wantSkipped: 6,
		},
		{
			name:      "custom roles",
			roles:     []config.Role{{Name: "Inside", Key: "unknown_id"}},
			ids:       all,
			wantIDs:   []string{"net-7"},
			wantNames: []string{"Inside"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			networks, skipped := ResolveNetworks(test.roles, test.ids)
			var ids, names []string
			for _, n := range networks {
				if n.Type != v1alpha1.TypeNetwork {
					t.Errorf("network %s has type %q, want %q", n.ID, n.Type, v1alpha1.TypeNetwork)
				}
				ids = append(ids, n.ID)
				names = append(names, n.Name)
			}
			if diff := cmp.Diff(test.wantIDs, ids); diff != "" {
				t.Errorf("ResolveNetworks() ids mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(test.wantNames, names); diff != "" {
				t.Errorf("ResolveNetworks() names mismatch (-want +got):\n%s", diff)
			}
			if len(skipped) != test.wantSkipped {
				t.Errorf("ResolveNetworks() skipped %d roles, want %d", len(skipped), test.wantSkipped)
			}
		})
	}
}

func TestNewOSPFRoute_Payload(t *testing.T) {
	route := NewOSPFRoute([]v1alpha1.Reference{
		v1alpha1.NetworkRef("net-a", "Attacker"),
		v1alpha1.NetworkRef("net-d", "DMZ"),
	})

	got, err := json.Marshal(route)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}

	data, err := os.ReadFile("testdata/ospf_route.json")
	if err != nil {
		t.Fatalf("os.ReadFile() error = %v", err)
	}
	var want bytes.Buffer
	if err := json.Compact(&want, data); err != nil {
		t.Fatalf("json.Compact() error = %v", err)
	}

	if diff := cmp.Diff(want.String(), string(got)); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestNewOSPFRoute_TemplateUntouched(t *testing.T) {
	a := NewOSPFRoute([]v1alpha1.Reference{v1alpha1.NetworkRef("net-a", "Attacker")})
	a.Areas[0].AreaNetworks[0].ID = "changed"
	a.ProcessConfiguration.AdministrativeDistance.External = 1

	b := NewOSPFRoute(nil)
	if n := b.NetworkCount(); n != 0 {
		t.Errorf("NetworkCount() = %d, want 0", n)
	}
	if d := b.ProcessConfiguration.AdministrativeDistance.External; d != v1alpha1.DefaultDistance {
		t.Errorf("external distance = %d, want %d", d, v1alpha1.DefaultDistance)
	}
	if len(routeTemplate.Areas[0].AreaNetworks) != 0 {
		t.Errorf("template was modified: %+v", routeTemplate.Areas[0])
	}
	if b.RedistributeProtocols == nil || b.FilterRules == nil || b.SummaryAddresses == nil {
		t.Error("lists must be empty, not nil")
	}
}
