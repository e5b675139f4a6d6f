// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package firepower

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/deviceutil"
	"github.com/ironcore-dev/fmc-automation/internal/fmc/fmctest"
	"github.com/ironcore-dev/fmc-automation/internal/provider"
)

const device = "dev-1"

func connect(t *testing.T, srv *fmctest.FMC) *Provider {
	t.Helper()
	p := NewProvider().(*Provider)
	require.NoError(t, p.Connect(t.Context(), &deviceutil.Connection{Address: srv.URL, Token: srv.Token}))
	t.Cleanup(func() { _ = p.Disconnect(t.Context(), nil) })
	return p
}

func TestRegistered(t *testing.T) {
	assert.Subset(t, provider.Providers(), []string{CloudDelivered, OnPrem})

	fn, err := provider.Get(OnPrem)
	require.NoError(t, err)
	_, ok := fn().(provider.OSPFProvider)
	assert.True(t, ok)
}

func TestConnect(t *testing.T) {
	srv := fmctest.Start(t, fmctest.WithUser("admin", "secret"))

	tests := []struct {
		name    string
		prov    provider.Provider
		conn    *deviceutil.Connection
		wantErr string
	}{
		{
			name: "cloud-delivered token",
			prov: NewProvider(),
			conn: &deviceutil.Connection{Address: srv.URL, Token: fmctest.DefaultToken},
		},
		{
			name:    "cloud-delivered without token",
			prov:    NewProvider(),
			conn:    &deviceutil.Connection{Address: srv.URL, Username: "admin", Password: "secret"},
			wantErr: "requires an api token",
		},
		{
			name: "on-prem credentials",
			prov: NewOnPremProvider(),
			conn: &deviceutil.Connection{Address: srv.URL, Username: "admin", Password: "secret"},
		},
		{
			name:    "on-prem without password",
			prov:    NewOnPremProvider(),
			conn:    &deviceutil.Connection{Address: srv.URL, Token: "abc", Username: "admin"},
			wantErr: "requires username and password",
		},
		{
			name:    "on-prem wrong password",
			prov:    NewOnPremProvider(),
			conn:    &deviceutil.Connection{Address: srv.URL, Username: "admin", Password: "nope"},
			wantErr: "unauthenticated",
		},
		{
			name:    "invalid connection",
			prov:    NewProvider(),
			conn:    &deviceutil.Connection{Token: "abc"},
			wantErr: "invalid connection",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.prov.Connect(t.Context(), test.conn)
			if test.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), test.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNotConnected(t *testing.T) {
	p := NewProvider().(*Provider)
	_, err := p.ListOSPFRoutes(t.Context(), device)
	assert.ErrorContains(t, err, "not connected")
	assert.ErrorContains(t, p.DeleteOSPFRoute(t.Context(), device, "x"), "not connected")
}

func TestOSPFProcess(t *testing.T) {
	srv := fmctest.Start(t)
	p := connect(t, srv)

	proc, err := p.GetOSPFProcess(t.Context(), device)
	require.NoError(t, err)
	assert.Nil(t, proc)

	require.NoError(t, p.EnableOSPFProcess(t.Context(), &provider.OSPFProcessRequest{DeviceID: device}))
	got := srv.OSPFProcess(device)
	assert.Equal(t, v1alpha1.TypeOSPFProcess, got.Get("type").String())
	assert.Equal(t, v1alpha1.DefaultOSPFProcessName, got.Get("processName").String())
	assert.True(t, got.Get("enabled").Bool())

	proc, err = p.GetOSPFProcess(t.Context(), device)
	require.NoError(t, err)
	require.NotNil(t, proc)
	assert.Equal(t, v1alpha1.DefaultOSPFProcessName, proc.ProcessName)

	srv.Fail(http.MethodGet, "ospfv2process", http.StatusInternalServerError, 1)
	_, err = p.GetOSPFProcess(t.Context(), device)
	assert.Error(t, err)
}

func TestOSPFRoutes(t *testing.T) {
	srv := fmctest.Start(t)
	p := connect(t, srv)
	ctx := t.Context()

	route := &v1alpha1.OSPFRoute{
		Type:          v1alpha1.TypeOSPFRoute,
		ProcessID:     v1alpha1.DefaultOSPFProcessID,
		EnableProcess: v1alpha1.DefaultOSPFProcessName,
		Areas: []v1alpha1.OSPFArea{{
			AreaID:       v1alpha1.BackboneAreaID,
			AreaType:     v1alpha1.OSPFAreaType{Type: v1alpha1.AreaTypeNormal},
			AreaNetworks: []v1alpha1.Reference{v1alpha1.NetworkRef("net-a", "Attacker")},
		}},
	}
	created, err := p.CreateOSPFRoute(ctx, &provider.OSPFRouteRequest{DeviceID: device, Route: route})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Empty(t, route.ID, "request must not be mutated")

	routes, err := p.ListOSPFRoutes(ctx, device)
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, 1, routes[0].NetworkCount())
	assert.Equal(t, "net-a", routes[0].Areas[0].AreaNetworks[0].ID)

	upd := *created
	upd.Areas = nil
	_, err = p.UpdateOSPFRoute(ctx, &provider.OSPFRouteRequest{DeviceID: device, Route: &upd})
	require.NoError(t, err)
	routes, err = p.ListOSPFRoutes(ctx, device)
	require.NoError(t, err)
	assert.Zero(t, routes[0].NetworkCount())

	_, err = p.UpdateOSPFRoute(ctx, &provider.OSPFRouteRequest{DeviceID: device, Route: route})
	assert.ErrorContains(t, err, "id must not be empty")

	require.NoError(t, p.DeleteOSPFRoute(ctx, device, created.ID))
	assert.Empty(t, srv.OSPFRoutes(device))
	assert.Error(t, p.DeleteOSPFRoute(ctx, device, created.ID))
	assert.Error(t, p.DeleteOSPFRoute(ctx, device, ""))
}

func TestDeploy(t *testing.T) {
	srv := fmctest.Start(t)
	p := connect(t, srv)

	task, err := p.Deploy(t.Context(), &provider.DeployRequest{DeviceIDs: []string{device}, Force: true, IgnoreWarning: true})
	require.NoError(t, err)
	assert.NotEmpty(t, task)

	deployments := srv.Deployments()
	require.Len(t, deployments, 1)
	assert.Equal(t, v1alpha1.TypeDeploymentRequest, deployments[0].Get("type").String())
	assert.Equal(t, device, deployments[0].Get("deviceList.0").String())
	assert.True(t, deployments[0].Get("forceDeploy").Bool())
	assert.True(t, deployments[0].Get("ignoreWarning").Bool())

	_, err = p.Deploy(t.Context(), &provider.DeployRequest{})
	assert.Error(t, err)
}

func TestPlatformSettings(t *testing.T) {
	srv := fmctest.Start(t)
	id := srv.AddPlatformSettingsPolicy("vFTD-platform-policy")
	srv.AddPlatformSettingsPolicy("other")
	p := connect(t, srv)

	policies, err := p.ListPlatformSettingsPolicies(t.Context())
	require.NoError(t, err)
	require.Len(t, policies, 2)
	assert.Equal(t, id, policies[0].ID)
	assert.Equal(t, v1alpha1.TypeFTDPlatformSettingsPolicy, policies[0].Type)

	require.NoError(t, p.AssignPolicy(t.Context(), &provider.PolicyAssignmentRequest{Policy: policies[0], DeviceIDs: []string{device}}))
	assignments := srv.Assignments()
	require.Len(t, assignments, 1)
	assert.Equal(t, id, assignments[0].Get("policy.id").String())
	assert.Equal(t, v1alpha1.TypeDevice, assignments[0].Get("targets.0.type").String())
	assert.Equal(t, device, assignments[0].Get("targets.0.id").String())

	err = p.AssignPolicy(t.Context(), &provider.PolicyAssignmentRequest{Policy: v1alpha1.Reference{ID: "missing"}, DeviceIDs: []string{device}})
	assert.ErrorContains(t, err, "not found")
}

func TestImportBackup(t *testing.T) {
	srv := fmctest.Start(t)
	p := connect(t, srv)

	res, err := p.ImportBackup(t.Context(), &provider.ImportRequest{
		Name:      "Automation_Backup",
		DeviceIDs: []string{device},
		FileName:  "site_s2s.sfo",
		Content:   strings.NewReader("sfo"),
		Options:   v1alpha1.ImportOptionsFor("site_s2s.sfo"),
	})
	require.NoError(t, err)
	assert.Contains(t, string(res.Raw), "ImportRequest")

	imports := srv.Imports()
	require.Len(t, imports, 1)
	assert.Equal(t, "Automation_Backup", imports[0].Get("name").String())
	assert.True(t, imports[0].Get("importOptions.includeS2sVpnPoliciesOnly").Bool())
	assert.False(t, imports[0].Get("importOptions.includeSharedPolicies").Exists())

	_, err = p.ImportBackup(t.Context(), &provider.ImportRequest{FileName: "x"})
	assert.Error(t, err)
}
