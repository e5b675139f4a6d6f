// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package controller

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/deviceutil"
	"github.com/ironcore-dev/fmc-automation/internal/provider"
)

var (
	_ provider.OSPFProvider             = &MockProvider{}
	_ provider.DeploymentProvider       = &MockProvider{}
	_ provider.PlatformSettingsProvider = &MockProvider{}
	_ provider.ImportProvider           = &MockProvider{}
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) Connect(ctx context.Context, conn *deviceutil.Connection) error {
	return m.Called(conn).Error(0)
}

func (m *MockProvider) Disconnect(ctx context.Context, conn *deviceutil.Connection) error {
	return m.Called(conn).Error(0)
}

func (m *MockProvider) GetOSPFProcess(ctx context.Context, deviceID string) (*v1alpha1.OSPFProcess, error) {
	args := m.Called(deviceID)
	proc, _ := args.Get(0).(*v1alpha1.OSPFProcess)
	return proc, args.Error(1)
}

func (m *MockProvider) EnableOSPFProcess(ctx context.Context, req *provider.OSPFProcessRequest) error {
	return m.Called(req).Error(0)
}

func (m *MockProvider) ListOSPFRoutes(ctx context.Context, deviceID string) ([]v1alpha1.OSPFRoute, error) {
	args := m.Called(deviceID)
	routes, _ := args.Get(0).([]v1alpha1.OSPFRoute)
	return routes, args.Error(1)
}

func (m *MockProvider) CreateOSPFRoute(ctx context.Context, req *provider.OSPFRouteRequest) (*v1alpha1.OSPFRoute, error) {
	args := m.Called(req)
	route, _ := args.Get(0).(*v1alpha1.OSPFRoute)
	return route, args.Error(1)
}

func (m *MockProvider) UpdateOSPFRoute(ctx context.Context, req *provider.OSPFRouteRequest) (*v1alpha1.OSPFRoute, error) {
	args := m.Called(req)
	route, _ := args.Get(0).(*v1alpha1.OSPFRoute)
	return route, args.Error(1)
}

func (m *MockProvider) DeleteOSPFRoute(ctx context.Context, deviceID, id string) error {
	return m.Called(deviceID, id).Error(0)
}

func (m *MockProvider) Deploy(ctx context.Context, req *provider.DeployRequest) (string, error) {
	// The request is mutated between attempts, record a copy.
	r := *req
	args := m.Called(r)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) ListPlatformSettingsPolicies(ctx context.Context) ([]v1alpha1.Reference, error) {
	args := m.Called()
	refs, _ := args.Get(0).([]v1alpha1.Reference)
	return refs, args.Error(1)
}

func (m *MockProvider) AssignPolicy(ctx context.Context, req *provider.PolicyAssignmentRequest) error {
	return m.Called(req).Error(0)
}

func (m *MockProvider) ImportBackup(ctx context.Context, req *provider.ImportRequest) (*provider.ImportResult, error) {
	args := m.Called(req)
	res, _ := args.Get(0).(*provider.ImportResult)
	return res, args.Error(1)
}

// ospfOnly hides the optional capabilities of the mock.
type ospfOnly struct {
	provider.OSPFProvider
}
