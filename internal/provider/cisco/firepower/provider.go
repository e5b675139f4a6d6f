// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package firepower implements the providers for Cisco Firepower
// Management Center, both cloud-delivered and on-prem, over its REST API.
package firepower

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-logr/logr"
	"k8s.io/utils/ptr"

	"github.com/ironcore-dev/fmc-automation/api/v1alpha1"
	"github.com/ironcore-dev/fmc-automation/internal/deviceutil"
	"github.com/ironcore-dev/fmc-automation/internal/fmc"
	"github.com/ironcore-dev/fmc-automation/internal/provider"
)

var (
	_ provider.Provider                 = &Provider{}
	_ provider.OSPFProvider             = &Provider{}
	_ provider.DeploymentProvider       = &Provider{}
	_ provider.PlatformSettingsProvider = &Provider{}
	_ provider.ImportProvider           = &Provider{}
)

const (
	// CloudDelivered is the name of the provider for cdFMC tenants,
	// authenticating with an api token.
	CloudDelivered = "cisco-cdfmc"
	// OnPrem is the name of the provider for on-prem management centers,
	// authenticating with username and password.
	OnPrem = "cisco-fmc"
)

type Provider struct {
	onPrem bool
	client fmc.Client
	opts   []fmc.Option
}

// NewProvider returns a provider for a cloud-delivered management center.
func NewProvider(opts ...fmc.Option) provider.Provider {
	return &Provider{opts: opts}
}

// NewOnPremProvider returns a provider for an on-prem management center.
func NewOnPremProvider(opts ...fmc.Option) provider.Provider {
	return &Provider{onPrem: true, opts: opts}
}

func (p *Provider) Connect(ctx context.Context, conn *deviceutil.Connection) (err error) {
	if err := conn.Validate(); err != nil {
		return fmt.Errorf("invalid connection: %w", err)
	}
	var auth fmc.Authenticator
	switch {
	case p.onPrem && (conn.Username == "" || conn.Password == ""):
		return errors.New("on-prem management center requires username and password")
	case p.onPrem:
		auth = fmc.BasicAuth{Username: conn.Username, Password: conn.Password}
	case strings.TrimSpace(conn.Token) == "":
		return errors.New("cloud-delivered management center requires an api token")
	default:
		auth = conn.Authenticator()
	}
	opts := append(conn.Options(), fmc.WithLogger(logr.FromContextOrDiscard(ctx)))
	opts = append(opts, p.opts...)
	p.client, err = fmc.New(ctx, conn.Address, auth, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to management center: %w", err)
	}
	return nil
}

func (p *Provider) Disconnect(context.Context, *deviceutil.Connection) error {
	p.client = nil
	return nil
}

func (p *Provider) connected() error {
	if p.client == nil {
		return errors.New("client is not connected")
	}
	return nil
}

func routingPath(deviceID, resource string) string {
	return "devices/devicerecords/" + url.PathEscape(deviceID) + "/routing/" + resource
}

func (p *Provider) GetOSPFProcess(ctx context.Context, deviceID string) (*v1alpha1.OSPFProcess, error) {
	if err := p.connected(); err != nil {
		return nil, err
	}
	proc := new(v1alpha1.OSPFProcess)
	if err := p.client.Get(ctx, routingPath(deviceID, "ospfv2process"), proc); err != nil {
		if fmc.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return proc, nil
}

func (p *Provider) EnableOSPFProcess(ctx context.Context, req *provider.OSPFProcessRequest) error {
	if err := p.connected(); err != nil {
		return err
	}
	name := req.ProcessName
	if name == "" {
		name = v1alpha1.DefaultOSPFProcessName
	}
	proc := &v1alpha1.OSPFProcess{
		Type:        v1alpha1.TypeOSPFProcess,
		ProcessName: name,
		Enabled:     ptr.To(true),
	}
	return p.client.Create(ctx, routingPath(req.DeviceID, "ospfv2process"), proc, nil)
}

func (p *Provider) ListOSPFRoutes(ctx context.Context, deviceID string) ([]v1alpha1.OSPFRoute, error) {
	if err := p.connected(); err != nil {
		return nil, err
	}
	return fmc.ListAs[v1alpha1.OSPFRoute](ctx, p.client, routingPath(deviceID, "ospfv2routes"))
}

func (p *Provider) CreateOSPFRoute(ctx context.Context, req *provider.OSPFRouteRequest) (*v1alpha1.OSPFRoute, error) {
	if err := p.connected(); err != nil {
		return nil, err
	}
	res := new(v1alpha1.OSPFRoute)
	if err := p.client.Create(ctx, routingPath(req.DeviceID, "ospfv2routes"), req.Route, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Provider) UpdateOSPFRoute(ctx context.Context, req *provider.OSPFRouteRequest) (*v1alpha1.OSPFRoute, error) {
	if err := p.connected(); err != nil {
		return nil, err
	}
	if req.Route.ID == "" {
		return nil, errors.New("ospf route id must not be empty")
	}
	res := new(v1alpha1.OSPFRoute)
	path := routingPath(req.DeviceID, "ospfv2routes") + "/" + url.PathEscape(req.Route.ID)
	if err := p.client.Update(ctx, path, req.Route, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Provider) DeleteOSPFRoute(ctx context.Context, deviceID, id string) error {
	if err := p.connected(); err != nil {
		return err
	}
	if id == "" {
		return errors.New("ospf route id must not be empty")
	}
	return p.client.Delete(ctx, routingPath(deviceID, "ospfv2routes")+"/"+url.PathEscape(id))
}

func (p *Provider) Deploy(ctx context.Context, req *provider.DeployRequest) (string, error) {
	if err := p.connected(); err != nil {
		return "", err
	}
	if len(req.DeviceIDs) == 0 {
		return "", errors.New("deployment requires at least one device")
	}
	dr := &v1alpha1.DeploymentRequest{
		Type:          v1alpha1.TypeDeploymentRequest,
		DeviceList:    req.DeviceIDs,
		ForceDeploy:   ptr.To(req.Force),
		IgnoreWarning: ptr.To(req.IgnoreWarning),
	}
	task := new(v1alpha1.DeploymentTask)
	if err := p.client.Submit(ctx, "deployment/deploymentrequests", dr, task); err != nil {
		return "", err
	}
	return task.TaskID(), nil
}

func (p *Provider) ListPlatformSettingsPolicies(ctx context.Context) ([]v1alpha1.Reference, error) {
	if err := p.connected(); err != nil {
		return nil, err
	}
	return fmc.ListAs[v1alpha1.Reference](ctx, p.client, "policy/ftdplatformsettingspolicies")
}

func (p *Provider) AssignPolicy(ctx context.Context, req *provider.PolicyAssignmentRequest) error {
	if err := p.connected(); err != nil {
		return err
	}
	if len(req.DeviceIDs) == 0 {
		return errors.New("policy assignment requires at least one device")
	}
	a := v1alpha1.NewPolicyAssignment(req.Policy, req.DeviceIDs...)
	return p.client.Create(ctx, "assignment/policyassignments", a, nil)
}

func (p *Provider) ImportBackup(ctx context.Context, req *provider.ImportRequest) (*provider.ImportResult, error) {
	if err := p.connected(); err != nil {
		return nil, err
	}
	if req.Content == nil {
		return nil, errors.New("backup content must not be nil")
	}
	form := new(fmc.Form)
	if err := form.AddJSON("deviceList", req.DeviceIDs); err != nil {
		return nil, err
	}
	if err := form.AddJSON("importOptions", req.Options); err != nil {
		return nil, err
	}
	form.AddField("name", req.Name)
	form.AddFile("payloadFile", req.FileName, "application/octet-stream", req.Content)

	var raw json.RawMessage
	if err := p.client.Upload(ctx, "devices/operational/imports", form, &raw); err != nil {
		return nil, err
	}
	return &provider.ImportResult{Raw: raw}, nil
}

func init() {
	provider.Register(CloudDelivered, func() provider.Provider { return NewProvider() })
	provider.Register(OnPrem, func() provider.Provider { return NewOnPremProvider() })
}
