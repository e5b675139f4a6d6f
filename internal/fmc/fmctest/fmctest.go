// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package fmctest provides an in-memory Firepower Management Center that
// serves the subset of the REST API used by this module.
package fmctest

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/ironcore-dev/fmc-automation/internal/fmc"
)

const (
	// DefaultToken is the bearer token accepted by default.
	DefaultToken = "test-token"

	configPrefix = "/api/fmc_config/v1/domain/"
)

// Request is a request received by the fake.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
}

type failure struct {
	method  string
	pattern string
	code    int
	times   int
}

// FMC is an in-memory management center. It implements [http.Handler].
type FMC struct {
	// Token is the accepted bearer token.
	Token string
	// Domain is the only domain served.
	Domain string
	// URL is set by [Start].
	URL string

	State *State

	mu         sync.Mutex
	users      map[string]string
	sessions   map[string]bool
	requests   []Request
	failures   []*failure
	dropWrites bool
	logger     *slog.Logger
}

var _ http.Handler = (*FMC)(nil)

type Option func(*FMC)

// WithToken sets the accepted bearer token.
func WithToken(token string) Option {
	return func(f *FMC) {
		f.Token = token
	}
}

// WithDomain sets the served domain.
func WithDomain(domain string) Option {
	return func(f *FMC) {
		f.Domain = domain
	}
}

// WithUser adds an on-prem user that may request access tokens.
func WithUser(username, password string) Option {
	return func(f *FMC) {
		f.users[username] = password
	}
}

// WithLogger sets the logger requests are logged to.
func WithLogger(logger *slog.Logger) Option {
	return func(f *FMC) {
		f.logger = logger
	}
}

// RandomToken returns a fresh random token.
func RandomToken() string {
	return uuid.NewString()
}

// New returns an empty management center.
func New(opts ...Option) *FMC {
	f := &FMC{
		Token:    DefaultToken,
		Domain:   fmc.DefaultDomainUUID,
		State:    &State{},
		users:    make(map[string]string),
		sessions: make(map[string]bool),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Start serves a new management center on a local port until the test
// ends.
func Start(tb testing.TB, opts ...Option) *FMC {
	tb.Helper()
	f := New(opts...)
	srv := httptest.NewServer(f)
	tb.Cleanup(srv.Close)
	f.URL = srv.URL
	return f
}

// Fail makes the next times requests with the given method whose path
// contains pattern fail with code. If times is zero or less, all matching
// requests fail.
func (f *FMC) Fail(method, pattern string, code, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, &failure{method: strings.ToUpper(method), pattern: pattern, code: code, times: times})
}

// DropWrites makes create calls succeed without persisting anything.
func (f *FMC) DropWrites(drop bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dropWrites = drop
}

// Reset drops all objects, injected failures and recorded requests.
// Users and sessions are kept.
func (f *FMC) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.State.Reset()
	f.requests = nil
	f.failures = nil
	f.dropWrites = false
}

// Requests returns all requests received so far.
func (f *FMC) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

// Count returns the number of requests with the given method whose path
// contains pattern.
func (f *FMC) Count(method, pattern string) int {
	var n int
	for _, r := range f.Requests() {
		if r.Method == method && strings.Contains(r.Path, pattern) {
			n++
		}
	}
	return n
}

func routesPath(device string) string  { return "devices." + key(device) + ".ospfv2routes" }
func processPath(device string) string { return "devices." + key(device) + ".ospfv2process" }

const (
	policiesPath    = "platformsettings"
	assignmentsPath = "assignments"
	deploymentsPath = "deployments"
	importsPath     = "imports"
)

// AddOSPFRoute stores an OSPF route configuration for device and returns
// its id. If raw has no id, one is generated.
func (f *FMC) AddOSPFRoute(device string, raw []byte) string {
	id := gjson.GetBytes(raw, "id").String()
	if id == "" {
		id = uuid.NewString()
		raw, _ = sjson.SetBytes(raw, "id", id)
	}
	f.State.Append(routesPath(device), raw)
	return id
}

// OSPFRoutes returns the OSPF route configurations of device.
func (f *FMC) OSPFRoutes(device string) []gjson.Result {
	return f.State.Items(routesPath(device))
}

// OSPFProcess returns the OSPF process of device.
func (f *FMC) OSPFProcess(device string) gjson.Result {
	return f.State.Get(processPath(device))
}

// AddPlatformSettingsPolicy stores a platform settings policy and returns
// its id.
func (f *FMC) AddPlatformSettingsPolicy(name string) string {
	id := uuid.NewString()
	raw, _ := json.Marshal(map[string]string{"type": "FTDPlatformSettingsPolicy", "id": id, "name": name})
	f.State.Append(policiesPath, raw)
	return id
}

// Assignments returns all policy assignments received.
func (f *FMC) Assignments() []gjson.Result { return f.State.Items(assignmentsPath) }

// Deployments returns all deployment requests received.
func (f *FMC) Deployments() []gjson.Result { return f.State.Items(deploymentsPath) }

// Imports returns all configuration imports received.
func (f *FMC) Imports() []gjson.Result { return f.State.Items(importsPath) }

func (f *FMC) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}
	f.mu.Lock()
	f.requests = append(f.requests, Request{Method: r.Method, Path: r.URL.Path, Query: r.URL.Query(), Body: body})
	f.mu.Unlock()
	f.logger.Info("Received request", "method", r.Method, "path", r.URL.Path)

	if r.URL.Path == fmc.TokenPath {
		f.handleToken(w, r)
		return
	}
	if !f.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Invalid or expired access token.")
		return
	}
	if code, ok := f.failure(r); ok {
		writeError(w, code, "Injected failure.")
		return
	}

	rest, ok := strings.CutPrefix(r.URL.Path, configPrefix+f.Domain+"/")
	if !ok {
		writeError(w, http.StatusNotFound, "Domain not found.")
		return
	}
	seg := strings.Split(strings.Trim(rest, "/"), "/")
	switch {
	case len(seg) == 5 && seg[0] == "devices" && seg[1] == "devicerecords" && seg[3] == "routing" && seg[4] == "ospfv2routes":
		f.handleRoutes(w, r, seg[2], body)
	case len(seg) == 6 && seg[0] == "devices" && seg[1] == "devicerecords" && seg[3] == "routing" && seg[4] == "ospfv2routes":
		f.handleRoute(w, r, seg[2], seg[5], body)
	case len(seg) == 5 && seg[0] == "devices" && seg[1] == "devicerecords" && seg[3] == "routing" && seg[4] == "ospfv2process":
		f.handleProcess(w, r, seg[2], body)
	case rest == "deployment/deploymentrequests":
		f.handleDeployment(w, r, body)
	case rest == "policy/ftdplatformsettingspolicies":
		f.handleList(w, r, policiesPath)
	case rest == "assignment/policyassignments":
		f.handleAssignment(w, r, body)
	case rest == "devices/operational/imports":
		f.handleImport(w, r, body)
	default:
		writeError(w, http.StatusNotFound, "Resource not found.")
	}
}

func (f *FMC) authorized(r *http.Request) bool {
	if tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && tok == f.Token {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[r.Header.Get(fmc.HeaderAccessToken)]
}

func (f *FMC) failure(r *http.Request) (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, fl := range f.failures {
		if fl.method != r.Method || !strings.Contains(r.URL.Path, fl.pattern) {
			continue
		}
		if fl.times > 0 {
			fl.times--
			if fl.times == 0 {
				f.failures = append(f.failures[:i], f.failures[i+1:]...)
			}
		}
		return fl.code, true
	}
	return 0, false
}

func (f *FMC) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	user, pass, ok := r.BasicAuth()
	f.mu.Lock()
	defer f.mu.Unlock()
	if want, exists := f.users[user]; !ok || !exists || want != pass {
		writeError(w, http.StatusUnauthorized, "Invalid credentials.")
		return
	}
	token := uuid.NewString()
	f.sessions[token] = true
	w.Header().Set(fmc.HeaderAccessToken, token)
	w.Header().Set(fmc.HeaderRefreshToken, uuid.NewString())
	w.Header().Set(fmc.HeaderDomainUUID, f.Domain)
	w.WriteHeader(http.StatusNoContent)
}

func (f *FMC) handleRoutes(w http.ResponseWriter, r *http.Request, device string, body []byte) {
	switch r.Method {
	case http.MethodGet:
		f.handleList(w, r, routesPath(device))
	case http.MethodPost:
		if !gjson.ValidBytes(body) || gjson.GetBytes(body, "type").String() != "OspfRoute" {
			writeError(w, http.StatusBadRequest, "Invalid OspfRoute payload.")
			return
		}
		id := uuid.NewString()
		body, _ = sjson.SetBytes(body, "id", id)
		f.mu.Lock()
		drop := f.dropWrites
		f.mu.Unlock()
		if !drop {
			f.State.Append(routesPath(device), body)
		}
		writeJSON(w, http.StatusCreated, body)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (f *FMC) handleRoute(w http.ResponseWriter, r *http.Request, device, id string, body []byte) {
	path := routesPath(device)
	switch r.Method {
	case http.MethodGet:
		res, ok := f.State.Lookup(path, id)
		if !ok {
			writeError(w, http.StatusNotFound, "OspfRoute not found.")
			return
		}
		writeJSON(w, http.StatusOK, []byte(res.Raw))
	case http.MethodPut:
		if !gjson.ValidBytes(body) {
			writeError(w, http.StatusBadRequest, "Invalid payload.")
			return
		}
		body, _ = sjson.SetBytes(body, "id", id)
		if !f.State.Replace(path, id, body) {
			writeError(w, http.StatusNotFound, "OspfRoute not found.")
			return
		}
		writeJSON(w, http.StatusOK, body)
	case http.MethodDelete:
		res, ok := f.State.Lookup(path, id)
		if !ok {
			writeError(w, http.StatusNotFound, "OspfRoute not found.")
			return
		}
		f.State.Remove(path, id)
		writeJSON(w, http.StatusOK, []byte(res.Raw))
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (f *FMC) handleProcess(w http.ResponseWriter, r *http.Request, device string, body []byte) {
	path := processPath(device)
	switch r.Method {
	case http.MethodGet:
		res := f.State.Get(path)
		if !res.Exists() {
			writeError(w, http.StatusNotFound, "OspfV2Process not configured.")
			return
		}
		writeJSON(w, http.StatusOK, []byte(res.Raw))
	case http.MethodPost:
		if !gjson.ValidBytes(body) {
			writeError(w, http.StatusBadRequest, "Invalid payload.")
			return
		}
		body, _ = sjson.SetBytes(body, "id", uuid.NewString())
		f.State.Set(path, body)
		writeJSON(w, http.StatusCreated, body)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}

func (f *FMC) handleDeployment(w http.ResponseWriter, r *http.Request, body []byte) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	if !gjson.ValidBytes(body) || len(gjson.GetBytes(body, "deviceList").Array()) == 0 {
		writeError(w, http.StatusBadRequest, "deviceList must not be empty.")
		return
	}
	f.State.Append(deploymentsPath, body)
	res, _ := sjson.SetBytes(body, "metadata.task.id", uuid.NewString())
	res, _ = sjson.SetBytes(res, "metadata.task.type", "TaskStatus")
	writeJSON(w, http.StatusAccepted, res)
}

func (f *FMC) handleAssignment(w http.ResponseWriter, r *http.Request, body []byte) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	policy := gjson.GetBytes(body, "policy.id").String()
	if f.State.Index(policiesPath, policy) < 0 {
		writeError(w, http.StatusBadRequest, "Policy "+policy+" not found.")
		return
	}
	body, _ = sjson.SetBytes(body, "id", uuid.NewString())
	f.State.Append(assignmentsPath, body)
	writeJSON(w, http.StatusCreated, body)
}

func (f *FMC) handleImport(w http.ResponseWriter, r *http.Request, body []byte) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	r.Body = io.NopCloser(strings.NewReader(string(body)))
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	file, hdr, err := r.FormFile("payloadFile")
	if err != nil {
		writeError(w, http.StatusBadRequest, "payloadFile is required.")
		return
	}
	defer file.Close()
	rec, _ := json.Marshal(map[string]any{
		"type":          "ImportRequest",
		"id":            uuid.NewString(),
		"name":          r.FormValue("name"),
		"deviceList":    json.RawMessage(rawOrNull(r.FormValue("deviceList"))),
		"importOptions": json.RawMessage(rawOrNull(r.FormValue("importOptions"))),
		"fileName":      hdr.Filename,
		"fileSize":      hdr.Size,
	})
	f.State.Append(importsPath, rec)
	writeJSON(w, http.StatusAccepted, rec)
}

// handleList serves a paged collection the way the management center
// does: "items" is left out when there is nothing to return.
func (f *FMC) handleList(w http.ResponseWriter, r *http.Request, path string) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed.")
		return
	}
	all := f.State.Items(path)
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 25
	}
	offset = min(max(offset, 0), len(all))
	end := min(offset+limit, len(all))

	res := []byte(`{}`)
	res, _ = sjson.SetBytes(res, "links.self", r.URL.String())
	for _, item := range all[offset:end] {
		res, _ = sjson.SetRawBytes(res, "items.-1", []byte(item.Raw))
	}
	pages := (len(all) + limit - 1) / limit
	res, _ = sjson.SetBytes(res, "paging.offset", offset)
	res, _ = sjson.SetBytes(res, "paging.limit", limit)
	res, _ = sjson.SetBytes(res, "paging.count", len(all))
	res, _ = sjson.SetBytes(res, "paging.pages", pages)
	writeJSON(w, http.StatusOK, res)
}

func rawOrNull(s string) []byte {
	if s == "" || !gjson.Valid(s) {
		return []byte("null")
	}
	return []byte(s)
}

func writeJSON(w http.ResponseWriter, code int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(b)
}

func writeError(w http.ResponseWriter, code int, description string) {
	b := fmt.Appendf(nil, `{"error":{"category":"FRAMEWORK","messages":[{"description":%q}],"severity":"ERROR"}}`, description)
	writeJSON(w, code, b)
}
