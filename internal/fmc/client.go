// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package fmc

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

const (
	// DefaultDomainUUID is the global domain. It is the only domain of a
	// cdFMC tenant and the default domain of an on-prem FMC.
	DefaultDomainUUID = "e276abec-e0f2-11e3-8169-6d9ed49b625f"

	// DefaultTimeout bounds every single request.
	DefaultTimeout = 30 * time.Second

	// DefaultPageSize is the number of items requested per page when listing.
	DefaultPageSize = 100

	configAPIPrefix = "/api/fmc_config/v1/domain/"
)

// Client is a REST client for the configuration API of a Firepower
// Management Center. Paths passed to its methods are relative to the
// domain, e.g. "devices/devicerecords/{id}/routing/ospfv2routes".
// Paths starting with a slash are resolved against the base URL instead.
type Client interface {
	// Get retrieves a single object and unmarshals it into out.
	Get(ctx context.Context, path string, out any) error
	// List retrieves all items of a collection, following pagination.
	List(ctx context.Context, path string) ([]json.RawMessage, error)
	// Create posts a new object. Only 200 and 201 are accepted.
	Create(ctx context.Context, path string, in, out any) error
	// Submit posts a request that is processed asynchronously by the
	// management center. Only 200 and 202 are accepted.
	Submit(ctx context.Context, path string, in, out any) error
	// Update replaces an existing object.
	Update(ctx context.Context, path string, in, out any) error
	// Delete removes an object. 200 and 204 are accepted.
	Delete(ctx context.Context, path string) error
	// Upload posts a multipart form.
	Upload(ctx context.Context, path string, form *Form, out any) error
	// DomainUUID returns the domain all relative paths are resolved in.
	DomainUUID() string
}

type client struct {
	baseURL  string
	domain   string
	auth     Authenticator
	header   http.Header
	http     *http.Client
	timeout  time.Duration
	pageSize int
	insecure bool
	logger   logr.Logger
}

var (
	_ Client = &client{}
)

// New creates a new Client for the management center reachable at baseURL
// and authenticates using auth.
// The domain is taken from [WithDomainUUID] if set, otherwise from the
// authentication response, otherwise [DefaultDomainUUID] is used.
// By default, the client uses [slog.Default] for logging.
// Use [WithLogger] to provide a custom logger.
func New(ctx context.Context, baseURL string, auth Authenticator, opts ...Option) (Client, error) {
	if auth == nil {
		return nil, errors.New("fmc: authenticator must not be nil")
	}
	u, err := NormalizeURL(baseURL)
	if err != nil {
		return nil, err
	}
	c := &client{
		baseURL:  u,
		auth:     auth,
		timeout:  DefaultTimeout,
		pageSize: DefaultPageSize,
		logger:   logr.FromSlogHandler(slog.Default().Handler()),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{Transport: transport(c.insecure)}
	}

	actx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	s, err := auth.Authenticate(actx, c.http, c.baseURL)
	if err != nil {
		return nil, err
	}
	c.header = s.Header
	if c.domain == "" {
		c.domain = s.DomainUUID
	}
	if c.domain == "" {
		c.domain = DefaultDomainUUID
	}
	c.logger.V(1).Info("Authenticated", "url", c.baseURL, "domain", c.domain)
	return c, nil
}

type Option func(*client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger logr.Logger) Option {
	return func(c *client) {
		c.logger = logger
	}
}

// WithHTTPClient sets the http client used for all requests.
// [WithInsecureSkipVerify] has no effect if a client is provided.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.http = hc
	}
}

// WithTimeout sets the timeout applied to every single request.
func WithTimeout(d time.Duration) Option {
	return func(c *client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithDomainUUID pins the domain instead of using the one returned by
// the authentication call.
func WithDomainUUID(domain string) Option {
	return func(c *client) {
		c.domain = domain
	}
}

// WithPageSize sets the number of items requested per page.
func WithPageSize(n int) Option {
	return func(c *client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithInsecureSkipVerify disables TLS certificate verification. Management
// centers frequently run with self-signed certificates.
func WithInsecureSkipVerify(skip bool) Option {
	return func(c *client) {
		c.insecure = skip
	}
}

func transport(insecure bool) http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return t
}

// NormalizeURL prefixes a bare host with "https://" and strips trailing
// slashes.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", errors.New("fmc: url must not be empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("fmc: invalid url %q: %w", raw, err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("fmc: invalid url %q: missing host", raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func (c *client) DomainUUID() string {
	return c.domain
}

func (c *client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out, http.StatusOK)
}

func (c *client) Create(ctx context.Context, path string, in, out any) error {
	return c.send(ctx, http.MethodPost, path, in, out, http.StatusOK, http.StatusCreated)
}

func (c *client) Submit(ctx context.Context, path string, in, out any) error {
	return c.send(ctx, http.MethodPost, path, in, out, http.StatusOK, http.StatusAccepted)
}

func (c *client) Update(ctx context.Context, path string, in, out any) error {
	return c.send(ctx, http.MethodPut, path, in, out, http.StatusOK)
}

func (c *client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", nil, http.StatusOK, http.StatusNoContent)
}

func (c *client) Upload(ctx context.Context, path string, form *Form, out any) error {
	if form == nil {
		return errors.New("fmc: form must not be nil")
	}
	body, contentType, err := form.Encode()
	if err != nil {
		return err
	}
	c.logger.V(1).Info("Uploading", "path", path, "fields", form.FieldNames())
	return c.do(ctx, http.MethodPost, path, body, contentType, out, http.StatusOK, http.StatusCreated, http.StatusAccepted)
}

// send marshals in as the JSON request body.
func (c *client) send(ctx context.Context, method, path string, in, out any, accept ...int) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("fmc: failed to marshal request body: %w", err)
	}
	c.logger.V(1).Info("Sending", "method", method, "path", path, "payload", string(b))
	return c.do(ctx, method, path, bytes.NewReader(b), "application/json", out, accept...)
}

// do performs a single request. Any status not in accept results in a
// [*StatusError]. If out is non-nil and the response has a body, it is
// unmarshalled into out.
func (c *client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any, accept ...int) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.url(path)
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("fmc: failed to create request: %w", err)
	}
	for k, v := range c.header {
		req.Header[k] = slices.Clone(v)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fmc: %s %s: %w", method, u, err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("fmc: %s %s: failed to read response: %w", method, u, err)
	}
	c.logger.V(1).Info("Received response", "method", method, "url", u, "status", res.StatusCode)

	if !slices.Contains(accept, res.StatusCode) {
		return &StatusError{Method: method, URL: u, Code: res.StatusCode, Body: b}
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("fmc: %s %s: failed to unmarshal response: %w", method, u, err)
	}
	return nil
}

func (c *client) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + configAPIPrefix + c.domain + "/" + path
}
