// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package fmc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	// TokenPath is the endpoint issuing access tokens on an on-prem FMC.
	TokenPath = "/api/fmc_platform/v1/auth/generatetoken"

	// HeaderAccessToken carries the access token issued by [TokenPath].
	HeaderAccessToken = "X-auth-access-token"
	// HeaderRefreshToken carries the refresh token issued by [TokenPath].
	HeaderRefreshToken = "X-auth-refresh-token"
	// HeaderDomainUUID carries the global domain of the authenticated user.
	HeaderDomainUUID = "DOMAIN_UUID"
)

// Session holds the result of a successful authentication.
type Session struct {
	// Header is added to every request.
	Header http.Header
	// DomainUUID is the domain reported by the management center, empty
	// if it did not report one.
	DomainUUID string
}

// Authenticator obtains the credentials sent with every request.
type Authenticator interface {
	Authenticate(ctx context.Context, hc *http.Client, baseURL string) (*Session, error)
}

// BearerToken authenticates against a cloud-delivered FMC using an API
// token created in Security Cloud Control. No request is made.
type BearerToken string

var _ Authenticator = BearerToken("")

func (t BearerToken) Authenticate(context.Context, *http.Client, string) (*Session, error) {
	token := strings.TrimSpace(string(t))
	if token == "" {
		return nil, fmt.Errorf("%w: api token must not be empty", ErrUnauthenticated)
	}
	h := make(http.Header)
	h.Set("Authorization", "Bearer "+token)
	return &Session{Header: h}, nil
}

// BasicAuth authenticates against an on-prem FMC by requesting an access
// token with the given username and password.
type BasicAuth struct {
	Username string
	Password string // #nosec G117
}

var _ Authenticator = BasicAuth{}

func (a BasicAuth) Authenticate(ctx context.Context, hc *http.Client, baseURL string) (*Session, error) {
	if a.Username == "" || a.Password == "" {
		return nil, fmt.Errorf("%w: username and password must not be empty", ErrUnauthenticated)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+TokenPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("fmc: failed to create token request: %w", err)
	}
	req.SetBasicAuth(a.Username, a.Password)
	res, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fmc: failed to request access token: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK, http.StatusNoContent:
	default:
		b, _ := io.ReadAll(res.Body)
		err := &StatusError{Method: req.Method, URL: req.URL.String(), Code: res.StatusCode, Body: b}
		return nil, fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	token := res.Header.Get(HeaderAccessToken)
	if token == "" {
		return nil, errors.New("fmc: token response is missing the " + HeaderAccessToken + " header")
	}
	h := make(http.Header)
	h.Set(HeaderAccessToken, token)
	return &Session{
		Header:     h,
		DomainUUID: res.Header.Get(HeaderDomainUUID),
	}, nil
}
