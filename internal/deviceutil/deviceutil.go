// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0
package deviceutil

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironcore-dev/fmc-automation/internal/fmc"
)

// ErrNoCredentials is returned when a connection carries neither an api
// token nor a username and password.
var ErrNoCredentials = errors.New("no api token or username and password configured")

// Connection holds everything needed to reach a management center.
type Connection struct {
	// Address is the base url of the management center.
	Address string
	// Token is a bearer token issued by Security Cloud Control.
	Token string // #nosec G117
	// Username and Password are used to request an access token from an
	// on-prem management center.
	Username string
	Password string // #nosec G117
	// DomainUUID pins the domain. If empty, the domain reported during
	// authentication or the global domain is used.
	DomainUUID string
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
	// Timeout bounds every single request.
	Timeout time.Duration
}

// Validate checks that the connection can be used to authenticate.
func (c *Connection) Validate() error {
	if _, err := fmc.NormalizeURL(c.Address); err != nil {
		return err
	}
	if strings.TrimSpace(c.Token) == "" && (c.Username == "" || c.Password == "") {
		return ErrNoCredentials
	}
	if c.DomainUUID != "" {
		if _, err := uuid.Parse(c.DomainUUID); err != nil {
			return fmt.Errorf("invalid domain uuid %q: %w", c.DomainUUID, err)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	return nil
}

// Authenticator returns the authenticator matching the configured
// credentials. A token takes precedence over username and password.
func (c *Connection) Authenticator() fmc.Authenticator {
	if strings.TrimSpace(c.Token) != "" {
		return fmc.BearerToken(c.Token)
	}
	return fmc.BasicAuth{Username: c.Username, Password: c.Password}
}

// Options returns the client options derived from the connection.
func (c *Connection) Options() []fmc.Option {
	opts := []fmc.Option{
		fmc.WithInsecureSkipVerify(c.InsecureSkipVerify),
		fmc.WithTimeout(c.Timeout),
	}
	if c.DomainUUID != "" {
		opts = append(opts, fmc.WithDomainUUID(c.DomainUUID))
	}
	return opts
}
