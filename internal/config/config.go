// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package config assembles the configuration of a single invocation from
// defaults, an optional YAML file, the environment and command line flags,
// in increasing order of precedence.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"sigs.k8s.io/yaml"

	"github.com/ironcore-dev/fmc-automation/internal/deviceutil"
	"github.com/ironcore-dev/fmc-automation/internal/fmc"
	"github.com/ironcore-dev/fmc-automation/internal/logging"
)

// Environment variables consulted when the corresponding flag is not set.
const (
	EnvConfig     = "FMC_CONFIG"
	EnvURL        = "FMC_URL"
	EnvAPIKey     = "FMC_API_KEY"
	EnvAPIKeyAlt  = "API_KEY"
	EnvDomainUUID = "FMC_DOMAIN_UUID"
	EnvUsername   = "FMC_USERNAME"
	EnvPassword   = "FMC_PASSWORD" // #nosec G101
)

const (
	ProviderCloudDelivered = "cisco-cdfmc"
	ProviderOnPrem         = "cisco-fmc"
)

// ErrMissingCredentials is returned when no credential was supplied for the
// selected provider. There is no built-in default.
var ErrMissingCredentials = errors.New("missing credentials")

// Strategy selects how an existing OSPF configuration is replaced.
type Strategy string

const (
	// StrategyRecreate deletes every existing configuration and creates a
	// fresh one.
	StrategyRecreate Strategy = "recreate"
	// StrategyUpdate overwrites a single existing configuration in place
	// and deletes any others.
	StrategyUpdate Strategy = "update"
)

// Role maps an OSPF network role to the key under which its network object
// id is passed in.
type Role struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

// DefaultRoles are the networks announced into area 0, in order.
func DefaultRoles() []Role {
	return []Role{
		{Name: "Attacker", Key: "attacker_id"},
		{Name: "Data-Center", Key: "data_center_id"},
		{Name: "Apps", Key: "apps_id"},
		{Name: "DMZ", Key: "dmz_id"},
		{Name: "Outside", Key: "outside_id"},
		{Name: "Transport", Key: "transport_id"},
	}
}

// Duration is a [time.Duration] that reads from strings like "30s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string like \"30s\": %w", err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Config is the configuration of a single invocation. It is built once by
// [Flags.Load] and not modified afterwards.
type Config struct {
	URL                string
	APIKey             string // #nosec G117
	Username           string
	Password           string // #nosec G117
	DomainUUID         string
	Provider           string
	Timeout            time.Duration
	InsecureSkipVerify bool
	LogLevel           string

	DeviceID      string
	NetworkIDs    map[string]string
	Roles         []Role
	EnableProcess bool
	Deploy        bool
	Strategy      Strategy
}

// Default returns the configuration used when nothing else is specified.
func Default() Config {
	return Config{
		Provider: ProviderCloudDelivered,
		Timeout:  fmc.DefaultTimeout,
		LogLevel: logging.LevelInfo,
		Roles:    DefaultRoles(),
		Strategy: StrategyRecreate,
	}
}

// File is the schema of the YAML configuration file. Secrets cannot be
// put into the file directly, only referenced by path.
type File struct {
	URL                *string   `json:"url,omitempty"`
	APIKeyFile         *string   `json:"apiKeyFile,omitempty"`
	Username           *string   `json:"username,omitempty"`
	PasswordFile       *string   `json:"passwordFile,omitempty"`
	DomainUUID         *string   `json:"domainUUID,omitempty"`
	Provider           *string   `json:"provider,omitempty"`
	Timeout            *Duration `json:"timeout,omitempty"`
	InsecureSkipVerify *bool     `json:"insecureSkipVerify,omitempty"`
	LogLevel           *string   `json:"logLevel,omitempty"`
	Roles              []Role    `json:"roles,omitempty"`
	EnableProcess      *bool     `json:"enableProcess,omitempty"`
	Deploy             *bool     `json:"deploy,omitempty"`
	Strategy           *Strategy `json:"strategy,omitempty"`
}

// ReadFile parses the YAML configuration file at path. Unknown fields are
// rejected.
func ReadFile(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	f := new(File)
	if err := yaml.UnmarshalStrict(b, f); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return f, nil
}

func (f *File) apply(c *Config) error {
	set(&c.URL, f.URL)
	set(&c.Username, f.Username)
	set(&c.DomainUUID, f.DomainUUID)
	set(&c.Provider, f.Provider)
	set(&c.InsecureSkipVerify, f.InsecureSkipVerify)
	set(&c.LogLevel, f.LogLevel)
	set(&c.EnableProcess, f.EnableProcess)
	set(&c.Deploy, f.Deploy)
	set(&c.Strategy, f.Strategy)
	if f.Timeout != nil {
		c.Timeout = f.Timeout.Duration
	}
	if len(f.Roles) > 0 {
		c.Roles = append([]Role(nil), f.Roles...)
	}
	if f.APIKeyFile != nil {
		key, err := readSecret(*f.APIKeyFile)
		if err != nil {
			return err
		}
		c.APIKey = key
	}
	if f.PasswordFile != nil {
		pw, err := readSecret(*f.PasswordFile)
		if err != nil {
			return err
		}
		c.Password = pw
	}
	return nil
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func readSecret(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}

// ParseNetworkIDs decodes the JSON object mapping role keys to network
// object ids. Numbers and booleans are taken by their JSON text, null
// values are dropped.
func ParseNetworkIDs(s string) (map[string]string, error) {
	if !gjson.Valid(s) {
		return nil, errors.New("invalid JSON format for network ids")
	}
	res := gjson.Parse(s)
	if !res.IsObject() {
		return nil, fmt.Errorf("network ids must be a JSON object, got %s", res.Type)
	}
	ids := make(map[string]string)
	var err error
	res.ForEach(func(key, value gjson.Result) bool {
		switch value.Type {
		case gjson.String:
			ids[key.Str] = value.Str
		case gjson.Number, gjson.True, gjson.False:
			ids[key.Str] = value.Raw
		case gjson.Null:
		default:
			err = fmt.Errorf("network id of %q must be a scalar, got %s", key.Str, value.Raw)
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Validate checks the connection related settings.
func (c *Config) Validate() error {
	if _, err := fmc.NormalizeURL(c.URL); err != nil {
		return fmt.Errorf("invalid fmc url: %w", err)
	}
	switch c.Provider {
	case ProviderCloudDelivered:
		if strings.TrimSpace(c.APIKey) == "" {
			return fmt.Errorf("%w: an api key is required for provider %s", ErrMissingCredentials, c.Provider)
		}
	case ProviderOnPrem:
		if c.Username == "" || c.Password == "" {
			return fmt.Errorf("%w: username and password are required for provider %s", ErrMissingCredentials, c.Provider)
		}
	default:
		return fmt.Errorf("unknown provider %q, must be one of [%s, %s]", c.Provider, ProviderCloudDelivered, ProviderOnPrem)
	}
	if c.DomainUUID != "" {
		if _, err := uuid.Parse(c.DomainUUID); err != nil {
			return fmt.Errorf("invalid domain uuid %q: %w", c.DomainUUID, err)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// ValidateOSPF checks the settings needed to reconcile OSPF in addition to
// [Config.Validate].
func (c *Config) ValidateOSPF() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DeviceID == "" {
		return errors.New("a device id is required")
	}
	if len(c.NetworkIDs) == 0 {
		return errors.New("network ids are required")
	}
	if len(c.Roles) == 0 {
		return errors.New("at least one role is required")
	}
	seen := make(map[string]bool, len(c.Roles))
	for _, r := range c.Roles {
		if r.Name == "" || r.Key == "" {
			return fmt.Errorf("role %q must have a name and a key", r.Name+r.Key)
		}
		if seen[r.Key] {
			return fmt.Errorf("duplicate role key %q", r.Key)
		}
		seen[r.Key] = true
	}
	switch c.Strategy {
	case StrategyRecreate, StrategyUpdate:
	default:
		return fmt.Errorf("unknown strategy %q, must be one of [%s, %s]", c.Strategy, StrategyRecreate, StrategyUpdate)
	}
	return nil
}

// Connection returns the connection parameters for the management center.
func (c *Config) Connection() *deviceutil.Connection {
	conn := &deviceutil.Connection{
		Address:            c.URL,
		Username:           c.Username,
		Password:           c.Password,
		DomainUUID:         c.DomainUUID,
		InsecureSkipVerify: c.InsecureSkipVerify,
		Timeout:            c.Timeout,
	}
	if c.Provider != ProviderOnPrem {
		conn.Token = c.APIKey
	}
	return conn
}

// MaskedAPIKey returns the first characters of the api key for display.
func (c *Config) MaskedAPIKey() string {
	if len(c.APIKey) <= 8 {
		return strings.Repeat("*", len(c.APIKey))
	}
	return c.APIKey[:8] + "..."
}
