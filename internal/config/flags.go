// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"flag"
	"strings"
	"time"
)

// Flags holds the command line flags shared by all binaries.
type Flags struct {
	fs *flag.FlagSet

	configFile         string
	url                string
	apiKey             string
	apiKeyFile         string
	username           string
	password           string
	domainUUID         string
	provider           string
	timeout            time.Duration
	insecureSkipVerify bool
	logLevel           string

	deviceID      string
	networkIDs    string
	enableProcess bool
	deploy        bool
	strategy      string
}

// RegisterFlags registers the connection flags on fs. If ospf is set, the
// flags selecting what to reconcile are registered as well.
func RegisterFlags(fs *flag.FlagSet, ospf bool) *Flags {
	def := Default()
	f := &Flags{fs: fs}
	fs.StringVar(&f.configFile, "config", "", "Path to a YAML configuration file. Defaults to $"+EnvConfig+".")
	fs.StringVar(&f.url, "fmc-url", "", "Base URL of the management center. Defaults to $"+EnvURL+".")
	fs.StringVar(&f.apiKey, "api-key", "", "API token for a cloud-delivered management center. Defaults to $"+EnvAPIKey+" or $"+EnvAPIKeyAlt+".")
	fs.StringVar(&f.apiKeyFile, "api-key-file", "", "Path to a file containing the API token.")
	fs.StringVar(&f.username, "username", "", "Username for an on-prem management center. Defaults to $"+EnvUsername+".")
	fs.StringVar(&f.password, "password", "", "Password for an on-prem management center. Defaults to $"+EnvPassword+".")
	fs.StringVar(&f.domainUUID, "domain-uuid", "", "Domain to operate in. Defaults to $"+EnvDomainUUID+", the domain reported at login or the global domain.")
	fs.StringVar(&f.provider, "provider", def.Provider, "The provider to use. Available providers: "+ProviderCloudDelivered+", "+ProviderOnPrem)
	fs.DurationVar(&f.timeout, "timeout", def.Timeout, "Timeout of every single request.")
	fs.BoolVar(&f.insecureSkipVerify, "insecure-skip-verify", false, "Skip verification of the management center's TLS certificate.")
	fs.StringVar(&f.logLevel, "log-level", def.LogLevel, "Log level, one of [debug, info, warn, error].")
	if ospf {
		fs.StringVar(&f.deviceID, "device-id", "", "Id of the device record to configure (required).")
		fs.StringVar(&f.networkIDs, "network-ids", "", `JSON object mapping role keys to network object ids, e.g. {"attacker_id":"..."}; numbers and booleans are used as written, null is ignored (required).`)
		fs.BoolVar(&f.enableProcess, "enable-process", false, "Ensure OSPF process 1 is enabled before configuring it.")
		fs.BoolVar(&f.deploy, "deploy", false, "Deploy the configuration to the device afterwards.")
		fs.StringVar(&f.strategy, "strategy", string(def.Strategy), "How to replace an existing configuration, one of [recreate, update].")
	}
	return f
}

// Load assembles the configuration after the flag set has been parsed.
// getenv is typically [os.Getenv]. Flags registered on the set by the
// caller are ignored.
func (f *Flags) Load(getenv func(string) string) (Config, error) {
	cfg := Default()

	path := f.configFile
	if path == "" {
		path = getenv(EnvConfig)
	}
	if path != "" {
		file, err := ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := file.apply(&cfg); err != nil {
			return Config{}, err
		}
	}

	env(&cfg.URL, getenv(EnvURL))
	env(&cfg.APIKey, getenv(EnvAPIKeyAlt))
	env(&cfg.APIKey, getenv(EnvAPIKey))
	env(&cfg.DomainUUID, getenv(EnvDomainUUID))
	env(&cfg.Username, getenv(EnvUsername))
	env(&cfg.Password, getenv(EnvPassword))

	var err error
	f.fs.Visit(func(fl *flag.Flag) {
		if err != nil {
			return
		}
		err = f.apply(&cfg, fl.Name)
	})
	if err != nil {
		return Config{}, err
	}
	cfg.URL = strings.TrimSpace(cfg.URL)
	return cfg, nil
}

func (f *Flags) apply(cfg *Config, name string) error {
	switch name {
	case "fmc-url":
		cfg.URL = f.url
	case "api-key":
		cfg.APIKey = f.apiKey
	case "api-key-file":
		key, err := readSecret(f.apiKeyFile)
		if err != nil {
			return err
		}
		cfg.APIKey = key
	case "username":
		cfg.Username = f.username
	case "password":
		cfg.Password = f.password
	case "domain-uuid":
		cfg.DomainUUID = f.domainUUID
	case "provider":
		cfg.Provider = f.provider
	case "timeout":
		cfg.Timeout = f.timeout
	case "insecure-skip-verify":
		cfg.InsecureSkipVerify = f.insecureSkipVerify
	case "log-level":
		cfg.LogLevel = f.logLevel
	case "device-id":
		cfg.DeviceID = f.deviceID
	case "network-ids":
		ids, err := ParseNetworkIDs(f.networkIDs)
		if err != nil {
			return err
		}
		cfg.NetworkIDs = ids
	case "enable-process":
		cfg.EnableProcess = f.enableProcess
	case "deploy":
		cfg.Deploy = f.deploy
	case "strategy":
		cfg.Strategy = Strategy(f.strategy)
	}
	return nil
}

func env(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
