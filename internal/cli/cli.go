// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the plumbing shared by the command line tools.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/go-logr/logr"

	"github.com/ironcore-dev/fmc-automation/internal/config"
	"github.com/ironcore-dev/fmc-automation/internal/logging"
	"github.com/ironcore-dev/fmc-automation/internal/provider"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Parse parses args into fs. It returns done when the program should exit
// with code right away, e.g. after printing the usage.
func Parse(fs *flag.FlagSet, args []string) (code int, done bool) {
	err := fs.Parse(args)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return ExitOK, true
	case err != nil:
		return ExitFailure, true
	case fs.NArg() > 0:
		fmt.Fprintf(fs.Output(), "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		fs.Usage()
		return ExitFailure, true
	}
	return ExitOK, false
}

// Logger creates the logger for level writing to w and stores it in ctx.
func Logger(ctx context.Context, level string, w io.Writer) (context.Context, logr.Logger, error) {
	log, err := logging.New(level, w)
	if err != nil {
		return ctx, logr.Discard(), err
	}
	return logr.NewContext(ctx, log), log, nil
}

// Session is a connected provider.
type Session struct {
	Provider provider.Provider
	conn     *config.Config
}

// Connect creates the provider selected in cfg and connects it to the
// management center.
func Connect(ctx context.Context, cfg *config.Config) (*Session, error) {
	fn, err := provider.Get(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("%w, available providers: %s", err, strings.Join(provider.Providers(), ", "))
	}
	p := fn()
	if err := p.Connect(ctx, cfg.Connection()); err != nil {
		return nil, err
	}
	return &Session{Provider: p, conn: cfg}, nil
}

// Close disconnects the provider.
func (s *Session) Close(ctx context.Context) {
	if err := s.Provider.Disconnect(ctx, s.conn.Connection()); err != nil {
		logr.FromContextOrDiscard(ctx).Error(err, "Failed to disconnect")
	}
}

// As returns the provider as T, or an error naming the capability if the
// provider lacks it.
func As[T any](s *Session, capability string) (T, error) {
	p, ok := s.Provider.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider %s does not support %s: %w", s.conn.Provider, capability, provider.ErrUnimplemented)
	}
	return p, nil
}
