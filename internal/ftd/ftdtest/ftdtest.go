// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package ftdtest provides an in-process SSH server that behaves like the
// command line of a Firepower Threat Defense device.
package ftdtest

import (
	"bufio"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	Banner = "Copyright 2004-2025, Cisco and/or its affiliates. All rights reserved."
	Prompt = "> "

	// ManagerConfigured is printed after a successful "configure manager add".
	ManagerConfigured = "Manager successfully configured."
	invalidInput      = "% Invalid input detected"
)

// Server is a fake device. Commands are answered from a table of prefixes.
type Server struct {
	Addr    string
	HostKey ssh.PublicKey

	mu        sync.Mutex
	responses map[string]string
	hanging   map[string]bool
	commands  []string
	ln        net.Listener
	config    *ssh.ServerConfig
}

type Option func(*Server)

// WithKeyboardInteractive makes the server accept the password through
// keyboard-interactive authentication only.
func WithKeyboardInteractive() Option {
	return func(s *Server) {
		password := s.config.PasswordCallback
		s.config.PasswordCallback = nil
		s.config.KeyboardInteractiveCallback = func(c ssh.ConnMetadata, challenge ssh.KeyboardInteractiveChallenge) (*ssh.Permissions, error) {
			answers, err := challenge("", "", []string{"Password: "}, []bool{false})
			if err != nil {
				return nil, err
			}
			if len(answers) != 1 {
				return nil, fmt.Errorf("expected one answer, got %d", len(answers))
			}
			return password(c, []byte(answers[0]))
		}
	}
}

// Start serves a fake device on a local port until the test ends.
func Start(tb testing.TB, username, password string, opts ...Option) *Server {
	tb.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		tb.Fatalf("failed to generate host key: %v", err)
	}
	signer, err := ssh.NewSignerFromKey(priv)
	if err != nil {
		tb.Fatalf("failed to create signer: %v", err)
	}

	s := &Server{
		HostKey: signer.PublicKey(),
		responses: map[string]string{
			"configure manager add": ManagerConfigured,
			"show managers":         "No managers configured.",
		},
		hanging: make(map[string]bool),
	}
	s.config = &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == username && string(pass) == password {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %q", c.User())
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.config.AddHostKey(signer)

	s.ln, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		tb.Fatalf("failed to listen: %v", err)
	}
	s.Addr = s.ln.Addr().String()
	tb.Cleanup(func() { _ = s.ln.Close() })
	go s.serve()
	return s
}

// Respond sets the output printed for commands starting with prefix.
func (s *Server) Respond(prefix, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[prefix] = output
}

// Hang makes commands starting with prefix print output without ever
// returning to the prompt.
func (s *Server) Hang(prefix, output string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[prefix] = output
	s.hanging[prefix] = true
}

// Commands returns every line received on a shell.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// KnownHosts writes a known_hosts file trusting the server and returns its
// path.
func (s *Server) KnownHosts(tb testing.TB) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "known_hosts")
	line := knownhosts.Line([]string{s.Addr}, s.HostKey)
	if err := os.WriteFile(path, []byte(line+"\n"), 0o600); err != nil {
		tb.Fatalf("failed to write known hosts: %v", err)
	}
	return path
}

func (s *Server) serve() {
	for {
		nc, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.handle(nc)
	}
}

func (s *Server) handle(nc net.Conn) {
	defer nc.Close()
	_, chans, reqs, err := ssh.NewServerConn(nc, s.config)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)
	for nch := range chans {
		if nch.ChannelType() != "session" {
			_ = nch.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}
		ch, requests, err := nch.Accept()
		if err != nil {
			return
		}
		go s.session(ch, requests)
	}
}

func (s *Server) session(ch ssh.Channel, reqs <-chan *ssh.Request) {
	for req := range reqs {
		switch req.Type {
		case "pty-req":
			_ = req.Reply(true, nil)
		case "shell":
			_ = req.Reply(true, nil)
			go s.shell(ch)
		default:
			_ = req.Reply(false, nil)
		}
	}
}

func (s *Server) shell(ch ssh.Channel) {
	defer ch.Close()
	fmt.Fprintf(ch, "%s\r\n\r\n%s", Banner, Prompt)
	sc := bufio.NewScanner(ch)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			fmt.Fprint(ch, Prompt)
			continue
		}
		s.mu.Lock()
		s.commands = append(s.commands, line)
		s.mu.Unlock()
		if line == "exit" {
			_, _ = ch.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{0}))
			return
		}
		out, hang := s.response(line)
		if hang {
			fmt.Fprint(ch, out)
			continue
		}
		fmt.Fprintf(ch, "%s\r\n%s", out, Prompt)
	}
}

func (s *Server) response(line string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	best := ""
	for prefix := range s.responses {
		if strings.HasPrefix(line, prefix) && len(prefix) > len(best) {
			best = prefix
		}
	}
	if best == "" {
		return invalidInput, false
	}
	return strings.ReplaceAll(s.responses[best], "\n", "\r\n"), s.hanging[best]
}
