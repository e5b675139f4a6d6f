// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package ftd drives the command line of a Cisco Firepower Threat Defense
// device over SSH. It is used to register a device with its management
// center by sending the "configure manager add" command generated there.
package ftd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

const (
	DefaultPort    = "22"
	DefaultPrompt  = ">"
	DefaultTimeout = 30 * time.Second
)

var (
	ErrNoHost     = errors.New("ftd: host is required")
	ErrNoUsername = errors.New("ftd: username is required")
	ErrNoPassword = errors.New("ftd: password is required")
	ErrNoCommand  = errors.New("ftd: command is required")
)

// Options configures the SSH connection to a device.
type Options struct {
	// Host is the address of the device, optionally with a port.
	Host     string
	Username string
	Password string // #nosec G117
	// KnownHostsPath defaults to ~/.ssh/known_hosts.
	KnownHostsPath string
	// InsecureSkipHostKeyCheck accepts any host key.
	InsecureSkipHostKeyCheck bool
	// Prompt is the suffix of the command line prompt.
	Prompt  string
	Timeout time.Duration
}

func (o *Options) validate() error {
	var errs []error
	if strings.TrimSpace(o.Host) == "" {
		errs = append(errs, ErrNoHost)
	}
	if o.Username == "" {
		errs = append(errs, ErrNoUsername)
	}
	if o.Password == "" {
		errs = append(errs, ErrNoPassword)
	}
	return errors.Join(errs...)
}

func (o *Options) address() string {
	host := strings.TrimSpace(o.Host)
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, DefaultPort)
}

func (o *Options) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if o.InsecureSkipHostKeyCheck {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec
	}
	path := o.KnownHostsPath
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.New("ftd: known hosts path not set and home dir unavailable")
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("ftd: failed to load known hosts: %w", err)
	}
	return cb, nil
}

// Client is an SSH connection to a device.
type Client struct {
	conn    *ssh.Client
	prompt  string
	timeout time.Duration
}

// Dial connects and authenticates to the device. Both password and
// keyboard-interactive authentication are offered.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Prompt == "" {
		opts.Prompt = DefaultPrompt
	}
	cb, err := opts.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	password := opts.Password
	config := &ssh.ClientConfig{
		User: opts.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: cb,
		Timeout:         opts.Timeout,
	}

	addr := opts.address()
	logr.FromContextOrDiscard(ctx).V(1).Info("Connecting to device", "address", addr, "username", opts.Username)

	d := net.Dialer{Timeout: opts.Timeout}
	nc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("ftd: failed to connect to %s: %w", addr, err)
	}
	c, chans, reqs, err := ssh.NewClientConn(nc, addr, config)
	if err != nil {
		_ = nc.Close()
		return nil, fmt.Errorf("ftd: ssh handshake with %s failed: %w", addr, err)
	}
	return &Client{
		conn:    ssh.NewClient(c, chans, reqs),
		prompt:  opts.Prompt,
		timeout: opts.Timeout,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// SendCommand opens an interactive shell, waits for the prompt, sends
// command and returns everything the device printed until the prompt
// reappeared. The echoed command and the trailing prompt are removed.
func (c *Client) SendCommand(ctx context.Context, command string) (out string, reterr error) {
	log := logr.FromContextOrDiscard(ctx)
	if strings.TrimSpace(command) == "" {
		return "", ErrNoCommand
	}

	session, err := c.conn.NewSession()
	if err != nil {
		return "", fmt.Errorf("ftd: failed to create ssh session: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil && !errors.Is(err, io.EOF) {
			reterr = errors.Join(reterr, fmt.Errorf("ftd: failed to close ssh session: %w", err))
		}
	}()

	modes := ssh.TerminalModes{ssh.ECHO: 0, ssh.TTY_OP_ISPEED: 14400, ssh.TTY_OP_OSPEED: 14400}
	if err := session.RequestPty("vt100", 0, 512, modes); err != nil {
		return "", fmt.Errorf("ftd: failed to request pty: %w", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("ftd: failed to open stdin: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("ftd: failed to open stdout: %w", err)
	}
	if err := session.Shell(); err != nil {
		return "", fmt.Errorf("ftd: failed to start shell: %w", err)
	}

	r := newPromptReader(stdout, c.prompt)
	defer r.stop()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if _, err := r.readUntilPrompt(ctx); err != nil {
		return "", fmt.Errorf("ftd: waiting for prompt: %w", err)
	}
	log.V(1).Info("Sending command", "command", command)
	if _, err := io.WriteString(stdin, command+"\n"); err != nil {
		return "", fmt.Errorf("ftd: failed to send command: %w", err)
	}
	raw, err := r.readUntilPrompt(ctx)
	if err != nil {
		return clean(raw, command, c.prompt), fmt.Errorf("ftd: waiting for command output: %w", err)
	}
	// The device closes the session on exit, its error is of no interest.
	_, _ = io.WriteString(stdin, "exit\n")
	return clean(raw, command, c.prompt), nil
}

// promptReader collects the output of a shell in the background.
type promptReader struct {
	prompt string
	chunks chan []byte
	errc   chan error
	done   chan struct{}
	buf    bytes.Buffer
}

func newPromptReader(r io.Reader, prompt string) *promptReader {
	p := &promptReader{
		prompt: prompt,
		chunks: make(chan []byte),
		errc:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go func() {
		b := make([]byte, 4096)
		for {
			n, err := r.Read(b)
			if n > 0 {
				select {
				case p.chunks <- bytes.Clone(b[:n]):
				case <-p.done:
					return
				}
			}
			if err != nil {
				p.errc <- err
				close(p.chunks)
				return
			}
		}
	}()
	return p
}

// stop releases the background reader.
func (p *promptReader) stop() {
	close(p.done)
}

// readUntilPrompt returns the output received until the prompt is seen at
// the end of it.
func (p *promptReader) readUntilPrompt(ctx context.Context) (string, error) {
	for {
		if atPrompt(p.buf.Bytes(), p.prompt) {
			out := p.buf.String()
			p.buf.Reset()
			return out, nil
		}
		select {
		case <-ctx.Done():
			return p.buf.String(), ctx.Err()
		case chunk, ok := <-p.chunks:
			if !ok {
				err := <-p.errc
				if errors.Is(err, io.EOF) {
					err = io.ErrUnexpectedEOF
				}
				p.errc <- err
				return p.buf.String(), err
			}
			p.buf.Write(chunk)
		}
	}
}

func atPrompt(b []byte, prompt string) bool {
	return bytes.HasSuffix(bytes.TrimRight(b, " \t"), []byte(prompt))
}

func clean(raw, command, prompt string) string {
	s := strings.ReplaceAll(raw, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimRight(s, " \t")
	s = strings.TrimSuffix(s, prompt)
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == strings.TrimSpace(command) {
		lines = lines[1:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
