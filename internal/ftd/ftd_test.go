// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package ftd_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironcore-dev/fmc-automation/internal/ftd"
	"github.com/ironcore-dev/fmc-automation/internal/ftd/ftdtest"
)

const command = "configure manager add fmc.example.com reg-key nat-id"

func TestSendCommand(t *testing.T) {
	srv := ftdtest.Start(t, "admin", "secret")

	c, err := ftd.Dial(t.Context(), ftd.Options{
		Host:           srv.Addr,
		Username:       "admin",
		Password:       "secret",
		KnownHostsPath: srv.KnownHosts(t),
		Timeout:        5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	out, err := c.SendCommand(t.Context(), command)
	require.NoError(t, err)
	assert.Equal(t, ftdtest.ManagerConfigured, out)

	require.Eventually(t, func() bool { return len(srv.Commands()) == 2 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{command, "exit"}, srv.Commands())

	srv.Respond("show managers", "Host : fmc.example.com\nRegistration : pending")
	out, err = c.SendCommand(t.Context(), "show managers")
	require.NoError(t, err)
	assert.Equal(t, "Host : fmc.example.com\nRegistration : pending", out)
}

func TestSendCommand_KeyboardInteractive(t *testing.T) {
	srv := ftdtest.Start(t, "admin", "secret", ftdtest.WithKeyboardInteractive())

	c, err := ftd.Dial(t.Context(), ftd.Options{
		Host:                     srv.Addr,
		Username:                 "admin",
		Password:                 "secret",
		InsecureSkipHostKeyCheck: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	out, err := c.SendCommand(t.Context(), "unknown")
	require.NoError(t, err)
	assert.Contains(t, out, "Invalid input")
}

func TestSendCommand_Empty(t *testing.T) {
	srv := ftdtest.Start(t, "admin", "secret")
	c, err := ftd.Dial(t.Context(), ftd.Options{Host: srv.Addr, Username: "admin", Password: "secret", InsecureSkipHostKeyCheck: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = c.SendCommand(t.Context(), "  ")
	require.ErrorIs(t, err, ftd.ErrNoCommand)
	assert.Empty(t, srv.Commands())
}

func TestSendCommand_Canceled(t *testing.T) {
	srv := ftdtest.Start(t, "admin", "secret")
	srv.Hang("slow", "working...")
	c, err := ftd.Dial(t.Context(), ftd.Options{Host: srv.Addr, Username: "admin", Password: "secret", InsecureSkipHostKeyCheck: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()
	_, err = c.SendCommand(ctx, "slow")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDial(t *testing.T) {
	srv := ftdtest.Start(t, "admin", "secret")

	other := filepath.Join(t.TempDir(), "known_hosts")
	require.NoError(t, os.WriteFile(other, nil, 0o600))

	tests := []struct {
		name string
		opts ftd.Options
		want error
	}{
		{
			name: "missing everything",
			opts: ftd.Options{},
			want: ftd.ErrNoHost,
		},
		{
			name: "missing password",
			opts: ftd.Options{Host: srv.Addr, Username: "admin"},
			want: ftd.ErrNoPassword,
		},
		{
			name: "wrong password",
			opts: ftd.Options{Host: srv.Addr, Username: "admin", Password: "wrong", InsecureSkipHostKeyCheck: true},
		},
		{
			name: "unknown host key",
			opts: ftd.Options{Host: srv.Addr, Username: "admin", Password: "secret", KnownHostsPath: other},
		},
		{
			name: "missing known hosts file",
			opts: ftd.Options{Host: srv.Addr, Username: "admin", Password: "secret", KnownHostsPath: filepath.Join(t.TempDir(), "missing")},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			test.opts.Timeout = 5 * time.Second
			c, err := ftd.Dial(t.Context(), test.opts)
			require.Error(t, err)
			assert.Nil(t, c)
			if test.want != nil {
				assert.ErrorIs(t, err, test.want)
			}
		})
	}
}
