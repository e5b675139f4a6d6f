// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package fmc

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		name     string
		err      *StatusError
		wantMsg  string
		wantAuth bool
	}{
		{
			name:    "with description",
			err:     &StatusError{Method: "POST", URL: "https://fmc/x", Code: 422, Body: []byte(`{"error":{"messages":[{"description":"Invalid area."},{"description":"Missing id."}]}}`)},
			wantMsg: "fmc: POST https://fmc/x: unexpected status 422 Unprocessable Entity: Invalid area.; Missing id.",
		},
		{
			name:    "plain body",
			err:     &StatusError{Method: "GET", URL: "https://fmc/x", Code: 500, Body: []byte("oops")},
			wantMsg: "fmc: GET https://fmc/x: unexpected status 500 Internal Server Error",
		},
		{
			name:     "unauthorized",
			err:      &StatusError{Method: "GET", URL: "https://fmc/x", Code: http.StatusUnauthorized},
			wantMsg:  "fmc: GET https://fmc/x: unexpected status 401 Unauthorized",
			wantAuth: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.err.Error(); got != test.wantMsg {
				t.Errorf("Error() = %q, want %q", got, test.wantMsg)
			}
			wrapped := fmt.Errorf("wrapped: %w", test.err)
			if got := errors.Is(wrapped, ErrUnauthenticated); got != test.wantAuth {
				t.Errorf("errors.Is(ErrUnauthenticated) = %v, want %v", got, test.wantAuth)
			}
			if got := StatusCode(wrapped); got != test.err.Code {
				t.Errorf("StatusCode() = %d, want %d", got, test.err.Code)
			}
		})
	}

	if StatusCode(errors.New("plain")) != 0 {
		t.Error("StatusCode() of a plain error must be 0")
	}
}

func TestWithQuery(t *testing.T) {
	got, err := withQuery("devices?filter=name%3Ax", map[string][]string{"limit": {"10"}})
	if err != nil {
		t.Fatalf("withQuery() error = %v", err)
	}
	if want := "devices?filter=name%3Ax&limit=10"; got != want {
		t.Errorf("withQuery() = %q, want %q", got, want)
	}
}
