// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package fmc

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrUnauthenticated is returned when the management center rejects the
// supplied credentials.
var ErrUnauthenticated = errors.New("fmc: unauthenticated")

// StatusError is returned when the management center answers with a status
// code the operation does not accept.
type StatusError struct {
	Method string
	URL    string
	Code   int
	Body   []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("fmc: %s %s: unexpected status %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
	if d := e.Description(); d != "" {
		msg += ": " + d
	}
	return msg
}

// Description returns the error descriptions the management center put
// into the response body, if any.
//
//	{"error": {"category": "FRAMEWORK", "messages": [{"description": "..."}], "severity": "ERROR"}}
func (e *StatusError) Description() string {
	var msgs []string
	for _, r := range gjson.GetBytes(e.Body, "error.messages.#.description").Array() {
		if s := strings.TrimSpace(r.String()); s != "" {
			msgs = append(msgs, s)
		}
	}
	return strings.Join(msgs, "; ")
}

// Is reports 401 responses as [ErrUnauthenticated].
func (e *StatusError) Is(target error) bool {
	return target == ErrUnauthenticated && e.Code == http.StatusUnauthorized
}

// StatusCode returns the status code carried by err, or 0 if err is not
// a [*StatusError].
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
