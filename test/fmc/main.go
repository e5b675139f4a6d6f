// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Command fmc serves an in-memory Firepower Management Center for manual
// and end-to-end testing of the command line tools.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"

	"github.com/ironcore-dev/fmc-automation/internal/fmc/fmctest"
	"github.com/ironcore-dev/fmc-automation/internal/logging"
)

// server wraps the fake with the /v1/state endpoint.
type server struct {
	fmc *fmctest.FMC
}

// handleState dumps, replaces or drops the whole state of the fake.
func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.fmc.State.RLock()
		defer s.fmc.State.RUnlock()
		w.Header().Set("Content-Type", "application/json")
		if len(s.fmc.State.Buf) == 0 {
			w.Write([]byte("{}"))
			return
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, s.fmc.State.Buf); err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Write(buf.Bytes())
	case http.MethodPut:
		b, err := io.ReadAll(r.Body)
		if err != nil || !json.Valid(b) {
			http.Error(w, "invalid JSON document", http.StatusBadRequest)
			return
		}
		s.fmc.Reset()
		s.fmc.State.Lock()
		s.fmc.State.Buf = b
		s.fmc.State.Unlock()
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		s.fmc.Reset()
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func main() {
	addr := flag.String("address", ":8443", "The address to listen on.")
	token := flag.String("token", "", "The accepted bearer token. Defaults to a random token printed at startup.")
	username := flag.String("username", "admin", "The on-prem user allowed to request access tokens.")
	password := flag.String("password", "", "Password of the on-prem user. Defaults to the token.")
	certFile := flag.String("tls-cert", "", "TLS certificate. Serves plain HTTP if unset.")
	keyFile := flag.String("tls-key", "", "TLS private key.")
	logLevel := flag.String("log-level", "info", "Log level, one of [debug, info, warn, error].")
	flag.Parse()

	log, err := logging.New(*logLevel, os.Stderr)
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}

	if *token == "" {
		*token = fmctest.RandomToken()
	}
	if *password == "" {
		*password = *token
	}
	s := &server{fmc: fmctest.New(
		fmctest.WithToken(*token),
		fmctest.WithUser(*username, *password),
		fmctest.WithLogger(slog.New(logr.ToSlogHandler(log))),
	)}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/state", s.handleState)
	mux.Handle("/", s.fmc)
	srv := &http.Server{Addr: *addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			log.Error(err, "Failed to shut down")
		}
	}()

	log.Info("Starting management center", "address", *addr, "token", *token, "username", *username, "domain", s.fmc.Domain)
	log.Info("State endpoint available", "path", "/v1/state")
	if *certFile != "" {
		err = srv.ListenAndServeTLS(*certFile, *keyFile)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error(err, "Failed to serve")
		os.Exit(1)
	}
}
