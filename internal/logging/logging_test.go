// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"bytes"
	"testing"

	. "github.com/onsi/gomega"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{level: "debug", want: zapcore.DebugLevel},
		{level: "info", want: zapcore.InfoLevel},
		{level: "", want: zapcore.InfoLevel},
		{level: "warn", want: zapcore.WarnLevel},
		{level: "error", want: zapcore.ErrorLevel},
		{level: "verbose", want: zapcore.InfoLevel, wantErr: true},
	}
	for _, test := range tests {
		t.Run(test.level, func(t *testing.T) {
			g := NewWithT(t)
			got, err := ParseLevel(test.level)
			if test.wantErr {
				g.Expect(err).To(MatchError(ContainSubstring("possible values")))
			} else {
				g.Expect(err).ToNot(HaveOccurred())
			}
			g.Expect(got).To(Equal(test.want))
		})
	}
}

func TestNew(t *testing.T) {
	g := NewWithT(t)

	var buf bytes.Buffer
	log, err := New(LevelInfo, &buf)
	g.Expect(err).ToNot(HaveOccurred())
	log.Info("visible", "device", "dev-1")
	log.V(1).Info("hidden")
	g.Expect(buf.String()).To(ContainSubstring("visible"))
	g.Expect(buf.String()).To(ContainSubstring("dev-1"))
	g.Expect(buf.String()).ToNot(ContainSubstring("hidden"))

	buf.Reset()
	log, err = New(LevelDebug, &buf)
	g.Expect(err).ToNot(HaveOccurred())
	log.V(1).Info("shown")
	g.Expect(buf.String()).To(ContainSubstring("shown"))

	_, err = New("loud", &buf)
	g.Expect(err).To(HaveOccurred())
}
