// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

// Package progress prints the human facing progress lines of the command
// line tools. Structured diagnostics go to the logger instead.
package progress

import (
	"fmt"
	"io"
	"strings"
)

const (
	GlyphSuccess = "✅"
	GlyphFailure = "❌"
	GlyphWarning = "⚠️"
	GlyphInfo    = "ℹ️"
	GlyphDelete  = "🗑️"
	GlyphStart   = "🚀"
	GlyphDone    = "🎉"
)

// Printer writes progress lines. A nil *Printer discards everything.
type Printer struct {
	w io.Writer
}

func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) printf(format string, args ...any) {
	if p == nil || p.w == nil {
		return
	}
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Title prints a banner line followed by a rule.
func (p *Printer) Title(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.printf("%s %s", GlyphStart, msg)
	p.printf("%s", strings.Repeat("=", 60))
}

// Step prints the header of a numbered step.
func (p *Printer) Step(n int, format string, args ...any) {
	p.printf("\n%d. %s", n, fmt.Sprintf(format, args...))
}

func (p *Printer) Success(format string, args ...any) { p.item(GlyphSuccess, format, args...) }
func (p *Printer) Failure(format string, args ...any) { p.item(GlyphFailure, format, args...) }
func (p *Printer) Warning(format string, args ...any) { p.item(GlyphWarning, format, args...) }
func (p *Printer) Info(format string, args ...any)    { p.item(GlyphInfo, format, args...) }
func (p *Printer) Delete(format string, args ...any)  { p.item(GlyphDelete, format, args...) }

// Detail prints an indented line without a glyph.
func (p *Printer) Detail(format string, args ...any) {
	p.printf("   - %s", fmt.Sprintf(format, args...))
}

// Done prints the closing line of a successful run.
func (p *Printer) Done(format string, args ...any) {
	p.printf("\n%s %s", GlyphDone, fmt.Sprintf(format, args...))
}

func (p *Printer) item(glyph, format string, args ...any) {
	p.printf("   %s %s", glyph, fmt.Sprintf(format, args...))
}
