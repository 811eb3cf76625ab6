// Astra Villa - Smart Property Recommendation Engine
// Copyright 2026 Astra Villa (cipondok)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cipondok/astra-villa-nexus-sub017

package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogHandlerWritesToZerolog(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	slogger := NewSlogLogger()
	slogger.Info("supervisor event", "service", "http-server", "attempts", int64(2))

	out := buf.String()
	if !strings.Contains(out, "supervisor event") {
		t.Fatalf("message missing from output: %q", out)
	}
	if !strings.Contains(out, `"service":"http-server"`) {
		t.Errorf("string attr missing: %q", out)
	}
	if !strings.Contains(out, `"attempts":2`) {
		t.Errorf("int attr missing: %q", out)
	}
}

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	slogger := NewSlogLogger()
	slogger.Debug("d")
	slogger.Warn("w")
	slogger.Error("e")

	out := buf.String()
	for _, want := range []string{`"level":"debug"`, `"level":"warn"`, `"level":"error"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in output: %q", want, out)
		}
	}
}

func TestSlogHandlerWithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})

	slogger := NewSlogLogger().With("pinned", "yes").WithGroup("tree")
	slogger.Info("grouped", slog.String("name", "root"))

	out := buf.String()
	if !strings.Contains(out, `"pinned":"yes"`) {
		t.Errorf("pinned attr missing: %q", out)
	}
	if !strings.Contains(out, `"tree.name":"root"`) {
		t.Errorf("group-prefixed attr missing: %q", out)
	}
}
