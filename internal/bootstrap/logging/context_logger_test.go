package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestWithAttrsReplacesDuplicateKeys(t *testing.T) {
	ctx := WithAttrs(context.Background(), slog.String("component", "a"), slog.Int64("issue_no", 1))
	ctx = WithAttrs(ctx, slog.String("component", "b"))

	attrs := Attrs(ctx)
	if len(attrs) != 2 {
		t.Fatalf("Attrs() len = %d, want 2: %v", len(attrs), attrs)
	}
	if attrs[0].Key != "component" || attrs[0].Value.String() != "b" {
		t.Fatalf("Attrs()[0] = %v", attrs[0])
	}
}

func TestJSONLoggerCarriesContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, "json", "debug"))
	ctx = WithComponent(ctx, "usecase.issue")

	Debug(ctx, "issue analyzed", slog.Int64("issue_no", 42))

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode log line: %v (%q)", err, buf.String())
	}
	if line["component"] != "usecase.issue" || line["msg"] != "issue analyzed" {
		t.Fatalf("log line = %v", line)
	}
}

func TestLevelFiltersLowerRecords(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, "text", "warn"))

	Info(ctx, "hidden")
	Warn(ctx, "visible")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "visible") {
		t.Fatalf("output = %q", out)
	}
	if ParseLevel("nonsense") != slog.LevelInfo {
		t.Fatalf("ParseLevel(nonsense) expected info fallback")
	}
}
