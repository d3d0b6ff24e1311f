package prompts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultCatalogRenders(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if c.OpponentPlaceholder != "[Opponent Name]" {
		t.Fatalf("OpponentPlaceholder = %q", c.OpponentPlaceholder)
	}

	got, err := c.Analysis(AnalysisInput{Conflict: "dispute A", Requirements: "refund"})
	if err != nil {
		t.Fatalf("Analysis() error = %v", err)
	}
	if !strings.Contains(got, "dispute A") || !strings.Contains(got, "refund") {
		t.Fatalf("Analysis() = %q", got)
	}

	got, err = c.Outreach(OutreachInput{Analysis: "summary"})
	if err != nil {
		t.Fatalf("Outreach() error = %v", err)
	}
	if !strings.Contains(got, "Hello [Opponent Name],") {
		t.Fatalf("Outreach() missing placeholder: %q", got)
	}

	got, err = c.Proposals(ProposalsInput{Conflict: "c", Requirements: "r", Analysis: "a", Message: "m", Count: 4})
	if err != nil {
		t.Fatalf("Proposals() error = %v", err)
	}
	if !strings.Contains(got, "exactly 4") {
		t.Fatalf("Proposals() = %q", got)
	}
	if _, err := c.Proposals(ProposalsInput{}); err == nil {
		t.Fatalf("Proposals() expected error for zero count")
	}
}

func TestLoadRejectsBadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompts.toml")
	if err := os.WriteFile(path, []byte("version = 2\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("Load() expected version error")
	}

	if err := os.WriteFile(path, []byte("version = 1\nopponent_placeholder = \"{name}\"\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "analysis.template") {
		t.Fatalf("Load() error = %v, want missing analysis template", err)
	}
}
