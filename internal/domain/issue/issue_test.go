package issue

import (
	"errors"
	"strings"
	"testing"
)

type sequenceRandom struct {
	values []int
	pos    int
}

func (s *sequenceRandom) Intn(n int) int {
	v := s.values[s.pos%len(s.values)] % n
	s.pos++
	return v
}

func TestNewCodeUsesInjectedSource(t *testing.T) {
	code := NewCode(&sequenceRandom{values: []int{0, 1, 2, 26, 27, 35}})
	if code != "ABC019" {
		t.Fatalf("NewCode() = %q, want ABC019", code)
	}
}

func TestFallbackCodeShape(t *testing.T) {
	code := FallbackCode()
	if len(code) == CodeLength {
		t.Fatalf("FallbackCode() length = %d, must differ from drawn codes", len(code))
	}
	if strings.ToUpper(code) != code || strings.Contains(code, "-") {
		t.Fatalf("FallbackCode() = %q", code)
	}
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusAnalyzed, true},
		{StatusPending, StatusProposalsPresented, false},
		{StatusAnalyzed, StatusProposalsPresented, true},
		{StatusProposalsPresented, StatusProposalsPresented, true},
		{StatusProposalsPresented, StatusNegotiationComplete, true},
		{StatusNegotiationComplete, StatusPending, false},
		{StatusAnalysisFailed, StatusAnalyzed, true},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransition(tc.to); got != tc.want {
			t.Fatalf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
	if !StatusNegotiationComplete.Terminal() || StatusAnalyzed.Terminal() {
		t.Fatalf("Terminal() mismatch")
	}
}

func TestParseStatus(t *testing.T) {
	got, err := ParseStatus(" Analyzed ")
	if err != nil || got != StatusAnalyzed {
		t.Fatalf("ParseStatus() = %q, %v", got, err)
	}
	if _, err := ParseStatus("done"); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("ParseStatus(done) error = %v, want ErrInvalidStatus", err)
	}
}

func TestApplyOpponentName(t *testing.T) {
	msg := "Hello [Opponent Name], I would like to talk."
	if got := ApplyOpponentName(msg, "[Opponent Name]", "Kim"); got != "Hello Kim, I would like to talk." {
		t.Fatalf("ApplyOpponentName() = %q", got)
	}
	if got := ApplyOpponentName(msg, "[Opponent Name]", "  "); got != msg {
		t.Fatalf("ApplyOpponentName(blank) = %q", got)
	}
}

func TestPreconditionChecks(t *testing.T) {
	if err := (Issue{Requirements: "refund"}).CheckAnalyzable(); !errors.Is(err, ErrConflictRequired) {
		t.Fatalf("CheckAnalyzable() error = %v", err)
	}
	if err := (Issue{ConflictSituation: "dispute A"}).CheckAnalyzable(); !errors.Is(err, ErrRequirementsNeeded) {
		t.Fatalf("CheckAnalyzable() error = %v", err)
	}
	if err := (Issue{AnalysisResult: AnalysisFailureMarker("timeout")}).CheckProposable(); !errors.Is(err, ErrMessageMissing) {
		t.Fatalf("CheckProposable() error = %v", err)
	}
	if (Issue{AnalysisResult: "summary"}).HashSource() != "summary" {
		t.Fatalf("HashSource() should fall back to analysis result")
	}
}
