package issue

import (
	"strconv"
	"strings"
	"time"
)

// Issue is a dispute case raised by its owner against an opponent.
type Issue struct {
	No                     int64
	ID                     string
	Code                   string
	UserNo                 int64
	OpponentUserNo         *int64
	ConflictSituation      string
	Requirements           string
	AnalysisResult         string
	NegotiationMessage     string
	OpponentName           string
	OpponentContact        string
	OpponentRequirements   string
	OpponentAnalysisResult string
	Proposals              []string
	SelectedProposal       string
	Status                 Status
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// CheckAnalyzable returns the first missing input that blocks analysis.
func (i Issue) CheckAnalyzable() error {
	if strings.TrimSpace(i.ConflictSituation) == "" {
		return ErrConflictRequired
	}
	if strings.TrimSpace(i.Requirements) == "" {
		return ErrRequirementsNeeded
	}
	return nil
}

// CheckProposable returns the first missing analysis output that blocks proposal generation.
func (i Issue) CheckProposable() error {
	if strings.TrimSpace(i.AnalysisResult) == "" {
		return ErrAnalysisMissing
	}
	if strings.TrimSpace(i.NegotiationMessage) == "" {
		return ErrMessageMissing
	}
	return nil
}

// HashSource is the text the proposal cache keys on.
func (i Issue) HashSource() string {
	if strings.TrimSpace(i.ConflictSituation) != "" {
		return i.ConflictSituation
	}
	return i.AnalysisResult
}

// DefaultOpponentPlaceholder is the outreach token replaced by the opponent's name.
const DefaultOpponentPlaceholder = "[Opponent Name]"

// ApplyOpponentName substitutes token in msg with name. Blank inputs leave msg untouched.
func ApplyOpponentName(msg, token, name string) string {
	if strings.TrimSpace(msg) == "" || token == "" || strings.TrimSpace(name) == "" {
		return msg
	}
	return strings.ReplaceAll(msg, token, name)
}

const analysisFailurePrefix = "AI analysis failed: "

// AnalysisFailureMarker is the human-readable text stored when analysis could not complete.
func AnalysisFailureMarker(reason string) string {
	return analysisFailurePrefix + reason
}

func IsAnalysisFailureMarker(text string) bool {
	return strings.HasPrefix(text, analysisFailurePrefix)
}

// StatusCacheKey is the cache key holding the last known status of an issue.
func StatusCacheKey(issueNo int64) string {
	return "issue_status:" + strconv.FormatInt(issueNo, 10)
}
