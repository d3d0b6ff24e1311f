package issue

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a dispute case.
type Status string

const (
	StatusPending             Status = "pending"
	StatusAnalyzing           Status = "analyzing"
	StatusAnalyzed            Status = "analyzed"
	StatusAnalysisFailed      Status = "analysis_failed"
	StatusWaitingOpponent     Status = "waiting_opponent"
	StatusProposalsPresented  Status = "proposals_presented"
	StatusNegotiationComplete Status = "negotiation_complete"
)

var transitions = map[Status][]Status{
	StatusPending:             {StatusAnalyzing, StatusAnalyzed, StatusAnalysisFailed},
	StatusAnalyzing:           {StatusAnalyzed, StatusAnalysisFailed},
	StatusAnalyzed:            {StatusAnalyzing, StatusAnalyzed, StatusAnalysisFailed, StatusWaitingOpponent, StatusProposalsPresented},
	StatusAnalysisFailed:      {StatusAnalyzing, StatusAnalyzed, StatusAnalysisFailed},
	StatusWaitingOpponent:     {StatusAnalyzing, StatusAnalyzed, StatusAnalysisFailed, StatusProposalsPresented},
	StatusProposalsPresented:  {StatusProposalsPresented, StatusWaitingOpponent, StatusNegotiationComplete},
	StatusNegotiationComplete: nil,
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == StatusNegotiationComplete
}

// CanTransition reports whether next is reachable from s in one step.
func (s Status) CanTransition(next Status) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Analyzable reports whether analysis may (re)run from s.
func (s Status) Analyzable() bool {
	return s.CanTransition(StatusAnalyzed)
}

// AcceptsProposals reports whether a proposal bundle may be stored while in s.
func (s Status) AcceptsProposals() bool {
	return s.CanTransition(StatusProposalsPresented)
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusAnalyzing,
		StatusAnalyzed,
		StatusAnalysisFailed,
		StatusWaitingOpponent,
		StatusProposalsPresented,
		StatusNegotiationComplete,
	}
}
