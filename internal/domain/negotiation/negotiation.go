package negotiation

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusFinalized Status = "finalized"
	StatusRejected  Status = "rejected"
)

var (
	ErrInvalidStatus     = errors.New("invalid negotiation status")
	ErrIllegalTransition = errors.New("illegal negotiation status transition")
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusRejected},
	StatusAccepted:  {StatusFinalized, StatusRejected},
	StatusFinalized: nil,
	StatusRejected:  nil,
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == StatusFinalized || s == StatusRejected
}

// Ongoing reports whether the round still awaits a terminal decision.
func (s Status) Ongoing() bool {
	return s == StatusPending || s == StatusAccepted
}

func (s Status) CanTransition(next Status) bool {
	for _, candidate := range transitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return s, nil
}

// Negotiation is one negotiator's round on an issue.
type Negotiation struct {
	No                int64
	ID                string
	IssueNo           int64
	UserNo            int64
	ProposalLogNo     *int64
	MediationProposal string
	CounterProposal   string
	Status            Status
	AcceptedAt        *time.Time
	FinalizedAt       *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Advance moves n to next and stamps the matching timestamp.
func (n *Negotiation) Advance(next Status, now time.Time) error {
	if !n.Status.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, n.Status, next)
	}
	n.Status = next
	switch next {
	case StatusAccepted:
		n.AcceptedAt = &now
	case StatusFinalized:
		n.FinalizedAt = &now
	}
	return nil
}
