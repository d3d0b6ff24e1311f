package issue

import "errors"

var (
	ErrInvalidStatus      = errors.New("invalid issue status")
	ErrIllegalTransition  = errors.New("illegal issue status transition")
	ErrConflictRequired   = errors.New("conflict situation is required")
	ErrRequirementsNeeded = errors.New("requirements are required")
	ErrAnalysisMissing    = errors.New("analysis result is required")
	ErrMessageMissing     = errors.New("negotiation message is required")
	ErrOwnerRequired      = errors.New("owning user is required")
)
