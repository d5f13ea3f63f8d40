package calculator

import (
	"errors"
	"fmt"
)

// ErrValidation is the parent of every form-level validation error.
// Callers match it with errors.Is to report invalid input.
var ErrValidation = errors.New("validation failed")

var (
	ErrEmptyTitle           = fmt.Errorf("%w: title is required", ErrValidation)
	ErrNonPositiveTotal     = fmt.Errorf("%w: total must be greater than zero", ErrValidation)
	ErrNoParticipants       = fmt.Errorf("%w: must have at least one participant", ErrValidation)
	ErrDuplicateParticipant = fmt.Errorf("%w: participant selected more than once", ErrValidation)
	ErrCreditorSelected     = fmt.Errorf("%w: creditor cannot owe themself", ErrValidation)
	ErrUnreconciled         = fmt.Errorf("%w: split does not add up to total", ErrValidation)
	ErrNonPositiveShare     = fmt.Errorf("%w: every share must be greater than zero", ErrValidation)
	ErrNotSelected          = fmt.Errorf("%w: participant is not selected", ErrValidation)
	ErrUnknownSplitMode     = fmt.Errorf("%w: unknown split mode", ErrValidation)
)

var (
	// ErrNotAuthorized is wrapped by AuthorizationError.
	ErrNotAuthorized = errors.New("not authorized")

	ErrDebtNotFound      = errors.New("debt not found")
	ErrInvalidTransition = errors.New("invalid debt transition")
	ErrUnknownAction     = fmt.Errorf("%w: unknown debt action", ErrValidation)
)
