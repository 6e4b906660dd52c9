package apperrors

import "errors"

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrNotFound               = errors.New("not found")
	ErrNoActiveSession        = errors.New("no active session")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrWrongSessionKind       = errors.New("operation not valid for this session kind")
	ErrNoFurtherLevels        = errors.New("no further blind levels")
	ErrNoPendingRecap         = errors.New("no pending recap")
)
