package employment

import "errors"

var (
	ErrInvalidID         = errors.New("employment: invalid id")
	ErrInvalidStatus     = errors.New("employment: invalid status")
	ErrInvalidTransition = errors.New("employment: invalid transition for current state")
	ErrDocNotFound       = errors.New("employment: document not found")
	ErrRecordNotFound    = errors.New("employment: not found")
	ErrTerminalState     = errors.New("employment: record is in a terminal state")
)
