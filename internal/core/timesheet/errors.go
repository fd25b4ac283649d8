package timesheet

import "errors"

var (
	ErrInvalidID         = errors.New("timesheet: invalid id")
	ErrInvalidStatus     = errors.New("timesheet: invalid status")
	ErrInvalidTransition = errors.New("timesheet: invalid transition for current state")
	ErrTimesheetNotFound = errors.New("timesheet: not found")
)
