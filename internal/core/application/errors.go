package application

import "errors"

var (
	ErrInvalidID           = errors.New("application: invalid id")
	ErrInvalidStatus       = errors.New("application: invalid status")
	ErrInvalidTransition   = errors.New("application: invalid transition for current state")
	ErrNotDue              = errors.New("application: validity has not expired yet")
	ErrApplicationNotFound = errors.New("application: not found")
	ErrForbidden           = errors.New("application: actor is not allowed to perform this action")
)
