package resignation

import "errors"

var (
	ErrInvalidID           = errors.New("resignation: invalid id")
	ErrInvalidTransition   = errors.New("resignation: invalid transition for current state")
	ErrResignationNotFound = errors.New("resignation: not found")
	ErrForbidden           = errors.New("resignation: actor is not allowed to perform this action")
)
