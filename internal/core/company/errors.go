package company

import "errors"

var (
	ErrInvalidID       = errors.New("company: invalid id")
	ErrCompanyNotFound = errors.New("company: not found")
	ErrNoOwner         = errors.New("company: no owner user")
)
