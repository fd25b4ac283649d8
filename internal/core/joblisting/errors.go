package joblisting

import "errors"

var (
	ErrInvalidID       = errors.New("joblisting: invalid id")
	ErrListingNotFound = errors.New("joblisting: not found")
)
