package notification

import "errors"

var (
	ErrInvalidRecipient     = errors.New("notification: invalid recipient")
	ErrInvalidRole          = errors.New("notification: invalid role")
	ErrInvalidType          = errors.New("notification: invalid type")
	ErrNotificationNotFound = errors.New("notification: not found")
)
