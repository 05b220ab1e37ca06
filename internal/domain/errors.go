package domain

import "errors"

var (
	ErrVideoNotFound          = errors.New("video not found")
	ErrTemporarilyUnavailable = errors.New("temporarily unavailable")
	ErrInvalidInput           = errors.New("invalid input")
)
