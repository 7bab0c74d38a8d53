package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active session")
	ErrActiveSessionExists = errors.New("active session already exists")
	ErrNoOpenPause         = errors.New("no open pause")
	ErrInvalidWindow       = errors.New("invalid time window")
	ErrUnknownEvent        = errors.New("unknown tracking event")
)
