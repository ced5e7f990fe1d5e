package domain

import "errors"

var (
	ErrElectionNotFound = errors.New("election not found")
	ErrCenterNotFound   = errors.New("voting center not found")
	ErrInvalidID        = errors.New("invalid id")
	ErrTallyUnavailable = errors.New("voter tally unavailable")
)
