package distance

import "errors"

// Sentinel kinds for distance errors.
var (
	ErrUnknownPair = errors.New("unknown location pair")
	ErrUnavailable = errors.New("distance provider unavailable")
)
