package service

import "errors"

// ErrNotStarted is returned by every engine call made before Start.
var ErrNotStarted = errors.New("service not started")
