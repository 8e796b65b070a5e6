package preview

import "errors"

var (
	ErrNoRiders   = errors.New("no riders to preview")
	ErrHTTPStatus = errors.New("unexpected http status")
)
