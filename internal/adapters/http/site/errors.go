package site

import "errors"

// ErrServe is reported when the embedded page cannot be read.
var ErrServe = errors.New("landing page serve failed")
