package preview

import "time"

// Defaults for the command line flags.
const (
	DefaultFixtures = "configs/fixtures.yaml"
	DefaultLimit    = 10
	DefaultTimeout  = 10 * time.Second
)
