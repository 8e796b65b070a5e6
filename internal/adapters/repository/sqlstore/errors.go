package sqlstore

import (
	"fmt"

	"github.com/okian/paddock/internal/domain/model"
)

// ErrUnsupportedDriver is returned by Open for an unknown driver name.
var ErrUnsupportedDriver = fmt.Errorf("unsupported store driver: %w", model.ErrInvalidInput)
