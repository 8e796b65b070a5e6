package ranking

import (
	"fmt"

	"github.com/okian/paddock/internal/domain/model"
)

// ErrProfileRequired is returned when the rider has no profile to rank for.
var ErrProfileRequired = fmt.Errorf("rider profile required: %w", model.ErrNotFound)
