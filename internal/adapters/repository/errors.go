package repository

import (
	"fmt"

	"github.com/okian/paddock/internal/domain/model"
)

// ErrMissingID is returned when a record is written without its key.
var ErrMissingID = fmt.Errorf("record id is required: %w", model.ErrInvalidInput)
