package fixtures

import (
	"errors"
	"fmt"

	"github.com/okian/paddock/internal/domain/model"
)

var (
	ErrLoadFixtures   = errors.New("load fixtures failed")
	ErrInvalidFixture = fmt.Errorf("invalid fixture: %w", model.ErrInvalidInput)
)
