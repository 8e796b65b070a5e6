package model

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer. Specific errors wrap one of these so
// callers can branch with errors.Is without knowing the concrete cause.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
)

// Specific kinds.
var (
	ErrRiderProfileNotFound = fmt.Errorf("rider profile %w", ErrNotFound)
	ErrOwnerProfileNotFound = fmt.Errorf("owner profile %w", ErrNotFound)
	ErrListingNotFound      = fmt.Errorf("listing %w", ErrNotFound)
	ErrHorseNotFound        = fmt.Errorf("horse %w", ErrNotFound)
	ErrMatchNotFound        = fmt.Errorf("match %w", ErrNotFound)

	ErrDuplicateLike     = fmt.Errorf("duplicate like: %w", ErrConflict)
	ErrDuplicateInterest = fmt.Errorf("duplicate owner interest: %w", ErrConflict)
	ErrDuplicateMatch    = fmt.Errorf("duplicate match: %w", ErrConflict)

	ErrNegativeDistance = fmt.Errorf("negative distance: %w", ErrInvalidInput)
	ErrNotListingOwner  = fmt.Errorf("caller does not own listing: %w", ErrInvalidInput)
)
