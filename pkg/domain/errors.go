package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEntityNotFound *notFoundError
	ErrInvalidLimit   = errors.New("limit must be a positive integer")
)

type notFoundError struct {
	EntityType string
	ID         string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.EntityType, e.ID)
}

func NewNotFoundError(entityType string, id string) error {
	return &notFoundError{
		EntityType: entityType,
		ID:         id,
	}
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFoundError *notFoundError
	ok := errors.As(err, &notFoundError)
	return ok
}
