package memory

import (
	"fmt"

	"github.com/google/uuid"
)

// UniqueError mirrors a unique-constraint violation from the database.
type UniqueError struct {
	Constraint string
}

func (e *UniqueError) Error() string {
	return fmt.Sprintf("duplicate key violates unique constraint %q", e.Constraint)
}

func errUnique(constraint string) error {
	return &UniqueError{Constraint: constraint}
}

func errNotFound(kind string, id uuid.UUID) error {
	return fmt.Errorf("update %s %s: no rows affected", kind, id)
}
