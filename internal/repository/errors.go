package repository

import "errors"

// Sentinel errors surfaced by the data layer. The unique-violation
// mappings back the service-level pre-checks: the database constraint is
// the authoritative guard against concurrent duplicates.
var (
	ErrNotFound           = errors.New("resource not found")
	ErrDuplicateEmail     = errors.New("a user with this email already exists")
	ErrDuplicateObjective = errors.New("an objective with this name already exists")
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"
