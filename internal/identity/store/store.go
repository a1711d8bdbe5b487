// Package store persists identities and admin roles in the identity store.
//
// Two implementations share one contract: PostgresStore for deployments and
// InMemoryStore for tests and single-process development. Both return
// sentinel errors (sentinel.ErrNotFound, sentinel.ErrAlreadyUsed) that the
// provisioning service translates into domain errors.
package store

import (
	"errors"

	"github.com/lib/pq"

	"tickethub/pkg/platform/sentinel"
)

// ErrNotFound is returned when an identity or role does not exist.
var ErrNotFound = sentinel.ErrNotFound

// ErrAlreadyUsed is returned when a unique value is already taken.
var ErrAlreadyUsed = sentinel.ErrAlreadyUsed

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
