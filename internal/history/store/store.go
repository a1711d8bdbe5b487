// Package store reads booking history from the ticket_info and ticket_queue
// tables of each mode store.
//
// One parameterized implementation serves bus, air and train; the modes differ
// only in how a schedule reaches its class or coach name.
package store

import (
	"fmt"

	"tickethub/internal/history/models"
	"tickethub/pkg/platform/sentinel"
)

// ErrNotFound is returned when a schedule does not resolve.
var ErrNotFound = sentinel.ErrNotFound

func tableFor(kind models.ListKind) (string, error) {
	switch kind {
	case models.ListConfirmed:
		return "ticket_info", nil
	case models.ListQueued:
		return "ticket_queue", nil
	}
	return "", fmt.Errorf("unknown ticket list %q", kind)
}
