package models

import (
	"time"

	id "tickethub/pkg/domain"
)

// Membership links an admin identity to its company row in one mode store.
// The admin is referenced by id only; the identity lives in another store.
type Membership struct {
	CompanyID   id.CompanyID
	CompanyName string
	AdminID     id.AdminID
	Mode        id.Mode
	CreatedAt   time.Time
}
