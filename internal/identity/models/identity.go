package models

import (
	"strings"
	"time"

	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
)

// Kind separates end users from administrators in the shared identity table.
type Kind string

const (
	KindUser  Kind = "user"
	KindAdmin Kind = "admin"
)

// Status is the identity status flag. Identities are never physically deleted
// by request handling; disablement flips the flag.
type Status int

const (
	StatusPending  Status = 0
	StatusActive   Status = 1
	StatusDisabled Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusDisabled:
		return "disabled"
	}
	return "unknown"
}

// MarshalText renders the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStatus maps a configured status name to a Status.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, nil
	case "active":
		return StatusActive, nil
	case "disabled":
		return StatusDisabled, nil
	}
	return 0, dErrors.New(dErrors.CodeValidation, "unknown status: "+s)
}

// Identity is a user or admin row in identity_info.
//
// Invariants:
//   - Username is unique across kinds
//   - For users, Email/Mobile/NationalID/BirthCertificate are unique among users
//   - Admins reference exactly one role (RoleID)
type Identity struct {
	ID               int64
	Kind             Kind
	Username         string
	PasswordHash     string
	DisplayName      string
	Email            string
	Mobile           string
	NationalID       string
	BirthCertificate string
	RoleID           id.RoleID
	Status           Status
	CreatedAt        time.Time
}

func (i *Identity) UserID() id.UserID   { return id.UserID(i.ID) }
func (i *Identity) AdminID() id.AdminID { return id.AdminID(i.ID) }

func (i *Identity) IsActive() bool {
	return i.Status == StatusActive
}

// UniqueFields is the set of values that must not collide with an existing
// identity for a signup to proceed.
type UniqueFields struct {
	Username         string
	Email            string
	Mobile           string
	NationalID       string
	BirthCertificate string
}

// AdminRole maps a role name to its identifier.
type AdminRole struct {
	ID   id.RoleID
	Name string
}

// AdminSummary is an admin row joined with its role name.
type AdminSummary struct {
	ID        id.AdminID `json:"adminId"`
	Username  string     `json:"username"`
	AdminName string     `json:"adminName"`
	Email     string     `json:"email,omitempty"`
	AdminRole string     `json:"adminRole"`
	Status    Status     `json:"status"`
}
