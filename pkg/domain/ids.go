package domain

import (
	"strconv"
	"strings"

	dErrors "tickethub/pkg/domain-errors"
)

// Identifiers are store-assigned serials. Distinct types keep an admin id from
// being passed where a user id is expected.
type (
	UserID     int64
	AdminID    int64
	RoleID     int64
	CompanyID  int64
	ScheduleID int64
)

func (id UserID) Int64() int64     { return int64(id) }
func (id AdminID) Int64() int64    { return int64(id) }
func (id RoleID) Int64() int64     { return int64(id) }
func (id CompanyID) Int64() int64  { return int64(id) }
func (id ScheduleID) Int64() int64 { return int64(id) }

func (id UserID) String() string    { return strconv.FormatInt(int64(id), 10) }
func (id AdminID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id CompanyID) String() string { return strconv.FormatInt(int64(id), 10) }

// IsNil reports whether the id was never assigned.
func (id UserID) IsNil() bool  { return id <= 0 }
func (id AdminID) IsNil() bool { return id <= 0 }

// ParseUserID parses a positive decimal user id.
func ParseUserID(s string) (UserID, error) {
	n, err := parsePositive(s)
	if err != nil {
		return 0, err
	}
	return UserID(n), nil
}

// ParseAdminID parses a positive decimal admin id.
func ParseAdminID(s string) (AdminID, error) {
	n, err := parsePositive(s)
	if err != nil {
		return 0, err
	}
	return AdminID(n), nil
}

func parsePositive(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id is required")
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "id must be a positive integer")
	}
	return n, nil
}
