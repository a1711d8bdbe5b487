package domain

import "strings"

// Mode is a transport domain with its own datastore.
type Mode string

const (
	ModeBus   Mode = "bus"
	ModeAir   Mode = "air"
	ModeTrain Mode = "train"
)

// AllModes lists every mode in response order.
var AllModes = []Mode{ModeBus, ModeAir, ModeTrain}

func (m Mode) String() string { return string(m) }

// IsValid reports whether m is a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeBus, ModeAir, ModeTrain:
		return true
	}
	return false
}

// Admin role names seeded in admin_role_info.
const (
	RoleAdmin = "ADMIN"
	RoleBus   = "BUS"
	RoleAir   = "AIR"
	RoleTrain = "TRAIN"
)

// NormalizeRoleName upper-cases and trims a role name.
func NormalizeRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// ModeForRole returns the mode whose company table an admin of the given role
// belongs to. ok is false for roles that carry no company (e.g. ADMIN).
func ModeForRole(role string) (mode Mode, ok bool) {
	switch NormalizeRoleName(role) {
	case RoleBus:
		return ModeBus, true
	case RoleAir:
		return ModeAir, true
	case RoleTrain:
		return ModeTrain, true
	}
	return "", false
}
