package models

import (
	"strings"

	companymodels "tickethub/internal/company/models"
	identitymodels "tickethub/internal/identity/models"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
)

// SignupUserRequest carries the end-user signup fields. Every uniqueness field
// is required.
type SignupUserRequest struct {
	Username         string `json:"username"`
	Password         string `json:"password"`
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Mobile           string `json:"mobile"`
	NationalID       string `json:"nationalId"`
	BirthCertificate string `json:"birthCertificate"`
}

func (r *SignupUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Mobile = strings.TrimSpace(r.Mobile)
	r.NationalID = strings.TrimSpace(r.NationalID)
	r.BirthCertificate = strings.TrimSpace(r.BirthCertificate)
}

func (r *SignupUserRequest) Validate() error {
	missing := missingFields(map[string]string{
		"username":         r.Username,
		"password":         r.Password,
		"fullName":         r.FullName,
		"email":            r.Email,
		"mobile":           r.Mobile,
		"nationalId":       r.NationalID,
		"birthCertificate": r.BirthCertificate,
	})
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	if !strings.Contains(r.Email, "@") {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	return nil
}

// SignupAdminRequest carries admin signup fields. CompanyName is required for
// mode roles unless the admin starts out pending.
type SignupAdminRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	AdminName   string `json:"adminName"`
	AdminRole   string `json:"adminRole"`
	CompanyName string `json:"companyName,omitempty"`
	Email       string `json:"email,omitempty"`
}

func (r *SignupAdminRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.AdminName = strings.TrimSpace(r.AdminName)
	r.AdminRole = id.NormalizeRoleName(r.AdminRole)
	r.CompanyName = strings.TrimSpace(r.CompanyName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r *SignupAdminRequest) Validate() error {
	missing := missingFields(map[string]string{
		"username":  r.Username,
		"password":  r.Password,
		"adminName": r.AdminName,
		"adminRole": r.AdminRole,
	})
	if len(missing) > 0 {
		return dErrors.New(dErrors.CodeValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	return nil
}

// LoginRequest is shared by user and admin login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ApproveAdminRequest activates a pending admin under a role.
type ApproveAdminRequest struct {
	AdminID     id.AdminID `json:"-"`
	AdminRole   string     `json:"adminRole"`
	CompanyName string     `json:"companyName"`
}

func (r *ApproveAdminRequest) Normalize() {
	r.AdminRole = id.NormalizeRoleName(r.AdminRole)
	r.CompanyName = strings.TrimSpace(r.CompanyName)
}

// UserLoginResult is returned by a successful user login.
type UserLoginResult struct {
	User        *identitymodels.Identity
	AccessToken string
}

// AdminSignupResult describes a provisioned admin.
type AdminSignupResult struct {
	Admin   *identitymodels.Identity
	Role    string
	Company *companymodels.Membership
}

// AdminLoginResult is returned by a successful admin login. Company is nil for
// roles without a mode.
type AdminLoginResult struct {
	Token   string
	Admin   *identitymodels.Identity
	Role    string
	Company *companymodels.Membership
}

// ApproveResult describes an approved admin.
type ApproveResult struct {
	Admin   *identitymodels.Identity
	Role    string
	Company *companymodels.Membership
}

func missingFields(fields map[string]string) []string {
	var missing []string
	for _, name := range []string{
		"username", "password", "fullName", "adminName", "adminRole",
		"email", "mobile", "nationalId", "birthCertificate",
	} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
