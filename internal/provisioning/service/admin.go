package service

import (
	"context"
	"errors"
	"time"

	companymodels "tickethub/internal/company/models"
	"tickethub/internal/identity/models"
	provisioningmodels "tickethub/internal/provisioning/models"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/sentinel"
	"tickethub/pkg/requestcontext"
)

// SignupAdmin provisions an admin under a role. For bus/air/train roles the
// admin's company is written to that mode's store after the identity row;
// if the company write fails the identity row is deleted again.
func (s *Service) SignupAdmin(ctx context.Context, req provisioningmodels.SignupAdminRequest) (*provisioningmodels.AdminSignupResult, error) {
	start := time.Now()
	defer s.observeSignup(models.KindAdmin, start)

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.incSignup(models.KindAdmin, "invalid")
		return nil, err
	}

	role, err := s.resolveRole(ctx, req.AdminRole)
	if err != nil {
		s.incSignup(models.KindAdmin, "invalid")
		return nil, err
	}

	status := s.adminDefaultStatus
	mode, needsCompany := id.ModeForRole(role.Name)
	var companies CompanyStore
	if needsCompany {
		companies, err = s.companyStore(mode)
		if err != nil {
			return nil, err
		}
		if req.CompanyName == "" && status != models.StatusPending {
			s.incSignup(models.KindAdmin, "invalid")
			return nil, dErrors.New(dErrors.CodeValidation, "companyName is required for role "+role.Name)
		}
		if req.CompanyName != "" {
			if err := s.ensureCompanyNameFree(ctx, companies, req.CompanyName); err != nil {
				s.incSignup(models.KindAdmin, resultFor(err))
				return nil, err
			}
		}
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.incSignup(models.KindAdmin, "invalid")
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create admin")
	}

	now := requestcontext.Now(ctx)
	admin := &models.Identity{
		Kind:         models.KindAdmin,
		Username:     req.Username,
		PasswordHash: digest,
		DisplayName:  req.AdminName,
		Email:        req.Email,
		RoleID:       role.ID,
		Status:       status,
		CreatedAt:    now,
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.identities.CreateIfAvailable(ctx, admin)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.incSignup(models.KindAdmin, "conflict")
			return nil, dErrors.New(dErrors.CodeConflict, "username already registered")
		}
		s.incSignup(models.KindAdmin, "error")
		s.logger.ErrorContext(ctx, "failed to create admin identity",
			"request_id", requestcontext.RequestID(ctx),
			"username", req.Username,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create admin")
	}

	var company *companymodels.Membership
	if needsCompany && req.CompanyName != "" {
		company = &companymodels.Membership{
			CompanyName: req.CompanyName,
			AdminID:     admin.AdminID(),
			Mode:        mode,
			CreatedAt:   now,
		}
		if err := companies.Create(ctx, company); err != nil {
			s.compensateSignup(ctx, admin, companies, mode, err)
			s.incSignup(models.KindAdmin, "error")
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return nil, dErrors.New(dErrors.CodeConflict, "company name already registered")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create admin")
		}
	}

	s.incSignup(models.KindAdmin, "created")
	s.logger.InfoContext(ctx, "admin signed up",
		"request_id", requestcontext.RequestID(ctx),
		"admin_id", admin.ID,
		"admin_role", role.Name,
		"status", admin.Status.String(),
	)
	s.publish(ctx, admin, role.Name, company, now)

	return &provisioningmodels.AdminSignupResult{Admin: admin, Role: role.Name, Company: company}, nil
}

// compensateSignup undoes a signup whose company write failed. A write that
// committed before the error surfaced leaves a membership behind, so the
// membership is removed before the identity it points at.
func (s *Service) compensateSignup(ctx context.Context, admin *models.Identity, companies CompanyStore, mode id.Mode, cause error) {
	cctx, cancel := detached(ctx)
	defer cancel()

	s.logger.WarnContext(ctx, "company write failed, removing admin identity",
		"request_id", requestcontext.RequestID(ctx),
		"admin_id", admin.ID,
		"mode", mode.String(),
		"error", cause,
	)
	if err := s.removeMembership(cctx, companies, admin.AdminID(), cause); err != nil {
		s.incCompensation("signup_admin", "failed")
		s.logger.ErrorContext(ctx, "compensation failed: company membership not removed, keeping admin identity",
			"request_id", requestcontext.RequestID(ctx),
			"admin_id", admin.ID,
			"mode", mode.String(),
			"error", err,
		)
		return
	}
	if err := s.identities.Delete(cctx, admin.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.incCompensation("signup_admin", "failed")
		s.logger.ErrorContext(ctx, "compensation failed: admin identity left without company",
			"request_id", requestcontext.RequestID(ctx),
			"admin_id", admin.ID,
			"mode", mode.String(),
			"error", err,
		)
		return
	}
	s.incCompensation("signup_admin", "applied")
}

// removeMembership deletes the membership a failed Create may still have
// committed. A uniqueness rejection means the row belongs to someone else.
func (s *Service) removeMembership(ctx context.Context, companies CompanyStore, adminID id.AdminID, cause error) error {
	if errors.Is(cause, sentinel.ErrAlreadyUsed) {
		return nil
	}
	if err := companies.DeleteByAdmin(ctx, adminID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return err
	}
	return nil
}

// LoginAdmin authenticates an active admin and resolves its role and, for mode
// roles, its company.
func (s *Service) LoginAdmin(ctx context.Context, username, password string) (*provisioningmodels.AdminLoginResult, error) {
	admin, err := s.authenticate(ctx, models.KindAdmin, username, password)
	if err != nil {
		return nil, err
	}

	role, err := s.roles.FindRoleByID(ctx, admin.RoleID)
	if err != nil {
		s.incLogin(models.KindAdmin, "error")
		s.logger.ErrorContext(ctx, "admin role does not resolve",
			"request_id", requestcontext.RequestID(ctx),
			"admin_id", admin.ID,
			"role_id", admin.RoleID.Int64(),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log in")
	}

	result := &provisioningmodels.AdminLoginResult{Admin: admin, Role: role.Name}
	if mode, ok := id.ModeForRole(role.Name); ok {
		company, err := s.findCompany(ctx, mode, admin.AdminID())
		if err != nil {
			s.incLogin(models.KindAdmin, "error")
			return nil, err
		}
		if company == nil {
			s.logger.WarnContext(ctx, "active admin has no company",
				"request_id", requestcontext.RequestID(ctx),
				"admin_id", admin.ID,
				"mode", mode.String(),
			)
		}
		result.Company = company
	}

	token, err := s.tokens.GenerateToken(admin.Username, s.adminTokenTTL)
	if err != nil {
		s.incLogin(models.KindAdmin, "error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}
	result.Token = token

	s.incLogin(models.KindAdmin, "success")
	return result, nil
}

// ApproveAdmin activates a pending (or re-approves an active) admin under role.
// Disabled admins are rejected. An existing company membership
// in the role's mode is kept; otherwise one is created from CompanyName. If
// that write fails the admin's previous role and status are restored.
func (s *Service) ApproveAdmin(ctx context.Context, req provisioningmodels.ApproveAdminRequest) (*provisioningmodels.ApproveResult, error) {
	req.Normalize()
	if req.AdminID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "adminId is required")
	}
	if req.AdminRole == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "adminRole is required")
	}

	role, err := s.resolveRole(ctx, req.AdminRole)
	if err != nil {
		return nil, err
	}

	admin, err := s.identities.FindByID(ctx, models.KindAdmin, req.AdminID.Int64())
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "admin not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve admin")
	}
	if admin.Status == models.StatusDisabled {
		return nil, dErrors.New(dErrors.CodeForbidden, "admin is disabled")
	}

	mode, needsCompany := id.ModeForRole(role.Name)
	var (
		companies CompanyStore
		company   *companymodels.Membership
	)
	if needsCompany {
		companies, err = s.companyStore(mode)
		if err != nil {
			return nil, err
		}
		company, err = s.findCompany(ctx, mode, admin.AdminID())
		if err != nil {
			return nil, err
		}
		if company == nil {
			if req.CompanyName == "" {
				return nil, dErrors.New(dErrors.CodeValidation, "companyName is required for role "+role.Name)
			}
			if err := s.ensureCompanyNameFree(ctx, companies, req.CompanyName); err != nil {
				return nil, err
			}
		}
	}

	previousRole, previousStatus := admin.RoleID, admin.Status
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.identities.UpdateAdminRoleAndStatus(ctx, admin.AdminID(), role.ID, models.StatusActive)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "admin not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve admin")
	}
	admin.RoleID, admin.Status = role.ID, models.StatusActive

	now := requestcontext.Now(ctx)
	if needsCompany && company == nil {
		company = &companymodels.Membership{
			CompanyName: req.CompanyName,
			AdminID:     admin.AdminID(),
			Mode:        mode,
			CreatedAt:   now,
		}
		if err := companies.Create(ctx, company); err != nil {
			s.compensateApproval(ctx, admin.AdminID(), previousRole, previousStatus, companies, mode, err)
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return nil, dErrors.New(dErrors.CodeConflict, "company name already registered")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to approve admin")
		}
	}

	s.logger.InfoContext(ctx, "admin approved",
		"request_id", requestcontext.RequestID(ctx),
		"admin_id", admin.ID,
		"admin_role", role.Name,
	)
	s.publish(ctx, admin, role.Name, company, now)

	return &provisioningmodels.ApproveResult{Admin: admin, Role: role.Name, Company: company}, nil
}

func (s *Service) compensateApproval(ctx context.Context, adminID id.AdminID, roleID id.RoleID, status models.Status, companies CompanyStore, mode id.Mode, cause error) {
	cctx, cancel := detached(ctx)
	defer cancel()

	s.logger.WarnContext(ctx, "company write failed, restoring admin",
		"request_id", requestcontext.RequestID(ctx),
		"admin_id", adminID.Int64(),
		"mode", mode.String(),
		"error", cause,
	)
	if err := s.removeMembership(cctx, companies, adminID, cause); err != nil {
		s.incCompensation("approve_admin", "failed")
		s.logger.ErrorContext(ctx, "compensation failed: company membership not removed",
			"request_id", requestcontext.RequestID(ctx),
			"admin_id", adminID.Int64(),
			"mode", mode.String(),
			"error", err,
		)
	}
	if err := s.identities.UpdateAdminRoleAndStatus(cctx, adminID, roleID, status); err != nil {
		s.incCompensation("approve_admin", "failed")
		s.logger.ErrorContext(ctx, "compensation failed: admin left active without company",
			"request_id", requestcontext.RequestID(ctx),
			"admin_id", adminID.Int64(),
			"error", err,
		)
		return
	}
	s.incCompensation("approve_admin", "applied")
}

// AddAdminRole registers a new role name.
func (s *Service) AddAdminRole(ctx context.Context, name string) (*models.AdminRole, error) {
	name = id.NormalizeRoleName(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "adminRole is required")
	}

	var role *models.AdminRole
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		role, err = s.roles.CreateRole(ctx, name)
		return err
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "admin role already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to add admin role")
	}
	return role, nil
}

// ListAdmins returns every admin other than the caller. The caller must be an
// active admin.
func (s *Service) ListAdmins(ctx context.Context, callerUsername string) ([]models.AdminSummary, error) {
	caller, err := s.identities.FindByUsername(ctx, models.KindAdmin, callerUsername)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list admins")
	}
	if !caller.IsActive() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	admins, err := s.identities.ListAdmins(ctx, callerUsername)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list admins")
	}
	return admins, nil
}

func (s *Service) resolveRole(ctx context.Context, name string) (*models.AdminRole, error) {
	role, err := s.roles.FindRoleByName(ctx, id.NormalizeRoleName(name))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeInvalidRole, "unknown admin role")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve admin role")
	}
	return role, nil
}

func (s *Service) ensureCompanyNameFree(ctx context.Context, companies CompanyStore, name string) error {
	_, err := companies.FindByName(ctx, name)
	if err == nil {
		return dErrors.New(dErrors.CodeConflict, "company name already registered")
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check company name")
}

// findCompany returns the admin's membership in mode, or nil when there is none.
func (s *Service) findCompany(ctx context.Context, mode id.Mode, adminID id.AdminID) (*companymodels.Membership, error) {
	companies, err := s.companyStore(mode)
	if err != nil {
		return nil, err
	}
	company, err := companies.FindByAdmin(ctx, adminID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load company")
	}
	return company, nil
}

func resultFor(err error) string {
	if dErrors.HasCode(err, dErrors.CodeConflict) {
		return "conflict"
	}
	return "error"
}
