package service

import (
	"context"
	"errors"
	"time"

	"tickethub/internal/identity/models"
	provisioningmodels "tickethub/internal/provisioning/models"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/sentinel"
	"tickethub/pkg/requestcontext"
)

// SignupUser registers an end user. The uniqueness check across username,
// email, mobile, national id and birth certificate and the insert happen in
// one statement inside one transaction; on any collision nothing is written.
func (s *Service) SignupUser(ctx context.Context, req provisioningmodels.SignupUserRequest) (*models.Identity, error) {
	start := time.Now()
	defer s.observeSignup(models.KindUser, start)

	req.Normalize()
	if err := req.Validate(); err != nil {
		s.incSignup(models.KindUser, "invalid")
		return nil, err
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.incSignup(models.KindUser, "invalid")
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.Message(err))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	user := &models.Identity{
		Kind:             models.KindUser,
		Username:         req.Username,
		PasswordHash:     digest,
		DisplayName:      req.FullName,
		Email:            req.Email,
		Mobile:           req.Mobile,
		NationalID:       req.NationalID,
		BirthCertificate: req.BirthCertificate,
		Status:           models.StatusActive,
		CreatedAt:        requestcontext.Now(ctx),
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		return s.identities.CreateIfAvailable(ctx, user)
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			s.incSignup(models.KindUser, "conflict")
			return nil, dErrors.New(dErrors.CodeConflict, "user already exists")
		}
		s.incSignup(models.KindUser, "error")
		s.logger.ErrorContext(ctx, "failed to create user",
			"request_id", requestcontext.RequestID(ctx),
			"username", req.Username,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.incSignup(models.KindUser, "created")
	s.logger.InfoContext(ctx, "user signed up",
		"request_id", requestcontext.RequestID(ctx),
		"user_id", user.ID,
	)
	return user, nil
}

// LoginUser authenticates an end user and issues a short-lived token. Unknown
// usernames, inactive users and wrong passwords fail identically.
func (s *Service) LoginUser(ctx context.Context, username, password string) (*provisioningmodels.UserLoginResult, error) {
	user, err := s.authenticate(ctx, models.KindUser, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(user.Username, s.userTokenTTL)
	if err != nil {
		s.incLogin(models.KindUser, "error")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.incLogin(models.KindUser, "success")
	return &provisioningmodels.UserLoginResult{User: user, AccessToken: token}, nil
}

func (s *Service) authenticate(ctx context.Context, kind models.Kind, username, password string) (*models.Identity, error) {
	if username == "" || password == "" {
		s.incLogin(kind, "invalid")
		return nil, invalidCredentials()
	}

	identity, err := s.identities.FindByUsername(ctx, kind, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.burnVerify(password)
			s.incLogin(kind, "invalid")
			return nil, invalidCredentials()
		}
		s.incLogin(kind, "error")
		s.logger.ErrorContext(ctx, "failed to load identity",
			"request_id", requestcontext.RequestID(ctx),
			"kind", string(kind),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to log in")
	}

	if err := s.hasher.Verify(password, identity.PasswordHash); err != nil {
		s.incLogin(kind, "invalid")
		return nil, invalidCredentials()
	}
	if !identity.IsActive() {
		s.incLogin(kind, "inactive")
		s.logger.InfoContext(ctx, "login refused for inactive identity",
			"request_id", requestcontext.RequestID(ctx),
			"kind", string(kind),
			"identity_id", identity.ID,
			"status", identity.Status.String(),
		)
		return nil, invalidCredentials()
	}
	return identity, nil
}
