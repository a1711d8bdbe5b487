// Package service provisions end users and admins.
//
// Admin provisioning spans two stores with no shared transaction: the identity
// store and the company table of one mode store. Writes follow a saga: the
// identity row is written first, the company row second, and a company-store
// failure triggers a compensating identity write before the error is
// returned. A company row is never written for an identity that does not exist.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	companymodels "tickethub/internal/company/models"
	"tickethub/internal/identity/models"
	"tickethub/internal/notify"
	"tickethub/internal/provisioning/metrics"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
)

type IdentityStore interface {
	CreateIfAvailable(ctx context.Context, identity *models.Identity) error
	FindByUsername(ctx context.Context, kind models.Kind, username string) (*models.Identity, error)
	FindByID(ctx context.Context, kind models.Kind, identityID int64) (*models.Identity, error)
	Delete(ctx context.Context, identityID int64) error
	UpdateAdminRoleAndStatus(ctx context.Context, adminID id.AdminID, roleID id.RoleID, status models.Status) error
	ListAdmins(ctx context.Context, excludeUsername string) ([]models.AdminSummary, error)
}

type RoleStore interface {
	FindRoleByName(ctx context.Context, name string) (*models.AdminRole, error)
	FindRoleByID(ctx context.Context, roleID id.RoleID) (*models.AdminRole, error)
	CreateRole(ctx context.Context, name string) (*models.AdminRole, error)
}

type CompanyStore interface {
	FindByName(ctx context.Context, name string) (*companymodels.Membership, error)
	FindByAdmin(ctx context.Context, adminID id.AdminID) (*companymodels.Membership, error)
	Create(ctx context.Context, membership *companymodels.Membership) error
	DeleteByAdmin(ctx context.Context, adminID id.AdminID) error
}

// TxRunner scopes a function to one identity-store transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type PasswordHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) error
}

type TokenIssuer interface {
	GenerateToken(username string, expiresIn time.Duration) (string, error)
}

// Publisher announces provisioned admins. It must not block.
type Publisher interface {
	Publish(ctx context.Context, event notify.AdminProvisioned)
}

const (
	defaultUserTokenTTL  = time.Hour
	defaultAdminTokenTTL = 24 * time.Hour
	compensationTimeout  = 5 * time.Second
)

// Service orchestrates signup, login and admin approval.
type Service struct {
	identities IdentityStore
	roles      RoleStore
	companies  map[id.Mode]CompanyStore
	tx         TxRunner
	hasher     PasswordHasher
	tokens     TokenIssuer
	publisher  Publisher
	logger     *slog.Logger
	metrics    *metrics.Metrics

	userTokenTTL       time.Duration
	adminTokenTTL      time.Duration
	adminDefaultStatus models.Status

	dummyOnce   sync.Once
	dummyDigest string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func WithTokenTTLs(user, admin time.Duration) Option {
	return func(s *Service) {
		if user > 0 {
			s.userTokenTTL = user
		}
		if admin > 0 {
			s.adminTokenTTL = admin
		}
	}
}

// WithAdminDefaultStatus sets the status new admins start in.
func WithAdminDefaultStatus(status models.Status) Option {
	return func(s *Service) {
		s.adminDefaultStatus = status
	}
}

// New constructs a Service. companies maps each mode to its company store.
func New(
	identities IdentityStore,
	roles RoleStore,
	companies map[id.Mode]CompanyStore,
	tx TxRunner,
	hasher PasswordHasher,
	tokens TokenIssuer,
	opts ...Option,
) *Service {
	s := &Service{
		identities:         identities,
		roles:              roles,
		companies:          companies,
		tx:                 tx,
		hasher:             hasher,
		tokens:             tokens,
		logger:             slog.Default(),
		userTokenTTL:       defaultUserTokenTTL,
		adminTokenTTL:      defaultAdminTokenTTL,
		adminDefaultStatus: models.StatusPending,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func invalidCredentials() error {
	return dErrors.New(dErrors.CodeUnauthorized, "invalid username or password")
}

func (s *Service) companyStore(mode id.Mode) (CompanyStore, error) {
	store, ok := s.companies[mode]
	if !ok || store == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "no company store for mode "+mode.String())
	}
	return store, nil
}

// burnVerify spends one hash comparison so unknown usernames take as long as
// wrong passwords.
func (s *Service) burnVerify(secret string) {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("tickethub-timing-equalizer")
		if err == nil {
			s.dummyDigest = digest
		}
	})
	if s.dummyDigest != "" {
		_ = s.hasher.Verify(secret, s.dummyDigest)
	}
}

// detached returns a context that survives cancellation of ctx, for
// compensating writes that must run even when the request is gone.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
}

func (s *Service) publish(ctx context.Context, admin *models.Identity, role string, company *companymodels.Membership, now time.Time) {
	if s.publisher == nil {
		return
	}
	companyName := ""
	if company != nil {
		companyName = company.CompanyName
	}
	s.publisher.Publish(ctx, notify.NewAdminProvisioned(
		now, admin.ID, admin.Username, admin.DisplayName, role, companyName, admin.Status.String(),
	))
}

func (s *Service) incSignup(kind models.Kind, result string) {
	if s.metrics != nil {
		s.metrics.IncSignup(string(kind), result)
	}
}

func (s *Service) incLogin(kind models.Kind, result string) {
	if s.metrics != nil {
		s.metrics.IncLogin(string(kind), result)
	}
}

func (s *Service) incCompensation(operation, result string) {
	if s.metrics != nil {
		s.metrics.IncCompensation(operation, result)
	}
}

func (s *Service) observeSignup(kind models.Kind, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveSignup(string(kind), start)
	}
}
