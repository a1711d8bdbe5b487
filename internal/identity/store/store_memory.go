package store

import (
	"context"
	"sort"
	"sync"

	"tickethub/internal/identity/models"
	id "tickethub/pkg/domain"
)

// InMemoryStore is a thread-safe identity store for tests and development.
type InMemoryStore struct {
	mu         sync.RWMutex
	identities map[int64]*models.Identity
	roles      map[id.RoleID]*models.AdminRole
	nextID     int64
	nextRoleID id.RoleID
}

// NewInMemory constructs an in-memory store seeded with the built-in roles.
func NewInMemory() *InMemoryStore {
	s := &InMemoryStore{
		identities: make(map[int64]*models.Identity),
		roles:      make(map[id.RoleID]*models.AdminRole),
	}
	for _, name := range []string{id.RoleAdmin, id.RoleBus, id.RoleAir, id.RoleTrain} {
		s.nextRoleID++
		s.roles[s.nextRoleID] = &models.AdminRole{ID: s.nextRoleID, Name: name}
	}
	return s
}

func (s *InMemoryStore) CreateIfAvailable(_ context.Context, identity *models.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.identities {
		if conflicts(existing, identity) {
			return ErrAlreadyUsed
		}
	}
	s.nextID++
	identity.ID = s.nextID
	stored := *identity
	s.identities[stored.ID] = &stored
	return nil
}

func conflicts(existing, candidate *models.Identity) bool {
	if existing.Username == candidate.Username {
		return true
	}
	if existing.Kind != models.KindUser || candidate.Kind != models.KindUser {
		return false
	}
	return sameNonEmpty(existing.Email, candidate.Email) ||
		sameNonEmpty(existing.Mobile, candidate.Mobile) ||
		sameNonEmpty(existing.NationalID, candidate.NationalID) ||
		sameNonEmpty(existing.BirthCertificate, candidate.BirthCertificate)
}

func sameNonEmpty(a, b string) bool {
	return a != "" && a == b
}

func (s *InMemoryStore) FindByUsername(_ context.Context, kind models.Kind, username string) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, identity := range s.identities {
		if identity.Kind == kind && identity.Username == username {
			found := *identity
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) FindByID(_ context.Context, kind models.Kind, identityID int64) (*models.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	identity, ok := s.identities[identityID]
	if !ok || identity.Kind != kind {
		return nil, ErrNotFound
	}
	found := *identity
	return &found, nil
}

func (s *InMemoryStore) Delete(_ context.Context, identityID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.identities[identityID]; !ok {
		return ErrNotFound
	}
	delete(s.identities, identityID)
	return nil
}

func (s *InMemoryStore) UpdateAdminRoleAndStatus(_ context.Context, adminID id.AdminID, roleID id.RoleID, status models.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	identity, ok := s.identities[adminID.Int64()]
	if !ok || identity.Kind != models.KindAdmin {
		return ErrNotFound
	}
	identity.RoleID = roleID
	identity.Status = status
	return nil
}

func (s *InMemoryStore) ListAdmins(_ context.Context, excludeUsername string) ([]models.AdminSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admins := make([]models.AdminSummary, 0)
	for _, identity := range s.identities {
		if identity.Kind != models.KindAdmin || identity.Username == excludeUsername {
			continue
		}
		summary := models.AdminSummary{
			ID:        identity.AdminID(),
			Username:  identity.Username,
			AdminName: identity.DisplayName,
			Email:     identity.Email,
			Status:    identity.Status,
		}
		if role, ok := s.roles[identity.RoleID]; ok {
			summary.AdminRole = role.Name
		}
		admins = append(admins, summary)
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].ID < admins[j].ID })
	return admins, nil
}

func (s *InMemoryStore) CountUsers(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, identity := range s.identities {
		if identity.Kind == models.KindUser {
			n++
		}
	}
	return n, nil
}

func (s *InMemoryStore) FindRoleByName(_ context.Context, name string) (*models.AdminRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, role := range s.roles {
		if role.Name == name {
			found := *role
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryStore) FindRoleByID(_ context.Context, roleID id.RoleID) (*models.AdminRole, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	role, ok := s.roles[roleID]
	if !ok {
		return nil, ErrNotFound
	}
	found := *role
	return &found, nil
}

func (s *InMemoryStore) CreateRole(_ context.Context, name string) (*models.AdminRole, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, role := range s.roles {
		if role.Name == name {
			return nil, ErrAlreadyUsed
		}
	}
	s.nextRoleID++
	role := &models.AdminRole{ID: s.nextRoleID, Name: name}
	s.roles[role.ID] = role
	found := *role
	return &found, nil
}

func (s *InMemoryStore) Ping(context.Context) error { return nil }
