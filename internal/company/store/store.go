// Package store persists company memberships in the company_services table of
// each mode store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/lib/pq"

	"tickethub/internal/company/models"
	id "tickethub/pkg/domain"
	"tickethub/pkg/platform/sentinel"
)

// PostgresStore reads and writes company_services in one mode database.
type PostgresStore struct {
	db   *sql.DB
	mode id.Mode
}

// NewPostgres constructs a company store for mode backed by db.
func NewPostgres(db *sql.DB, mode id.Mode) *PostgresStore {
	return &PostgresStore{db: db, mode: mode}
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (*models.Membership, error) {
	return s.findOne(ctx, `WHERE company_name = $1`, name)
}

func (s *PostgresStore) FindByAdmin(ctx context.Context, adminID id.AdminID) (*models.Membership, error) {
	return s.findOne(ctx, `WHERE admin_id = $1`, adminID.Int64())
}

func (s *PostgresStore) findOne(ctx context.Context, where string, arg any) (*models.Membership, error) {
	var (
		m         models.Membership
		companyID int64
		adminID   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT company_id, company_name, admin_id, created_at FROM company_services `+where, arg,
	).Scan(&companyID, &m.CompanyName, &adminID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find %s company: %w", s.mode, err)
	}
	m.CompanyID = id.CompanyID(companyID)
	m.AdminID = id.AdminID(adminID)
	m.Mode = s.mode
	return &m, nil
}

// Create inserts a membership. Company name and admin id are each unique.
func (s *PostgresStore) Create(ctx context.Context, m *models.Membership) error {
	var companyID int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO company_services (company_name, admin_id, created_at) VALUES ($1, $2, $3) RETURNING company_id`,
		m.CompanyName, m.AdminID.Int64(), m.CreatedAt,
	).Scan(&companyID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create %s company: %w", s.mode, err)
	}
	m.CompanyID = id.CompanyID(companyID)
	m.Mode = s.mode
	return nil
}

// DeleteByAdmin removes the membership owned by adminID. It returns
// sentinel.ErrNotFound when there is none.
func (s *PostgresStore) DeleteByAdmin(ctx context.Context, adminID id.AdminID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM company_services WHERE admin_id = $1`, adminID.Int64())
	if err != nil {
		return fmt.Errorf("delete %s company: %w", s.mode, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s company: %w", s.mode, err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InMemoryStore is a thread-safe company store for tests and development.
type InMemoryStore struct {
	mu      sync.RWMutex
	mode    id.Mode
	rows    map[id.CompanyID]models.Membership
	nextID  id.CompanyID
	failErr error
}

func NewInMemory(mode id.Mode) *InMemoryStore {
	return &InMemoryStore{mode: mode, rows: make(map[id.CompanyID]models.Membership)}
}

// FailWrites makes every subsequent Create return err. Passing nil restores
// normal behaviour.
func (s *InMemoryStore) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *InMemoryStore) FindByName(_ context.Context, name string) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.rows {
		if m.CompanyName == name {
			found := m
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByAdmin(_ context.Context, adminID id.AdminID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, m := range s.rows {
		if m.AdminID == adminID {
			found := m
			return &found, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Create(_ context.Context, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	for _, existing := range s.rows {
		if existing.CompanyName == m.CompanyName || existing.AdminID == m.AdminID {
			return sentinel.ErrAlreadyUsed
		}
	}
	s.nextID++
	m.CompanyID = s.nextID
	m.Mode = s.mode
	s.rows[m.CompanyID] = *m
	return nil
}

func (s *InMemoryStore) DeleteByAdmin(_ context.Context, adminID id.AdminID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for companyID, m := range s.rows {
		if m.AdminID == adminID {
			delete(s.rows, companyID)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

// Len reports the number of stored memberships.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

func (s *InMemoryStore) Ping(context.Context) error { return nil }
