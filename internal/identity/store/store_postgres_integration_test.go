//go:build integration

package store_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tickethub/internal/identity/models"
	"tickethub/internal/identity/store"
	"tickethub/internal/platform/postgres"
	id "tickethub/pkg/domain"
	"tickethub/pkg/platform/sentinel"
	"tickethub/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	db    *sql.DB
	store *store.PostgresStore
	tx    *store.PostgresTx
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	pg := containers.GetManager().GetPostgres(s.T())
	s.db = pg.Database(s.T(), postgres.SchemaIdentity)
	s.store = store.NewPostgres(s.db)
	s.tx = store.NewPostgresTx(s.db)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(containers.TruncateTables(context.Background(), s.db, "identity_info"))
	_, err := s.db.Exec(`DELETE FROM admin_role_info WHERE admin_role_name NOT IN ('ADMIN', 'BUS', 'AIR', 'TRAIN')`)
	s.Require().NoError(err)
}

func user(n int) *models.Identity {
	return &models.Identity{
		Kind:             models.KindUser,
		Username:         fmt.Sprintf("user%d", n),
		PasswordHash:     "digest",
		DisplayName:      "User",
		Email:            fmt.Sprintf("u%d@example.com", n),
		Mobile:           fmt.Sprintf("0100%d", n),
		NationalID:       fmt.Sprintf("NID%d", n),
		BirthCertificate: fmt.Sprintf("BC%d", n),
		Status:           models.StatusActive,
		CreatedAt:        time.Now(),
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	u := user(1)
	s.Require().NoError(s.store.CreateIfAvailable(ctx, u))
	s.Positive(u.ID)

	found, err := s.store.FindByUsername(ctx, models.KindUser, "user1")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
	s.Equal("u1@example.com", found.Email)
	s.Equal(models.StatusActive, found.Status)

	_, err = s.store.FindByUsername(ctx, models.KindAdmin, "user1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUniqueFieldsConflictWithoutWrite() {
	ctx := context.Background()
	s.Require().NoError(s.store.CreateIfAvailable(ctx, user(1)))

	dup := user(2)
	dup.Mobile = "01001"
	s.ErrorIs(s.store.CreateIfAvailable(ctx, dup), sentinel.ErrAlreadyUsed)

	n, err := s.store.CountUsers(ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}

// TestConcurrentSignup verifies that racing inserts of one username produce
// exactly one row.
func (s *PostgresStoreSuite) TestConcurrentSignup() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successes, conflicts atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := user(100 + i)
			u.Username = "racer"
			err := s.store.CreateIfAvailable(ctx, u)
			switch {
			case err == nil:
				successes.Add(1)
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				conflicts.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Equal(int32(1), successes.Load())
	s.Equal(int32(goroutines-1), conflicts.Load())
}

func (s *PostgresStoreSuite) TestAdminLifecycle() {
	ctx := context.Background()
	role, err := s.store.FindRoleByName(ctx, id.RoleAir)
	s.Require().NoError(err)

	admin := &models.Identity{
		Kind:         models.KindAdmin,
		Username:     "airops",
		PasswordHash: "digest",
		DisplayName:  "Air Ops",
		RoleID:       role.ID,
		Status:       models.StatusPending,
		CreatedAt:    time.Now(),
	}
	s.Require().NoError(s.store.CreateIfAvailable(ctx, admin))

	s.Require().NoError(s.store.UpdateAdminRoleAndStatus(ctx, admin.AdminID(), role.ID, models.StatusActive))
	found, err := s.store.FindByID(ctx, models.KindAdmin, admin.ID)
	s.Require().NoError(err)
	s.True(found.IsActive())

	admins, err := s.store.ListAdmins(ctx, "someone-else")
	s.Require().NoError(err)
	s.Require().Len(admins, 1)
	s.Equal(id.RoleAir, admins[0].AdminRole)

	s.Require().NoError(s.store.Delete(ctx, admin.ID))
	s.ErrorIs(s.store.Delete(ctx, admin.ID), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRunInTxRollsBack() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.store.CreateRole(ctx, "FERRY"); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.store.FindRoleByName(ctx, "FERRY")
	s.ErrorIs(err, sentinel.ErrNotFound)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := s.store.CreateRole(ctx, "FERRY")
		return err
	})
	s.Require().NoError(err)

	_, err = s.store.CreateRole(ctx, "FERRY")
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}
