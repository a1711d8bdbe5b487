package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tickethub/internal/identity/models"
	id "tickethub/pkg/domain"
	"tickethub/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func newUser(username, email, mobile, nationalID, birthCert string) *models.Identity {
	return &models.Identity{
		Kind:             models.KindUser,
		Username:         username,
		PasswordHash:     "digest",
		DisplayName:      "User " + username,
		Email:            email,
		Mobile:           mobile,
		NationalID:       nationalID,
		BirthCertificate: birthCert,
		Status:           models.StatusActive,
		CreatedAt:        time.Now(),
	}
}

func (s *InMemoryStoreSuite) TestCreateIfAvailable() {
	s.Run("assigns ids and finds by username", func() {
		u := newUser("alice", "a@x.io", "0100", "N1", "B1")
		s.Require().NoError(s.store.CreateIfAvailable(s.ctx, u))
		s.Positive(u.ID)

		found, err := s.store.FindByUsername(s.ctx, models.KindUser, "alice")
		s.Require().NoError(err)
		s.Equal(u.ID, found.ID)
		s.Equal("a@x.io", found.Email)
	})

	s.Run("rejects any repeated user field", func() {
		cases := map[string]*models.Identity{
			"username":          newUser("alice", "other@x.io", "0999", "N9", "B9"),
			"email":             newUser("bob", "a@x.io", "0999", "N9", "B9"),
			"mobile":            newUser("bob", "b@x.io", "0100", "N9", "B9"),
			"national id":       newUser("bob", "b@x.io", "0999", "N1", "B9"),
			"birth certificate": newUser("bob", "b@x.io", "0999", "N9", "B1"),
		}
		for name, candidate := range cases {
			err := s.store.CreateIfAvailable(s.ctx, candidate)
			s.ErrorIs(err, sentinel.ErrAlreadyUsed, name)
		}
		n, err := s.store.CountUsers(s.ctx)
		s.Require().NoError(err)
		s.Equal(1, n)
	})

	s.Run("admins only collide on username", func() {
		admin := &models.Identity{Kind: models.KindAdmin, Username: "ops", Email: "a@x.io", Status: models.StatusPending}
		s.Require().NoError(s.store.CreateIfAvailable(s.ctx, admin))

		dup := &models.Identity{Kind: models.KindAdmin, Username: "alice"}
		s.ErrorIs(s.store.CreateIfAvailable(s.ctx, dup), sentinel.ErrAlreadyUsed)
	})
}

func (s *InMemoryStoreSuite) TestFindByKind() {
	admin := &models.Identity{Kind: models.KindAdmin, Username: "root", Status: models.StatusActive}
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, admin))

	_, err := s.store.FindByUsername(s.ctx, models.KindUser, "root")
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByID(s.ctx, models.KindUser, admin.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	found, err := s.store.FindByID(s.ctx, models.KindAdmin, admin.ID)
	s.Require().NoError(err)
	s.Equal("root", found.Username)
}

func (s *InMemoryStoreSuite) TestDeleteAndUpdate() {
	admin := &models.Identity{Kind: models.KindAdmin, Username: "busadmin", Status: models.StatusPending}
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, admin))

	bus, err := s.store.FindRoleByName(s.ctx, id.RoleBus)
	s.Require().NoError(err)

	s.Require().NoError(s.store.UpdateAdminRoleAndStatus(s.ctx, admin.AdminID(), bus.ID, models.StatusActive))
	found, err := s.store.FindByID(s.ctx, models.KindAdmin, admin.ID)
	s.Require().NoError(err)
	s.Equal(bus.ID, found.RoleID)
	s.True(found.IsActive())

	s.Require().NoError(s.store.Delete(s.ctx, admin.ID))
	s.ErrorIs(s.store.Delete(s.ctx, admin.ID), sentinel.ErrNotFound)
	s.ErrorIs(s.store.UpdateAdminRoleAndStatus(s.ctx, admin.AdminID(), bus.ID, models.StatusActive), sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestRoles() {
	role, err := s.store.FindRoleByName(s.ctx, id.RoleTrain)
	s.Require().NoError(err)

	byID, err := s.store.FindRoleByID(s.ctx, role.ID)
	s.Require().NoError(err)
	s.Equal(id.RoleTrain, byID.Name)

	created, err := s.store.CreateRole(s.ctx, "FERRY")
	s.Require().NoError(err)
	s.Positive(int64(created.ID))

	_, err = s.store.CreateRole(s.ctx, "FERRY")
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	_, err = s.store.FindRoleByID(s.ctx, 999)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListAdminsExcludesCaller() {
	bus, err := s.store.FindRoleByName(s.ctx, id.RoleBus)
	s.Require().NoError(err)
	for _, name := range []string{"a1", "a2", "a3"} {
		s.Require().NoError(s.store.CreateIfAvailable(s.ctx, &models.Identity{
			Kind: models.KindAdmin, Username: name, DisplayName: name, RoleID: bus.ID,
		}))
	}
	s.Require().NoError(s.store.CreateIfAvailable(s.ctx, newUser("u1", "", "", "", "")))

	admins, err := s.store.ListAdmins(s.ctx, "a2")
	s.Require().NoError(err)
	s.Require().Len(admins, 2)
	s.Equal("a1", admins[0].Username)
	s.Equal("a3", admins[1].Username)
	s.Equal(id.RoleBus, admins[0].AdminRole)
}
