//go:build integration

package store_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"tickethub/internal/company/models"
	"tickethub/internal/company/store"
	"tickethub/internal/platform/postgres"
	id "tickethub/pkg/domain"
	"tickethub/pkg/platform/sentinel"
	"tickethub/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	stores map[id.Mode]*store.PostgresStore
	pg     *containers.PostgresContainer
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.stores = map[id.Mode]*store.PostgresStore{
		id.ModeBus:   store.NewPostgres(s.pg.Database(s.T(), postgres.SchemaBus), id.ModeBus),
		id.ModeAir:   store.NewPostgres(s.pg.Database(s.T(), postgres.SchemaAir), id.ModeAir),
		id.ModeTrain: store.NewPostgres(s.pg.Database(s.T(), postgres.SchemaTrain), id.ModeTrain),
	}
}

func (s *PostgresStoreSuite) SetupTest() {
	ctx := context.Background()
	for _, schema := range []postgres.Schema{postgres.SchemaBus, postgres.SchemaAir, postgres.SchemaTrain} {
		s.Require().NoError(containers.TruncateTables(ctx, s.pg.Database(s.T(), schema), "company_services"))
	}
}

func (s *PostgresStoreSuite) TestCreateAndFindPerMode() {
	ctx := context.Background()
	for mode, st := range s.stores {
		m := &models.Membership{CompanyName: "Company " + mode.String(), AdminID: 7, CreatedAt: time.Now()}
		s.Require().NoError(st.Create(ctx, m))
		s.Positive(m.CompanyID.Int64())

		found, err := st.FindByAdmin(ctx, 7)
		s.Require().NoError(err)
		s.Equal(m.CompanyName, found.CompanyName)
		s.Equal(mode, found.Mode)
	}

	_, err := s.stores[id.ModeAir].FindByName(ctx, "Company bus")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestDeleteByAdmin() {
	ctx := context.Background()
	st := s.stores[id.ModeTrain]
	s.Require().NoError(st.Create(ctx, &models.Membership{CompanyName: "Subarna", AdminID: 12, CreatedAt: time.Now()}))

	s.Require().NoError(st.DeleteByAdmin(ctx, 12))
	_, err := st.FindByAdmin(ctx, 12)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(st.DeleteByAdmin(ctx, 12), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestConcurrentCompanyName() {
	ctx := context.Background()
	st := s.stores[id.ModeBus]
	const goroutines = 10

	var wg sync.WaitGroup
	var successes atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := st.Create(ctx, &models.Membership{CompanyName: "Racer", AdminID: id.AdminID(100 + i), CreatedAt: time.Now()})
			if err == nil {
				successes.Add(1)
				return
			}
			s.ErrorIs(err, sentinel.ErrAlreadyUsed)
		}(i)
	}
	wg.Wait()
	s.Equal(int32(1), successes.Load())
}
