package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	companystore "tickethub/internal/company/store"
	historyservice "tickethub/internal/history/service"
	historystore "tickethub/internal/history/store"
	"tickethub/internal/identity/rolecache"
	identitystore "tickethub/internal/identity/store"
	"tickethub/internal/platform/config"
	"tickethub/internal/platform/postgres"
	provisioningservice "tickethub/internal/provisioning/service"
	id "tickethub/pkg/domain"
)

type identityStore interface {
	provisioningservice.IdentityStore
	rolecache.RoleStore
	CountUsers(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// stores holds every store the process talks to. Pools are opened once here
// and handed to the stores explicitly.
type stores struct {
	identity  identityStore
	tx        provisioningservice.TxRunner
	companies map[id.Mode]provisioningservice.CompanyStore
	tickets   map[id.Mode]historyservice.TicketStore
	checks    map[string]pinger
	pools     []*sql.DB
}

func (s *stores) Close() {
	for _, db := range s.pools {
		_ = db.Close()
	}
}

func openStores(ctx context.Context, cfg config.Database, log *slog.Logger) (*stores, error) {
	pool := postgres.PoolConfig{
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}
	s := &stores{
		companies: make(map[id.Mode]provisioningservice.CompanyStore, len(id.AllModes)),
		tickets:   make(map[id.Mode]historyservice.TicketStore, len(id.AllModes)),
		checks:    make(map[string]pinger),
	}

	open := func(dsn string, schema postgres.Schema) (*sql.DB, error) {
		db, err := postgres.Open(ctx, dsn, pool)
		if err != nil {
			return nil, fmt.Errorf("%s store: %w", schema, err)
		}
		s.pools = append(s.pools, db)
		if cfg.AutoMigrate {
			if err := postgres.Migrate(ctx, db, schema); err != nil {
				return nil, err
			}
		}
		return db, nil
	}

	if cfg.IdentityURL == "" {
		log.Warn("IDENTITY_DATABASE_URL not set, using in-memory identity store")
		s.identity = identitystore.NewInMemory()
		s.tx = identitystore.NewInMemoryTx()
	} else {
		db, err := open(cfg.IdentityURL, postgres.SchemaIdentity)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.identity = identitystore.NewPostgres(db)
		s.tx = identitystore.NewPostgresTx(db)
	}
	s.checks["identity"] = s.identity

	modeURLs := map[id.Mode]string{
		id.ModeBus:   cfg.BusURL,
		id.ModeAir:   cfg.AirURL,
		id.ModeTrain: cfg.TrainURL,
	}
	modeSchemas := map[id.Mode]postgres.Schema{
		id.ModeBus:   postgres.SchemaBus,
		id.ModeAir:   postgres.SchemaAir,
		id.ModeTrain: postgres.SchemaTrain,
	}
	for _, mode := range id.AllModes {
		dsn := modeURLs[mode]
		if dsn == "" {
			log.Warn("mode database URL not set, using in-memory store", "mode", mode.String())
			s.companies[mode] = companystore.NewInMemory(mode)
			tickets := historystore.NewInMemory(mode)
			s.tickets[mode] = tickets
			s.checks[mode.String()] = tickets
			continue
		}

		db, err := open(dsn, modeSchemas[mode])
		if err != nil {
			s.Close()
			return nil, err
		}
		tickets, err := historystore.NewPostgres(db, mode)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.companies[mode] = companystore.NewPostgres(db, mode)
		s.tickets[mode] = tickets
		s.checks[mode.String()] = tickets
	}
	return s, nil
}
