package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"tickethub/internal/history/models"
	id "tickethub/pkg/domain"
)

// scheduleQuery resolves a schedule with its company and class/coach names.
// withClassRef marks queries that take the ticket's class_ref_id as $2.
type scheduleQuery struct {
	sql          string
	withClassRef bool
}

const scheduleSelect = `SELECT s.schedule_id, s.company_id, c.company_name, s.departure_time, s.schedule_date,
       %s, %s, COALESCE(s.starting_point, ''), COALESCE(s.destination, '')
  FROM schedule_info s
  JOIN company_services c ON c.company_id = s.company_id
`

var scheduleQueries = map[id.Mode]scheduleQuery{
	// Bus schedules name their coach type and brand directly.
	id.ModeBus: {
		sql: fmt.Sprintf(scheduleSelect, "COALESCE(co.coach_name, '')", "COALESCE(b.brand_name, '')") +
			`  LEFT JOIN coach_info co ON co.coach_id = s.coach_id
  LEFT JOIN brand_name_info b ON b.brand_name_id = s.brand_name_id
 WHERE s.schedule_id = $1`,
	},
	id.ModeAir: {
		sql: fmt.Sprintf(scheduleSelect, "COALESCE(cl.class_name, '')", "''") +
			`  LEFT JOIN class_info cl ON cl.class_id = $2
 WHERE s.schedule_id = $1`,
		withClassRef: true,
	},
	id.ModeTrain: {
		sql: fmt.Sprintf(scheduleSelect, "COALESCE(co.coach_name, '')", "''") +
			`  LEFT JOIN coach_info co ON co.coach_id = $2
 WHERE s.schedule_id = $1`,
		withClassRef: true,
	},
}

// PostgresStore reads tickets and schedule references from one mode database.
type PostgresStore struct {
	db       *sql.DB
	mode     id.Mode
	schedule scheduleQuery
}

// NewPostgres constructs a ticket store for mode backed by db.
func NewPostgres(db *sql.DB, mode id.Mode) (*PostgresStore, error) {
	q, ok := scheduleQueries[mode]
	if !ok {
		return nil, fmt.Errorf("no ticket store for mode %q", mode)
	}
	return &PostgresStore{db: db, mode: mode, schedule: q}, nil
}

func (s *PostgresStore) Mode() id.Mode { return s.mode }

// ListTickets returns every ticket of userID in the given list, oldest first.
func (s *PostgresStore) ListTickets(ctx context.Context, kind models.ListKind, userID id.UserID) ([]models.Ticket, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT ticket_id, user_id, schedule_id, seats, class_ref_id, total_fare, passenger_name, created_at
		   FROM `+table+`
		  WHERE user_id = $1
		  ORDER BY created_at, ticket_id`,
		userID.Int64(),
	)
	if err != nil {
		return nil, fmt.Errorf("list %s %s tickets: %w", s.mode, kind, err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		var (
			t         models.Ticket
			user      int64
			schedule  int64
			classRef  sql.NullInt64
			passenger sql.NullString
		)
		if err := rows.Scan(&t.TicketID, &user, &schedule, pq.Array(&t.Seats), &classRef, &t.TotalFare, &passenger, &t.BookedAt); err != nil {
			return nil, fmt.Errorf("scan %s %s ticket: %w", s.mode, kind, err)
		}
		t.UserID = id.UserID(user)
		t.ScheduleID = id.ScheduleID(schedule)
		t.ClassRefID = classRef.Int64
		t.PassengerName = passenger.String
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s %s tickets: %w", s.mode, kind, err)
	}
	return tickets, nil
}

// ResolveSchedule joins scheduleID with its company and class/coach reference
// rows. classRefID is the ticket's class_ref_id; zero means none.
func (s *PostgresStore) ResolveSchedule(ctx context.Context, scheduleID id.ScheduleID, classRefID int64) (*models.ScheduleReference, error) {
	args := []any{scheduleID.Int64()}
	if s.schedule.withClassRef {
		args = append(args, sql.NullInt64{Int64: classRefID, Valid: classRefID > 0})
	}

	var (
		ref       models.ScheduleReference
		schedule  int64
		companyID int64
	)
	err := s.db.QueryRowContext(ctx, s.schedule.sql, args...).Scan(
		&schedule, &companyID, &ref.CompanyName, &ref.DepartureTime, &ref.JourneyDate,
		&ref.ClassName, &ref.BrandName, &ref.StartingPoint, &ref.Destination,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve %s schedule %d: %w", s.mode, scheduleID, err)
	}
	ref.ScheduleID = id.ScheduleID(schedule)
	ref.CompanyID = id.CompanyID(companyID)
	return &ref, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
