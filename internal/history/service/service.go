// Package service assembles a user's booking history across the bus, air and
// train stores.
//
// Each mode is fetched independently. A mode store that fails or runs past the
// request deadline degrades only its own section to an error marker; the
// token and identity check that precedes the fan-out is the one failure that
// rejects the whole request.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"tickethub/internal/history/metrics"
	"tickethub/internal/history/models"
	identitymodels "tickethub/internal/identity/models"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/sentinel"
)

// TicketStore reads one mode's ticket lists and schedule references.
type TicketStore interface {
	ListTickets(ctx context.Context, kind models.ListKind, userID id.UserID) ([]models.Ticket, error)
	ResolveSchedule(ctx context.Context, scheduleID id.ScheduleID, classRefID int64) (*models.ScheduleReference, error)
}

type IdentityReader interface {
	FindByUsername(ctx context.Context, kind identitymodels.Kind, username string) (*identitymodels.Identity, error)
	CountUsers(ctx context.Context) (int, error)
}

type TokenVerifier interface {
	VerifyUsername(token string) (string, error)
}

const (
	defaultTimeout           = 5 * time.Second
	defaultEnrichConcurrency = 8

	sectionCodeTimeout     = "timeout"
	sectionCodeUnavailable = "unavailable"
)

// Service serves ticket history and user counts.
type Service struct {
	identities IdentityReader
	tokens     TokenVerifier
	stores     map[id.Mode]TicketStore
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer

	timeout     time.Duration
	enrichLimit int
	now         func() time.Time
	location    *time.Location
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

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithTimeout bounds the fan-out of one request.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithEnrichConcurrency caps concurrent schedule lookups per ticket list.
func WithEnrichConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.enrichLimit = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLocation sets the time zone in which "today" is taken when classifying
// journeys.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// New constructs a Service. stores maps each mode to its ticket store; a mode
// without a store is always reported as unavailable.
func New(identities IdentityReader, tokens TokenVerifier, stores map[id.Mode]TicketStore, opts ...Option) *Service {
	s := &Service{
		identities:  identities,
		tokens:      tokens,
		stores:      stores,
		logger:      slog.Default(),
		tracer:      otel.Tracer("tickethub/internal/history"),
		timeout:     defaultTimeout,
		enrichLimit: defaultEnrichConcurrency,
		now:         time.Now,
		location:    time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetHistory returns the confirmed and queued tickets of userID in every mode.
// token must belong to the active user identity that owns userID.
func (s *Service) GetHistory(ctx context.Context, token string, userID id.UserID) (*models.UnifiedHistory, error) {
	ctx, span := s.tracer.Start(ctx, "history.GetHistory",
		trace.WithAttributes(attribute.Int64("user.id", userID.Int64())),
	)
	defer span.End()

	if err := s.authorize(ctx, token, userID); err != nil {
		span.SetStatus(codes.Error, "authorization failed")
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			s.incRequest("rejected")
		} else {
			s.incRequest("error")
		}
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	now := s.now()
	today := now.In(s.location)
	history := &models.UnifiedHistory{UserID: userID, GeneratedAt: now}

	// Sections never fail the group; each goroutine owns one section.
	var g errgroup.Group
	for _, mode := range id.AllModes {
		section := history.Section(mode)
		g.Go(func() error {
			*section = s.buildSection(ctx, mode, userID, today)
			return nil
		})
	}
	_ = g.Wait()

	for _, mode := range id.AllModes {
		if history.Section(mode).Failed() {
			history.Partial = true
		}
	}
	if history.Partial {
		span.SetAttributes(attribute.Bool("history.partial", true))
		s.incRequest("partial")
	} else {
		s.incRequest("complete")
	}
	return history, nil
}

func (s *Service) authorize(ctx context.Context, token string, userID id.UserID) error {
	if token == "" {
		return dErrors.New(dErrors.CodeUnauthorized, "token is required")
	}
	username, err := s.tokens.VerifyUsername(token)
	if err != nil {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	user, err := s.identities.FindByUsername(ctx, identitymodels.KindUser, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
		}
		s.logger.ErrorContext(ctx, "identity lookup failed during history authorization",
			"username", username,
			"error", err,
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to verify token")
	}
	if !user.IsActive() || user.UserID() != userID {
		return dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	return nil
}

func (s *Service) buildSection(ctx context.Context, mode id.Mode, userID id.UserID, today time.Time) models.Section {
	ctx, span := s.tracer.Start(ctx, "history.section",
		trace.WithAttributes(attribute.String("mode", mode.String())),
	)
	defer span.End()
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveSection(mode.String(), start)
		}
	}()

	store, ok := s.stores[mode]
	if !ok || store == nil {
		return s.failedSection(ctx, span, mode, errors.New("no store configured"))
	}

	section := models.Section{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tickets, err := s.collect(gctx, store, mode, models.ListConfirmed, userID, today)
		section.Confirmed = tickets
		return err
	})
	g.Go(func() error {
		tickets, err := s.collect(gctx, store, mode, models.ListQueued, userID, today)
		section.Queued = tickets
		return err
	})
	if err := g.Wait(); err != nil {
		return s.failedSection(ctx, span, mode, err)
	}
	return section
}

// collect fetches one ticket list and enriches every ticket. Enrichment runs
// concurrently but each result is written to its ticket's own index, so the
// output corresponds 1:1 with the fetched tickets.
func (s *Service) collect(
	ctx context.Context,
	store TicketStore,
	mode id.Mode,
	kind models.ListKind,
	userID id.UserID,
	today time.Time,
) ([]models.EnrichedTicket, error) {
	tickets, err := store.ListTickets(ctx, kind, userID)
	if err != nil {
		return nil, err
	}

	out := make([]models.EnrichedTicket, len(tickets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.enrichLimit)
	for i, ticket := range tickets {
		g.Go(func() error {
			ref, err := store.ResolveSchedule(gctx, ticket.ScheduleID, ticket.ClassRefID)
			switch {
			case errors.Is(err, sentinel.ErrNotFound):
				s.logger.DebugContext(ctx, "ticket schedule no longer resolves",
					"mode", mode.String(),
					"ticket_id", ticket.TicketID,
					"schedule_id", ticket.ScheduleID.Int64(),
				)
				if s.metrics != nil {
					s.metrics.IncUnresolved(mode.String())
				}
				out[i] = models.Enrich(ticket, nil, today)
				return nil
			case err != nil:
				return err
			}
			out[i] = models.Enrich(ticket, ref, today)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) failedSection(ctx context.Context, span trace.Span, mode id.Mode, err error) models.Section {
	code, message := sectionCodeUnavailable, mode.String()+" store unavailable"
	// Drivers surface a cancelled query as their own error, so the request
	// deadline is checked on ctx as well.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		code, message = sectionCodeTimeout, mode.String()+" store timed out"
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, message)
	s.logger.WarnContext(ctx, "history section degraded",
		"mode", mode.String(),
		"code", code,
		"error", err,
	)
	if s.metrics != nil {
		s.metrics.IncSectionFailure(mode.String(), code)
	}
	return models.Section{
		Confirmed: []models.EnrichedTicket{},
		Queued:    []models.EnrichedTicket{},
		Error:     &models.SectionError{Code: code, Message: message},
	}
}

// CountUsers returns the number of end-user identities.
func (s *Service) CountUsers(ctx context.Context) (int, error) {
	n, err := s.identities.CountUsers(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "count users failed", "error", err)
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count users")
	}
	return n, nil
}

func (s *Service) incRequest(result string) {
	if s.metrics != nil {
		s.metrics.IncRequest(result)
	}
}
