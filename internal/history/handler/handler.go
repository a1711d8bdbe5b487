package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tickethub/internal/history/models"
	"tickethub/internal/platform/metrics"
	"tickethub/internal/platform/middleware"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/httputil"
	"tickethub/pkg/requestcontext"
)

// Service is the history surface the handlers call.
type Service interface {
	GetHistory(ctx context.Context, token string, userID id.UserID) (*models.UnifiedHistory, error)
	CountUsers(ctx context.Context) (int, error)
}

// Handler serves /api/user/ticketHistory and /api/user/count.
type Handler struct {
	service       Service
	logger        *slog.Logger
	metrics       *metrics.Metrics
	adminAPIToken string
}

// New creates a history Handler. adminAPIToken guards the user count; empty
// disables the guard.
func New(service Service, logger *slog.Logger, m *metrics.Metrics, adminAPIToken string) *Handler {
	return &Handler{
		service:       service,
		logger:        logger,
		metrics:       m,
		adminAPIToken: adminAPIToken,
	}
}

// Register registers the history routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.LatencyMiddleware(h.metrics))

		r.Post("/api/user/ticketHistory", h.handleTicketHistory)

		r.With(middleware.RequireAdminToken(h.adminAPIToken, h.logger)).
			Get("/api/user/count", h.handleCountUsers)
	})
}

type historyRequest struct {
	Token  string      `json:"token"`
	UserID json.Number `json:"userId"`
}

func (h *Handler) handleTicketHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body historyRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	token := body.Token
	if token == "" {
		token = middleware.BearerToken(r)
	}
	if token == "" {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeUnauthorized, "token is required"))
		return
	}
	userID, err := id.ParseUserID(body.UserID.String())
	if err != nil {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeValidation, "userId must be a positive integer"))
		return
	}

	history, err := h.service.GetHistory(ctx, token, userID)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	if history.Partial {
		h.logger.InfoContext(ctx, "ticket history served partially",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID.Int64(),
		)
	}
	httputil.WriteJSON(w, http.StatusOK, history)
}

func (h *Handler) handleCountUsers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	n, err := h.service.CountUsers(ctx)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"count": n})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "request failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}
