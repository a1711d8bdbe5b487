package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"tickethub/internal/identity/models"
	"tickethub/internal/platform/metrics"
	"tickethub/internal/platform/middleware"
	provisioningmodels "tickethub/internal/provisioning/models"
	"tickethub/internal/ratelimit"
	id "tickethub/pkg/domain"
	dErrors "tickethub/pkg/domain-errors"
	"tickethub/pkg/platform/httputil"
	"tickethub/pkg/requestcontext"
)

// Service is the provisioning surface the handlers call.
type Service interface {
	SignupUser(ctx context.Context, req provisioningmodels.SignupUserRequest) (*models.Identity, error)
	LoginUser(ctx context.Context, username, password string) (*provisioningmodels.UserLoginResult, error)
	SignupAdmin(ctx context.Context, req provisioningmodels.SignupAdminRequest) (*provisioningmodels.AdminSignupResult, error)
	LoginAdmin(ctx context.Context, username, password string) (*provisioningmodels.AdminLoginResult, error)
	ApproveAdmin(ctx context.Context, req provisioningmodels.ApproveAdminRequest) (*provisioningmodels.ApproveResult, error)
	AddAdminRole(ctx context.Context, name string) (*models.AdminRole, error)
	ListAdmins(ctx context.Context, callerUsername string) ([]models.AdminSummary, error)
}

// TokenVerifier resolves a token to its username claim.
type TokenVerifier interface {
	VerifyUsername(token string) (string, error)
}

// Handler serves /api/user/{signup,login} and /api/admin/*.
type Handler struct {
	service       Service
	tokens        TokenVerifier
	logger        *slog.Logger
	metrics       *metrics.Metrics
	adminAPIToken string
	limiter       *ratelimit.Limiter
}

type Option func(*Handler)

// WithRateLimiter throttles the signup and login routes per client address.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(h *Handler) {
		h.limiter = l
	}
}

// New creates a provisioning Handler. adminAPIToken guards approval and role
// management; empty disables the guard.
func New(service Service, tokens TokenVerifier, logger *slog.Logger, m *metrics.Metrics, adminAPIToken string, opts ...Option) *Handler {
	h := &Handler{
		service:       service,
		tokens:        tokens,
		logger:        logger,
		metrics:       m,
		adminAPIToken: adminAPIToken,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the provisioning routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.LatencyMiddleware(h.metrics))

		signup := h.limiter.Middleware("signup")
		login := h.limiter.Middleware("login")
		r.With(signup).Post("/api/user/signup", h.handleSignupUser)
		r.With(login).Post("/api/user/login", h.handleLoginUser)
		r.With(signup).Post("/api/admin/signup", h.handleSignupAdmin)
		r.With(login).Post("/api/admin/login", h.handleLoginAdmin)
		r.Post("/api/admin/allAdminInfo", h.handleListAdmins)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminToken(h.adminAPIToken, h.logger))
			r.Post("/api/admin/approval", h.handleApproveAdmin)
			r.Post("/api/admin/addAdminRoleInfo", h.handleAddAdminRole)
		})
	})
}

type userView struct {
	UserID           int64  `json:"userId"`
	Username         string `json:"username"`
	FullName         string `json:"fullName"`
	Email            string `json:"email"`
	Mobile           string `json:"mobile"`
	NationalID       string `json:"nationalId"`
	BirthCertificate string `json:"birthCertificate"`
}

func toUserView(u *models.Identity) userView {
	return userView{
		UserID:           u.ID,
		Username:         u.Username,
		FullName:         u.DisplayName,
		Email:            u.Email,
		Mobile:           u.Mobile,
		NationalID:       u.NationalID,
		BirthCertificate: u.BirthCertificate,
	}
}

type adminView struct {
	AdminID   int64  `json:"adminId"`
	Username  string `json:"username"`
	AdminName string `json:"adminName"`
	Email     string `json:"email,omitempty"`
	Status    string `json:"status"`
}

func toAdminView(a *models.Identity) adminView {
	return adminView{
		AdminID:   a.ID,
		Username:  a.Username,
		AdminName: a.DisplayName,
		Email:     a.Email,
		Status:    a.Status.String(),
	}
}

func (h *Handler) handleSignupUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req provisioningmodels.SignupUserRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	user, err := h.service.SignupUser(ctx, req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "user created",
		"user":    toUserView(user),
	})
}

func (h *Handler) handleLoginUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req provisioningmodels.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	result, err := h.service.LoginUser(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"user":        toUserView(result.User),
		"accessToken": result.AccessToken,
	})
}

func (h *Handler) handleSignupAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req provisioningmodels.SignupAdminRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	result, err := h.service.SignupAdmin(ctx, req)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	resp := map[string]any{
		"message":   "admin created",
		"adminInfo": toAdminView(result.Admin),
		"adminRole": result.Role,
	}
	if result.Company != nil {
		resp["companyName"] = result.Company.CompanyName
		resp["companyId"] = result.Company.CompanyID.Int64()
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) handleLoginAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req provisioningmodels.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	result, err := h.service.LoginAdmin(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	resp := map[string]any{
		"token":     result.Token,
		"adminRole": result.Role,
		"adminInfo": toAdminView(result.Admin),
	}
	if result.Company != nil {
		resp["companyName"] = result.Company.CompanyName
		resp["companyId"] = result.Company.CompanyID.Int64()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

type approveRequest struct {
	AdminID     json.Number `json:"adminId"`
	AdminRole   string      `json:"adminRole"`
	CompanyName string      `json:"companyName"`
}

func (h *Handler) handleApproveAdmin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body approveRequest
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	adminID, err := id.ParseAdminID(body.AdminID.String())
	if err != nil {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeValidation, "adminId must be a positive integer"))
		return
	}

	result, err := h.service.ApproveAdmin(ctx, provisioningmodels.ApproveAdminRequest{
		AdminID:     adminID,
		AdminRole:   body.AdminRole,
		CompanyName: body.CompanyName,
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	resp := map[string]any{
		"message":   "admin approved",
		"adminInfo": toAdminView(result.Admin),
		"adminRole": result.Role,
	}
	if result.Company != nil {
		resp["companyName"] = result.Company.CompanyName
		resp["companyId"] = result.Company.CompanyID.Int64()
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAddAdminRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body struct {
		AdminRole string `json:"adminRole"`
	}
	if err := httputil.DecodeJSON(r, &body); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	role, err := h.service.AddAdminRole(ctx, body.AdminRole)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"message":     "admin role added",
		"adminRoleId": role.ID.Int64(),
		"adminRole":   role.Name,
	})
}

func (h *Handler) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var body struct {
		Token    string `json:"token"`
		Username string `json:"username"`
	}
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

	username, err := h.tokens.VerifyUsername(token)
	if err != nil {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
		return
	}
	if body.Username != "" && body.Username != username {
		h.writeError(ctx, w, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
		return
	}

	admins, err := h.service.ListAdmins(requestcontext.WithUsername(ctx, username), username)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"admins": admins})
}

// writeError logs failures at a level matching their class and writes the
// error envelope.
func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, err error) {
	requestID := requestcontext.RequestID(ctx)
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, "request failed",
			"request_id", requestID,
			"error", err,
		)
	} else {
		h.logger.InfoContext(ctx, "request rejected",
			"request_id", requestID,
			"code", string(dErrors.CodeOf(err)),
		)
	}
	httputil.WriteError(w, err)
}
