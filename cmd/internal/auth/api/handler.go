package authapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"accountd/cmd/identity"
	"accountd/cmd/internal/account"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Accounts is the account service surface used by the handlers.
type Accounts interface {
	Register(ctx context.Context, login, password string) error
	Authenticate(ctx context.Context, login, password string) error
	// UpdateCurrent applies patch to the session's user and reports that login.
	UpdateCurrent(ctx context.Context, patch account.ProfilePatch) (string, error)
}

// Handler wires the account HTTP endpoints to the account service.
type Handler struct {
	log      *slog.Logger
	cfg      Config
	accounts Accounts

	// pool and schema receive audit rows; nil pool logs audit events instead.
	pool   *pgxpool.Pool
	schema string
}

// HandlerOption configures optional handler dependencies.
type HandlerOption func(*Handler)

// WithAuditPool writes audit rows to <schema>.audit_log through pool.
func WithAuditPool(pool *pgxpool.Pool, schema string) HandlerOption {
	return func(h *Handler) {
		if h == nil || pool == nil {
			return
		}
		h.pool = pool
		if s := strings.TrimSpace(schema); s != "" {
			h.schema = s
		}
	}
}

// NewHandler constructs a Handler.
func NewHandler(log *slog.Logger, accounts Accounts, cfg Config, opts ...HandlerOption) (*Handler, error) {
	if accounts == nil {
		return nil, errors.New("authapi: nil account service")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	h := &Handler{
		log:      log,
		cfg:      cfg,
		accounts: accounts,
		schema:   identity.DefaultSchema,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(h)
	}
	return h, nil
}

// Register wires the account routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/register", h.handleRegister)
	mux.HandleFunc("/authenticate", h.handleAuthenticate)
	mux.HandleFunc("/update", h.handleUpdate)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req credentialsRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	ctx := r.Context()
	login := req.Login
	ip, ua := clientIP(r, h.cfg.TrustProxy), strings.TrimSpace(r.UserAgent())

	err := h.accounts.Register(ctx, login, req.Password)
	switch {
	case err == nil:
		h.insertAudit(ctx, auditEntry{action: auditRegisterOK, login: &login, ip: ip, ua: ua})
		respond(w, http.StatusOK, messageResponse{Message: msgRegistered})
	case errors.Is(err, account.ErrDuplicateLogin):
		h.insertAudit(ctx, auditEntry{action: auditRegisterDuplicate, login: &login, ip: ip, ua: ua})
		respondError(w, http.StatusBadRequest, "user_exists", "User already exists")
	case errors.Is(err, account.ErrInvalidPassword):
		respondError(w, http.StatusBadRequest, "invalid_password", policyMessage(err))
	default:
		h.serverError(w, "auth.register.fail", err)
	}
}

func (h *Handler) handleAuthenticate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var req credentialsRequest
	if !h.readRequest(w, r, &req) {
		return
	}

	ctx := r.Context()
	login := req.Login
	ip, ua := clientIP(r, h.cfg.TrustProxy), strings.TrimSpace(r.UserAgent())

	err := h.accounts.Authenticate(ctx, login, req.Password)
	switch {
	case err == nil:
		h.insertAudit(ctx, auditEntry{action: auditLoginOK, login: &login, ip: ip, ua: ua})
		respond(w, http.StatusOK, messageResponse{Message: msgAuthenticated})
	case errors.Is(err, account.ErrInvalidCredentials):
		// Unknown login and wrong password share one response.
		h.insertAudit(ctx, auditEntry{action: auditLoginFailed, login: &login, ip: ip, ua: ua})
		respondError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
	default:
		h.serverError(w, "auth.authenticate.fail", err)
	}
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !requirePost(w, r) {
		return
	}

	var patch account.ProfilePatch
	if !h.readRequest(w, r, &patch) {
		return
	}

	ctx := r.Context()
	ip, ua := clientIP(r, h.cfg.TrustProxy), strings.TrimSpace(r.UserAgent())

	login, err := h.accounts.UpdateCurrent(ctx, patch)
	switch {
	case err == nil:
		h.insertAudit(ctx, auditEntry{action: auditUpdateOK, login: &login, ip: ip, ua: ua, meta: map[string]any{
			"fields": patchFields(patch),
		}})
		respond(w, http.StatusOK, messageResponse{Message: msgUpdated})
	case errors.Is(err, account.ErrUnauthorized):
		h.insertAudit(ctx, auditEntry{action: auditUpdateUnauthorized, ip: ip, ua: ua})
		respondError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
	case errors.Is(err, account.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "user_not_found", "User not found")
	default:
		h.serverError(w, "auth.update.fail", err)
	}
}

// ---- helpers ----

func requirePost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (h *Handler) serverError(w http.ResponseWriter, event string, err error) {
	h.log.Error(event, "err", err)
	respondError(w, http.StatusInternalServerError, "server_error", "internal error")
}

func policyMessage(err error) string {
	var pe account.PolicyError
	if errors.As(err, &pe) && pe.Reason != nil {
		return pe.Reason.Error()
	}
	return "password does not meet policy"
}

func patchFields(p account.ProfilePatch) []string {
	d := p.Details()
	out := make([]string, 0, len(d))
	for _, k := range []string{"name", "surname", "birthday", "email", "phone"} {
		if _, ok := d[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

func clientIP(r *http.Request, trustProxy bool) net.IP {
	if trustProxy {
		if ip := parseForwardedIP(r.Header.Get("X-Forwarded-For")); ip != nil {
			return ip
		}
		if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		if ip := net.ParseIP(host); ip != nil {
			return ip
		}
	}
	return nil
}

func parseForwardedIP(raw string) net.IP {
	if raw == "" {
		return nil
	}
	for _, p := range strings.Split(raw, ",") {
		if ip := net.ParseIP(strings.TrimSpace(p)); ip != nil {
			return ip
		}
	}
	return nil
}
