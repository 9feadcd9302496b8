package registry

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/storegate/storegate/pkg/tenantsig"
)

// Config holds the registry service configuration. AdminTokenHash is a
// bcrypt hash of the operator token; requests must present the plaintext
// token as a bearer credential.
type Config struct {
	AdminTokenHash string `env:"REGISTRY_ADMIN_TOKEN_HASH,required,notEmpty"`
	SigningSecret  string `env:"TENANT_SIGNING_SECRET"`
}

// Router mounts the tenant directory endpoints. Everything is operator-only
// and sits behind the bearer token check.
func Router(cfg Config, store Store, log *slog.Logger) http.Handler {
	h := &handlers{cfg: cfg, store: store, log: log}

	r := chi.NewRouter()
	r.Use(adminAuth(cfg.AdminTokenHash))
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Get("/{id}/credentials", h.credentials)
	r.Get("/resolve/{subdomain}", h.resolve)
	return r
}

// adminAuth verifies the bearer token against the configured bcrypt hash.
func adminAuth(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				respondJSON(w, http.StatusUnauthorized, errorBody("Missing bearer token"))
				return
			}
			if bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)) != nil {
				respondJSON(w, http.StatusUnauthorized, errorBody("Invalid admin token"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type handlers struct {
	cfg   Config
	store Store
	log   *slog.Logger
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}
	t, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	tenants, err := h.store.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, tenants)
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

// credentials mints the signed identity headers for a tenant. The response
// mirrors what callers must send: the two identity headers plus the
// signature over them.
func (h *handlers) credentials(w http.ResponseWriter, r *http.Request) {
	if h.cfg.SigningSecret == "" {
		respondJSON(w, http.StatusInternalServerError, errorBody("Tenant signing key not configured"))
		return
	}
	t, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Credentials{
		TenantID:   t.ID,
		DBLocation: t.DBLocation,
		Signature:  tenantsig.Sign(t.ID, t.DBLocation, h.cfg.SigningSecret),
	})
}

func (h *handlers) resolve(w http.ResponseWriter, r *http.Request) {
	t, err := h.store.GetBySubdomain(r.Context(), chi.URLParam(r, "subdomain"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (h *handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody("Tenant not found"))
	case errors.Is(err, ErrDuplicateSubdomain):
		respondJSON(w, http.StatusConflict, errorBody("Subdomain already registered"))
	case errors.Is(err, ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		if h.log != nil {
			h.log.ErrorContext(r.Context(), "registry request failed",
				slog.String("error", err.Error()),
				slog.String("path", r.URL.Path),
			)
		}
		respondJSON(w, http.StatusInternalServerError, errorBody("Internal server error"))
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
