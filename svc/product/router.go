package product

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storegate/storegate/pkg/tenant"
	"github.com/storegate/storegate/pkg/tenantconn"
)

// RepositoryFactory builds a Repository over the tenant's cached database
// handle. The production factory wraps NewMongoRepository; tests substitute
// fakes without touching mongo.
type RepositoryFactory[T any] func(handle T) Repository

// Router mounts the product CRUD endpoints behind the tenant middleware.
// Every handler operates on the repository built from the caller's own
// tenant database, so tenants can never see each other's catalogs.
func Router[T any](cfg tenant.Config, conns *tenantconn.Cache[T], factory RepositoryFactory[T], log *slog.Logger) http.Handler {
	h := &handlers[T]{factory: factory, log: log}

	r := chi.NewRouter()
	r.Use(tenant.Middleware(cfg, conns, tenant.WithLogger(log)))
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	return r
}

type handlers[T any] struct {
	factory RepositoryFactory[T]
	log     *slog.Logger
}

// repo builds the per-request repository from the tenant's database handle.
func (h *handlers[T]) repo(r *http.Request) (Repository, bool) {
	handle, ok := tenant.ConnFromContext[T](r.Context())
	if !ok {
		return nil, false
	}
	return h.factory(handle), true
}

func (h *handlers[T]) list(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		h.respondError(w, r, errors.New("no tenant connection in context"))
		return
	}
	products, err := repo.List(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *handlers[T]) create(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		h.respondError(w, r, errors.New("no tenant connection in context"))
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}
	p, err := repo.Create(r.Context(), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (h *handlers[T]) get(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		h.respondError(w, r, errors.New("no tenant connection in context"))
		return
	}
	p, err := repo.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *handlers[T]) update(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		h.respondError(w, r, errors.New("no tenant connection in context"))
		return
	}
	var in Input
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}
	p, err := repo.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (h *handlers[T]) delete(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.repo(r)
	if !ok {
		h.respondError(w, r, errors.New("no tenant connection in context"))
		return
	}
	if err := repo.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondError maps domain errors onto HTTP statuses. Unknown errors are
// logged and reported as opaque 500s.
func (h *handlers[T]) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondJSON(w, http.StatusNotFound, errorBody("Product not found"))
	case errors.Is(err, ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		if h.log != nil {
			h.log.ErrorContext(r.Context(), "product request failed",
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
