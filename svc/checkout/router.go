package checkout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storegate/storegate/pkg/bus"
	"github.com/storegate/storegate/pkg/payment"
	"github.com/storegate/storegate/pkg/tenant"
	"github.com/storegate/storegate/pkg/tenantconn"
)

// Router mounts the checkout endpoints behind the tenant middleware. The
// handlers only need the caller's identity, but running behind the full
// middleware keeps the trust model uniform: an unverifiable request never
// reaches a payment call.
func Router[T any](cfg tenant.Config, conns *tenantconn.Cache[T], provider payment.Provider, pub bus.Publisher, log *slog.Logger) http.Handler {
	h := &handlers{provider: provider, pub: pub, log: log}

	r := chi.NewRouter()
	r.Use(tenant.Middleware(cfg, conns, tenant.WithLogger(log)))
	r.Post("/session", h.createSession)
	r.Get("/session/{id}/verify", h.verifySession)
	return r
}

type handlers struct {
	provider payment.Provider
	pub      bus.Publisher
	log      *slog.Logger
}

// createSession opens a hosted checkout for the caller's cart. Tenant id
// and customer email ride along as session metadata so verification can
// recover them without any local state.
func (h *handlers) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("Invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		h.respondError(w, r, err)
		return
	}

	identity := tenant.MustFromContext(r.Context())
	session, err := h.provider.CreateCheckoutSession(r.Context(), payment.CheckoutParams{
		Items:      req.Items,
		SuccessURL: req.SuccessURL,
		Metadata: map[string]string{
			"tenant_id":      identity.ID,
			"customer_email": req.CustomerEmail,
		},
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, session)
}

// verifySession checks the session with the provider and, when paid,
// publishes a CompletedEvent. Verification is repeatable; consumers are
// expected to deduplicate on session id.
func (h *handlers) verifySession(w http.ResponseWriter, r *http.Request) {
	identity := tenant.MustFromContext(r.Context())

	session, err := h.provider.RetrieveSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	// Sessions are tenant-scoped even though the provider account is
	// shared. A session created by another tenant does not exist here.
	if session.Metadata["tenant_id"] != identity.ID {
		respondJSON(w, http.StatusNotFound, errorBody("Session not found"))
		return
	}

	if !session.Paid() {
		respondJSON(w, http.StatusConflict, errorBody("Payment not completed"))
		return
	}

	event := CompletedEvent{
		TenantID:      identity.ID,
		SessionID:     session.ID,
		CustomerEmail: session.Metadata["customer_email"],
	}
	if err := h.pub.Publish(r.Context(), TopicPaymentCompleted, event); err != nil {
		if h.log != nil {
			h.log.ErrorContext(r.Context(), "failed to publish payment event",
				slog.String("error", err.Error()),
				slog.String("session_id", session.ID),
			)
		}
		respondJSON(w, http.StatusInternalServerError, errorBody("Internal server error"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"session_id": session.ID,
		"status":     session.Status,
		"paid":       true,
	})
}

func (h *handlers) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart), errors.Is(err, payment.ErrEmptyCart):
		respondJSON(w, http.StatusBadRequest, errorBody("Cart is empty"))
	case errors.Is(err, ErrInvalidInput):
		respondJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, payment.ErrProviderFailure):
		if h.log != nil {
			h.log.ErrorContext(r.Context(), "payment provider call failed",
				slog.String("error", err.Error()),
				slog.String("path", r.URL.Path),
			)
		}
		respondJSON(w, http.StatusBadGateway, errorBody("Payment provider unavailable"))
	default:
		if h.log != nil {
			h.log.ErrorContext(r.Context(), "checkout request failed",
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
