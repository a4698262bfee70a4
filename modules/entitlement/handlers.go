package entitlement

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/leadflowhq/leadflow/pkg/billing"
	"github.com/leadflowhq/leadflow/pkg/plan"
	"github.com/leadflowhq/leadflow/pkg/profile"
	"github.com/leadflowhq/leadflow/pkg/usage"
)

type consumeRequest struct {
	Resource plan.Resource `json:"resource"`
	Amount   int64         `json:"amount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) getEntitlements(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	ent, err := s.accountant.GetEntitlements(r.Context(), userID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			respondJSON(w, http.StatusNotFound, errorResponse{Error: "profile not found"})
			return
		}
		s.log.ErrorContext(r.Context(), "failed to load entitlements",
			"user_id", userID, "error", err)
		respondJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "profile store unavailable"})
		return
	}

	respondJSON(w, http.StatusOK, ent)
}

func (s *Service) consume(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return
	}

	var req consumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	decision, err := s.accountant.CheckAndConsume(r.Context(), userID, req.Resource, req.Amount)
	respondJSON(w, decisionStatus(decision, err), decision)
}

// decisionStatus maps an accounting decision to an HTTP status. Quota and
// plan denials use 402 so clients can distinguish "upgrade required" from
// caller errors and store outages.
func decisionStatus(d usage.Decision, err error) int {
	if d.Allowed {
		return http.StatusOK
	}
	if errors.Is(err, usage.ErrInvalidAmount) || errors.Is(err, usage.ErrUnknownResource) {
		return http.StatusBadRequest
	}
	switch d.Reason {
	case usage.ReasonProfileNotFound:
		return http.StatusNotFound
	case usage.ReasonStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusPaymentRequired
	}
}

// billingWebhook ingests billing processor events. It always responds 200:
// a non-2xx here would trigger processor retry storms for events that will
// never apply, and the reconciler already tolerates replays.
func (s *Service) billingWebhook(w http.ResponseWriter, r *http.Request) {
	var ev billing.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		s.log.WarnContext(r.Context(), "malformed billing webhook payload", "error", err)
		respondJSON(w, http.StatusOK, map[string]string{"status": "received"})
		return
	}

	if err := s.reconciler.Reconcile(r.Context(), ev); err != nil {
		s.log.ErrorContext(r.Context(), "billing event reconciliation failed",
			"event_type", ev.Type, "customer_id", ev.CustomerID, "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "received"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
