package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ClaimsHandler handles requests to collect found items.
type ClaimsHandler struct {
	DB *sql.DB
}

type createClaimRequest struct {
	Notes string `json:"notes"`
}

type resolveClaimRequest struct {
	Approve bool `json:"approve"`
}

// Create handles POST /api/items/{id}/claims.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	itemID, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	var req createClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := GetClaims(r.Context())
	claim, err := store.CreateClaim(r.Context(), h.DB, itemID, claims.UserID, req.Notes)
	if errors.Is(err, store.ErrNotClaimable) {
		jsonError(w, http.StatusConflict, "item is not available to claim")
		return
	}
	if err != nil {
		slog.Error("failed to create claim", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create claim")
		return
	}

	slog.Info("item claimed", "user", claims.Username, "item", itemID, "claim", claim.ID)
	jsonResponse(w, http.StatusCreated, claim)
}

// List handles GET /api/claims.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", model.ClaimStatusPending, model.ClaimStatusApproved, model.ClaimStatusRejected:
	default:
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	list, err := store.ListClaims(r.Context(), h.DB, status, 0)
	if err != nil {
		slog.Error("failed to list claims", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}
	if list == nil {
		list = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Resolve handles POST /api/claims/{id}/resolve.
func (h *ClaimsHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "claim")
	if !ok {
		return
	}

	var req resolveClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	existing, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get claim")
		return
	}
	if existing == nil {
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	}

	claims := GetClaims(r.Context())
	claim, err := store.ResolveClaim(r.Context(), h.DB, id, req.Approve, claims.UserID)
	if errors.Is(err, store.ErrClaimResolved) {
		jsonError(w, http.StatusConflict, "claim already resolved")
		return
	}
	if err != nil {
		slog.Error("failed to resolve claim", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to resolve claim")
		return
	}

	slog.Info("claim resolved", "user", claims.Username, "claim", id, "status", claim.Status)
	jsonResponse(w, http.StatusOK, claim)
}
