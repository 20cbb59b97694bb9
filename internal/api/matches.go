package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// MatchesHandler exposes stored matches and notification delivery to staff.
type MatchesHandler struct {
	DB     *sql.DB
	Engine *matching.Engine
}

type notifyResponse struct {
	Match    *model.Match                `json:"match"`
	Attempts []model.NotificationAttempt `json:"attempts"`
}

// List handles GET /api/matches. ?failed=1 limits the list to matches with a
// failed side, ?unsent=1 to matches with a side not yet sent (failed or
// stranded as pending).
func (h *MatchesHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := store.MatchFilter{
		FailedOnly: queryFlag(r, "failed"),
		UnsentOnly: queryFlag(r, "unsent"),
	}
	if v := r.URL.Query().Get("item"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid item id")
			return
		}
		filter.ItemID = id
	}

	matches, err := store.ListMatches(r.Context(), h.DB, filter)
	if err != nil {
		slog.Error("failed to list matches", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list matches")
		return
	}
	if matches == nil {
		matches = []model.Match{}
	}
	jsonResponse(w, http.StatusOK, matches)
}

// Get handles GET /api/matches/{id}.
func (h *MatchesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "match")
	if !ok {
		return
	}

	m, err := store.GetMatch(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get match")
		return
	}
	if m == nil {
		jsonError(w, http.StatusNotFound, "match not found")
		return
	}

	attempts, err := store.ListAttempts(r.Context(), h.DB, store.AttemptFilter{MatchID: id})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}
	if attempts == nil {
		attempts = []model.NotificationAttempt{}
	}
	jsonResponse(w, http.StatusOK, notifyResponse{Match: m, Attempts: attempts})
}

// Notify handles POST /api/matches/{id}/notify: an operator retry of every
// side of the match not yet sent.
func (h *MatchesHandler) Notify(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "match")
	if !ok {
		return
	}

	m, err := store.GetMatch(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get match")
		return
	}
	if m == nil {
		jsonError(w, http.StatusNotFound, "match not found")
		return
	}
	if m.LostNotification == model.NotificationSent && m.FoundNotification == model.NotificationSent {
		jsonError(w, http.StatusConflict, "both sides already notified")
		return
	}

	attempts := h.Engine.Renotify(r.Context(), *m)
	slog.Info("match notification retried", "user", GetClaims(r.Context()).Username, "match", id, "attempts", len(attempts))

	m, err = store.GetMatch(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get match")
		return
	}
	jsonResponse(w, http.StatusOK, notifyResponse{Match: m, Attempts: attempts})
}

// Attempts handles GET /api/notifications/attempts. ?failed=1 limits the list
// to failed sends.
func (h *MatchesHandler) Attempts(w http.ResponseWriter, r *http.Request) {
	filter := store.AttemptFilter{FailedOnly: queryFlag(r, "failed"), Limit: 200}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		filter.Limit = n
	}

	attempts, err := store.ListAttempts(r.Context(), h.DB, filter)
	if err != nil {
		slog.Error("failed to list notification attempts", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list attempts")
		return
	}
	if attempts == nil {
		attempts = []model.NotificationAttempt{}
	}
	jsonResponse(w, http.StatusOK, attempts)
}
