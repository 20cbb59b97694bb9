package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/matching"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ItemsHandler handles item reporting, moderation and matching endpoints.
type ItemsHandler struct {
	DB     *sql.DB
	Engine *matching.Engine
	Photos *imaging.Processor
}

type itemRequest struct {
	Title       string `json:"title"`
	Status      string `json:"status"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
	Location    string `json:"location"`
	Description string `json:"description"`
	OccurredOn  string `json:"occurred_on"`
}

// item validates the request and converts it to an item.
func (req itemRequest) item() (model.Item, string) {
	item := model.Item{
		Title:       strings.TrimSpace(req.Title),
		Status:      req.Status,
		Category:    strings.TrimSpace(req.Category),
		Subcategory: strings.TrimSpace(req.Subcategory),
		Location:    strings.TrimSpace(req.Location),
		Description: strings.TrimSpace(req.Description),
	}
	if item.Title == "" {
		return item, "title required"
	}
	if req.OccurredOn != "" {
		t, err := parseDate(req.OccurredOn)
		if err != nil {
			return item, "occurred_on must be a date (YYYY-MM-DD)"
		}
		item.OccurredOn = t
	}
	if field := item.MissingField(); field != "" {
		return item, field + " required"
	}
	return item, ""
}

type itemResponse struct {
	Item          *model.Item      `json:"item"`
	Matching      *matching.Report `json:"matching,omitempty"`
	MatchingError string           `json:"matching_error,omitempty"`
}

type previewResponse struct {
	Threshold  float64                `json:"threshold"`
	Candidates []matching.Candidate   `json:"candidates"`
	Skipped    []*matching.InputError `json:"skipped,omitempty"`
}

// List handles GET /api/items. Regular users see approved items and their
// own reports; staff see everything.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	status := q.Get("status")
	if status != "" && !model.ValidItemStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	claims := GetClaims(r.Context())
	filter := store.ItemFilter{Status: status}
	if queryFlag(r, "mine") {
		filter.ReporterID = claims.UserID
	}

	items, err := store.ListItems(r.Context(), h.DB, filter)
	if err != nil {
		slog.Error("failed to list items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	visible := []model.Item{}
	for _, item := range items {
		if item.Approved || isStaff(r) || item.ReporterID == claims.UserID {
			visible = append(visible, item)
		}
	}
	jsonResponse(w, http.StatusOK, visible)
}

// Create handles POST /api/items. Lost reports and reports filed by staff
// are approved on submission and matched right away; other found reports
// wait for approval.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Status != model.ItemStatusLost && req.Status != model.ItemStatusFound {
		jsonError(w, http.StatusBadRequest, "status must be lost or found")
		return
	}

	in, msg := req.item()
	if msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	claims := GetClaims(r.Context())
	in.ReporterID = claims.UserID
	in.Approved = in.Status == model.ItemStatusLost || isStaff(r)

	item, err := store.CreateItem(r.Context(), h.DB, in)
	if err != nil {
		slog.Error("failed to create item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	slog.Info("item reported", "user", claims.Username, "item", item.ID, "status", item.Status, "approved", item.Approved)

	resp := itemResponse{Item: item}
	if item.Approved {
		resp.Matching, resp.MatchingError = h.runMatching(r.Context(), item)
		if !isStaff(r) {
			resp.Matching = reporterReport(resp.Matching, claims.UserID)
		}
	}
	jsonResponse(w, http.StatusCreated, resp)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, ok := h.visibleItem(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /api/items/{id}. Stored matches are not rescored.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	var req itemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, msg := req.item()
	if msg != "" {
		jsonError(w, http.StatusBadRequest, msg)
		return
	}

	existing, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if existing == nil || existing.Deleted() {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	if err := store.UpdateItem(r.Context(), h.DB, id, in); err != nil {
		slog.Error("failed to update item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to delete item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	slog.Info("item deleted", "user", GetClaims(r.Context()).Username, "item", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Approve handles POST /api/items/{id}/approve and runs matching for the
// newly visible item.
func (h *ItemsHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.Deleted() {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.Approved {
		jsonError(w, http.StatusConflict, "item already approved")
		return
	}

	if err := store.ApproveItem(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to approve item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to approve item")
		return
	}
	item.Approved = true
	slog.Info("item approved", "user", GetClaims(r.Context()).Username, "item", id)

	resp := itemResponse{Item: item}
	resp.Matching, resp.MatchingError = h.runMatching(r.Context(), item)
	jsonResponse(w, http.StatusOK, resp)
}

// Reject handles POST /api/items/{id}/reject. Rejected reports are
// soft-deleted and never matched.
func (h *ItemsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.Deleted() {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.Approved {
		jsonError(w, http.StatusConflict, "item already approved")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		slog.Error("failed to reject item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to reject item")
		return
	}

	slog.Info("item rejected", "user", GetClaims(r.Context()).Username, "item", id)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "item rejected"})
}

// UploadImage handles PUT /api/items/{id}/image. The reporter or staff may
// attach a photo.
func (h *ItemsHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.visibleItem(w, r)
	if !ok {
		return
	}
	if item.ReporterID != GetClaims(r.Context()).UserID && !isStaff(r) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, imaging.DefaultMaxBytes+1<<20)
	if err := r.ParseMultipartForm(imaging.DefaultMaxBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return
	}
	defer file.Close()

	photo, err := h.Photos.Process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, item.ID, photo.Data, photo.MIME); err != nil {
		slog.Error("failed to save image", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to save image")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message": "image uploaded",
		"width":   photo.Width,
		"height":  photo.Height,
	})
}

// GetImage handles GET /api/items/{id}/image.
func (h *ItemsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	item, ok := h.visibleItem(w, r)
	if !ok {
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, item.ID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}

// Matches handles GET /api/items/{id}/matches. Only the reporter and staff
// may see an item's matches.
func (h *ItemsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	item, ok := h.visibleItem(w, r)
	if !ok {
		return
	}
	if item.ReporterID != GetClaims(r.Context()).UserID && !isStaff(r) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	matches, err := store.ListMatches(r.Context(), h.DB, store.MatchFilter{ItemID: item.ID})
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

// Preview handles GET /api/items/{id}/matches/preview. It scores the item
// against the current pool without storing or notifying anything.
func (h *ItemsHandler) Preview(w http.ResponseWriter, r *http.Request) {
	item, ok := h.visibleItem(w, r)
	if !ok {
		return
	}

	candidates, skipped, err := h.Engine.Preview(r.Context(), *item)
	var inputErr *matching.InputError
	switch {
	case errors.As(err, &inputErr):
		jsonError(w, http.StatusUnprocessableEntity, inputErr.Error())
		return
	case err != nil:
		slog.Error("failed to preview matches", "item", item.ID, "error", err)
		jsonError(w, http.StatusServiceUnavailable, "matching unavailable")
		return
	}
	if candidates == nil {
		candidates = []matching.Candidate{}
	}

	jsonResponse(w, http.StatusOK, previewResponse{
		Threshold:  h.Engine.Threshold(),
		Candidates: candidates,
		Skipped:    skipped,
	})
}

// visibleItem loads the {id} item, hiding deleted items and other users'
// unapproved reports from non-staff.
func (h *ItemsHandler) visibleItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, ok := pathID(w, r, "item")
	if !ok {
		return nil, false
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return nil, false
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	if !isStaff(r) && (item.Deleted() || (!item.Approved && item.ReporterID != GetClaims(r.Context()).UserID)) {
		jsonError(w, http.StatusNotFound, "item not found")
		return nil, false
	}
	return item, true
}

// reporterReport trims a matching report to what a reporter may see: the run,
// the created pairs and their own notification attempts. Candidate items and
// the other reporters' attempts are dropped.
func reporterReport(report *matching.Report, userID int64) *matching.Report {
	if report == nil {
		return nil
	}
	own := []model.NotificationAttempt{}
	for _, a := range report.Attempts {
		if a.UserID == userID {
			own = append(own, a)
		}
	}
	return &matching.Report{
		RunID:      report.RunID,
		ItemID:     report.ItemID,
		Candidates: []matching.Candidate{},
		Created:    report.Created,
		Attempts:   own,
	}
}

// runMatching triggers the matching workflow for item. The run outlives
// request cancellation.
func (h *ItemsHandler) runMatching(ctx context.Context, item *model.Item) (*matching.Report, string) {
	if h.Engine == nil {
		return nil, ""
	}
	report, err := h.Engine.OnNewItemReported(context.WithoutCancel(ctx), *item)
	if err != nil {
		slog.Error("matching failed", "item", item.ID, "error", err)
		return nil, err.Error()
	}
	if report.RegisterErr != nil {
		slog.Error("some matches were not stored", "item", item.ID, "run", report.RunID, "error", report.RegisterErr)
	}
	return report, ""
}
