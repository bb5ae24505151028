package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/dealfunnel/internal/calendar"
	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/internal/stages"
	"github.com/wonny/dealfunnel/pkg/logger"
)

// FunnelService builds funnel views per date
type FunnelService interface {
	View(ctx context.Context, dateKey string) contracts.FunnelView
	Refresh(ctx context.Context, dateKey string) contracts.FunnelView
	Dates(ctx context.Context) []string
}

// DealsLoader loads the deals behind a stage
type DealsLoader interface {
	GetDeals(ctx context.Context, stage, dateKey string) []contracts.Deal
}

// Broadcaster pushes refreshed views to live subscribers
type Broadcaster interface {
	Broadcast(view contracts.FunnelView)
}

// FunnelHandler serves the funnel JSON API
// ⭐ SSOT: funnel API handlers live in this struct only
type FunnelHandler struct {
	funnel  FunnelService
	deals   DealsLoader
	live    Broadcaster
	catalog *stages.Catalog
	now     func() time.Time
	logger  *logger.Logger
}

// NewFunnelHandler creates a funnel handler. live may be nil.
func NewFunnelHandler(
	funnel FunnelService,
	deals DealsLoader,
	live Broadcaster,
	catalog *stages.Catalog,
	now func() time.Time,
	log *logger.Logger,
) *FunnelHandler {
	if now == nil {
		now = time.Now
	}
	return &FunnelHandler{
		funnel:  funnel,
		deals:   deals,
		live:    live,
		catalog: catalog,
		now:     now,
		logger:  log,
	}
}

// GetFunnel returns the funnel view for a date
// GET /api/funnel?date=YYYY-MM-DD
func (h *FunnelHandler) GetFunnel(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, h.now)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, h.funnel.View(r.Context(), date))
}

// Refresh drops the cached stats of a date and returns the rebuilt view
// POST /api/funnel/refresh?date=YYYY-MM-DD
func (h *FunnelHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, h.now)
	if !ok {
		return
	}

	view := h.funnel.Refresh(r.Context(), date)
	if h.live != nil {
		h.live.Broadcast(view)
	}

	h.logger.WithField("date", date).Info("Funnel refreshed")
	respondJSON(w, http.StatusOK, view)
}

// GetDeals returns the deals of one stage
// GET /api/funnel/deals/{stage}?date=YYYY-MM-DD
func (h *FunnelHandler) GetDeals(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, h.now)
	if !ok {
		return
	}

	stage := mux.Vars(r)["stage"]
	if !h.catalog.Contains(stage) {
		respondError(w, http.StatusNotFound, "Unknown stage")
		return
	}

	respondJSON(w, http.StatusOK, DealsResponse{
		Stage: stage,
		Date:  date,
		Deals: h.deals.GetDeals(r.Context(), stage, date),
	})
}

// GetDates returns the dates the backend has stats for
// GET /api/funnel/dates
func (h *FunnelHandler) GetDates(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, DatesResponse{Dates: h.funnel.Dates(r.Context())})
}

// DealsResponse is the deals endpoint payload
type DealsResponse struct {
	Stage string           `json:"stage"`
	Date  string           `json:"date"`
	Deals []contracts.Deal `json:"deals"`
}

// DatesResponse is the dates endpoint payload
type DatesResponse struct {
	Dates []string `json:"dates"`
}

// Helper functions

// dateParam reads ?date=, defaulting to today. Writes a 400 and returns false when malformed.
func dateParam(w http.ResponseWriter, r *http.Request, now func() time.Time) (string, bool) {
	date := r.URL.Query().Get("date")
	if date == "" {
		return calendar.Key(calendar.Today(now)), true
	}
	if !calendar.IsKey(date) {
		respondError(w, http.StatusBadRequest, "Invalid 'date' format (expected YYYY-MM-DD)")
		return "", false
	}
	return date, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
