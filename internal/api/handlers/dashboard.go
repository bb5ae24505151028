package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/dealfunnel/internal/calendar"
	"github.com/wonny/dealfunnel/internal/stages"
	"github.com/wonny/dealfunnel/internal/view"
	"github.com/wonny/dealfunnel/pkg/logger"
)

// DashboardHandler serves the server-rendered HTML pages
type DashboardHandler struct {
	funnel   FunnelService
	deals    DealsLoader
	live     Broadcaster
	catalog  *stages.Catalog
	renderer *view.HTMLRenderer
	now      func() time.Time
	logger   *logger.Logger
}

// NewDashboardHandler creates a dashboard handler. live may be nil.
func NewDashboardHandler(
	funnel FunnelService,
	deals DealsLoader,
	live Broadcaster,
	catalog *stages.Catalog,
	renderer *view.HTMLRenderer,
	now func() time.Time,
	log *logger.Logger,
) *DashboardHandler {
	if now == nil {
		now = time.Now
	}
	return &DashboardHandler{
		funnel:   funnel,
		deals:    deals,
		live:     live,
		catalog:  catalog,
		renderer: renderer,
		now:      now,
		logger:   log,
	}
}

// Index redirects to today's dashboard
// GET /
func (h *DashboardHandler) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, view.DashboardURL(calendar.Key(calendar.Today(h.now))), http.StatusFound)
}

// Funnel renders the funnel page. ?refresh=1 drops the cached stats, pushes the
// fresh view to live pages and redirects back to the plain page URL.
// GET /dashboard?date=YYYY-MM-DD
func (h *DashboardHandler) Funnel(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, h.now)
	if !ok {
		return
	}

	ctx := r.Context()
	if r.URL.Query().Get("refresh") != "" {
		v := h.funnel.Refresh(ctx, date)
		if h.live != nil {
			h.live.Broadcast(v)
		}
		// Redirect so a reload of the page does not refresh again.
		http.Redirect(w, r, view.DashboardURL(date), http.StatusSeeOther)
		return
	}

	v := h.funnel.View(ctx, date)
	var buf bytes.Buffer
	if err := h.renderer.Funnel(&buf, v, h.funnel.Dates(ctx)); err != nil {
		h.logger.WithError(err).WithField("date", date).Error("Failed to render funnel page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, buf.Bytes())
}

// Deals renders the deals page of one stage
// GET /dashboard/deals/{stage}?date=YYYY-MM-DD
func (h *DashboardHandler) Deals(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, h.now)
	if !ok {
		return
	}

	stage := mux.Vars(r)["stage"]
	if !h.catalog.Contains(stage) {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Deals(&buf, stage, date, h.deals.GetDeals(r.Context(), stage, date)); err != nil {
		h.logger.WithError(err).WithField("stage", stage).Error("Failed to render deals page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeHTML(w, buf.Bytes())
}

func writeHTML(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
