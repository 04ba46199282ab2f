package handlers

import (
	"net/http"

	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/services"
)

// PortfolioHandler serves the dashboard aggregate and the refresh actions
// that recompute it.
type PortfolioHandler struct {
	dashboardService services.DashboardService
}

func NewPortfolioHandler(dashboardService services.DashboardService) *PortfolioHandler {
	return &PortfolioHandler{dashboardService: dashboardService}
}

func (h *PortfolioHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardService.Get(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err, "loading dashboard")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}

type refreshQuotesRequest struct {
	Tickers []string `json:"tickers"`
}

// HandleRefreshQuotes refreshes the listed tickers, or every held and
// watched ticker when the body is empty.
func (h *PortfolioHandler) HandleRefreshQuotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req refreshQuotesRequest
	if r.ContentLength > 0 && !decodeJSONBody(w, r, &req) {
		return
	}
	d, err := h.dashboardService.RefreshQuotes(r.Context(), userID, req.Tickers)
	if err != nil {
		sendServiceError(w, r, err, "refreshing quotes")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}

func (h *PortfolioHandler) HandleRefreshInsights(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardService.RefreshInsights(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err, "refreshing insights")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}

func (h *PortfolioHandler) HandleSyncBrokerage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	logger.FromContext(r.Context()).Info("Handling brokerage sync")
	d, err := h.dashboardService.SyncBrokerage(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err, "syncing brokerage")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}

// HandleGetPerformance returns the portfolio-versus-benchmark series. The
// benchmark query parameter overrides the configured default.
func (h *PortfolioHandler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	points, err := h.dashboardService.Performance(r.Context(), userID, r.URL.Query().Get("benchmark"))
	if err != nil {
		sendServiceError(w, r, err, "building performance history")
		return
	}
	sendJSON(w, r, http.StatusOK, points)
}
