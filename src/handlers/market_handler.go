package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/security/validation"
	"github.com/username/finboard/src/services"
)

// MarketHandler serves per-ticker market data, the API mode and the chart
// widget configuration.
type MarketHandler struct {
	gateway          *services.MarketGateway
	mode             *services.ModeCoordinator
	dashboardService services.DashboardService
}

func NewMarketHandler(gateway *services.MarketGateway, mode *services.ModeCoordinator, dashboardService services.DashboardService) *MarketHandler {
	return &MarketHandler{gateway: gateway, mode: mode, dashboardService: dashboardService}
}

func tickerParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	ticker := validation.NormalizeTicker(chi.URLParam(r, "ticker"))
	if err := validation.ValidateTicker(ticker); err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return ticker, true
}

// HandleGetOverview returns quote, profile, financials, dividend, filings
// and news for one ticker. Kinds the live source cannot serve are simulated.
func (h *MarketHandler) HandleGetOverview(w http.ResponseWriter, r *http.Request) {
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	logger.FromContext(r.Context()).Info("Handling GetOverview", "ticker", ticker)
	sendJSON(w, r, http.StatusOK, h.gateway.Overview(r.Context(), ticker))
}

func (h *MarketHandler) HandleGetMode(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, r, http.StatusOK, h.mode.Status())
}

// HandleGoLive lets the user retry live data after the AI quota tripped.
func (h *MarketHandler) HandleGoLive(w http.ResponseWriter, r *http.Request) {
	h.mode.GoLive()
	sendJSON(w, r, http.StatusOK, h.mode.Status())
}

type chartConfig struct {
	Ticker string `json:"ticker"`
	Theme  string `json:"theme"`
}

// HandleGetChart returns what the charting widget needs: the ticker and
// the user's theme.
func (h *MarketHandler) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ticker, ok := tickerParam(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardService.Get(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err, "loading chart settings")
		return
	}
	sendJSON(w, r, http.StatusOK, chartConfig{Ticker: ticker, Theme: d.Profile.Theme})
}
