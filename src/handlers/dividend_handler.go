package handlers

import (
	"net/http"

	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/services"
)

type DividendHandler struct {
	dashboardService services.DashboardService
}

func NewDividendHandler(dashboardService services.DashboardService) *DividendHandler {
	return &DividendHandler{dashboardService: dashboardService}
}

func (h *DividendHandler) HandleGetDividendProjection(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	logger.FromContext(r.Context()).Info("Handling GetDividendProjection")

	projection, err := h.dashboardService.Dividends(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err, "projecting dividends")
		return
	}
	sendJSON(w, r, http.StatusOK, projection)
}
