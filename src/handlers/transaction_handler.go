package handlers

import (
	"net/http"
	"sort"

	"github.com/username/finboard/src/models"
	"github.com/username/finboard/src/services"
)

type TransactionHandler struct {
	dashboardService services.DashboardService
}

func NewTransactionHandler(dashboardService services.DashboardService) *TransactionHandler {
	return &TransactionHandler{dashboardService: dashboardService}
}

// HandleGetTransactions lists the ledger, newest first.
func (h *TransactionHandler) HandleGetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardService.Get(r.Context(), userID)
	if err != nil {
		sendServiceError(w, r, err, "loading transactions")
		return
	}
	txs := make([]models.Transaction, len(d.Transactions))
	copy(txs, d.Transactions)
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].Date > txs[j].Date })
	sendJSON(w, r, http.StatusOK, txs)
}

func (h *TransactionHandler) HandleAddTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var input models.TransactionInput
	if !decodeJSONBody(w, r, &input) {
		return
	}
	d, err := h.dashboardService.AddTransaction(r.Context(), userID, input)
	if err != nil {
		sendServiceError(w, r, err, "adding transaction")
		return
	}
	sendJSON(w, r, http.StatusCreated, d)
}

type simulateSellRequest struct {
	Ticker string  `json:"ticker"`
	Shares float64 `json:"shares"`
}

// HandleSimulateSell previews a sale without recording it.
func (h *TransactionHandler) HandleSimulateSell(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req simulateSellRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	sim, err := h.dashboardService.SimulateSell(r.Context(), userID, req.Ticker, req.Shares)
	if err != nil {
		sendServiceError(w, r, err, "simulating sale")
		return
	}
	sendJSON(w, r, http.StatusOK, sim)
}
