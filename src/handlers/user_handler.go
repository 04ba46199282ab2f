package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/models"
	"github.com/username/finboard/src/security/validation"
	"github.com/username/finboard/src/services"
)

type contextKey string

const userIDContextKey contextKey = "userID"

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 64 << 10

// UserHandler serves the user's own settings: profile, goal, notes,
// dismissed news and watchlists.
type UserHandler struct {
	dashboardService services.DashboardService
}

func NewUserHandler(dashboardService services.DashboardService) *UserHandler {
	return &UserHandler{dashboardService: dashboardService}
}

func sendJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	logger.L.Warn("Sending JSON error to client", "message", message, "statusCode", statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func sendJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("Error encoding JSON response", "error", err)
	}
}

// statusForError maps service and validation errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, validation.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrStaleResult):
		return http.StatusConflict
	case errors.Is(err, services.ErrNotEnoughData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrBenchmarkUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// sendServiceError logs err and writes it to the client. Internal errors
// are not echoed back.
func sendServiceError(w http.ResponseWriter, r *http.Request, err error, action string) {
	status := statusForError(err)
	ctxLogger := logger.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		ctxLogger.Error("Error handling request", "action", action, "error", err)
		sendJSONError(w, "Error "+action, status)
		return
	}
	ctxLogger.Info("Request rejected", "action", action, "error", err, "status", status)
	sendJSONError(w, err.Error(), status)
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.FromContext(r.Context()).Debug("Invalid request body", "path", r.URL.Path, "error", err)
		sendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// GetUserIDFromContext returns the authenticated user id set by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDContextKey).(string)
	return userID, ok && userID != ""
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "authentication required", http.StatusUnauthorized)
	}
	return userID, ok
}

func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var profile models.Profile
	if !decodeJSONBody(w, r, &profile) {
		return
	}
	d, err := h.dashboardService.UpdateProfile(r.Context(), userID, profile)
	if err != nil {
		sendServiceError(w, r, err, "updating profile")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}

func (h *UserHandler) HandleSetGoal(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var goal models.Goal
	if !decodeJSONBody(w, r, &goal) {
		return
	}
	d, err := h.dashboardService.SetGoal(r.Context(), userID, goal)
	if err != nil {
		sendServiceError(w, r, err, "setting goal")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}

type noteRequest struct {
	Note string `json:"note"`
}

func (h *UserHandler) HandleSaveNote(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req noteRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	d, err := h.dashboardService.SaveNote(r.Context(), userID, chi.URLParam(r, "ticker"), req.Note)
	if err != nil {
		sendServiceError(w, r, err, "saving note")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}

func (h *UserHandler) HandleDismissNews(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardService.DismissNews(r.Context(), userID, chi.URLParam(r, "newsID"))
	if err != nil {
		sendServiceError(w, r, err, "dismissing news")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}

// HandleCreateWatchlist adds a watchlist with a generated id.
func (h *UserHandler) HandleCreateWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var wl models.Watchlist
	if !decodeJSONBody(w, r, &wl) {
		return
	}
	wl.ID = ""
	d, err := h.dashboardService.UpsertWatchlist(r.Context(), userID, wl)
	if err != nil {
		sendServiceError(w, r, err, "creating watchlist")
		return
	}
	sendJSON(w, r, http.StatusCreated, d)
}

func (h *UserHandler) HandleUpsertWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var wl models.Watchlist
	if !decodeJSONBody(w, r, &wl) {
		return
	}
	wl.ID = chi.URLParam(r, "watchlistID")
	d, err := h.dashboardService.UpsertWatchlist(r.Context(), userID, wl)
	if err != nil {
		sendServiceError(w, r, err, "saving watchlist")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}

type watchlistTickerRequest struct {
	Ticker string `json:"ticker"`
}

func (h *UserHandler) HandleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req watchlistTickerRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	d, err := h.dashboardService.AddToWatchlist(r.Context(), userID, chi.URLParam(r, "watchlistID"), req.Ticker)
	if err != nil {
		sendServiceError(w, r, err, "updating watchlist")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}

func (h *UserHandler) HandleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	d, err := h.dashboardService.RemoveFromWatchlist(r.Context(), userID, chi.URLParam(r, "watchlistID"), chi.URLParam(r, "ticker"))
	if err != nil {
		sendServiceError(w, r, err, "updating watchlist")
		return
	}
	sendJSON(w, r, http.StatusOK, d)
}
