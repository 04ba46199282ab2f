package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/username/finboard/src/logger"
	"github.com/username/finboard/src/models"
	"github.com/username/finboard/src/services"
)

const streamWriteTimeout = 10 * time.Second

const (
	streamTypeDashboard = "dashboard"
	streamTypeMode      = "mode"
)

// StreamIntervals sets how often each background refresh runs while a
// client is connected.
type StreamIntervals struct {
	HeldQuotes  time.Duration
	WatchQuotes time.Duration
	Insights    time.Duration
}

type streamMessage struct {
	Type      string                `json:"type"`
	Dashboard *models.DashboardData `json:"dashboard,omitempty"`
	Mode      *services.ModeChange  `json:"mode,omitempty"`
}

// StreamHandler pushes dashboard updates and API mode changes over a
// websocket. Each connection owns its refresh schedules; they stop when the
// connection closes.
type StreamHandler struct {
	dashboardService services.DashboardService
	mode             *services.ModeCoordinator
	intervals        StreamIntervals
	originPatterns   []string
}

func NewStreamHandler(dashboardService services.DashboardService, mode *services.ModeCoordinator, intervals StreamIntervals, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		dashboardService: dashboardService,
		mode:             mode,
		intervals:        intervals,
		originPatterns:   originHosts(allowedOrigins),
	}
}

// originHosts turns "https://app.example.com" into the host pattern the
// websocket origin check expects.
func originHosts(origins []string) []string {
	var out []string
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			out = append(out, u.Host)
		}
	}
	return out
}

func (h *StreamHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctxLogger := logger.FromContext(r.Context())

	// The server's write timeout would otherwise cut long-lived streams.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns})
	if err != nil {
		ctxLogger.Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.CloseNow()

	// CloseRead discards client frames and cancels ctx once the peer goes away.
	ctx, cancel := context.WithCancel(conn.CloseRead(r.Context()))
	defer cancel()

	send := func(msg streamMessage) {
		wctx, wcancel := context.WithTimeout(ctx, streamWriteTimeout)
		defer wcancel()
		if err := wsjson.Write(wctx, conn, msg); err != nil {
			ctxLogger.Debug("Websocket write failed, closing stream", "type", msg.Type, "error", err)
			cancel()
		}
	}
	pushDashboard := func(d *models.DashboardData) {
		if d != nil {
			send(streamMessage{Type: streamTypeDashboard, Dashboard: d})
		}
	}

	changes, unsubscribe := h.mode.Subscribe()
	defer unsubscribe()

	status := h.mode.Status()
	send(streamMessage{Type: streamTypeMode, Mode: &status})
	if d, err := h.dashboardService.Get(ctx, userID); err != nil {
		ctxLogger.Error("Error loading dashboard for stream", "error", err)
	} else {
		pushDashboard(d)
	}

	sched := services.NewScheduler(ctx)
	sched.Every("held-quotes", h.intervals.HeldQuotes, func(ctx context.Context) {
		pushDashboard(h.refreshQuotes(ctx, userID, (*models.DashboardData).HeldTickers))
	})
	sched.Every("watch-quotes", h.intervals.WatchQuotes, func(ctx context.Context) {
		pushDashboard(h.refreshQuotes(ctx, userID, (*models.DashboardData).WatchOnlyTickers))
	})
	sched.Every("insights", h.intervals.Insights, func(ctx context.Context) {
		d, err := h.dashboardService.RefreshInsights(ctx, userID)
		if err != nil {
			logger.FromContext(ctx).Warn("Scheduled insights refresh failed", "userID", userID, "error", err)
			return
		}
		pushDashboard(d)
	})
	ctxLogger.Info("Dashboard stream opened")

	for done := false; !done; {
		select {
		case <-ctx.Done():
			done = true
		case change, ok := <-changes:
			if !ok {
				done = true
				break
			}
			send(streamMessage{Type: streamTypeMode, Mode: &change})
		}
	}

	cancel()
	sched.Wait()
	conn.Close(websocket.StatusNormalClosure, "")
	ctxLogger.Info("Dashboard stream closed")
}

// refreshQuotes refreshes the tickers pick selects. It returns nil when
// there is nothing to refresh or the refresh failed.
func (h *StreamHandler) refreshQuotes(ctx context.Context, userID string, pick func(*models.DashboardData) []string) *models.DashboardData {
	d, err := h.dashboardService.Get(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Warn("Scheduled quote refresh could not load dashboard", "userID", userID, "error", err)
		return nil
	}
	tickers := pick(d)
	if len(tickers) == 0 {
		return nil
	}
	d, err = h.dashboardService.RefreshQuotes(ctx, userID, tickers)
	if err != nil {
		logger.FromContext(ctx).Warn("Scheduled quote refresh failed", "userID", userID, "error", err)
		return nil
	}
	return d
}
