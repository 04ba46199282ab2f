package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/finboard/src/services"
)

func dialStream(t *testing.T, env *testEnv, userID string) (*websocket.Conn, context.Context) {
	t.Helper()
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/dashboard/stream?token=" + env.token(t, userID)
	conn, _, err := websocket.Dial(ctx, u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

// readUntil reads messages until match returns true or the context expires.
func readUntil(t *testing.T, ctx context.Context, conn *websocket.Conn, match func(streamMessage) bool) streamMessage {
	t.Helper()
	for {
		var msg streamMessage
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if match(msg) {
			return msg
		}
	}
}

func TestStreamSendsModeAndDashboardOnConnect(t *testing.T) {
	env := newTestEnv(t, nil)
	conn, ctx := dialStream(t, env, "alice")

	var first streamMessage
	require.NoError(t, wsjson.Read(ctx, conn, &first))
	assert.Equal(t, streamTypeMode, first.Type)
	require.NotNil(t, first.Mode)
	assert.Equal(t, services.ModeLive, first.Mode.Mode)

	var second streamMessage
	require.NoError(t, wsjson.Read(ctx, conn, &second))
	assert.Equal(t, streamTypeDashboard, second.Type)
	require.NotNil(t, second.Dashboard)
}

func TestStreamPushesHeldQuoteRefreshes(t *testing.T) {
	env := newTestEnv(t, nil)
	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/transactions", "alice", buy("AAPL", 3, 100)).Code)
	conn, ctx := dialStream(t, env, "alice")

	readUntil(t, ctx, conn, func(m streamMessage) bool { return m.Type == streamTypeDashboard })
	refreshed := readUntil(t, ctx, conn, func(m streamMessage) bool { return m.Type == streamTypeDashboard })
	require.Len(t, refreshed.Dashboard.Holdings, 1)
	assert.Equal(t, "AAPL", refreshed.Dashboard.Holdings[0].Ticker)
}

func TestStreamShowsModeBanner(t *testing.T) {
	env := newTestEnv(t, nil)
	conn, ctx := dialStream(t, env, "alice")
	// The initial dashboard is sent after subscribing, so the change below
	// cannot be missed.
	readUntil(t, ctx, conn, func(m streamMessage) bool { return m.Type == streamTypeDashboard })

	env.mode.GoOffline("ai quota exceeded")
	msg := readUntil(t, ctx, conn, func(m streamMessage) bool {
		return m.Type == streamTypeMode && m.Mode != nil && m.Mode.Mode == services.ModeOffline
	})
	assert.Equal(t, "ai quota exceeded", msg.Mode.Reason)
}

func TestStreamRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, resp, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/api/dashboard/stream", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestOriginHosts(t *testing.T) {
	assert.Equal(t, []string{"localhost:3000", "app.example.com"},
		originHosts([]string{"http://localhost:3000", "https://app.example.com", "not a url"}))
}
