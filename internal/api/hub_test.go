package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActivator struct {
	mu     sync.Mutex
	active map[string]bool
	calls  []string
}

func newFakeActivator() *fakeActivator {
	return &fakeActivator{active: make(map[string]bool)}
}

func (f *fakeActivator) Activate(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[name] = true
	f.calls = append(f.calls, "activate:"+name)
	return nil
}

func (f *fakeActivator) Deactivate(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.active[name] = false
	f.calls = append(f.calls, "deactivate:"+name)
	return nil
}

func (f *fakeActivator) isActive(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[name]
}

func (f *fakeActivator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func dial(t *testing.T, srv *httptest.Server, screen string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?screen=" + screen
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func TestHubSubscriptionLifecycle(t *testing.T) {
	activator := newFakeActivator()
	hub := NewHub(activator, []string{"watchlist", "portfolio"}, zerolog.Nop())
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	first := dial(t, srv, "watchlist")
	second := dial(t, srv, "watchlist")

	require.Eventually(t, func() bool { return hub.Subscribers("watchlist") == 2 }, time.Second, 10*time.Millisecond)
	assert.True(t, activator.isActive("watchlist"))
	assert.Equal(t, 1, activator.callCount())

	hub.Broadcast("watchlist", []string{"TSLA"})
	hub.Broadcast("portfolio", "ignored")

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var push struct {
			Screen string   `json:"screen"`
			Data   []string `json:"data"`
		}
		require.NoError(t, json.Unmarshal(data, &push))
		assert.Equal(t, "watchlist", push.Screen)
		assert.Equal(t, []string{"TSLA"}, push.Data)
	}

	first.Close()
	require.Eventually(t, func() bool { return hub.Subscribers("watchlist") == 1 }, time.Second, 10*time.Millisecond)
	assert.True(t, activator.isActive("watchlist"))

	second.Close()
	require.Eventually(t, func() bool { return !activator.isActive("watchlist") }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, hub.Subscribers("watchlist"))
}

func TestHubRejectsUnknownScreen(t *testing.T) {
	hub := NewHub(newFakeActivator(), []string{"watchlist"}, zerolog.Nop())

	rr := httptest.NewRecorder()
	hub.ServeWS(rr, httptest.NewRequest("GET", "/ws?screen=settings", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
