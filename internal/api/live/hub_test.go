package live

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dealfunnel/internal/contracts"
	"github.com/wonny/dealfunnel/pkg/logger"
)

func fixedNow() time.Time {
	return time.Date(2024, 1, 20, 12, 0, 0, 0, time.Local)
}

func dial(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestBroadcastReachesSubscribersOfTheDate(t *testing.T) {
	hub := NewHub(logger.Nop(), fixedNow)
	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Close()

	conn := dial(t, server, "date=2024-01-15")
	require.Eventually(t, func() bool { return hub.Subscribers("2024-01-15") == 1 }, time.Second, 10*time.Millisecond)

	hub.Broadcast(contracts.FunnelView{Date: "2024-01-14", TotalHooks: 1})
	hub.Broadcast(contracts.FunnelView{Date: "2024-01-15", TotalHooks: 42})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var got contracts.FunnelView
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "2024-01-15", got.Date)
	assert.Equal(t, int64(42), got.TotalHooks)
}

func TestDefaultDateIsToday(t *testing.T) {
	hub := NewHub(logger.Nop(), fixedNow)
	server := httptest.NewServer(hub)
	defer server.Close()
	defer hub.Close()

	dial(t, server, "")
	require.Eventually(t, func() bool { return hub.Subscribers("2024-01-20") == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"2024-01-20"}, hub.Dates())
}

func TestInvalidDateIsRejected(t *testing.T) {
	hub := NewHub(logger.Nop(), fixedNow)
	server := httptest.NewServer(hub)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/?date=15.01.2024"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDisconnectUnregisters(t *testing.T) {
	hub := NewHub(logger.Nop(), fixedNow)
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server, "date=2024-01-15")
	require.Eventually(t, func() bool { return hub.Subscribers("2024-01-15") == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Subscribers("2024-01-15") == 0 }, time.Second, 10*time.Millisecond)
	assert.Empty(t, hub.Dates())
}

func TestCloseDisconnectsEveryone(t *testing.T) {
	hub := NewHub(logger.Nop(), fixedNow)
	server := httptest.NewServer(hub)
	defer server.Close()

	conn := dial(t, server, "date=2024-01-15")
	dial(t, server, "date=2024-01-16")
	require.Eventually(t, func() bool { return len(hub.Dates()) == 2 }, time.Second, 10*time.Millisecond)

	hub.Close()
	assert.Empty(t, hub.Dates())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}
