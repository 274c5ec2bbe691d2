package notify

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dial connects a test client to the hub server.
func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// waitForCount polls until the hub sees n subscribers.
func waitForCount(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("hub never reached %d subscribers (have %d)", n, hub.Count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	c1 := dial(t, srv.URL)
	c2 := dial(t, srv.URL)
	waitForCount(t, hub, 2)

	hub.Broadcast("claim_processed", map[string]any{"id": "claim-1"})

	for _, conn := range []*websocket.Conn{c1, c2} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var ev Event
		require.NoError(t, json.Unmarshal(data, &ev))
		assert.Equal(t, "claim_processed", ev.Type)

		payload, ok := ev.Payload.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "claim-1", payload["id"])
	}
}

func TestHub_DisconnectedSubscriberIsRemoved(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv.URL)
	waitForCount(t, hub, 1)

	conn.Close()
	waitForCount(t, hub, 0)

	// Broadcasting to an empty hub is a no-op.
	hub.Broadcast("claim_processed", map[string]any{"id": "claim-2"})
}

func TestHub_BroadcastWithNoSubscribers(t *testing.T) {
	hub := NewHub(nil)
	hub.Broadcast("claim_processed", map[string]any{"id": "x"})
	assert.Equal(t, 0, hub.Count())
}
