package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeDeliversEvents(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ws/live", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"task_updated","userId":"u1","data":{"id":"t1","completed":true}}`))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		time.Sleep(50 * time.Millisecond)
	}))
	defer srv.Close()

	var events []LiveEvent
	err := New(srv.URL, WithToken("tok")).Subscribe(context.Background(), func(ev LiveEvent) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, EventTaskUpdated, events[0].Type)
	assert.JSONEq(t, `{"id":"t1","completed":true}`, string(events[0].Data))
}

func TestSubscribeStopsOnContextCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := New(srv.URL).Subscribe(ctx, func(LiveEvent) {})
	assert.NoError(t, err)
}

func TestLiveURL(t *testing.T) {
	u, err := New("https://api.example.com/").liveURL()
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/ws/live", u)

	_, err = New("ftp://x").liveURL()
	assert.Error(t, err)
}
