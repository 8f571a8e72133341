package wssink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/event"
)

func TestEmitBroadcastsToConnectedClients(t *testing.T) {
	sink := New()
	server := httptest.NewServer(http.HandlerFunc(sink.Handler))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// give the server goroutine a moment to register the connection.
	time.Sleep(50 * time.Millisecond)

	var s event.Sink = sink
	err = s.Emit(context.Background(), event.Event{ID: "evt-1", TaskID: "task-1", Kind: event.KindTerminal})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, body, err := conn.ReadMessage()
	require.NoError(t, err)

	var got event.Event
	require.NoError(t, json.Unmarshal(body, &got))
	require.Equal(t, "evt-1", got.ID)
}

func TestEmitWithNoClientsIsNoop(t *testing.T) {
	sink := New()
	err := sink.Emit(context.Background(), event.Event{ID: "evt-2"})
	require.NoError(t, err)
}
