package webhooksink

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/event"
)

func TestEmitPostsEventJSON(t *testing.T) {
	received := make(chan event.Event, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var e event.Event
		require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
		received <- e
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	var s event.Sink = New(server.URL)
	err := s.Emit(context.Background(), event.Event{
		ID:        "evt-1",
		TaskID:    "task-1",
		Kind:      event.KindModuleResult,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	select {
	case e := <-received:
		require.Equal(t, "evt-1", e.ID)
		require.Equal(t, "task-1", e.TaskID)
	case <-time.After(time.Second):
		t.Fatal("webhook never received the event")
	}
}

func TestEmitReturnsErrorOnNonSuccessStatus(t *testing.T) {
	// 400 is not in httpclient's retry table, so this returns immediately
	// instead of exercising the webhook client's backoff delays.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sink := New(server.URL)
	err := sink.Emit(context.Background(), event.Event{ID: "evt-2"})
	require.Error(t, err)
}
