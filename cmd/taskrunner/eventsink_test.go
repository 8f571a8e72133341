package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/event"
	"github.com/taskforge/taskforge/pkg/event/sqlsink"
	"github.com/taskforge/taskforge/pkg/event/webhooksink"
	"github.com/taskforge/taskforge/pkg/event/wssink"
)

func TestNewEventSinkDefaultsToNop(t *testing.T) {
	sink, closer, err := newEventSink(config.EventSinkParameters{}, wssink.New())
	require.NoError(t, err)
	require.Nil(t, closer)
	require.IsType(t, event.NopSink{}, sink)
}

func TestNewEventSinkWebsocketReturnsSharedHandler(t *testing.T) {
	wsHandler := wssink.New()
	sink, closer, err := newEventSink(config.EventSinkParameters{Type: "websocket"}, wsHandler)
	require.NoError(t, err)
	require.Nil(t, closer)
	require.Same(t, wsHandler, sink)
}

func TestNewEventSinkWebhook(t *testing.T) {
	sink, closer, err := newEventSink(config.EventSinkParameters{Type: "webhook", WebhookURL: "http://example.invalid/events"}, wssink.New())
	require.NoError(t, err)
	require.Nil(t, closer)
	require.IsType(t, &webhooksink.Sink{}, sink)
}

func TestNewEventSinkSQL(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "events.db")
	sink, closer, err := newEventSink(config.EventSinkParameters{Type: "sql", SQLDialect: "sqlite3", SQLDSN: dsn}, wssink.New())
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()
	require.IsType(t, &sqlsink.Sink{}, sink)
}

func TestNewEventSinkUnknownType(t *testing.T) {
	_, _, err := newEventSink(config.EventSinkParameters{Type: "carrier-pigeon"}, wssink.New())
	require.Error(t, err)
}
