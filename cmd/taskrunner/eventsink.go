package main

import (
	"fmt"
	"io"

	"github.com/taskforge/taskforge/pkg/config"
	"github.com/taskforge/taskforge/pkg/event"
	"github.com/taskforge/taskforge/pkg/event/sqlsink"
	"github.com/taskforge/taskforge/pkg/event/webhooksink"
	"github.com/taskforge/taskforge/pkg/event/wssink"
)

// newEventSink builds the event.Sink parameters.event_sink selects.
// An empty type keeps the default no-op sink. The returned io.Closer is
// nil when the sink holds no closeable resource.
func newEventSink(cfg config.EventSinkParameters, wsHandler *wssink.Sink) (event.Sink, io.Closer, error) {
	switch cfg.Type {
	case "", "websocket":
		if cfg.Type == "" {
			return event.NopSink{}, nil, nil
		}
		return wsHandler, nil, nil
	case "sql":
		sink, err := sqlsink.Open(cfg.SQLDialect, cfg.SQLDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("event_sink: %w", err)
		}
		return sink, sink, nil
	case "webhook":
		return webhooksink.New(cfg.WebhookURL), nil, nil
	default:
		return nil, nil, fmt.Errorf("event_sink: unknown type %q", cfg.Type)
	}
}
