package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
)

// EventIngestRequested asks the gateway to run an ingestion cycle now.
const EventIngestRequested = "IngestRequested"

// IngestRequestedPayload is the optional payload of an IngestRequested event.
type IngestRequestedPayload struct {
	Reason      string `json:"reason"`
	RequestedBy string `json:"requested_by"`
}

// Triggerer wakes the ingestion loop.
type Triggerer interface {
	Trigger()
}

// IngestEventHandler turns stream events into ingestion triggers.
type IngestEventHandler struct {
	loop   Triggerer
	logger *slog.Logger
}

func NewIngestEventHandler(loop Triggerer, logger *slog.Logger) *IngestEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IngestEventHandler{loop: loop, logger: logger}
}

// HandleEvent processes a single event. Unknown event types are skipped so
// they get acknowledged.
func (h *IngestEventHandler) HandleEvent(ctx context.Context, event Event) error {
	switch event.EventType {
	case EventIngestRequested:
		return h.handleIngestRequested(ctx, event)
	default:
		h.logger.WarnContext(ctx, "unknown event type, skipping",
			"event_type", event.EventType,
			"event_id", event.EventID,
		)
		return nil
	}
}

func (h *IngestEventHandler) handleIngestRequested(ctx context.Context, event Event) error {
	var payload IngestRequestedPayload
	if len(event.Payload) > 0 {
		if err := json.Unmarshal(event.Payload, &payload); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal IngestRequested payload",
				"event_id", event.EventID,
				"error", err,
			)
			return err
		}
	}

	h.logger.InfoContext(ctx, "ingestion requested",
		"event_id", event.EventID,
		"source", event.Source,
		"reason", payload.Reason,
		"requested_by", payload.RequestedBy,
	)
	h.loop.Trigger()
	return nil
}
