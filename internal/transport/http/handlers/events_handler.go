package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/model"
	notifysvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/notifications"
)

const defaultKeepAlive = 25 * time.Second

type ModeratorGate interface {
	RequireModerator(ctx context.Context, actor model.Actor) error
}

type EventStream interface {
	Stream(ctx context.Context, channel string) (<-chan []byte, func() error, error)
}

// EventsHandler pushes the tenant's moderation events to moderators as server-sent events.
type EventsHandler struct {
	gate      ModeratorGate
	stream    EventStream
	log       *zap.Logger
	keepAlive time.Duration
}

func NewEventsHandler(gate ModeratorGate, stream EventStream, log *zap.Logger) *EventsHandler {
	return &EventsHandler{gate: gate, stream: stream, log: loggerOrNop(log), keepAlive: defaultKeepAlive}
}

func (h *EventsHandler) Moderation(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		writeUnauthorized(w, r)
		return
	}
	if h.gate == nil || h.stream == nil {
		writeUnavailable(w, r)
		return
	}
	if err := h.gate.RequireModerator(r.Context(), actor); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, h.log, fmt.Errorf("response writer does not support flushing"))
		return
	}

	events, stop, err := h.stream.Stream(r.Context(), notifysvc.Channel(actor.TenantID))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	defer func() {
		if err := stop(); err != nil {
			h.log.Debug("close event subscription", zap.Error(err))
		}
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "retry: 3000\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case payload, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: moderation\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
