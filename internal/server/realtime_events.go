package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"picwedding/internal/middleware"
)

// Event types pushed to connected gallery clients.
const (
	EventPhotoCreated = "photo_created"
	EventPhotoDeleted = "photo_deleted"
	EventPhotoLiked   = "photo_liked"
)

// wsEvent is the envelope for every websocket message.
type wsEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// publishEvent fans a photo event out to connected clients. With Redis the
// event goes through the notifier so every instance's hub (including this
// one's) delivers it; without Redis it is broadcast locally.
func (s *Server) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	data, err := json.Marshal(wsEvent{Type: eventType, Payload: payload})
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to marshal event",
			slog.String("type", eventType), slog.String("error", err.Error()))
		return
	}

	if s.notifier != nil {
		if err := s.notifier.PublishEvent(ctx, string(data)); err != nil {
			middleware.Logger.WarnContext(ctx, "event publish failed, broadcasting locally",
				slog.String("type", eventType), slog.String("error", err.Error()))
			s.hub.BroadcastAll(string(data))
		}
		return
	}

	s.hub.BroadcastAll(string(data))
}
