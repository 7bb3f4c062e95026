package handler

import (
	"group_chat/internal/hub"
	"group_chat/internal/service"
	"group_chat/pkg/logger"
)

type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Room      *RoomHandler
	Message   *MessageHandler
	WebSocket *WebSocketHandler
}

func NewHandlers(services *service.Services, h *hub.Hub, log logger.Logger) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(),
		Auth:      NewAuthHandler(services.Auth, log),
		Room:      NewRoomHandler(services.Room, services.Invite, log),
		Message:   NewMessageHandler(services.Message, log),
		WebSocket: NewWebSocketHandler(h, services.Auth, services.Admission, services.Message, log),
	}
}
