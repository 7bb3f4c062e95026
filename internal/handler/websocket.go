package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"group_chat/internal/hub"
	"group_chat/internal/service"
	"group_chat/pkg/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to known origins before exposing publicly
	},
}

type WebSocketHandler struct {
	hub              *hub.Hub
	authService      service.AuthService
	admissionService service.AdmissionService
	messageService   service.MessageService
	log              logger.Logger
}

func NewWebSocketHandler(
	h *hub.Hub,
	authService service.AuthService,
	admissionService service.AdmissionService,
	messageService service.MessageService,
	log logger.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:              h,
		authService:      authService,
		admissionService: admissionService,
		messageService:   messageService,
		log:              log,
	}
}

// HandleChat attaches a client to a room. The socket is accepted before
// any admission check so rejections can deliver their reason.
func (h *WebSocketHandler) HandleChat(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	session := hub.NewSession(conn, roomID, h.hub, h.authService, h.admissionService, h.messageService, h.log)
	session.Start(c.Request.Context(), c.Query("token"))
}
