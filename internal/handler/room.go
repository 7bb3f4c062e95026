package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"group_chat/internal/service"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

type RoomHandler struct {
	roomService   service.RoomService
	inviteService service.InviteService
	log           logger.Logger
}

func NewRoomHandler(roomService service.RoomService, inviteService service.InviteService, log logger.Logger) *RoomHandler {
	return &RoomHandler{
		roomService:   roomService,
		inviteService: inviteService,
		log:           log,
	}
}

type CreateRoomRequest struct {
	Name       string `json:"name" binding:"required"`
	Visibility string `json:"visibility"`
}

func (h *RoomHandler) Create(c *gin.Context) {
	userID, _ := c.Get("user_id")

	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.roomService.Create(c.Request.Context(), userID.(uuid.UUID), req.Name, req.Visibility)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"status":  "success",
		"message": "Room created successfully",
		"data":    room,
	})
}

func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.roomService.ListPublic(c.Request.Context(), 20, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) GetByID(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	room, err := h.roomService.GetByID(c.Request.Context(), roomID)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, room)
}

type InviteRequest struct {
	Recipients []string `json:"recipients" binding:"required,min=1,dive,email"`
}

func (h *RoomHandler) Invite(c *gin.Context) {
	userID, _ := c.Get("user_id")
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	issued, err := h.inviteService.Issue(c.Request.Context(), roomID, userID.(uuid.UUID), req.Recipients)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	if len(issued) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Either emails aren't valid or there's a pending invite!",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Invite(s) sent successfully",
		"issued":  issued,
	})
}

type SetAdminRequest struct {
	UserID    uuid.UUID `json:"user_id" binding:"required"`
	MakeAdmin bool      `json:"make_admin"`
}

func (h *RoomHandler) SetAdmin(c *gin.Context) {
	requesterID, _ := c.Get("user_id")
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	var req SetAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.roomService.SetAdmin(c.Request.Context(), roomID, requesterID.(uuid.UUID), req.UserID, req.MakeAdmin)
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	message := adminResultMessage(req.MakeAdmin, result.Changed)
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": message,
		"data":    result.Membership,
	})
}

func adminResultMessage(makeAdmin, changed bool) string {
	switch {
	case makeAdmin && changed:
		return "Admin rights granted successfully"
	case makeAdmin && !changed:
		return "Member is already an admin"
	case !makeAdmin && changed:
		return "Admin rights revoked successfully"
	default:
		return "Member is already not an admin"
	}
}

func (h *RoomHandler) SearchMembers(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room ID"})
		return
	}

	memberships, err := h.roomService.SearchMembers(c.Request.Context(), roomID, c.Query("q"))
	if err != nil {
		c.JSON(apperrors.HTTPStatusFromError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, memberships)
}
