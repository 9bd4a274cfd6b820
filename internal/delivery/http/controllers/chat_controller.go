package controllers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"clientdesk/internal/chat"
	h "clientdesk/internal/delivery/http/helpers"
	"clientdesk/internal/delivery/http/middleware"
	"clientdesk/internal/domain"
)

// ChatHistoryResponse is the response body for GET /chat/rooms/{roomID}/messages
type ChatHistoryResponse struct {
	Messages []*domain.ChatMessage `json:"messages"`
}

type ChatController struct {
	Logger  *slog.Logger
	Service domain.ChatService
	Hub     *chat.Hub
}

func NewChatController(logger *slog.Logger, svc domain.ChatService, hub *chat.Hub) *ChatController {
	return &ChatController{
		Logger:  logger,
		Service: svc,
		Hub:     hub,
	}
}

// senderRole picks the role recorded on messages from this connection.
// Admins speak as "admin" in every room; everyone else as "client".
func senderRole(roles []string) string {
	for _, role := range roles {
		if role == "admin" {
			return "admin"
		}
	}
	return "client"
}

// History godoc
// @Summary List recent messages in a room
// @Description Return up to limit messages, oldest first. Defaults to the most recent 50.
// @Tags chat
// @Produce json
// @Security BearerAuth
// @Param roomID path string true "Room ID"
// @Param limit query int false "Maximum number of messages"
// @Success 200 {object} helpers.APIResponse "data contains messages"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /chat/rooms/{roomID}/messages [get]
func (c *ChatController) History(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	if strings.TrimSpace(roomID) == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "room id is required")
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	messages, err := c.Service.History(r.Context(), roomID, limit)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		h.WriteJSONError(w, http.StatusInternalServerError, h.ErrCodeInternalError, err.Error())
		return
	}

	h.WriteJSONSuccess(w, http.StatusOK, ChatHistoryResponse{Messages: messages})
}

// Connect godoc
// @Summary Join a room over websocket
// @Description Upgrade to a websocket. Inbound frames are {"body": "..."}; outbound frames are persisted messages.
// @Tags chat
// @Security BearerAuth
// @Param roomID path string true "Room ID"
// @Success 101 {string} string "Switching Protocols"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /chat/rooms/{roomID}/ws [get]
func (c *ChatController) Connect(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("roomID")
	if strings.TrimSpace(roomID) == "" {
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "room id is required")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		h.WriteJSONError(w, http.StatusUnauthorized, h.ErrCodeUnauthorized, "missing authentication")
		return
	}
	roles, _ := middleware.RolesFromContext(r.Context())

	c.Hub.Serve(w, r, roomID, userID, senderRole(roles), c.Service.Post)
}
