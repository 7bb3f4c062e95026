package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"group_chat/internal/domain"
	"group_chat/internal/service"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

// State is the connection session lifecycle position.
type State int

const (
	StateConnecting State = iota
	StateAuthenticating
	StateRejected
	StateAdmitted
	StateJoined
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAuthenticating:
		return "authenticating"
	case StateRejected:
		return "rejected"
	case StateAdmitted:
		return "admitted"
	case StateJoined:
		return "joined"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

func (s State) terminal() bool {
	return s == StateRejected || s == StateClosed
}

// Session drives the state machine for one attached connection: it runs
// admission, decodes client intents and invokes the message log and the
// broadcast router. It holds no state beyond the connection's lifetime.
type Session struct {
	mu       sync.Mutex
	state    State
	identity *domain.Identity
	room     *domain.Room

	client *Client
	hub    *Hub

	auth      service.AuthService
	admission service.AdmissionService
	messages  service.MessageService
	log       logger.Logger
}

// NewSession wraps an upgraded websocket connection targeting roomID.
func NewSession(
	conn *websocket.Conn,
	roomID uuid.UUID,
	h *Hub,
	auth service.AuthService,
	admission service.AdmissionService,
	messages service.MessageService,
	log logger.Logger,
) *Session {
	s := &Session{
		state:     StateConnecting,
		hub:       h,
		auth:      auth,
		admission: admission,
		messages:  messages,
		log:       log,
	}
	s.client = newClient(conn, roomID, log)
	s.client.session = s
	return s
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) transition(to State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.terminal() {
		return
	}
	s.state = to
}

// Start runs the admission sequence. The socket is already accepted;
// rejections deliver a structured notice and then close with a
// distinguishing code, never silently.
func (s *Session) Start(ctx context.Context, token string) {
	s.transition(StateAuthenticating)

	if token == "" {
		s.rejectDirect("You must login to continue!", CloseAuthRequired)
		return
	}

	identity, err := s.auth.ValidateToken(ctx, token)
	if err != nil {
		s.rejectDirect("You must login to continue!", CloseAuthRequired)
		return
	}
	s.identity = identity

	result, err := s.admission.Admit(ctx, s.client.roomID, identity)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrRoomNotFound):
			s.rejectDirect("Chatroom doesn't exist!", CloseRoomNotFound)
		case errors.Is(err, apperrors.ErrForbidden):
			s.rejectDirect("Invite is either invalid or expired!", CloseForbidden)
		default:
			s.log.Error("Admission failed", "error", err, "room_id", s.client.roomID)
			s.rejectDirect("Something went wrong, try again later.", websocket.CloseInternalServerErr)
		}
		return
	}
	s.room = result.Room
	s.transition(StateAdmitted)

	s.hub.Register(s.room.ID, s.client)
	s.transition(StateJoined)
	s.client.run()

	if result.Rejoined {
		s.client.enqueue(Event{Message: "Welcome back!"})
	} else {
		s.hub.Broadcast(s.room.ID, Event{
			Type:    EventJoin,
			Message: fmt.Sprintf("%s joined", identity.Username),
		}, nil)
	}

	s.log.Info("Session joined", "room_id", s.room.ID, "user_id", identity.UserID)
}

func (s *Session) rejectDirect(message string, code int) {
	s.client.writeEvent(Event{Type: EventError, Message: message})
	s.transition(StateRejected)
	s.client.closeWithCode(code, "")
}

// handleInbound dispatches one decoded client intent. Called from the
// read pump, so intents of one session are processed in arrival order.
func (s *Session) handleInbound(raw []byte) {
	if s.State() != StateJoined {
		return
	}

	var intent Intent
	if err := json.Unmarshal(raw, &intent); err != nil {
		s.client.enqueue(Event{Type: EventError, Message: "Malformed message"})
		return
	}

	ctx := context.Background()

	switch intent.Type {
	case IntentNewMessage:
		s.handleNewMessage(ctx, intent)
	case IntentEditMessage:
		s.handleEditMessage(ctx, intent)
	case IntentDeleteMessage:
		s.handleDeleteMessage(ctx, intent)
	case IntentTyping:
		s.hub.Broadcast(s.room.ID, Event{Type: EventTyping, Username: s.identity.Username}, s.client)
	case IntentNotTyping:
		s.hub.Broadcast(s.room.ID, Event{Type: EventNotTyping, Username: s.identity.Username}, s.client)
	default:
		s.client.enqueue(Event{Type: EventError, Message: fmt.Sprintf("Unknown message type %q", intent.Type)})
	}
}

func (s *Session) handleNewMessage(ctx context.Context, intent Intent) {
	message, err := s.messages.Send(ctx, s.room.ID, s.identity.UserID, intent.Message)
	if err != nil {
		s.notifyError(err)
		return
	}

	// The store write is durable before anyone hears about the id.
	s.hub.Broadcast(s.room.ID, Event{
		Type:      EventNewMessage,
		Message:   message.Body,
		Username:  s.identity.Username,
		MessageID: &message.ID,
	}, nil)
}

func (s *Session) handleEditMessage(ctx context.Context, intent Intent) {
	if intent.MessageID == nil {
		s.client.enqueue(Event{Type: EventError, Message: "message_id is required"})
		return
	}

	message, err := s.messages.Edit(ctx, s.room.ID, *intent.MessageID, intent.Message)
	if err != nil {
		// Missing target is reported to this session only; it stays
		// joined.
		s.notifyError(err)
		return
	}

	s.hub.Broadcast(s.room.ID, Event{
		Type:      EventEditMessage,
		Message:   message.Body,
		Username:  s.identity.Username,
		MessageID: &message.ID,
	}, nil)
}

func (s *Session) handleDeleteMessage(ctx context.Context, intent Intent) {
	if intent.MessageID == nil {
		s.client.enqueue(Event{Type: EventError, Message: "message_id is required"})
		return
	}

	message, err := s.messages.Delete(ctx, s.room.ID, *intent.MessageID, s.identity.UserID)
	if err != nil {
		s.notifyError(err)
		return
	}

	s.hub.Broadcast(s.room.ID, Event{
		Type:      EventDeleteMessage,
		Username:  s.identity.Username,
		MessageID: &message.ID,
	}, nil)
}

func (s *Session) notifyError(err error) {
	s.client.enqueue(Event{Type: EventError, Message: err.Error()})
}

// close is invoked on transport disconnect at any state. Deregistration
// is immediate and unconditional.
func (s *Session) close() {
	s.hub.Deregister(s.client.roomID, s.client)
	s.transition(StateClosed)
	if s.identity != nil {
		s.log.Info("Session closed", "room_id", s.client.roomID, "user_id", s.identity.UserID)
	}
}
