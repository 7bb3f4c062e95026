package hub

// Client intent types carried in the envelope's discriminator.
const (
	IntentNewMessage    = "NEW_MESSAGE"
	IntentEditMessage   = "EDIT_MESSAGE"
	IntentDeleteMessage = "DELETE_MESSAGE"
	IntentTyping        = "TYPING"
	IntentNotTyping     = "NOT_TYPING"
)

// Intent is a client-to-server message.
type Intent struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Username  string `json:"username"`
	MessageID *int64 `json:"message_id,omitempty"`
}

// Server-to-client event discriminators.
const (
	EventJoin          = "join"
	EventNewMessage    = "new_message"
	EventEditMessage   = "edit_message"
	EventDeleteMessage = "delete_message"
	EventTyping        = "typing"
	EventNotTyping     = "not_typing"
	EventError         = "error"
)

// Event is a server-to-client message. Join events carry free text in
// Message; mutation events carry Message, Username and MessageID.
type Event struct {
	Type      string `json:"type,omitempty"`
	Message   string `json:"message,omitempty"`
	Username  string `json:"username,omitempty"`
	MessageID *int64 `json:"message_id,omitempty"`
}

// WebSocket close codes distinguishing rejection reasons from ordinary
// closure.
const (
	CloseAuthRequired = 4001
	CloseForbidden    = 4003
	CloseRoomNotFound = 4004
)
