package domain

import (
	"time"

	"github.com/google/uuid"
)

type Room struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	CreatorID  uuid.UUID `json:"creator_id"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsPrivate reports whether joining requires an invite or prior membership.
func (r *Room) IsPrivate() bool {
	return r.Visibility == RoomVisibilityPrivate
}

type Membership struct {
	RoomID    uuid.UUID `json:"room_id"`
	UserID    uuid.UUID `json:"user_id"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Invite is a single-use admission token scoped to one room and one email.
// A live invite is unconsumed and not past ExpiresAt.
type Invite struct {
	ID        uuid.UUID `json:"id"`
	RoomID    uuid.UUID `json:"room_id"`
	Email     string    `json:"email"`
	Consumed  bool      `json:"consumed"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Invite) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}

func (i *Invite) IsLive() bool {
	return !i.Consumed && !i.IsExpired()
}

const (
	RoomVisibilityPublic  = "public"
	RoomVisibilityPrivate = "private"
)

// Default lifetime of an invite, counted from issuance.
const DefaultInviteTTL = 5 * time.Hour
