package service_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"group_chat/internal/domain"
	apperrors "group_chat/pkg/errors"
)

// fakeRoomRepo serves rooms from an in-memory map.
type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*domain.Room
}

func newFakeRoomRepo(rooms ...*domain.Room) *fakeRoomRepo {
	r := &fakeRoomRepo{rooms: make(map[uuid.UUID]*domain.Room)}
	for _, room := range rooms {
		r.rooms[room.ID] = room
	}
	return r
}

func (r *fakeRoomRepo) Create(_ context.Context, room *domain.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rooms[room.ID] = room
	return nil
}

func (r *fakeRoomRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	return room, nil
}

func (r *fakeRoomRepo) ListPublic(_ context.Context, limit, offset int) ([]*domain.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Room
	for _, room := range r.rooms {
		if room.Visibility == domain.RoomVisibilityPublic {
			out = append(out, room)
		}
	}
	return out, nil
}

type memberKey struct {
	roomID uuid.UUID
	userID uuid.UUID
}

// fakeMembershipRepo mirrors the unique-constraint behavior of the real
// store: Add on an existing pair returns ErrAlreadyMember.
type fakeMembershipRepo struct {
	mu      sync.Mutex
	members map[memberKey]*domain.Membership
}

func newFakeMembershipRepo(members ...*domain.Membership) *fakeMembershipRepo {
	r := &fakeMembershipRepo{members: make(map[memberKey]*domain.Membership)}
	for _, m := range members {
		r.members[memberKey{m.RoomID, m.UserID}] = m
	}
	return r
}

func (r *fakeMembershipRepo) IsMember(_ context.Context, roomID, userID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.members[memberKey{roomID, userID}]
	return ok, nil
}

func (r *fakeMembershipRepo) Get(_ context.Context, roomID, userID uuid.UUID) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[memberKey{roomID, userID}]
	if !ok {
		return nil, apperrors.ErrNotAMember
	}
	return m, nil
}

func (r *fakeMembershipRepo) Add(_ context.Context, membership *domain.Membership) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey{membership.RoomID, membership.UserID}
	if _, ok := r.members[key]; ok {
		return apperrors.ErrAlreadyMember
	}
	r.members[key] = membership
	return nil
}

func (r *fakeMembershipRepo) SetAdmin(_ context.Context, roomID, userID uuid.UUID, admin bool) (*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[memberKey{roomID, userID}]
	if !ok {
		return nil, apperrors.ErrNotAMember
	}
	m.IsAdmin = admin
	return m, nil
}

func (r *fakeMembershipRepo) SearchByUsername(_ context.Context, roomID uuid.UUID, q string) ([]*domain.Membership, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Membership
	for key, m := range r.members {
		if key.roomID == roomID {
			out = append(out, m)
		}
	}
	return out, nil
}

// fakeInviteRepo keeps invites in a slice and makes TryConsume
// winner-takes-all under the mutex, like the row lock does in Postgres.
type fakeInviteRepo struct {
	mu      sync.Mutex
	invites []*domain.Invite
}

func (r *fakeInviteRepo) Create(_ context.Context, invite *domain.Invite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// One live invite per (room, email), as the partial unique index
	// enforces in Postgres.
	for _, existing := range r.invites {
		if existing.RoomID == invite.RoomID && existing.Email == invite.Email && existing.IsLive() {
			return apperrors.ErrInviteExists
		}
	}
	r.invites = append(r.invites, invite)
	return nil
}

func (r *fakeInviteRepo) HasLive(_ context.Context, roomID uuid.UUID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invites {
		if inv.RoomID == roomID && inv.Email == email && inv.IsLive() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeInviteRepo) TryConsume(_ context.Context, roomID uuid.UUID, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invites {
		if inv.RoomID == roomID && inv.Email == email && inv.IsLive() {
			inv.Consumed = true
			return nil
		}
	}
	return apperrors.ErrNoInvite
}

func (r *fakeInviteRepo) SweepExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var swept int64
	for _, inv := range r.invites {
		if !inv.Consumed && inv.IsExpired() {
			inv.Consumed = true
			swept++
		}
	}
	return swept, nil
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []*domain.AuditLog
}

func (r *fakeAuditRepo) CreateLog(_ context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, log)
	return nil
}

func (r *fakeAuditRepo) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.logs {
		if l.EventType == eventType {
			n++
		}
	}
	return n
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	nextID   int64
	messages map[int64]*domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[int64]*domain.Message)}
}

func (r *fakeMessageRepo) Create(_ context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	message.ID = r.nextID
	stored := *message
	r.messages[message.ID] = &stored
	return nil
}

func (r *fakeMessageRepo) GetByID(_ context.Context, messageID int64) (*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[messageID]
	if !ok {
		return nil, apperrors.ErrMessageNotFound
	}
	copied := *m
	return &copied, nil
}

func (r *fakeMessageRepo) Update(_ context.Context, message *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[message.ID]
	if !ok {
		return apperrors.ErrMessageNotFound
	}
	m.Body = message.Body
	m.Edited = true
	message.Edited = true
	return nil
}

func (r *fakeMessageRepo) Delete(_ context.Context, messageID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[messageID]; !ok {
		return apperrors.ErrMessageNotFound
	}
	delete(r.messages, messageID)
	return nil
}

func (r *fakeMessageRepo) ListByRoom(_ context.Context, roomID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Message
	for _, m := range r.messages {
		if m.RoomID == roomID {
			copied := *m
			out = append(out, &copied)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return apperrors.ErrUserAlreadyExists
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// fakeMailer records delivery requests.
type fakeMailer struct {
	mu    sync.Mutex
	sends [][]string
}

func (m *fakeMailer) SendInvites(_ *domain.Room, recipients []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sends = append(m.sends, recipients)
	return nil
}
