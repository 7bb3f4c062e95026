package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"group_chat/pkg/logger"
)

type Repositories struct {
	User       UserRepository
	Room       RoomRepository
	Membership MembershipRepository
	Invite     InviteRepository
	Message    MessageRepository
	Audit      AuditRepository
	RateLimit  RateLimitRepository
}

func NewRepositories(db *pgxpool.Pool, redis *redis.Client, log logger.Logger) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db, log),
		Room:       NewRoomRepository(db, log),
		Membership: NewMembershipRepository(db, log),
		Invite:     NewInviteRepository(db, log),
		Message:    NewMessageRepository(db, log),
		Audit:      NewAuditRepository(db, log),
		RateLimit:  NewRateLimitRepository(redis, log),
	}
}
