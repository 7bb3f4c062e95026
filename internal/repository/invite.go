package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"group_chat/internal/domain"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

type InviteRepository interface {
	// Create inserts an invite row. A partial unique index on
	// (room_id, lower(email)) WHERE NOT consumed guards the one-live-
	// invite-per-address rule; a violation surfaces as ErrInviteExists.
	Create(ctx context.Context, invite *domain.Invite) error
	HasLive(ctx context.Context, roomID uuid.UUID, email string) (bool, error)
	// TryConsume marks the live invite for (room, email) consumed.
	// Exactly one concurrent caller observes success; the rest get
	// ErrNoInvite.
	TryConsume(ctx context.Context, roomID uuid.UUID, email string) error
	SweepExpired(ctx context.Context) (int64, error)
}

type inviteRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewInviteRepository(db *pgxpool.Pool, log logger.Logger) InviteRepository {
	return &inviteRepository{db: db, log: log}
}

func (r *inviteRepository) Create(ctx context.Context, invite *domain.Invite) error {
	query := `
		INSERT INTO invites (id, room_id, email, consumed, expires_at, created_at)
		VALUES ($1, $2, $3, FALSE, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		invite.ID, invite.RoomID, invite.Email, invite.ExpiresAt, time.Now(),
	).Scan(&invite.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrInviteExists
		}
		r.log.Error("Failed to create invite", "error", err)
		return err
	}

	return nil
}

func (r *inviteRepository) HasLive(ctx context.Context, roomID uuid.UUID, email string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM invites
			WHERE room_id = $1 AND lower(email) = lower($2)
			  AND NOT consumed AND expires_at > now()
		)
	`

	var exists bool
	if err := r.db.QueryRow(ctx, query, roomID, email).Scan(&exists); err != nil {
		r.log.Error("Failed to check live invite", "error", err)
		return false, err
	}

	return exists, nil
}

func (r *inviteRepository) TryConsume(ctx context.Context, roomID uuid.UUID, email string) error {
	// Single UPDATE is the point of exclusivity for concurrent admission
	// attempts against the same invite.
	query := `
		UPDATE invites
		SET consumed = TRUE
		WHERE id = (
			SELECT id FROM invites
			WHERE room_id = $1 AND lower(email) = lower($2)
			  AND NOT consumed AND expires_at > now()
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
	`

	tag, err := r.db.Exec(ctx, query, roomID, email)
	if err != nil {
		r.log.Error("Failed to consume invite", "error", err)
		return err
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrNoInvite
	}

	return nil
}

func (r *inviteRepository) SweepExpired(ctx context.Context) (int64, error) {
	query := `UPDATE invites SET consumed = TRUE WHERE NOT consumed AND expires_at <= now()`

	tag, err := r.db.Exec(ctx, query)
	if err != nil {
		r.log.Error("Failed to sweep expired invites", "error", err)
		return 0, err
	}

	return tag.RowsAffected(), nil
}
