package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"group_chat/internal/domain"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

type MembershipRepository interface {
	IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	Get(ctx context.Context, roomID, userID uuid.UUID) (*domain.Membership, error)
	// Add inserts a membership row. Returns ErrAlreadyMember on the
	// (room_id, user_id) unique constraint; callers treat that as an
	// idempotent rejoin, not a failure.
	Add(ctx context.Context, membership *domain.Membership) error
	SetAdmin(ctx context.Context, roomID, userID uuid.UUID, admin bool) (*domain.Membership, error)
	SearchByUsername(ctx context.Context, roomID uuid.UUID, q string) ([]*domain.Membership, error)
}

type membershipRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewMembershipRepository(db *pgxpool.Pool, log logger.Logger) MembershipRepository {
	return &membershipRepository{db: db, log: log}
}

func (r *membershipRepository) IsMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM memberships WHERE room_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, roomID, userID).Scan(&exists); err != nil {
		r.log.Error("Failed to check membership", "error", err)
		return false, err
	}

	return exists, nil
}

func (r *membershipRepository) Get(ctx context.Context, roomID, userID uuid.UUID) (*domain.Membership, error) {
	query := `
		SELECT room_id, user_id, is_admin, created_at
		FROM memberships
		WHERE room_id = $1 AND user_id = $2
	`

	membership := &domain.Membership{}
	err := r.db.QueryRow(ctx, query, roomID, userID).Scan(
		&membership.RoomID, &membership.UserID, &membership.IsAdmin, &membership.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotAMember
		}
		r.log.Error("Failed to get membership", "error", err)
		return nil, err
	}

	return membership, nil
}

func (r *membershipRepository) Add(ctx context.Context, membership *domain.Membership) error {
	query := `
		INSERT INTO memberships (room_id, user_id, is_admin, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRow(ctx, query,
		membership.RoomID, membership.UserID, membership.IsAdmin, time.Now(),
	).Scan(&membership.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrAlreadyMember
		}
		r.log.Error("Failed to add member", "error", err)
		return err
	}

	return nil
}

func (r *membershipRepository) SetAdmin(ctx context.Context, roomID, userID uuid.UUID, admin bool) (*domain.Membership, error) {
	query := `
		UPDATE memberships
		SET is_admin = $3
		WHERE room_id = $1 AND user_id = $2
		RETURNING room_id, user_id, is_admin, created_at
	`

	membership := &domain.Membership{}
	err := r.db.QueryRow(ctx, query, roomID, userID, admin).Scan(
		&membership.RoomID, &membership.UserID, &membership.IsAdmin, &membership.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotAMember
		}
		r.log.Error("Failed to set admin flag", "error", err)
		return nil, err
	}

	return membership, nil
}

// SearchByUsername does fuzzy member lookup via pg_trgm similarity.
func (r *membershipRepository) SearchByUsername(ctx context.Context, roomID uuid.UUID, q string) ([]*domain.Membership, error) {
	query := `
		SELECT m.room_id, m.user_id, m.is_admin, m.created_at
		FROM memberships m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1 AND similarity(u.username, $2) > 0.3
		ORDER BY similarity(u.username, $2) DESC
	`

	rows, err := r.db.Query(ctx, query, roomID, q)
	if err != nil {
		r.log.Error("Failed to search members", "error", err)
		return nil, err
	}
	defer rows.Close()

	var memberships []*domain.Membership
	for rows.Next() {
		membership := &domain.Membership{}
		err := rows.Scan(
			&membership.RoomID, &membership.UserID, &membership.IsAdmin, &membership.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan membership", "error", err)
			return nil, err
		}
		memberships = append(memberships, membership)
	}

	return memberships, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
