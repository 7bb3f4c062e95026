package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"group_chat/internal/domain"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

type RoomRepository interface {
	// Create inserts the room and its creator membership (admin) in one
	// transaction, so a room never exists without an admin.
	Create(ctx context.Context, room *domain.Room) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error)
	ListPublic(ctx context.Context, limit, offset int) ([]*domain.Room, error)
}

type roomRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewRoomRepository(db *pgxpool.Pool, log logger.Logger) RoomRepository {
	return &roomRepository{db: db, log: log}
}

func (r *roomRepository) Create(ctx context.Context, room *domain.Room) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin room creation tx", "error", err)
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO rooms (id, name, creator_id, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		room.ID, room.Name, room.CreatorID, room.Visibility, time.Now(), time.Now(),
	).Scan(&room.CreatedAt, &room.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrRoomExists
		}
		r.log.Error("Failed to create room", "error", err)
		return err
	}

	memberQuery := `
		INSERT INTO memberships (room_id, user_id, is_admin, created_at)
		VALUES ($1, $2, TRUE, $3)
	`
	if _, err := tx.Exec(ctx, memberQuery, room.ID, room.CreatorID, time.Now()); err != nil {
		r.log.Error("Failed to create creator membership", "error", err)
		return err
	}

	return tx.Commit(ctx)
}

func (r *roomRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Room, error) {
	query := `
		SELECT id, name, creator_id, visibility, created_at, updated_at
		FROM rooms
		WHERE id = $1
	`

	room := &domain.Room{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&room.ID, &room.Name, &room.CreatorID, &room.Visibility,
		&room.CreatedAt, &room.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrRoomNotFound
		}
		r.log.Error("Failed to get room by ID", "error", err)
		return nil, err
	}

	return room, nil
}

func (r *roomRepository) ListPublic(ctx context.Context, limit, offset int) ([]*domain.Room, error) {
	query := `
		SELECT id, name, creator_id, visibility, created_at, updated_at
		FROM rooms
		WHERE visibility = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, domain.RoomVisibilityPublic, limit, offset)
	if err != nil {
		r.log.Error("Failed to list public rooms", "error", err)
		return nil, err
	}
	defer rows.Close()

	var rooms []*domain.Room
	for rows.Next() {
		room := &domain.Room{}
		err := rows.Scan(
			&room.ID, &room.Name, &room.CreatorID, &room.Visibility,
			&room.CreatedAt, &room.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan room", "error", err)
			return nil, err
		}
		rooms = append(rooms, room)
	}

	return rooms, nil
}
