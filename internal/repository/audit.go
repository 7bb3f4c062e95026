package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"group_chat/internal/domain"
	"group_chat/pkg/logger"
)

type AuditRepository interface {
	CreateLog(ctx context.Context, log *domain.AuditLog) error
}

type auditRepository struct {
	db  *pgxpool.Pool
	log logger.Logger
}

func NewAuditRepository(db *pgxpool.Pool, log logger.Logger) AuditRepository {
	return &auditRepository{db: db, log: log}
}

func (r *auditRepository) CreateLog(ctx context.Context, entry *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (event_time, actor_user_id, room_id, event_type, payload)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.Exec(ctx, query,
		entry.EventTime, entry.ActorUserID, entry.RoomID, entry.EventType, entry.Payload,
	)

	if err != nil {
		// Audit writes are best-effort; they never fail the caller.
		r.log.Error("Failed to create audit log", "error", err)
		return err
	}

	return nil
}
