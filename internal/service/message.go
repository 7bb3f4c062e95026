package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"group_chat/internal/domain"
	"group_chat/internal/repository"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

type MessageService interface {
	Send(ctx context.Context, roomID, authorID uuid.UUID, body string) (*domain.Message, error)
	// Edit and Delete are scoped to roomID: a message id belonging to
	// another room is reported as not found, so admission to a room is
	// the only way to reach its log.
	Edit(ctx context.Context, roomID uuid.UUID, messageID int64, body string) (*domain.Message, error)
	Delete(ctx context.Context, roomID uuid.UUID, messageID int64, actorID uuid.UUID) (*domain.Message, error)
	History(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]*domain.Message, error)
}

type messageService struct {
	messageRepo repository.MessageRepository
	auditRepo   repository.AuditRepository
	log         logger.Logger
}

func NewMessageService(messageRepo repository.MessageRepository, auditRepo repository.AuditRepository, log logger.Logger) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		auditRepo:   auditRepo,
		log:         log,
	}
}

func (s *messageService) Send(ctx context.Context, roomID, authorID uuid.UUID, body string) (*domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message body is empty", apperrors.ErrBadRequest)
	}

	message := &domain.Message{
		RoomID:   roomID,
		AuthorID: authorID,
		Body:     body,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

func (s *messageService) Edit(ctx context.Context, roomID uuid.UUID, messageID int64, body string) (*domain.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: message body is empty", apperrors.ErrBadRequest)
	}

	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.RoomID != roomID {
		return nil, apperrors.ErrMessageNotFound
	}

	message.Body = body
	if err := s.messageRepo.Update(ctx, message); err != nil {
		return nil, err
	}

	return message, nil
}

func (s *messageService) Delete(ctx context.Context, roomID uuid.UUID, messageID int64, actorID uuid.UUID) (*domain.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if message.RoomID != roomID {
		return nil, apperrors.ErrMessageNotFound
	}

	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return nil, err
	}

	s.auditRepo.CreateLog(ctx, &domain.AuditLog{
		EventTime:   time.Now(),
		ActorUserID: &actorID,
		RoomID:      &message.RoomID,
		EventType:   domain.EventTypeMessageDeleted,
		Payload:     map[string]interface{}{"message_id": messageID},
	})

	return message, nil
}

func (s *messageService) History(ctx context.Context, roomID uuid.UUID, limit, offset int) ([]*domain.Message, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.messageRepo.ListByRoom(ctx, roomID, limit, offset)
}
