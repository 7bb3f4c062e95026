package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"group_chat/internal/domain"
	"group_chat/internal/repository"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

type RoomService interface {
	Create(ctx context.Context, creatorID uuid.UUID, name, visibility string) (*domain.Room, error)
	GetByID(ctx context.Context, roomID uuid.UUID) (*domain.Room, error)
	ListPublic(ctx context.Context, limit, offset int) ([]*domain.Room, error)
	// SetAdmin changes another member's admin flag. The requester must be
	// the room creator or an admin member, and may never target itself.
	SetAdmin(ctx context.Context, roomID, requesterID, targetID uuid.UUID, admin bool) (*SetAdminResult, error)
	SearchMembers(ctx context.Context, roomID uuid.UUID, q string) ([]*domain.Membership, error)
}

// SetAdminResult distinguishes an applied change from a no-op where the
// member already had the requested flag.
type SetAdminResult struct {
	Membership *domain.Membership `json:"membership"`
	Changed    bool               `json:"changed"`
}

type roomService struct {
	roomRepo       repository.RoomRepository
	membershipRepo repository.MembershipRepository
	auditRepo      repository.AuditRepository
	log            logger.Logger
}

func NewRoomService(roomRepo repository.RoomRepository, membershipRepo repository.MembershipRepository, auditRepo repository.AuditRepository, log logger.Logger) RoomService {
	return &roomService{
		roomRepo:       roomRepo,
		membershipRepo: membershipRepo,
		auditRepo:      auditRepo,
		log:            log,
	}
}

func (s *roomService) Create(ctx context.Context, creatorID uuid.UUID, name, visibility string) (*domain.Room, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: room name is required", apperrors.ErrBadRequest)
	}
	if visibility == "" {
		visibility = domain.RoomVisibilityPublic
	}
	if visibility != domain.RoomVisibilityPublic && visibility != domain.RoomVisibilityPrivate {
		return nil, fmt.Errorf("%w: unknown visibility %q", apperrors.ErrBadRequest, visibility)
	}

	room := &domain.Room{
		ID:         uuid.New(),
		Name:       name,
		CreatorID:  creatorID,
		Visibility: visibility,
	}

	// Repository inserts the creator membership in the same transaction.
	if err := s.roomRepo.Create(ctx, room); err != nil {
		if errors.Is(err, apperrors.ErrRoomExists) {
			return nil, err
		}
		s.log.Error("Failed to create room", "error", err)
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	s.auditRepo.CreateLog(ctx, &domain.AuditLog{
		EventTime:   time.Now(),
		ActorUserID: &creatorID,
		RoomID:      &room.ID,
		EventType:   domain.EventTypeRoomCreated,
		Payload:     map[string]interface{}{"name": name, "visibility": visibility},
	})

	return room, nil
}

func (s *roomService) GetByID(ctx context.Context, roomID uuid.UUID) (*domain.Room, error) {
	return s.roomRepo.GetByID(ctx, roomID)
}

func (s *roomService) ListPublic(ctx context.Context, limit, offset int) ([]*domain.Room, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.roomRepo.ListPublic(ctx, limit, offset)
}

func (s *roomService) SetAdmin(ctx context.Context, roomID, requesterID, targetID uuid.UUID, admin bool) (*SetAdminResult, error) {
	// Self promotion and demotion are rejected regardless of role.
	if requesterID == targetID {
		return nil, apperrors.ErrSelfAdminChange
	}

	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if room.CreatorID != requesterID {
		requester, err := s.membershipRepo.Get(ctx, roomID, requesterID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotAMember) {
				return nil, apperrors.ErrForbidden
			}
			return nil, err
		}
		if !requester.IsAdmin {
			return nil, apperrors.ErrForbidden
		}
	}

	target, err := s.membershipRepo.Get(ctx, roomID, targetID)
	if err != nil {
		return nil, err
	}

	if target.IsAdmin == admin {
		return &SetAdminResult{Membership: target, Changed: false}, nil
	}

	updated, err := s.membershipRepo.SetAdmin(ctx, roomID, targetID, admin)
	if err != nil {
		return nil, err
	}

	eventType := domain.EventTypeAdminGranted
	if !admin {
		eventType = domain.EventTypeAdminRevoked
	}
	s.auditRepo.CreateLog(ctx, &domain.AuditLog{
		EventTime:   time.Now(),
		ActorUserID: &requesterID,
		RoomID:      &roomID,
		EventType:   eventType,
		Payload:     map[string]interface{}{"target_user_id": targetID.String()},
	})

	return &SetAdminResult{Membership: updated, Changed: true}, nil
}

func (s *roomService) SearchMembers(ctx context.Context, roomID uuid.UUID, q string) ([]*domain.Membership, error) {
	if q == "" {
		return nil, nil
	}
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		return nil, err
	}
	return s.membershipRepo.SearchByUsername(ctx, roomID, q)
}
