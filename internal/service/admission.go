package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"group_chat/internal/domain"
	"group_chat/internal/repository"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

// AdmissionService decides whether an identity may attach to a room and
// performs the side effects of admission: invite consumption and
// membership creation.
type AdmissionService interface {
	Admit(ctx context.Context, roomID uuid.UUID, identity *domain.Identity) (*AdmissionResult, error)
}

type AdmissionResult struct {
	Room *domain.Room
	// Rejoined is true when the identity was already a member. The
	// session sends a private welcome-back notice instead of a join
	// broadcast.
	Rejoined bool
	// ViaInvite is true when admission consumed an invite.
	ViaInvite bool
}

type admissionService struct {
	roomRepo       repository.RoomRepository
	membershipRepo repository.MembershipRepository
	inviteRepo     repository.InviteRepository
	auditRepo      repository.AuditRepository
	log            logger.Logger
}

func NewAdmissionService(
	roomRepo repository.RoomRepository,
	membershipRepo repository.MembershipRepository,
	inviteRepo repository.InviteRepository,
	auditRepo repository.AuditRepository,
	log logger.Logger,
) AdmissionService {
	return &admissionService{
		roomRepo:       roomRepo,
		membershipRepo: membershipRepo,
		inviteRepo:     inviteRepo,
		auditRepo:      auditRepo,
		log:            log,
	}
}

func (s *admissionService) Admit(ctx context.Context, roomID uuid.UUID, identity *domain.Identity) (*AdmissionResult, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	result := &AdmissionResult{Room: room}

	if room.IsPrivate() {
		// Invite path first: consumption is the single point of
		// exclusivity for concurrent attempts on the same invite.
		err := s.inviteRepo.TryConsume(ctx, roomID, identity.Email)
		switch {
		case err == nil:
			result.ViaInvite = true
		case errors.Is(err, apperrors.ErrNoInvite):
			member, memberErr := s.membershipRepo.IsMember(ctx, roomID, identity.UserID)
			if memberErr != nil {
				return nil, memberErr
			}
			if !member {
				return nil, apperrors.ErrForbidden
			}
		default:
			return nil, err
		}
	}

	err = s.membershipRepo.Add(ctx, &domain.Membership{
		RoomID: roomID,
		UserID: identity.UserID,
	})
	switch {
	case err == nil:
		s.auditRepo.CreateLog(ctx, &domain.AuditLog{
			EventTime:   time.Now(),
			ActorUserID: &identity.UserID,
			RoomID:      &roomID,
			EventType:   domain.EventTypeMemberJoined,
			Payload:     map[string]interface{}{"via_invite": result.ViaInvite},
		})
	case errors.Is(err, apperrors.ErrAlreadyMember):
		// Idempotent rejoin. Two racing connections by the same identity
		// land here too: the unique constraint decides, nobody errors out.
		result.Rejoined = true
	default:
		return nil, err
	}

	return result, nil
}
