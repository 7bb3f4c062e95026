package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"group_chat/internal/config"
	"group_chat/internal/domain"
	"group_chat/internal/mailer"
	"group_chat/internal/repository"
	apperrors "group_chat/pkg/errors"
	"group_chat/pkg/logger"
)

type InviteService interface {
	// Issue creates invites for the recipients that do not already hold a
	// live one, then triggers email delivery in the background. It
	// returns the addresses actually issued.
	Issue(ctx context.Context, roomID, requesterID uuid.UUID, recipients []string) ([]string, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type inviteService struct {
	inviteRepo     repository.InviteRepository
	roomRepo       repository.RoomRepository
	membershipRepo repository.MembershipRepository
	auditRepo      repository.AuditRepository
	mail           mailer.Mailer
	cfg            config.InviteConfig
	log            logger.Logger
}

func NewInviteService(
	inviteRepo repository.InviteRepository,
	roomRepo repository.RoomRepository,
	membershipRepo repository.MembershipRepository,
	auditRepo repository.AuditRepository,
	mail mailer.Mailer,
	cfg config.InviteConfig,
	log logger.Logger,
) InviteService {
	return &inviteService{
		inviteRepo:     inviteRepo,
		roomRepo:       roomRepo,
		membershipRepo: membershipRepo,
		auditRepo:      auditRepo,
		mail:           mail,
		cfg:            cfg,
		log:            log,
	}
}

func (s *inviteService) Issue(ctx context.Context, roomID, requesterID uuid.UUID, recipients []string) ([]string, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if !room.IsPrivate() {
		return nil, apperrors.ErrInviteNotApplicable
	}

	if err := s.requireAdmin(ctx, room, requesterID); err != nil {
		return nil, err
	}

	var issued []string
	for _, recipient := range dedupe(recipients) {
		live, err := s.inviteRepo.HasLive(ctx, roomID, recipient)
		if err != nil {
			return nil, err
		}
		if live {
			// A pending invite is never reissued.
			continue
		}

		invite := &domain.Invite{
			ID:        uuid.New(),
			RoomID:    roomID,
			Email:     recipient,
			ExpiresAt: time.Now().Add(s.cfg.TTL),
		}
		err = s.inviteRepo.Create(ctx, invite)
		switch {
		case err == nil:
			issued = append(issued, recipient)
		case errors.Is(err, apperrors.ErrInviteExists):
			// A concurrent Issue won the insert; same outcome as the
			// HasLive skip above.
		default:
			return nil, err
		}
	}

	if len(issued) > 0 {
		s.auditRepo.CreateLog(ctx, &domain.AuditLog{
			EventTime:   time.Now(),
			ActorUserID: &requesterID,
			RoomID:      &roomID,
			EventType:   domain.EventTypeInvitesIssued,
			Payload:     map[string]interface{}{"count": len(issued)},
		})

		// Delivery is out-of-band; a failed send never unwinds the
		// invite records.
		sendTo := issued
		go func() {
			if err := s.mail.SendInvites(room, sendTo); err != nil {
				s.log.Warn("Invite email delivery failed", "error", err, "room_id", room.ID)
			}
		}()
	}

	return issued, nil
}

func (s *inviteService) SweepExpired(ctx context.Context) (int64, error) {
	return s.inviteRepo.SweepExpired(ctx)
}

func (s *inviteService) requireAdmin(ctx context.Context, room *domain.Room, userID uuid.UUID) error {
	if room.CreatorID == userID {
		return nil
	}
	membership, err := s.membershipRepo.Get(ctx, room.ID, userID)
	if err != nil {
		return apperrors.ErrForbidden
	}
	if !membership.IsAdmin {
		return apperrors.ErrForbidden
	}
	return nil
}

func dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	var out []string
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email == "" {
			continue
		}
		if _, ok := seen[email]; ok {
			continue
		}
		seen[email] = struct{}{}
		out = append(out, email)
	}
	return out
}
