package service

import (
	"group_chat/internal/config"
	"group_chat/internal/mailer"
	"group_chat/internal/repository"
	"group_chat/pkg/logger"
)

type Services struct {
	Auth      AuthService
	Room      RoomService
	Invite    InviteService
	Admission AdmissionService
	Message   MessageService
	RateLimit RateLimitService
}

func NewServices(repos *repository.Repositories, mail mailer.Mailer, cfg *config.Config, log logger.Logger) *Services {
	return &Services{
		Auth:      NewAuthService(repos.User, cfg.JWT, log),
		Room:      NewRoomService(repos.Room, repos.Membership, repos.Audit, log),
		Invite:    NewInviteService(repos.Invite, repos.Room, repos.Membership, repos.Audit, mail, cfg.Invite, log),
		Admission: NewAdmissionService(repos.Room, repos.Membership, repos.Invite, repos.Audit, log),
		Message:   NewMessageService(repos.Message, repos.Audit, log),
		RateLimit: NewRateLimitService(repos.RateLimit, log),
	}
}
