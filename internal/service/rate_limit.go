package service

import (
	"context"

	"group_chat/internal/domain"
	"group_chat/internal/repository"
	"group_chat/pkg/logger"
)

type RateLimitService interface {
	Allow(ctx context.Context, clientIP string) (*domain.RateLimitDecision, error)
}

type rateLimitService struct {
	rateLimitRepo repository.RateLimitRepository
	log           logger.Logger
}

func NewRateLimitService(rateLimitRepo repository.RateLimitRepository, log logger.Logger) RateLimitService {
	return &rateLimitService{
		rateLimitRepo: rateLimitRepo,
		log:           log,
	}
}

func (s *rateLimitService) Allow(ctx context.Context, clientIP string) (*domain.RateLimitDecision, error) {
	return s.rateLimitRepo.Allow(ctx, clientIP)
}
