package service

import (
	"context"
	"sync"

	"github.com/hwangseoul-netizen/tention-mini/internal/dto"
)

// ProfileService keeps the viewer profiles shown on the "My" screen
type ProfileService interface {
	// Get returns actor's profile, empty when never saved
	Get(ctx context.Context, actor string) dto.Profile
	// Update replaces actor's profile
	Update(ctx context.Context, actor string, req *dto.UpdateProfileRequest) dto.Profile
}

type profileService struct {
	mu       sync.RWMutex
	profiles map[string]dto.Profile
}

// NewProfileService creates an in-memory ProfileService
func NewProfileService() ProfileService {
	return &profileService{profiles: make(map[string]dto.Profile)}
}

func (s *profileService) Get(ctx context.Context, actor string) dto.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.profiles[actor]; ok {
		return p
	}
	return dto.Profile{Actor: actor}
}

func (s *profileService) Update(ctx context.Context, actor string, req *dto.UpdateProfileRequest) dto.Profile {
	req.Normalize()
	p := dto.Profile{
		Actor:  actor,
		Name:   req.Name,
		Bio:    req.Bio,
		Avatar: req.Avatar,
	}

	s.mu.Lock()
	s.profiles[actor] = p
	s.mu.Unlock()

	return p
}
