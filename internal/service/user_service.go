package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/BigPoppaG/CourseMe/internal/model"
	"github.com/BigPoppaG/CourseMe/internal/repository"
)

// UserService handles user accounts.
type UserService struct {
	userRepo *repository.UserRepository
	log      zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo *repository.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		log:      log.With().Str("component", "user_service").Logger(),
	}
}

// Create registers a new user. The caller supplies an already-hashed
// password. Duplicate emails surface as repository.ErrDuplicateEmail.
func (s *UserService) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.TimeRegistered = now
	user.LastSeen = now
	return s.userRepo.Create(ctx, user)
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int) (*model.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.userRepo.GetByEmail(ctx, email)
}

// TouchLastSeen records user activity. Failures are logged, not surfaced.
func (s *UserService) TouchLastSeen(ctx context.Context, id int) {
	if err := s.userRepo.TouchLastSeen(ctx, id, time.Now().UTC()); err != nil {
		s.log.Debug().Err(err).Int("user_id", id).Msg("last_seen update failed")
	}
}
