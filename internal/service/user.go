package service

import (
	"context"
	"log/slog"

	"github.com/gatherly/gatherly-server/internal/auth"
	"github.com/gatherly/gatherly-server/internal/domain"
	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/id"
	"github.com/gatherly/gatherly-server/internal/store"
	"github.com/gatherly/gatherly-server/internal/validation"
)

// UserService manages the acting user's profile and sign-in.
type UserService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, validator *validation.Validator, logger *slog.Logger) *UserService {
	return &UserService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// Me returns the acting user.
func (s *UserService) Me(ctx context.Context) (*domain.User, error) {
	userID, err := ActingUser(ctx)
	if err != nil {
		return nil, err
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("Not authenticated")
		}
		return nil, domainerrors.Persistence(err)
	}
	return u, nil
}

// Edit sets one profile field of the acting user.
func (s *UserService) Edit(ctx context.Context, key, value string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "service.User.Edit")
	defer span.End()

	userID, err := ActingUser(ctx)
	if err != nil {
		return nil, err
	}

	fields, err := plainField(s.validator, userFieldRules, key, value)
	if err != nil {
		return nil, err
	}

	u, err := s.store.UpdateUserFields(ctx, userID, fields)
	if err != nil {
		return nil, persistError(err, domainerrors.FieldInUse)
	}
	return u, nil
}

// SignIn creates or refreshes the user for a GitHub profile.
func (s *UserService) SignIn(ctx context.Context, profile *auth.GitHubProfile) (*domain.User, error) {
	u, err := s.store.UpsertGitHubUser(ctx, profile.User(id.MustGenerate("user")))
	if err != nil {
		return nil, persistError(err, domainerrors.FieldInUse)
	}
	s.logger.Info("user signed in", "user_id", u.ID, "github_id", u.GitHubID)
	return u, nil
}
