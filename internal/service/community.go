package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gatherly/gatherly-server/internal/cache"
	"github.com/gatherly/gatherly-server/internal/domain"
	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/id"
	"github.com/gatherly/gatherly-server/internal/registrar"
	"github.com/gatherly/gatherly-server/internal/store"
	"github.com/gatherly/gatherly-server/internal/util"
	"github.com/gatherly/gatherly-server/internal/validation"
)

// CommunityService manages communities owned by the acting user.
type CommunityService struct {
	store      store.Store
	gate       *Gate
	uploader   *Uploader
	effects    *SideEffects
	validator  *validation.Validator
	rootDomain string
	logger     *slog.Logger
}

// NewCommunityService creates a new community service.
func NewCommunityService(
	store store.Store,
	gate *Gate,
	uploader *Uploader,
	effects *SideEffects,
	validator *validation.Validator,
	rootDomain string,
	logger *slog.Logger,
) *CommunityService {
	return &CommunityService{
		store:      store,
		gate:       gate,
		uploader:   uploader,
		effects:    effects,
		validator:  validator,
		rootDomain: rootDomain,
		logger:     logger,
	}
}

// CreateCommunityRequest is the input for creating a community.
type CreateCommunityRequest struct {
	Name        string `json:"name" validate:"max=32"`
	Description string `json:"description" validate:"max=140"`
	Subdomain   string `json:"subdomain" validate:"required,max=32"`
}

// Create creates a community owned by the acting user.
func (s *CommunityService) Create(ctx context.Context, req CreateCommunityRequest) (*domain.Community, error) {
	ctx, span := tracer.Start(ctx, "service.Community.Create")
	defer span.End()

	userID, err := ActingUser(ctx)
	if err != nil {
		return nil, err
	}

	req.Subdomain = util.NormalizeSubdomain(req.Subdomain)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now()
	c := &domain.Community{
		Entity: domain.Entity{
			ID:        id.MustGenerate("community"),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        req.Name,
		Description: req.Description,
		Subdomain:   req.Subdomain,
		Font:        domain.DefaultFont,
		UserID:      userID,
	}

	if err := s.store.CreateCommunity(ctx, c); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, persistError(err, domainerrors.FieldTaken)
	}
	span.SetAttributes(attribute.String("community_id", c.ID))

	s.effects.Invalidate(ctx, cache.CommunityTags(c, s.rootDomain))

	s.logger.Info("community created", "community_id", c.ID, "subdomain", c.Subdomain, "user_id", userID)
	return c, nil
}

// Get returns a community owned by the acting user.
func (s *CommunityService) Get(ctx context.Context, id string) (*domain.Community, error) {
	return s.gate.Community(ctx, id)
}

// List returns the acting user's communities.
func (s *CommunityService) List(ctx context.Context) ([]*domain.Community, error) {
	userID, err := ActingUser(ctx)
	if err != nil {
		return nil, err
	}
	communities, err := s.store.ListCommunitiesByUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.Persistence(err)
	}
	return communities, nil
}

// UpdateField applies one form field to the community. Custom domains are
// registered and deregistered with the registrar, files are uploaded, and
// everything else is validated and written as-is. The community's cached
// metadata is invalidated under its identity from before the update.
func (s *CommunityService) UpdateField(ctx context.Context, id, key string, in FieldInput) (*domain.Community, error) {
	ctx, span := tracer.Start(ctx, "service.Community.UpdateField", trace.WithAttributes(
		attribute.String("community_id", id),
		attribute.String("field", key),
	))
	defer span.End()

	c, err := s.gate.Community(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated *domain.Community
	switch key {
	case domain.CommunityFieldCustomDomain:
		updated, err = s.updateCustomDomain(ctx, c, in.Value)
	case domain.CommunityFieldImage, domain.CommunityFieldLogo:
		updated, err = s.updateFile(ctx, c, key, in)
	default:
		updated, err = s.updatePlain(ctx, c, key, in.Value)
	}
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	s.effects.Invalidate(ctx, cache.CommunityTags(c, s.rootDomain))
	return updated, nil
}

// updateCustomDomain persists a new custom domain and syncs the registrar.
// The previous domain is deregistered whenever it differs from the new
// value, even if the write failed.
func (s *CommunityService) updateCustomDomain(ctx context.Context, c *domain.Community, value string) (*domain.Community, error) {
	value = strings.ToLower(strings.TrimSpace(value))

	if registrar.IsReserved(value, s.rootDomain) {
		return nil, domainerrors.ReservedDomain(s.rootDomain)
	}

	var (
		updated *domain.Community
		err     error
	)
	switch {
	case value == "":
		updated, err = s.store.UpdateCommunityFields(ctx, c.ID, store.Fields{domain.CommunityFieldCustomDomain: nil})
	case registrar.IsValidDomain(value):
		if err := s.validator.Field(domain.CommunityFieldCustomDomain, value, customDomainRule); err != nil {
			return nil, err
		}
		updated, err = s.store.UpdateCommunityFields(ctx, c.ID, store.Fields{domain.CommunityFieldCustomDomain: value})
		if err == nil {
			s.effects.AddDomain(ctx, value)
		}
	default:
		return nil, domainerrors.InvalidDomain(value)
	}

	if c.CustomDomain != "" && c.CustomDomain != value {
		s.effects.RemoveDomain(ctx, c.CustomDomain)
	}

	if err != nil {
		return nil, persistError(err, domainerrors.FieldTaken)
	}
	return updated, nil
}

func (s *CommunityService) updateFile(ctx context.Context, c *domain.Community, key string, in FieldInput) (*domain.Community, error) {
	fields, err := s.uploader.Fields(ctx, key, in)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateCommunityFields(ctx, c.ID, fields)
	if err != nil {
		return nil, persistError(err, domainerrors.FieldTaken)
	}
	return updated, nil
}

func (s *CommunityService) updatePlain(ctx context.Context, c *domain.Community, key, value string) (*domain.Community, error) {
	fields, err := plainField(s.validator, communityFieldRules, key, value)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateCommunityFields(ctx, c.ID, fields)
	if err != nil {
		return nil, persistError(err, domainerrors.FieldTaken)
	}
	return updated, nil
}

// Delete removes the community and its events, detaches its custom domain
// and clears its cached metadata.
func (s *CommunityService) Delete(ctx context.Context, id string) (*domain.Community, error) {
	ctx, span := tracer.Start(ctx, "service.Community.Delete", trace.WithAttributes(
		attribute.String("community_id", id),
	))
	defer span.End()

	c, err := s.gate.Community(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteCommunity(ctx, c.ID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, persistError(err, domainerrors.FieldTaken)
	}

	if c.HasCustomDomain() {
		s.effects.RemoveDomain(ctx, c.CustomDomain)
	}
	s.effects.Invalidate(ctx, cache.CommunityTags(c, s.rootDomain))

	s.logger.Info("community deleted", "community_id", c.ID, "subdomain", c.Subdomain)
	return c, nil
}
