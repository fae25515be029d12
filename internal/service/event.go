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
	"github.com/gatherly/gatherly-server/internal/store"
	"github.com/gatherly/gatherly-server/internal/validation"
)

// defaultSlugLength is the length of the generated slug of a new event.
const defaultSlugLength = 10

// EventService manages events under communities owned by the acting user.
type EventService struct {
	store      store.Store
	gate       *Gate
	uploader   *Uploader
	effects    *SideEffects
	validator  *validation.Validator
	rootDomain string
	logger     *slog.Logger
}

// NewEventService creates a new event service.
func NewEventService(
	store store.Store,
	gate *Gate,
	uploader *Uploader,
	effects *SideEffects,
	validator *validation.Validator,
	rootDomain string,
	logger *slog.Logger,
) *EventService {
	return &EventService{
		store:      store,
		gate:       gate,
		uploader:   uploader,
		effects:    effects,
		validator:  validator,
		rootDomain: rootDomain,
		logger:     logger,
	}
}

// UpdateEventRequest replaces an event's text content.
type UpdateEventRequest struct {
	Title       string `json:"title" validate:"max=256"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

// Create creates an empty, unpublished event under the community.
func (s *EventService) Create(ctx context.Context, communityID string) (*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "service.Event.Create", trace.WithAttributes(
		attribute.String("community_id", communityID),
	))
	defer span.End()

	c, err := s.gate.Community(ctx, communityID)
	if err != nil {
		return nil, err
	}

	slug, err := id.Short(defaultSlugLength)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate slug")
	}

	now := time.Now()
	e := &domain.Event{
		Entity: domain.Entity{
			ID:        id.MustGenerate("event"),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Slug:        strings.ToLower(slug),
		UserID:      c.UserID,
		CommunityID: c.ID,
	}

	if err := s.store.CreateEvent(ctx, e); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, persistError(err, domainerrors.FieldInUse)
	}
	span.SetAttributes(attribute.String("event_id", e.ID))

	s.effects.Invalidate(ctx, cache.EventTags(c, e.Slug, s.rootDomain))

	s.logger.Info("event created", "event_id", e.ID, "community_id", c.ID)
	return e, nil
}

// Get returns an event owned by the acting user, with its community attached.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	return s.gate.Event(ctx, id)
}

// List returns the acting user's events, or only those of communityID
// when it is set.
func (s *EventService) List(ctx context.Context, communityID string) ([]*domain.Event, error) {
	if communityID != "" {
		if _, err := s.gate.Community(ctx, communityID); err != nil {
			return nil, err
		}
		events, err := s.store.ListEventsByCommunity(ctx, communityID)
		if err != nil {
			return nil, domainerrors.Persistence(err)
		}
		return events, nil
	}

	userID, err := ActingUser(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.store.ListEventsByUser(ctx, userID)
	if err != nil {
		return nil, domainerrors.Persistence(err)
	}
	return events, nil
}

// CommunityIDForEvent returns the community an event belongs to, or "" if
// the event does not exist. It performs no authorization.
func (s *EventService) CommunityIDForEvent(ctx context.Context, eventID string) (string, error) {
	e, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if domainerrors.Is(err, store.ErrNotFound) {
			return "", nil
		}
		return "", domainerrors.Persistence(err)
	}
	return e.CommunityID, nil
}

// UpdateContent replaces the title, description and content of an event.
func (s *EventService) UpdateContent(ctx context.Context, id string, req UpdateEventRequest) (*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "service.Event.UpdateContent", trace.WithAttributes(
		attribute.String("event_id", id),
	))
	defer span.End()

	e, err := s.gate.Event(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateEventFields(ctx, e.ID, store.Fields{
		domain.EventFieldTitle:       req.Title,
		domain.EventFieldDescription: req.Description,
		domain.EventFieldContent:     req.Content,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, persistError(err, domainerrors.FieldInUse)
	}
	updated.Community = e.Community

	s.effects.Invalidate(ctx, cache.EventTags(e.Community, e.Slug, s.rootDomain))
	return updated, nil
}

// UpdateField applies one form field to the event. The event's cached pages
// are invalidated under the slug it had before the update.
func (s *EventService) UpdateField(ctx context.Context, id, key string, in FieldInput) (*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "service.Event.UpdateField", trace.WithAttributes(
		attribute.String("event_id", id),
		attribute.String("field", key),
	))
	defer span.End()

	e, err := s.gate.Event(ctx, id)
	if err != nil {
		return nil, err
	}

	var fields store.Fields
	switch key {
	case domain.EventFieldImage:
		fields, err = s.uploader.Fields(ctx, key, in)
	case domain.EventFieldPublished:
		fields = store.Fields{key: domain.ParsePublished(in.Value)}
	default:
		fields, err = plainField(s.validator, eventFieldRules, key, in.Value)
	}
	if err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateEventFields(ctx, e.ID, fields)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, persistError(err, domainerrors.FieldInUse)
	}
	updated.Community = e.Community

	s.effects.Invalidate(ctx, cache.EventTags(e.Community, e.Slug, s.rootDomain))
	return updated, nil
}

// Delete removes the event and clears its cached pages.
func (s *EventService) Delete(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := tracer.Start(ctx, "service.Event.Delete", trace.WithAttributes(
		attribute.String("event_id", id),
	))
	defer span.End()

	e, err := s.gate.Event(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.store.DeleteEvent(ctx, e.ID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, persistError(err, domainerrors.FieldInUse)
	}

	s.effects.Invalidate(ctx, cache.EventTags(e.Community, e.Slug, s.rootDomain))

	s.logger.Info("event deleted", "event_id", e.ID, "community_id", e.CommunityID)
	return e, nil
}
