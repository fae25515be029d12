// Package store defines the persistence contract for users, communities and events.
package store

import (
	"context"

	"github.com/gatherly/gatherly-server/internal/domain"
)

// Fields is a set of single-row column updates keyed by domain field key
// (e.g. "customDomain"). A nil value writes NULL.
type Fields map[string]any

// Store is the persistence layer used by the services.
// Implementations return ErrNotFound for missing rows and *UniqueViolation
// for unique constraint collisions.
type Store interface {
	// Users
	UpsertGitHubUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	UpdateUserFields(ctx context.Context, id string, fields Fields) (*domain.User, error)

	// Communities
	CreateCommunity(ctx context.Context, community *domain.Community) error
	GetCommunity(ctx context.Context, id string) (*domain.Community, error)
	GetCommunityBySubdomain(ctx context.Context, subdomain string) (*domain.Community, error)
	GetCommunityByCustomDomain(ctx context.Context, customDomain string) (*domain.Community, error)
	ListCommunitiesByUser(ctx context.Context, userID string) ([]*domain.Community, error)
	UpdateCommunityFields(ctx context.Context, id string, fields Fields) (*domain.Community, error)
	DeleteCommunity(ctx context.Context, id string) error

	// Events
	CreateEvent(ctx context.Context, event *domain.Event) error
	GetEvent(ctx context.Context, id string) (*domain.Event, error)
	ListEventsByCommunity(ctx context.Context, communityID string) ([]*domain.Event, error)
	ListEventsByUser(ctx context.Context, userID string) ([]*domain.Event, error)
	ListPublishedEvents(ctx context.Context, communityID string) ([]*domain.Event, error)
	GetPublishedEventBySlug(ctx context.Context, communityID, slug string) (*domain.Event, error)
	UpdateEventFields(ctx context.Context, id string, fields Fields) (*domain.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	Ping(ctx context.Context) error
	Close() error
}
