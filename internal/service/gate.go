// Package service implements the community and event mutation pipeline:
// authorization, field updates, domain registration and cache invalidation.
package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"

	"github.com/gatherly/gatherly-server/internal/auth"
	"github.com/gatherly/gatherly-server/internal/domain"
	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/store"
)

var tracer = otel.Tracer("github.com/gatherly/gatherly-server/internal/service")

// Gate loads an entity for the acting user and rejects the request unless
// that user owns it. No persistence or external call happens before the gate
// has passed.
type Gate struct {
	store store.Store
}

// NewGate creates a new authorization gate.
func NewGate(store store.Store) *Gate {
	return &Gate{store: store}
}

// ActingUser returns the authenticated user ID from ctx.
func ActingUser(ctx context.Context) (string, error) {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok || userID == "" {
		return "", domainerrors.Unauthorized("Not authenticated")
	}
	return userID, nil
}

// Community returns the community with id if the acting user owns it.
func (g *Gate) Community(ctx context.Context, id string) (*domain.Community, error) {
	userID, err := ActingUser(ctx)
	if err != nil {
		return nil, err
	}

	c, err := g.store.GetCommunity(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Community not found")
		}
		return nil, domainerrors.Persistence(err)
	}

	if !c.OwnedBy(userID) {
		return nil, domainerrors.Forbidden("Not authorized")
	}
	return c, nil
}

// Event returns the event with id, with its parent community attached, if
// the acting user owns it.
func (g *Gate) Event(ctx context.Context, id string) (*domain.Event, error) {
	userID, err := ActingUser(ctx)
	if err != nil {
		return nil, err
	}

	e, err := g.store.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Event not found")
		}
		return nil, domainerrors.Persistence(err)
	}

	if !e.OwnedBy(userID) {
		return nil, domainerrors.Forbidden("Not authorized")
	}

	c, err := g.store.GetCommunity(ctx, e.CommunityID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("Community not found")
		}
		return nil, domainerrors.Persistence(err)
	}
	e.Community = c
	return e, nil
}
