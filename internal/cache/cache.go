// Package cache holds the tag-addressed response cache for community sites
// and the invalidation fan-out triggered after every mutation.
package cache

import (
	"context"
	"errors"
)

// Invalidator clears every cached response associated with the given tags.
type Invalidator interface {
	InvalidateTags(ctx context.Context, tags []string) error
}

// Noop discards invalidations.
type Noop struct{}

// InvalidateTags implements Invalidator.
func (Noop) InvalidateTags(context.Context, []string) error { return nil }

// Multi fans an invalidation out to several backends. Every backend is
// tried; failures are joined.
type Multi []Invalidator

// InvalidateTags implements Invalidator.
func (m Multi) InvalidateTags(ctx context.Context, tags []string) error {
	var errs []error
	for _, inv := range m {
		if err := inv.InvalidateTags(ctx, tags); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
