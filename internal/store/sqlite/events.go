package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gatherly/gatherly-server/internal/domain"
	"github.com/gatherly/gatherly-server/internal/store"
)

// eventColumns is the ordered list of columns selected in event queries.
// Must match the scan order in scanEvent.
const eventColumns = `id, created_at, updated_at, title, description, content, slug,
	image, image_blurhash, published, user_id, community_id`

var eventFields = map[string]column{
	domain.EventFieldTitle:       {name: "title"},
	domain.EventFieldDescription: {name: "description"},
	domain.EventFieldContent:     {name: "content"},
	domain.EventFieldSlug:        {name: "slug"},
	domain.EventFieldImage:       {name: "image", nullable: true},
	"imageBlurhash":              {name: "image_blurhash", nullable: true},
	domain.EventFieldPublished:   {name: "published"},
}

func scanEvent(row scanner) (*domain.Event, error) {
	var (
		e             domain.Event
		createdAt     string
		updatedAt     string
		image         sql.NullString
		imageBlurhash sql.NullString
		published     int
	)

	err := row.Scan(
		&e.ID,
		&createdAt,
		&updatedAt,
		&e.Title,
		&e.Description,
		&e.Content,
		&e.Slug,
		&image,
		&imageBlurhash,
		&published,
		&e.UserID,
		&e.CommunityID,
	)
	if err != nil {
		return nil, err
	}

	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	e.Image = image.String
	e.ImageBlurhash = imageBlurhash.String
	e.Published = published != 0

	return &e, nil
}

// CreateEvent inserts a new event.
// Returns *store.UniqueViolation when the slug is already used in the community.
func (s *Store) CreateEvent(ctx context.Context, e *domain.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (
			id, created_at, updated_at, title, description, content, slug,
			image, image_blurhash, published, user_id, community_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID,
		formatTime(e.CreatedAt),
		formatTime(e.UpdatedAt),
		e.Title,
		e.Description,
		e.Content,
		e.Slug,
		nullString(e.Image),
		nullString(e.ImageBlurhash),
		bindValue(e.Published, false),
		e.UserID,
		e.CommunityID,
	)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// GetEvent retrieves an event by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}

// ListEventsByCommunity returns all events of a community, newest first.
func (s *Store) ListEventsByCommunity(ctx context.Context, communityID string) ([]*domain.Event, error) {
	return s.listEvents(ctx, `community_id = ?`, communityID)
}

// ListEventsByUser returns all events owned by userID, newest first.
func (s *Store) ListEventsByUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	return s.listEvents(ctx, `user_id = ?`, userID)
}

// ListPublishedEvents returns the published events of a community, newest first.
func (s *Store) ListPublishedEvents(ctx context.Context, communityID string) ([]*domain.Event, error) {
	return s.listEvents(ctx, `community_id = ? AND published = 1`, communityID)
}

// GetPublishedEventBySlug retrieves a published event of a community by slug.
func (s *Store) GetPublishedEventBySlug(ctx context.Context, communityID, slug string) (*domain.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE community_id = ? AND slug = ? AND published = 1`,
		communityID, slug)

	e, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan event: %w", err)
	}
	return e, nil
}

func (s *Store) listEvents(ctx context.Context, where string, args ...any) ([]*domain.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE `+where+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*domain.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// UpdateEventFields writes the given fields and returns the updated event.
func (s *Store) UpdateEventFields(ctx context.Context, id string, fields store.Fields) (*domain.Event, error) {
	if err := s.updateFields(ctx, "events", eventFields, id, fields); err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, id)
}

// DeleteEvent removes an event.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
