package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gatherly/gatherly-server/internal/domain"
	"github.com/gatherly/gatherly-server/internal/store"
)

// communityColumns is the ordered list of columns selected in community queries.
// Must match the scan order in scanCommunity.
const communityColumns = `id, created_at, updated_at, name, description, subdomain, custom_domain,
	image, image_blurhash, logo, font, message_404, user_id`

// communityFields maps updatable field keys to columns.
var communityFields = map[string]column{
	domain.CommunityFieldName:         {name: "name"},
	domain.CommunityFieldDescription:  {name: "description"},
	domain.CommunityFieldSubdomain:    {name: "subdomain"},
	domain.CommunityFieldCustomDomain: {name: "custom_domain", nullable: true},
	domain.CommunityFieldImage:        {name: "image", nullable: true},
	"imageBlurhash":                   {name: "image_blurhash", nullable: true},
	domain.CommunityFieldLogo:         {name: "logo", nullable: true},
	domain.CommunityFieldFont:         {name: "font"},
	domain.CommunityFieldMessage404:   {name: "message_404", nullable: true},
}

func scanCommunity(row scanner) (*domain.Community, error) {
	var (
		c             domain.Community
		createdAt     string
		updatedAt     string
		customDomain  sql.NullString
		image         sql.NullString
		imageBlurhash sql.NullString
		logo          sql.NullString
		font          string
		message404    sql.NullString
	)

	err := row.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.Name,
		&c.Description,
		&c.Subdomain,
		&customDomain,
		&image,
		&imageBlurhash,
		&logo,
		&font,
		&message404,
		&c.UserID,
	)
	if err != nil {
		return nil, err
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	c.CustomDomain = customDomain.String
	c.Image = image.String
	c.ImageBlurhash = imageBlurhash.String
	c.Logo = logo.String
	c.Font = domain.Font(font)
	c.Message404 = message404.String

	return &c, nil
}

// CreateCommunity inserts a new community.
// Returns *store.UniqueViolation when the subdomain or custom domain is taken.
func (s *Store) CreateCommunity(ctx context.Context, c *domain.Community) error {
	if c.Font == "" {
		c.Font = domain.DefaultFont
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO communities (
			id, created_at, updated_at, name, description, subdomain, custom_domain,
			image, image_blurhash, logo, font, message_404, user_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
		c.Name,
		c.Description,
		c.Subdomain,
		nullString(c.CustomDomain),
		nullString(c.Image),
		nullString(c.ImageBlurhash),
		nullString(c.Logo),
		string(c.Font),
		nullString(c.Message404),
		c.UserID,
	)
	if err != nil {
		return translateError(err)
	}
	return nil
}

// GetCommunity retrieves a community by ID.
// Returns store.ErrNotFound if it does not exist.
func (s *Store) GetCommunity(ctx context.Context, id string) (*domain.Community, error) {
	return s.getCommunityWhere(ctx, "id = ?", id)
}

// GetCommunityBySubdomain retrieves a community by its platform subdomain.
func (s *Store) GetCommunityBySubdomain(ctx context.Context, subdomain string) (*domain.Community, error) {
	return s.getCommunityWhere(ctx, "subdomain = ?", subdomain)
}

// GetCommunityByCustomDomain retrieves a community by its custom domain.
func (s *Store) GetCommunityByCustomDomain(ctx context.Context, customDomain string) (*domain.Community, error) {
	if customDomain == "" {
		return nil, store.ErrNotFound
	}
	return s.getCommunityWhere(ctx, "custom_domain = ?", customDomain)
}

func (s *Store) getCommunityWhere(ctx context.Context, where string, arg any) (*domain.Community, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+communityColumns+` FROM communities WHERE `+where, arg)

	c, err := scanCommunity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan community: %w", err)
	}
	return c, nil
}

// ListCommunitiesByUser returns the communities owned by userID, newest first.
func (s *Store) ListCommunitiesByUser(ctx context.Context, userID string) ([]*domain.Community, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+communityColumns+` FROM communities WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	communities := []*domain.Community{}
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan community: %w", err)
		}
		communities = append(communities, c)
	}
	return communities, rows.Err()
}

// UpdateCommunityFields writes the given fields and returns the updated community.
func (s *Store) UpdateCommunityFields(ctx context.Context, id string, fields store.Fields) (*domain.Community, error) {
	if err := s.updateFields(ctx, "communities", communityFields, id, fields); err != nil {
		return nil, err
	}
	return s.GetCommunity(ctx, id)
}

// DeleteCommunity removes a community. Its events are removed by cascade.
func (s *Store) DeleteCommunity(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM communities WHERE id = ?`, id)
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
