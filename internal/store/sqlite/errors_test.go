package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly-server/internal/domain"
	"github.com/gatherly/gatherly-server/internal/store"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, nil), mock
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name  string
		msg   string
		field string
	}{
		{"subdomain", "constraint failed: UNIQUE constraint failed: communities.subdomain (2067)", "subdomain"},
		{"custom domain", "constraint failed: UNIQUE constraint failed: communities.custom_domain (2067)", "customDomain"},
		{"composite slug", "constraint failed: UNIQUE constraint failed: events.community_id, events.slug (2067)", "slug"},
		{"email", "UNIQUE constraint failed: users.email", "email"},
		{"unmapped column", "UNIQUE constraint failed: widgets.serial", "serial"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := translateError(errors.New(tt.msg))

			uv, ok := store.AsUniqueViolation(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, uv.Field)
		})
	}

	plain := errors.New("database is locked")
	assert.Same(t, plain, translateError(plain))
	assert.NoError(t, translateError(nil))
}

func TestUpdateCommunityFields_MapsDriverUniqueError(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE communities SET custom_domain = \\?, updated_at = \\? WHERE id = \\?").
		WithArgs("example.com", sqlmock.AnyArg(), "community-1").
		WillReturnError(errors.New("constraint failed: UNIQUE constraint failed: communities.custom_domain (2067)"))

	_, err := s.UpdateCommunityFields(context.Background(), "community-1", store.Fields{
		domain.CommunityFieldCustomDomain: "example.com",
	})

	uv, ok := store.AsUniqueViolation(err)
	require.True(t, ok, "expected unique violation, got %v", err)
	assert.Equal(t, "customDomain", uv.Field)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEventFields_NoRowsIsNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE events SET published = \\?, updated_at = \\? WHERE id = \\?").
		WithArgs(1, sqlmock.AnyArg(), "event-missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.UpdateEventFields(context.Background(), "event-missing", store.Fields{
		domain.EventFieldPublished: true,
	})

	assert.ErrorIs(t, err, store.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFields_PassesThroughOtherErrors(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE users SET").
		WillReturnError(errors.New("disk I/O error"))

	_, err := s.UpdateUserFields(context.Background(), "user-1", store.Fields{domain.UserFieldName: "Ada"})

	require.Error(t, err)
	_, isUnique := store.AsUniqueViolation(err)
	assert.False(t, isUnique)
	assert.Contains(t, err.Error(), "disk I/O error")
}
