package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gatherly/gatherly-server/internal/auth"
	"github.com/gatherly/gatherly-server/internal/domain"
	domainerrors "github.com/gatherly/gatherly-server/internal/errors"
	"github.com/gatherly/gatherly-server/internal/store/sqlite"
	"github.com/gatherly/gatherly-server/internal/validation"
)

const testRoot = "gatherly.test"

// recordingRegistrar records every registrar call.
type recordingRegistrar struct {
	mu        sync.Mutex
	added     []string
	removed   []string
	addErr    error
	removeErr error
}

func (r *recordingRegistrar) AddDomain(_ context.Context, domain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.added = append(r.added, domain)
	return r.addErr
}

func (r *recordingRegistrar) RemoveDomain(_ context.Context, domain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, domain)
	return r.removeErr
}

func (r *recordingRegistrar) calls() (added, removed []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.added...), append([]string(nil), r.removed...)
}

// recordingCache records every invalidated tag batch.
type recordingCache struct {
	mu      sync.Mutex
	batches [][]string
	err     error
}

func (c *recordingCache) InvalidateTags(_ context.Context, tags []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, append([]string(nil), tags...))
	return c.err
}

func (c *recordingCache) tags() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var all []string
	for _, b := range c.batches {
		all = append(all, b...)
	}
	return all
}

func (c *recordingCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = nil
}

// memoryBlob keeps uploads in memory.
type memoryBlob struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newMemoryBlob() *memoryBlob {
	return &memoryBlob{objects: map[string][]byte{}, types: map[string]string{}}
}

func (b *memoryBlob) Put(_ context.Context, name, contentType string, r io.Reader) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[name] = data
	b.types[name] = contentType
	return "https://blob.test/" + name, nil
}

// stubAnalyzer returns a fixed hash or error.
type stubAnalyzer struct {
	hash  string
	err   error
	calls int
}

func (a *stubAnalyzer) BlurHash(context.Context, string) (string, error) {
	a.calls++
	return a.hash, a.err
}

type harness struct {
	store       *sqlite.Store
	registrar   *recordingRegistrar
	cache       *recordingCache
	blob        *memoryBlob
	analyzer    *stubAnalyzer
	gate        *Gate
	communities *CommunityService
	events      *EventService
	users       *UserService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	h := &harness{
		store:     s,
		registrar: &recordingRegistrar{},
		cache:     &recordingCache{},
		blob:      newMemoryBlob(),
		analyzer:  &stubAnalyzer{hash: "LEHV6nWB2yk8pyo0adR*.7kCMdnj"},
	}

	v := validation.New()
	h.gate = NewGate(s)
	effects := NewSideEffects(h.registrar, h.cache, time.Second, logger)
	uploader := NewUploader(h.blob, h.analyzer, logger)

	h.communities = NewCommunityService(s, h.gate, uploader, effects, v, testRoot, logger)
	h.events = NewEventService(s, h.gate, uploader, effects, v, testRoot, logger)
	h.users = NewUserService(s, v, logger)
	return h
}

// withoutBlob rebuilds the uploaders with no blob store configured.
func (h *harness) withoutBlob() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uploader := NewUploader(nil, h.analyzer, logger)
	h.communities.uploader = uploader
	h.events.uploader = uploader
}

func (h *harness) user(t *testing.T, githubID string) *domain.User {
	t.Helper()
	ghID, err := strconv.ParseInt(githubID, 10, 64)
	require.NoError(t, err)
	u, err := h.users.SignIn(context.Background(), &auth.GitHubProfile{
		ID:    ghID,
		Login: "user" + githubID,
	})
	require.NoError(t, err)
	return u
}

// as returns a context acting as userID.
func as(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}

func (h *harness) community(t *testing.T, owner *domain.User, subdomain string) *domain.Community {
	t.Helper()
	c, err := h.communities.Create(as(owner.ID), CreateCommunityRequest{
		Name:      "Community " + subdomain,
		Subdomain: subdomain,
	})
	require.NoError(t, err)
	h.cache.reset()
	return c
}

func (h *harness) event(t *testing.T, owner *domain.User, c *domain.Community, slug string) *domain.Event {
	t.Helper()
	e, err := h.events.Create(as(owner.ID), c.ID)
	require.NoError(t, err)
	if slug != "" {
		e, err = h.events.UpdateField(as(owner.ID), e.ID, domain.EventFieldSlug, FieldInput{Value: slug})
		require.NoError(t, err)
	}
	h.cache.reset()
	return e
}

var errBoom = errors.New("boom")

// requireCode asserts err is a domain error with code.
func requireCode(t *testing.T, err error, code domainerrors.Code) *domainerrors.Error {
	t.Helper()
	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	require.Equal(t, code, de.Code, "unexpected error: %v", err)
	return de
}
