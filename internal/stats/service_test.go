package stats

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excellence-college/school-portal/internal/cache"
	"github.com/excellence-college/school-portal/internal/models"
	appErrors "github.com/excellence-college/school-portal/pkg/errors"
)

type statsClientMock struct {
	public      *models.PublicStats
	admin       *models.Stats
	err         error
	publicCalls int
	adminCalls  int
}

func (m *statsClientMock) PublicStats(ctx context.Context) (*models.PublicStats, error) {
	m.publicCalls++
	return m.public, m.err
}

func (m *statsClientMock) AdminStats(ctx context.Context, token string) (*models.Stats, error) {
	m.adminCalls++
	return m.admin, m.err
}

// cacheRepoMock is an in-memory stand-in for the redis repository.
type cacheRepoMock struct {
	entries map[string][]byte
	deleted []string
}

func newCacheRepoMock() *cacheRepoMock {
	return &cacheRepoMock{entries: map[string][]byte{}}
}

func (r *cacheRepoMock) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := r.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (r *cacheRepoMock) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	r.entries[key] = raw
	return nil
}

func (r *cacheRepoMock) DeleteByPattern(ctx context.Context, pattern string) error {
	r.deleted = append(r.deleted, pattern)
	r.entries = map[string][]byte{}
	return nil
}

func newTestService(client *statsClientMock, repo *cacheRepoMock) *Service {
	cacheSvc := cache.NewService(repo, nil, time.Minute, nil, true)
	return NewService(client, cacheSvc, Config{PublicTTL: time.Minute, AdminTTL: time.Minute}, nil)
}

func TestPublicCachesAfterFirstFetch(t *testing.T) {
	client := &statsClientMock{public: &models.PublicStats{TotalInquiries: 120, ResolvedInquiries: 90, Satisfaction: 95}}
	svc := newTestService(client, newCacheRepoMock())

	first, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, first.TotalInquiries)

	second, err := svc.Public(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, second.TotalInquiries)
	assert.Equal(t, 1, client.publicCalls)
}

func TestAdminCachesAfterFirstFetch(t *testing.T) {
	client := &statsClientMock{admin: &models.Stats{Overview: models.StatsOverview{Total: 42}}}
	svc := newTestService(client, newCacheRepoMock())

	_, err := svc.Admin(context.Background(), "tok")
	require.NoError(t, err)
	out, err := svc.Admin(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 42, out.Overview.Total)
	assert.Equal(t, 1, client.adminCalls)
}

func TestBackendErrorPropagatesOnMiss(t *testing.T) {
	client := &statsClientMock{err: errors.New("backend down")}
	svc := newTestService(client, newCacheRepoMock())

	_, err := svc.Public(context.Background())
	require.Error(t, err)
}

func TestInvalidateForcesRefetch(t *testing.T) {
	client := &statsClientMock{admin: &models.Stats{Overview: models.StatsOverview{Total: 1}}}
	repo := newCacheRepoMock()
	svc := newTestService(client, repo)

	_, err := svc.Admin(context.Background(), "tok")
	require.NoError(t, err)

	svc.Invalidate(context.Background())
	assert.Contains(t, repo.deleted, "stats:*")

	client.admin = &models.Stats{Overview: models.StatsOverview{Total: 2}}
	out, err := svc.Admin(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Overview.Total)
	assert.Equal(t, 2, client.adminCalls)
}

func TestNilCacheAlwaysFetches(t *testing.T) {
	client := &statsClientMock{public: &models.PublicStats{TotalInquiries: 7}}
	svc := NewService(client, nil, Config{}, nil)

	_, err := svc.Public(context.Background())
	require.NoError(t, err)
	_, err = svc.Public(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, client.publicCalls)
}
