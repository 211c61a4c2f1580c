package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/excellence-college/school-portal/internal/models"
	"github.com/excellence-college/school-portal/pkg/config"
	appErrors "github.com/excellence-college/school-portal/pkg/errors"
)

type storeMock struct {
	records map[string]*Session
	putErr  error
	deleted []string
}

func newStoreMock() *storeMock {
	return &storeMock{records: map[string]*Session{}}
}

func (s *storeMock) Get(ctx context.Context, id string) (*Session, error) {
	sess, ok := s.records[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "session not found")
	}
	copied := *sess
	return &copied, nil
}

func (s *storeMock) Put(ctx context.Context, sess *Session, ttl time.Duration) error {
	if s.putErr != nil {
		return s.putErr
	}
	copied := *sess
	s.records[sess.ID] = &copied
	return nil
}

func (s *storeMock) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	delete(s.records, id)
	return nil
}

type resolverMock struct {
	user   *models.User
	err    error
	called bool
}

func (r *resolverMock) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	r.called = true
	return r.user, r.err
}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{
		CookieName:         "ec_admin_session",
		CookieSecret:       "test-secret",
		TTL:                time.Hour,
		RevalidateInterval: 5 * time.Minute,
	}
}

func testContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	require.NoError(t, err)
	c.Request = req
	return c, w
}

func TestIssueThenLoadRoundTrip(t *testing.T) {
	store := newStoreMock()
	mgr := NewManager(store, &resolverMock{}, testSessionConfig(), nil)

	c, w := testContext(t)
	issued, err := mgr.Issue(c, "backend-token", models.User{ID: "u1", Username: "admin"})
	require.NoError(t, err)
	require.NotEmpty(t, issued.ID)
	assert.Equal(t, "backend-token", issued.Token)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "ec_admin_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// Replay the cookie on a fresh request.
	c2, _ := testContext(t)
	c2.Request.AddCookie(cookies[0])
	loaded, err := mgr.Load(c2)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, loaded.ID)
	assert.Equal(t, "admin", loaded.User.Username)
}

func TestLoadWithoutCookie(t *testing.T) {
	mgr := NewManager(newStoreMock(), &resolverMock{}, testSessionConfig(), nil)

	c, _ := testContext(t)
	_, err := mgr.Load(c)
	require.Error(t, err)
	assert.True(t, appErrors.IsAuth(err))
}

func TestLoadRejectsTamperedCookie(t *testing.T) {
	store := newStoreMock()
	mgr := NewManager(store, &resolverMock{}, testSessionConfig(), nil)

	c, w := testContext(t)
	_, err := mgr.Issue(c, "tok", models.User{ID: "u1"})
	require.NoError(t, err)

	cookie := w.Result().Cookies()[0]
	cookie.Value += "tampered"

	c2, _ := testContext(t)
	c2.Request.AddCookie(cookie)
	_, err = mgr.Load(c2)
	require.Error(t, err)
	assert.True(t, appErrors.IsAuth(err))
}

func TestRevalidateSkipsWhenFresh(t *testing.T) {
	resolver := &resolverMock{}
	mgr := NewManager(newStoreMock(), resolver, testSessionConfig(), nil)

	c, _ := testContext(t)
	sess := &Session{ID: "s1", Token: "tok", ValidatedAt: time.Now().UTC()}
	out, err := mgr.Revalidate(c, sess)
	require.NoError(t, err)
	assert.False(t, resolver.called)
	assert.Equal(t, sess, out)
}

func TestRevalidateRejectedTokenDestroysSession(t *testing.T) {
	store := newStoreMock()
	resolver := &resolverMock{err: appErrors.Clone(appErrors.ErrUnauthorized, "token expired")}
	mgr := NewManager(store, resolver, testSessionConfig(), nil)

	sess := &Session{ID: "s1", Token: "tok", ValidatedAt: time.Now().UTC().Add(-time.Hour)}
	store.records["s1"] = sess

	c, _ := testContext(t)
	_, err := mgr.Revalidate(c, sess)
	require.Error(t, err)
	assert.True(t, appErrors.IsAuth(err))
	assert.True(t, resolver.called)
	assert.Contains(t, store.deleted, "s1")
}

func TestRevalidateKeepsSessionOnBackendTrouble(t *testing.T) {
	store := newStoreMock()
	resolver := &resolverMock{err: appErrors.Clone(appErrors.ErrNetwork, "backend down")}
	mgr := NewManager(store, resolver, testSessionConfig(), nil)

	sess := &Session{ID: "s1", Token: "tok", ValidatedAt: time.Now().UTC().Add(-time.Hour)}
	store.records["s1"] = sess

	c, _ := testContext(t)
	out, err := mgr.Revalidate(c, sess)
	require.NoError(t, err)
	assert.Equal(t, "s1", out.ID)
	assert.Empty(t, store.deleted)
}

func TestRevalidateRefreshesUserAndTimestamp(t *testing.T) {
	store := newStoreMock()
	resolver := &resolverMock{user: &models.User{ID: "u1", Username: "renamed"}}
	mgr := NewManager(store, resolver, testSessionConfig(), nil)

	stale := time.Now().UTC().Add(-time.Hour)
	sess := &Session{ID: "s1", Token: "tok", User: models.User{ID: "u1", Username: "old"}, ValidatedAt: stale}
	store.records["s1"] = sess

	c, _ := testContext(t)
	out, err := mgr.Revalidate(c, sess)
	require.NoError(t, err)
	assert.Equal(t, "renamed", out.User.Username)
	assert.True(t, out.ValidatedAt.After(stale))
}

func TestDestroyClearsRecordAndCookie(t *testing.T) {
	store := newStoreMock()
	mgr := NewManager(store, &resolverMock{}, testSessionConfig(), nil)
	store.records["s1"] = &Session{ID: "s1"}

	c, w := testContext(t)
	mgr.Destroy(c, "s1")

	assert.Contains(t, store.deleted, "s1")
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}
