package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/postpilot/postpilot/internal/config"
	"github.com/postpilot/postpilot/internal/credential"
	"github.com/postpilot/postpilot/internal/database"
	"github.com/postpilot/postpilot/internal/generator"
	"github.com/postpilot/postpilot/internal/history"
	"github.com/postpilot/postpilot/internal/linkedin"
	"github.com/postpilot/postpilot/internal/notify"
	"github.com/postpilot/postpilot/internal/pipeline"
	"github.com/postpilot/postpilot/internal/scheduler"
)

type fakeGenerator struct {
	post *generator.Post
	err  error
}

func (f *fakeGenerator) Generate(ctx context.Context) (*generator.Post, error) {
	if f.err != nil {
		return nil, f.err
	}
	p := *f.post
	return &p, nil
}

type fakePublisher struct {
	postID      string
	publishErr  error
	exchangeErr error
}

func (f *fakePublisher) AuthURL() string {
	return "https://www.linkedin.com/oauth/v2/authorization?client_id=test"
}

func (f *fakePublisher) ExchangeCode(ctx context.Context, code string) (*linkedin.ExchangeResult, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return &linkedin.ExchangeResult{AccessToken: "tok", AccountID: "acct-1"}, nil
}

func (f *fakePublisher) SetCredential(token, accountID string) {}

func (f *fakePublisher) Publish(ctx context.Context, content string) (string, error) {
	if f.publishErr != nil {
		return "", f.publishErr
	}
	return f.postID, nil
}

type fixture struct {
	h     *Handlers
	creds *credential.Store
	hist  *history.Store
	gen   *fakeGenerator
	pub   *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := &config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	gen := &fakeGenerator{post: &generator.Post{Content: "Generated post content here", WordCount: 4}}
	pub := &fakePublisher{postID: "urn:li:share:42"}
	creds := credential.NewStore(db)
	hist := history.NewStore(db)

	svc := pipeline.NewService(gen, pub, creds, hist, notify.Nop{})
	sched := scheduler.New(&config.ScheduleConfig{Time: "09:00", Timezone: "UTC"}, svc)
	t.Cleanup(sched.Stop)

	return &fixture{
		h:     New(db, svc, sched),
		creds: creds,
		hist:  hist,
		gen:   gen,
		pub:   pub,
	}
}

func (f *fixture) authorize(t *testing.T) {
	t.Helper()
	err := f.creds.Save(context.Background(), &credential.Credential{
		AccessToken: "tok",
		AccountID:   "acct-1",
		ObtainedAt:  time.Now(),
	})
	require.NoError(t, err)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, "healthy", body["status"])

	components := body["components"].(map[string]any)
	require.Contains(t, components, "database")
	require.Contains(t, components, "scheduler")
}

func TestAuthURL(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.h.AuthURL(rec, httptest.NewRequest(http.MethodGet, "/api/auth/linkedin/url", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Contains(t, body["auth_url"], "linkedin.com/oauth")
}

func TestAuthCallback(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.h.AuthCallback(rec, httptest.NewRequest(http.MethodGet, "/api/auth/linkedin/callback?code=abc", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "Authentication Successful")

	// The credential is now stored.
	cred, err := f.creds.Load(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cred)
	require.Equal(t, "acct-1", cred.AccountID)
}

func TestAuthCallback_MissingCode(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.h.AuthCallback(rec, httptest.NewRequest(http.MethodGet, "/api/auth/linkedin/callback", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "Authorization code not received")
}

func TestAuthCallback_ProviderError(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/auth/linkedin/callback?error=user_cancelled_login&error_description=User+denied", nil)
	f.h.AuthCallback(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "User denied")

	cred, err := f.creds.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, cred)
}

func TestAuthCallback_ExchangeFailure(t *testing.T) {
	f := newFixture(t)
	f.pub.exchangeErr = errors.New("token exchange failed")

	rec := httptest.NewRecorder()
	f.h.AuthCallback(rec, httptest.NewRequest(http.MethodGet, "/api/auth/linkedin/callback?code=abc", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "Authentication Failed")
}

func TestAuthStatus(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.h.AuthStatus(rec, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["authenticated"])
	require.NotContains(t, body, "account_id")

	f.authorize(t)

	rec = httptest.NewRecorder()
	f.h.AuthStatus(rec, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))

	body = decodeBody(t, rec)
	require.Equal(t, true, body["authenticated"])
	require.Equal(t, "acct-1", body["account_id"])
}

func TestGenerate(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.h.Generate(rec, httptest.NewRequest(http.MethodPost, "/api/generate", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Generated post content here", body["content"])
	require.EqualValues(t, 4, body["word_count"])
}

func TestGenerate_Failure(t *testing.T) {
	f := newFixture(t)
	f.gen.err = errors.New("model unavailable")

	rec := httptest.NewRecorder()
	f.h.Generate(rec, httptest.NewRequest(http.MethodPost, "/api/generate", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
	require.Equal(t, "model unavailable", body["error"])
}

func TestPublish(t *testing.T) {
	f := newFixture(t)
	f.authorize(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/post", strings.NewReader(`{"content":"Hello network"}`))
	f.h.Publish(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, "urn:li:share:42", body["post_id"])
}

func TestPublish_EmptyContent(t *testing.T) {
	f := newFixture(t)
	f.authorize(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/post", strings.NewReader(`{"content":""}`))
	f.h.Publish(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublish_InvalidBody(t *testing.T) {
	f := newFixture(t)
	f.authorize(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/post", strings.NewReader(`{not json`))
	f.h.Publish(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublish_NotAuthenticated(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/post", strings.NewReader(`{"content":"Hello"}`))
	f.h.Publish(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateAndPublish(t *testing.T) {
	f := newFixture(t)
	f.authorize(t)

	rec := httptest.NewRecorder()
	f.h.GenerateAndPublish(rec, httptest.NewRequest(http.MethodPost, "/api/generate-and-post", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, "urn:li:share:42", body["post_id"])
}

func TestGenerateAndPublish_NotAuthenticated(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.h.GenerateAndPublish(rec, httptest.NewRequest(http.MethodPost, "/api/generate-and-post", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGenerateAndPublish_PublishFailure(t *testing.T) {
	f := newFixture(t)
	f.authorize(t)
	f.pub.publishErr = errors.New("linkedin api error")

	rec := httptest.NewRecorder()
	f.h.GenerateAndPublish(rec, httptest.NewRequest(http.MethodPost, "/api/generate-and-post", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, false, body["success"])
}

func TestListPosts(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.h.ListPosts(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.EqualValues(t, 0, body["count"])
	require.Empty(t, body["posts"])

	// A generation shows up in the listing.
	f.h.Generate(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/generate", nil))

	rec = httptest.NewRecorder()
	f.h.ListPosts(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	body = decodeBody(t, rec)
	require.EqualValues(t, 1, body["count"])
}

func TestSchedulerLifecycle(t *testing.T) {
	f := newFixture(t)

	rec := httptest.NewRecorder()
	f.h.SchedulerStatus(rec, httptest.NewRequest(http.MethodGet, "/api/scheduler/status", nil))
	body := decodeBody(t, rec)
	require.Equal(t, false, body["running"])
	require.Equal(t, "09:00", body["time"])
	require.Equal(t, "UTC", body["timezone"])

	rec = httptest.NewRecorder()
	f.h.SchedulerStart(rec, httptest.NewRequest(http.MethodPost, "/api/scheduler/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Equal(t, true, body["running"])
	require.Contains(t, body, "next_run")

	rec = httptest.NewRecorder()
	f.h.SchedulerStop(rec, httptest.NewRequest(http.MethodPost, "/api/scheduler/stop", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	require.Equal(t, false, body["running"])
}

func TestSchedulerTest(t *testing.T) {
	f := newFixture(t)
	f.authorize(t)

	rec := httptest.NewRecorder()
	f.h.SchedulerTest(rec, httptest.NewRequest(http.MethodPost, "/api/scheduler/test", nil))

	// The response comes back immediately; the run proceeds detached and
	// lands in history.
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.Equal(t, true, body["success"])
	require.Equal(t, "Test post triggered", body["message"])

	require.Eventually(t, func() bool {
		count, err := f.hist.Count(context.Background())
		return err == nil && count == 1
	}, 5*time.Second, 10*time.Millisecond)
}
