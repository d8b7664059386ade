package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Burrow_Hole/internal/event"
	"Burrow_Hole/internal/handler"
	"Burrow_Hole/internal/pkg"
)

type fakeTrending struct {
	val       []byte
	err       error
	refreshed int
}

func (f *fakeTrending) Populate(context.Context) ([]byte, error) { return f.val, f.err }
func (f *fakeTrending) Refresh(context.Context) error {
	f.refreshed++
	return f.err
}

type fakeEmail struct{ events []event.EmailEvent }

func (f *fakeEmail) Email(_ context.Context, ev event.EmailEvent) { f.events = append(f.events, ev) }

var secret = []byte("ops-secret")

func newTestRouter(tr *fakeTrending, em *fakeEmail, checks map[string]handler.HealthCheck) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return InitRouter(Deps{Trending: tr, Email: em, Checks: checks, Secret: secret})
}

func do(r http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrendingRoute(t *testing.T) {
	tr := &fakeTrending{val: []byte(`[{"post_id":1}]`)}
	r := newTestRouter(tr, &fakeEmail{}, nil)

	w := do(r, http.MethodGet, "/trending", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"post_id":1}]`, w.Body.String())

	tr.err = errors.New("redis down")
	w = do(r, http.MethodGet, "/trending", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAdminRequiresToken(t *testing.T) {
	tr := &fakeTrending{}
	r := newTestRouter(tr, &fakeEmail{}, nil)

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/admin/trending/refresh", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/admin/trending/refresh", "garbage", "").Code)

	other, err := pkg.GenerateOpsToken([]byte("other"), "ops", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/admin/trending/refresh", other, "").Code)
	assert.Equal(t, 0, tr.refreshed)

	token, err := pkg.GenerateOpsToken(secret, "ops", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/admin/trending/refresh", token, "").Code)
	assert.Equal(t, 1, tr.refreshed)
}

func TestAdminEmailQueuesEvent(t *testing.T) {
	em := &fakeEmail{}
	r := newTestRouter(&fakeTrending{}, em, nil)
	token, err := pkg.GenerateOpsToken(secret, "ops", time.Minute)
	require.NoError(t, err)

	w := do(r, http.MethodPost, "/admin/email/reset/code", token, `{"email":"a@pku.edu.cn"}`)
	assert.Equal(t, http.StatusAccepted, w.Code)
	require.Len(t, em.events, 1)
	assert.Equal(t, event.EmailReset, em.events[0].Kind)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/admin/email/nope/code", token, `{"email":"a@pku.edu.cn"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/admin/email/sign/code", token, `{"email":"bad"}`).Code)
	assert.Len(t, em.events, 1)
}

func TestHealthz(t *testing.T) {
	checks := map[string]handler.HealthCheck{
		"store": func(context.Context) error { return nil },
	}
	r := newTestRouter(&fakeTrending{}, &fakeEmail{}, checks)
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/healthz", "", "").Code)

	checks["cache"] = func(context.Context) error { return errors.New("down") }
	w := do(r, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "down")
}

func TestMetricsExposed(t *testing.T) {
	r := newTestRouter(&fakeTrending{}, &fakeEmail{}, nil)
	w := do(r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
