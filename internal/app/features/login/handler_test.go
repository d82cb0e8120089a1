package login_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/eventdesk/internal/app/features/login"
	adminuserstore "github.com/dalemusser/eventdesk/internal/app/store/adminusers"
	"github.com/dalemusser/eventdesk/internal/app/store/audit"
	"github.com/dalemusser/eventdesk/internal/app/system/auditlog"
	"github.com/dalemusser/eventdesk/internal/app/system/auth"
	"github.com/dalemusser/eventdesk/internal/app/system/ratelimit"
	"github.com/dalemusser/eventdesk/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	router http.Handler
	sm     *auth.SessionManager
	audit  *audit.Store
}

func newEnv(t *testing.T, limiter *ratelimit.LoginLimiter) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := adminuserstore.New(db).Create(ctx, "ops@example.com", "Ops Lead", "correct-horse", adminuserstore.RoleSuperAdmin)
	require.NoError(t, err)

	sm, err := auth.NewSessionManager("test-session-key-for-testing-only-32", "test-session", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	store := audit.New(db)
	h := login.NewHandler(db, sm, limiter, zap.NewNop())
	h.Audit = auditlog.New(store, zap.NewNop(), auditlog.Config{Auth: auditlog.ModeDB})
	return env{router: sm.LoadSessionUser(login.Routes(h)), sm: sm, audit: store}
}

func (e env) post(t *testing.T, body any) *testutil.ResponseRecorder {
	t.Helper()
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/", body))
	return rec
}

func TestServeLogin_Success(t *testing.T) {
	e := newEnv(t, nil)

	rec := e.post(t, map[string]string{"email": " OPS@example.com", "password": "correct-horse"})
	rec.AssertStatus(t, http.StatusOK)

	var data struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
	res := rec.Outcome(t, &data)
	require.True(t, res.Success)
	require.Equal(t, "ops@example.com", data.Email)
	require.Equal(t, "Ops Lead", data.Name)
	require.Equal(t, adminuserstore.RoleSuperAdmin, data.Role)

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The issued cookie identifies the admin on later requests.
	req := httptest.NewRequest("GET", "/session", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	srec := testutil.NewRecorder()
	e.router.ServeHTTP(srec, req)
	srec.AssertStatus(t, http.StatusOK)
	srec.AssertContains(t, "ops@example.com")
}

func TestServeLogin_Rejections(t *testing.T) {
	e := newEnv(t, ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 100, time.Minute))

	tests := []struct {
		name string
		body any
		code int
	}{
		{"wrong password", map[string]string{"email": "ops@example.com", "password": "wrong-horse"}, http.StatusUnauthorized},
		{"unknown email", map[string]string{"email": "who@example.com", "password": "correct-horse"}, http.StatusUnauthorized},
		{"invalid email", map[string]string{"email": "not-an-email", "password": "x"}, http.StatusBadRequest},
		{"missing password", map[string]string{"email": "ops@example.com"}, http.StatusBadRequest},
		{"no body", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := e.post(t, tt.body)
			rec.AssertStatus(t, tt.code)
			require.False(t, rec.Outcome(t, nil).Success)
			require.Empty(t, rec.Result().Cookies())
		})
	}
}

func TestServeLogin_RateLimited(t *testing.T) {
	e := newEnv(t, ratelimit.NewLoginLimiterWithConfig(100, time.Minute, 2, time.Minute))
	bad := map[string]string{"email": "ops@example.com", "password": "wrong-horse"}

	e.post(t, bad).AssertStatus(t, http.StatusUnauthorized)
	e.post(t, bad).AssertStatus(t, http.StatusUnauthorized)

	// Even the right password is refused once the window is exhausted.
	rec := e.post(t, map[string]string{"email": "ops@example.com", "password": "correct-horse"})
	rec.AssertStatus(t, http.StatusTooManyRequests)
}

func TestServeSession_NotSignedIn(t *testing.T) {
	e := newEnv(t, nil)
	rec := testutil.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest("GET", "/session", nil))
	rec.AssertStatus(t, http.StatusUnauthorized)
}

func TestServeLogin_Audited(t *testing.T) {
	e := newEnv(t, nil)

	e.post(t, map[string]string{"email": "ops@example.com", "password": "wrong"}).AssertStatus(t, http.StatusUnauthorized)
	e.post(t, map[string]string{"email": "ops@example.com", "password": "correct-horse"}).AssertStatus(t, http.StatusOK)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	events, err := e.audit.Query(ctx, audit.QueryFilter{Category: audit.CategoryAuth, Actor: "ops@example.com"})
	require.NoError(t, err)
	require.Len(t, events, 2)

	byType := map[string]audit.Event{}
	for _, ev := range events {
		byType[ev.EventType] = ev
	}
	require.True(t, byType[audit.EventLoginSuccess].Success)
	failed, ok := byType[audit.EventLoginFailed]
	require.True(t, ok)
	require.False(t, failed.Success)
	require.Equal(t, "invalid credentials", failed.FailureReason)
}
