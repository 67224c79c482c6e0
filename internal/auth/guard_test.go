package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahinestrog/ferreriwork/internal/apperr"
)

func newGuard(t *testing.T) *Guard {
	t.Helper()
	return NewGuard(Options{SessionSecret: "test-secret", AdminPassword: "s3creto", TTL: time.Hour})
}

func TestValidateAndAuthorize(t *testing.T) {
	g := newGuard(t)

	tok, err := g.Validate(context.Background(), "s3creto")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.True(t, g.Authorize(tok))
}

func TestValidateWrongPassword(t *testing.T) {
	g := newGuard(t)

	for _, pw := range []string{"", "S3creto", "s3creto ", "otra"} {
		tok, err := g.Validate(context.Background(), pw)
		require.Error(t, err, pw)
		assert.Empty(t, tok)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
		assert.Equal(t, "Contraseña incorrecta", apperr.Message(err))
	}
}

func TestValidateBcryptHash(t *testing.T) {
	hash, err := HashPassword("s3creto")
	require.NoError(t, err)

	g := NewGuard(Options{SessionSecret: "x", AdminPassword: hash})
	_, err = g.Validate(context.Background(), "s3creto")
	require.NoError(t, err)
	_, err = g.Validate(context.Background(), hash)
	assert.Error(t, err)
}

func TestAuthorizeRejectsForeignTokens(t *testing.T) {
	g := newGuard(t)
	other := NewGuard(Options{SessionSecret: "otro-secreto", AdminPassword: "s3creto"})

	tok, err := other.Validate(context.Background(), "s3creto")
	require.NoError(t, err)
	assert.False(t, g.Authorize(tok))
	assert.False(t, g.Authorize(""))
	assert.False(t, g.Authorize("no.es.jwt"))
}

func TestAuthorizeExpired(t *testing.T) {
	g := newGuard(t)
	start := time.Now()
	g.now = func() time.Time { return start }

	tok, err := g.Validate(context.Background(), "s3creto")
	require.NoError(t, err)
	assert.True(t, g.Authorize(tok))

	g.now = func() time.Time { return start.Add(2 * time.Hour) }
	assert.False(t, g.Authorize(tok))
}

func TestRevoke(t *testing.T) {
	g := newGuard(t)
	tok, err := g.Validate(context.Background(), "s3creto")
	require.NoError(t, err)

	g.Revoke(tok)
	assert.False(t, g.Authorize(tok))

	// una sesión nueva sigue siendo válida
	tok2, err := g.Validate(context.Background(), "s3creto")
	require.NoError(t, err)
	assert.True(t, g.Authorize(tok2))

	g.Revoke("basura")
}

func TestLoginThrottleOnlyChargesFailures(t *testing.T) {
	g := NewGuard(Options{SessionSecret: "x", AdminPassword: "pw", LoginPerMinute: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.ValidateFrom(ctx, "10.0.0.9", "mal")
		assert.Equal(t, "Contraseña incorrecta", apperr.Message(err))
	}
	_, err := g.ValidateFrom(ctx, "10.0.0.9", "mal")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Equal(t, "Demasiados intentos, espera un momento", apperr.Message(err))

	// la contraseña correcta entra aunque el cliente agotó sus intentos
	tok, err := g.ValidateFrom(ctx, "10.0.0.9", "pw")
	require.NoError(t, err)
	assert.True(t, g.Authorize(tok))

	// otro cliente conserva su cupo
	_, err = g.ValidateFrom(ctx, "10.0.0.10", "mal")
	assert.Equal(t, "Contraseña incorrecta", apperr.Message(err))
}

func TestNoThrottleByDefault(t *testing.T) {
	g := newGuard(t)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, err := g.ValidateFrom(ctx, "10.0.0.9", "mal")
		require.Equal(t, "Contraseña incorrecta", apperr.Message(err))
	}
	_, err := g.ValidateFrom(ctx, "10.0.0.9", "s3creto")
	require.NoError(t, err)
}

func TestRevokedSessionsStayRevokedPastCapacity(t *testing.T) {
	g := NewGuard(Options{SessionSecret: "x", AdminPassword: "pw", TTL: time.Hour, MaxRevoked: 2})
	start := time.Now()
	clock := start
	g.now = func() time.Time { return clock }

	var toks []string
	for i := 0; i < 3; i++ {
		clock = start.Add(time.Duration(i) * time.Second)
		tok, err := g.Validate(context.Background(), "pw")
		require.NoError(t, err)
		toks = append(toks, tok)
	}
	for _, tok := range toks {
		g.Revoke(tok)
	}
	for i, tok := range toks {
		assert.False(t, g.Authorize(tok), "token %d", i)
	}

	clock = start.Add(3 * time.Second)
	fresh, err := g.Validate(context.Background(), "pw")
	require.NoError(t, err)
	assert.True(t, g.Authorize(fresh))
}

func TestRequireAdmin(t *testing.T) {
	g := newGuard(t)
	h := g.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin", rec.Header().Get("Location"))

	tok, err := g.Validate(context.Background(), "s3creto")
	require.NoError(t, err)

	// la cookie emitida por SetSession habilita el acceso
	login := httptest.NewRecorder()
	SetSession(login, httptest.NewRequest(http.MethodPost, "/admin", nil), tok)
	cookies := login.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	clear := httptest.NewRecorder()
	ClearSession(clear)
	assert.Equal(t, -1, clear.Result().Cookies()[0].MaxAge)
}
