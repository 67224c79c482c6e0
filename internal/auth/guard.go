// Package auth protege la zona de administración con una contraseña única.
//
// Una sesión válida es un JWT HS256 firmado con SESSION_SECRET que lleva el
// claim admin_auth. Logout revoca el id del token hasta que expire.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/ahinestrog/ferreriwork/internal/apperr"
)

const (
	msgPasswordIncorrecta = "Contraseña incorrecta"
	msgDemasiadosIntentos = "Demasiados intentos, espera un momento"

	defaultMaxRevoked = 1024
	maxClients        = 4096
	clientWindow      = 10 * time.Minute
)

type Options struct {
	SessionSecret string
	AdminPassword string // texto plano o hash bcrypt ($2a$/$2b$)
	TTL           time.Duration
	// LoginPerMinute limita los intentos fallidos por cliente; 0 (por defecto) lo desactiva.
	// Una contraseña correcta nunca se rechaza.
	LoginPerMinute int
	// MaxRevoked es la capacidad de la lista de sesiones revocadas (1024 si es 0).
	MaxRevoked int
}

type sessionClaims struct {
	AdminAuth bool `json:"admin_auth"`
	jwt.RegisteredClaims
}

type Guard struct {
	secret   []byte
	password string
	ttl      time.Duration
	revoked  *expirable.LRU[string, time.Time]
	// notBefore (unix, segundos): tokens emitidos hasta ese instante se rechazan.
	// Sube cuando una revocación sale de la lista antes de expirar.
	notBefore atomic.Int64
	perMinute int
	failures  *expirable.LRU[string, *rate.Limiter]
	now       func() time.Time
}

func NewGuard(opts Options) *Guard {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	capacity := opts.MaxRevoked
	if capacity <= 0 {
		capacity = defaultMaxRevoked
	}
	g := &Guard{
		secret:    []byte(opts.SessionSecret),
		password:  opts.AdminPassword,
		ttl:       ttl,
		perMinute: opts.LoginPerMinute,
		now:       time.Now,
	}
	g.revoked = expirable.NewLRU[string, time.Time](capacity, g.onRevokedEvict, ttl)
	if g.perMinute > 0 {
		g.failures = expirable.NewLRU[string, *rate.Limiter](maxClients, nil, clientWindow)
	}
	return g
}

// onRevokedEvict se llama cuando una revocación sale de la lista, por expiración
// o por capacidad. Todo token emitido hasta ese momento queda inválido, así una
// lista llena nunca reactiva sesiones cerradas.
func (g *Guard) onRevokedEvict(_ string, issuedAt time.Time) {
	ts := issuedAt.Unix()
	for {
		cur := g.notBefore.Load()
		if ts <= cur || g.notBefore.CompareAndSwap(cur, ts) {
			return
		}
	}
}

// Validate compara la contraseña y, si coincide, emite un token de sesión.
func (g *Guard) Validate(ctx context.Context, password string) (string, error) {
	return g.ValidateFrom(ctx, "", password)
}

// ValidateFrom es Validate con la dirección del cliente, usada para contar los
// intentos fallidos por origen.
func (g *Guard) ValidateFrom(ctx context.Context, client, password string) (string, error) {
	if g.matches(password) {
		return g.issue()
	}
	if !g.allowFailure(client) {
		log.Warn().Str("client", client).Msg("auth: demasiados intentos fallidos")
		return "", apperr.Unauthorized(msgDemasiadosIntentos)
	}
	log.Info().Str("client", client).Msg("auth: contraseña incorrecta")
	return "", apperr.Unauthorized(msgPasswordIncorrecta)
}

func (g *Guard) allowFailure(client string) bool {
	if g.failures == nil {
		return true
	}
	lim, ok := g.failures.Get(client)
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(g.perMinute)), g.perMinute)
		g.failures.Add(client, lim)
	}
	return lim.AllowN(g.now(), 1)
}

func (g *Guard) matches(password string) bool {
	if g.password == "" || password == "" {
		return false
	}
	if isBcrypt(g.password) {
		return bcrypt.CompareHashAndPassword([]byte(g.password), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(g.password), []byte(password)) == 1
}

func isBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

func (g *Guard) issue() (string, error) {
	now := g.now()
	claims := sessionClaims{
		AdminAuth: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.ttl)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
	if err != nil {
		return "", apperr.Transport("no se pudo iniciar sesión", err)
	}
	return tok, nil
}

// Authorize indica si el token corresponde a una sesión de administrador vigente.
func (g *Guard) Authorize(token string) bool {
	c, err := g.parse(token)
	if err != nil {
		return false
	}
	if c.IssuedAt.Unix() <= g.notBefore.Load() {
		return false
	}
	if _, revoked := g.revoked.Get(c.ID); revoked {
		return false
	}
	return c.AdminAuth
}

// Revoke invalida el token (logout). Tokens inválidos se ignoran.
func (g *Guard) Revoke(token string) {
	c, err := g.parse(token)
	if err != nil {
		return
	}
	g.revoked.Add(c.ID, c.IssuedAt.Time)
}

func (g *Guard) parse(token string) (*sessionClaims, error) {
	if token == "" {
		return nil, errors.New("token vacío")
	}
	c := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, c, func(*jwt.Token) (any, error) {
		return g.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(g.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if c.ID == "" || c.IssuedAt == nil {
		return nil, errors.New("token sin id o iat")
	}
	return c, nil
}

// HashPassword genera el hash bcrypt para ADMIN_PASSWORD.
func HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
