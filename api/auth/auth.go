// Package auth implements the external API's bearer-JWT and static
// API-key authentication (§6), adapted from the teacher's JWTAuth/
// APIKeyAuth net/http middleware pair into the cortex role model.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/cogniscale/cortex/config"
)

// Role is a caller's authorization level (§6).
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleAnalyst   Role = "analyst"
	RoleUser      Role = "user"
	RoleGuest     Role = "guest"
)

// Claims is the JWT payload shape (§6): sub, role, iat, exp, iss, custom.
type Claims struct {
	jwt.RegisteredClaims
	Role   Role           `json:"role"`
	Custom map[string]any `json:"custom,omitempty"`
}

type ctxKey struct{ name string }

var (
	userIDKey = ctxKey{"user_id"}
	roleKey   = ctxKey{"role"}
)

// UserIDFromContext returns the authenticated caller's subject, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// RoleFromContext returns the authenticated caller's role, if any.
func RoleFromContext(ctx context.Context) (Role, bool) {
	v, ok := ctx.Value(roleKey).(Role)
	return v, ok
}

// Authenticator validates bearer JWTs (HS256, per the teacher's default
// signing method) or a static API-key table, and issues new tokens.
type Authenticator struct {
	mu      sync.RWMutex
	secret  []byte
	ttl     time.Duration
	issuer  string
	apiKeys map[string]Role // api key -> role
	header  string          // request header carrying a static API key
	logger  *zap.Logger
}

// NewAuthenticator builds an Authenticator from cfg. A nil logger defaults
// to zap.NewNop().
func NewAuthenticator(cfg config.AuthConfig, issuer string, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	header := cfg.APIKeyHeader
	if header == "" {
		header = "X-API-Key"
	}
	return &Authenticator{
		secret:  []byte(cfg.JWTSecret),
		ttl:     cfg.TokenTTL,
		issuer:  issuer,
		apiKeys: make(map[string]Role),
		header:  header,
		logger:  logger,
	}
}

// RegisterAPIKey adds or replaces a static API key's role mapping.
func (a *Authenticator) RegisterAPIKey(key string, role Role) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.apiKeys[key] = role
}

// IssueToken mints a signed JWT for sub at role, valid for the
// authenticator's configured TokenTTL (§6).
func (a *Authenticator) IssueToken(sub string, role Role, custom map[string]any) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Issuer:    a.issuer,
		},
		Role:   role,
		Custom: custom,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// Authenticate resolves r's identity from a Bearer JWT or a static API
// key, returning the caller's subject and role. Expired tokens and
// disabled users (unknown API keys) are rejected (§6).
func (a *Authenticator) Authenticate(r *http.Request) (sub string, role Role, err error) {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return a.authenticateJWT(strings.TrimPrefix(authHeader, "Bearer "))
	}
	if key := r.Header.Get(a.header); key != "" {
		return a.authenticateAPIKey(key)
	}
	return "", "", fmt.Errorf("auth: no bearer token or api key present")
}

func (a *Authenticator) authenticateJWT(tokenStr string) (string, Role, error) {
	claims := &Claims{}
	parserOpts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if a.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(a.issuer))
	}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, parserOpts...)
	if err != nil || !token.Valid {
		return "", "", fmt.Errorf("auth: invalid or expired token: %w", err)
	}
	return claims.Subject, claims.Role, nil
}

func (a *Authenticator) authenticateAPIKey(key string) (string, Role, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	role, ok := a.apiKeys[key]
	if !ok {
		return "", "", fmt.Errorf("auth: unknown api key")
	}
	return "key:" + key, role, nil
}

// Middleware authenticates every request not in skipPaths and injects the
// caller's subject/role into the request context.
func (a *Authenticator) Middleware(skipPaths []string) func(http.Handler) http.Handler {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			sub, role, err := a.Authenticate(r)
			if err != nil {
				a.logger.Debug("authentication failed", zap.Error(err), zap.String("path", r.URL.Path))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				fmt.Fprint(w, `{"error":"auth_failed","message":"missing or invalid credentials"}`)
				return
			}
			ctx := context.WithValue(r.Context(), userIDKey, sub)
			ctx = context.WithValue(ctx, roleKey, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
