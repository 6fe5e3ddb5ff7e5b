package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

// Roles, from most to least privileged
const (
	RoleAdmin   = "admin"
	RoleAnalyst = "analyst"
	RoleViewer  = "viewer"
)

var rolePriority = []string{RoleAdmin, RoleAnalyst, RoleViewer}

type Claims struct {
	Email  string   `json:"email"`
	Name   string   `json:"name"`
	Role   string   `json:"role"`
	Groups []string `json:"groups"`
	jwt.RegisteredClaims
}

type contextKey string

const UserContextKey contextKey = "user"

// Config controls how tokens are checked
type Config struct {
	SkipAuth        bool
	Env             string
	VerifySignature bool
	Issuer          string
}

// Verifies reports whether signatures must be checked: always outside
// development, or when explicitly requested
func (c Config) Verifies() bool {
	if c.Env != "development" && c.Env != "" {
		return true
	}
	return c.VerifySignature
}

// JWKSManager handles JWKS fetching and caching
type JWKSManager struct {
	jwks       keyfunc.Keyfunc
	issuerURL  string
	mu         sync.RWMutex
	lastUpdate time.Time
}

// refresh fetches the JWKS from the OIDC provider
func (m *JWKSManager) refresh() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Keycloak layout
	jwksURL := strings.TrimSuffix(m.issuerURL, "/") + "/protocol/openid-connect/certs"

	k, err := keyfunc.NewDefault([]string{jwksURL})
	if err != nil {
		return fmt.Errorf("failed to create keyfunc: %w", err)
	}

	m.jwks = k
	m.lastUpdate = time.Now()
	return nil
}

func (m *JWKSManager) getKeyfunc() jwt.Keyfunc {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.jwks == nil {
		return nil
	}
	return m.jwks.Keyfunc
}

// Authenticator validates OIDC bearer tokens
type Authenticator struct {
	cfg    Config
	logger zerolog.Logger

	jwksOnce sync.Once
	jwks     *JWKSManager
	jwksErr  error
}

// NewAuthenticator creates a new Authenticator
func NewAuthenticator(cfg Config, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		cfg:    cfg,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// InitJWKS fetches the signing keys up front. Call on startup when
// signatures are verified so misconfiguration shows immediately.
func (a *Authenticator) InitJWKS() error {
	a.jwksOnce.Do(func() {
		if a.cfg.Issuer == "" {
			a.jwksErr = fmt.Errorf("OIDC_ISSUER not configured for JWT verification")
			return
		}
		a.jwks = &JWKSManager{issuerURL: a.cfg.Issuer}
		a.logger.Info().Str("issuer", a.cfg.Issuer).Msg("fetching JWKS")
		a.jwksErr = a.jwks.refresh()
	})
	return a.jwksErr
}

// Middleware validates JWT tokens from the OIDC provider
func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.SkipAuth {
			ctx := context.WithValue(r.Context(), UserContextKey, &Claims{
				Email:  "dev@mtsav.local",
				Name:   "Dev User",
				Role:   RoleAdmin,
				Groups: []string{"developers"},
			})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		tokenString := extractToken(r)
		if tokenString == "" {
			a.logger.Debug().Str("path", r.URL.Path).Msg("missing authorization token")
			http.Error(w, "Unauthorized: Missing token", http.StatusUnauthorized)
			return
		}

		claims, err := a.validateToken(tokenString)
		if err != nil {
			a.logger.Warn().Err(err).Msg("token validation failed")
			http.Error(w, fmt.Sprintf("Unauthorized: %v", err), http.StatusUnauthorized)
			return
		}

		a.logger.Debug().Str("email", claims.Email).Str("role", claims.Role).Msg("user authenticated")

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects requests whose user holds none of the given roles
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetUserFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			for _, role := range roles {
				if HasRole(claims, role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "Forbidden: insufficient role", http.StatusForbidden)
		})
	}
}

// extractToken gets the token from Authorization header or query parameter
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString != authHeader {
			return tokenString
		}
	}

	// WebSocket connections cannot set headers
	return r.URL.Query().Get("token")
}

// validateToken turns a bearer token into Claims. Signatures are checked
// only when the config asks for it; unverified tokens still expire.
func (a *Authenticator) validateToken(tokenString string) (*Claims, error) {
	mapClaims := jwt.MapClaims{}

	if a.cfg.Verifies() {
		if err := a.InitJWKS(); err != nil {
			return nil, fmt.Errorf("failed to initialize JWKS: %w", err)
		}
		kf := a.jwks.getKeyfunc()
		if kf == nil {
			return nil, fmt.Errorf("JWKS not available")
		}
		token, err := jwt.ParseWithClaims(tokenString, mapClaims, kf, jwt.WithValidMethods(signingMethods))
		if err != nil {
			return nil, fmt.Errorf("token verification failed: %w", err)
		}
		if !token.Valid {
			return nil, fmt.Errorf("invalid token")
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(tokenString, mapClaims); err != nil {
			return nil, fmt.Errorf("failed to parse token: %w", err)
		}
		exp, err := mapClaims.GetExpirationTime()
		if err != nil {
			return nil, fmt.Errorf("invalid exp claim: %w", err)
		}
		if exp != nil && exp.Before(time.Now()) {
			return nil, fmt.Errorf("token expired")
		}
	}

	claims := &Claims{
		Email:  stringClaim(mapClaims, "email"),
		Name:   stringClaim(mapClaims, "name", "preferred_username"),
		Role:   roleOf(mapClaims),
		Groups: append(stringsClaim(mapClaims["groups"]), stringsClaim(mapClaims["cognito:groups"])...),
	}
	claims.Subject, _ = mapClaims.GetSubject()
	claims.ExpiresAt, _ = mapClaims.GetExpirationTime()
	return claims, nil
}

var signingMethods = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}

// stringClaim returns the first non-empty string claim among keys
func stringClaim(m jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func stringsClaim(v interface{}) []string {
	list, _ := v.([]interface{})
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// roleOf picks the highest role granted by Keycloak realm roles, or by a
// Cognito/custom group whose name contains the role. Everyone else views.
func roleOf(m jwt.MapClaims) string {
	var realmRoles []string
	if realm, ok := m["realm_access"].(map[string]interface{}); ok {
		realmRoles = stringsClaim(realm["roles"])
	}
	groups := append(stringsClaim(m["cognito:groups"]), stringsClaim(m["custom:groups"])...)

	for _, role := range rolePriority {
		for _, r := range realmRoles {
			if r == role {
				return role
			}
		}
		if role == RoleViewer {
			break
		}
		for _, g := range groups {
			if strings.Contains(strings.ToLower(g), role) {
				return role
			}
		}
	}
	return RoleViewer
}

// GetUserFromContext retrieves user claims from request context
func GetUserFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*Claims)
	return claims, ok
}

// HasRole checks if user has specific role
func HasRole(claims *Claims, role string) bool {
	return claims.Role == role
}
