package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return s
}

func whoami(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetUserFromContext(r.Context())
		if !ok {
			t.Error("expected claims in context")
			return
		}
		w.Write([]byte(claims.Role))
	})
}

func TestMiddleware(t *testing.T) {
	dev := Config{Env: "development"}

	tests := []struct {
		name     string
		cfg      Config
		path     string
		token    string
		query    bool
		wantCode int
		wantBody string
	}{
		{
			name:     "health is public",
			cfg:      dev,
			path:     "/health",
			wantCode: http.StatusOK,
		},
		{
			name:     "skip auth injects admin",
			cfg:      Config{SkipAuth: true},
			path:     "/api/stats",
			wantCode: http.StatusOK,
			wantBody: RoleAdmin,
		},
		{
			name:     "missing token",
			cfg:      dev,
			path:     "/api/stats",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unverified token in development",
			cfg:      dev,
			path:     "/api/stats",
			token:    signedToken(t, jwt.MapClaims{"email": "a@b.c", "realm_access": map[string]interface{}{"roles": []interface{}{"viewer", "analyst"}}}),
			wantCode: http.StatusOK,
			wantBody: RoleAnalyst,
		},
		{
			name:     "token in query for websockets",
			cfg:      dev,
			path:     "/ws",
			token:    signedToken(t, jwt.MapClaims{"email": "a@b.c"}),
			query:    true,
			wantCode: http.StatusOK,
			wantBody: RoleViewer,
		},
		{
			name:     "expired token",
			cfg:      dev,
			path:     "/api/stats",
			token:    signedToken(t, jwt.MapClaims{"exp": float64(time.Now().Add(-time.Hour).Unix())}),
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "production without issuer rejects",
			cfg:      Config{Env: "production"},
			path:     "/api/stats",
			token:    signedToken(t, jwt.MapClaims{"email": "a@b.c"}),
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAuthenticator(tt.cfg, zerolog.New(&bytes.Buffer{}))
			handler := a.Middleware(whoami(t))
			if tt.path == "/health" {
				handler = a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			}

			target := tt.path
			if tt.query && tt.token != "" {
				target += "?token=" + tt.token
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if !tt.query && tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d (%s)", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("expected body %q, got %q", tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	a := NewAuthenticator(Config{Env: "development"}, zerolog.New(&bytes.Buffer{}))
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := a.Middleware(RequireRole(RoleAnalyst, RoleAdmin)(ok))

	tests := []struct {
		role     string
		wantCode int
	}{
		{RoleViewer, http.StatusForbidden},
		{RoleAnalyst, http.StatusOK},
		{RoleAdmin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			token := signedToken(t, jwt.MapClaims{"realm_access": map[string]interface{}{"roles": []interface{}{tt.role}}})
			req := httptest.NewRequest(http.MethodPost, "/api/sectors", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, rec.Code)
			}
		})
	}
}

func TestRoleOf(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
		want   string
	}{
		{"no claims", jwt.MapClaims{}, RoleViewer},
		{"realm admin wins", jwt.MapClaims{"realm_access": map[string]interface{}{"roles": []interface{}{"analyst", "admin"}}}, RoleAdmin},
		{"cognito group", jwt.MapClaims{"cognito:groups": []interface{}{"mtsav-analyst"}}, RoleAnalyst},
		{"custom group", jwt.MapClaims{"custom:groups": []interface{}{"MTSAV-Admin"}}, RoleAdmin},
		{"group cannot grant viewer twice", jwt.MapClaims{"cognito:groups": []interface{}{"viewers"}}, RoleViewer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roleOf(tt.claims); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
