package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appcontext "github.com/SeakMengs/SignFlow/internal/app_context"
	"github.com/SeakMengs/SignFlow/internal/auth"
	"github.com/SeakMengs/SignFlow/internal/config"
	ratelimiter "github.com/SeakMengs/SignFlow/internal/rate_limiter"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, rl RateLimiter) (*gin.Engine, *auth.JWT) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop().Sugar()
	jwtService := auth.NewJwt(config.AuthConfig{JWT_SECRET: "test-secret"}, logger)
	app := &appcontext.Application{Logger: logger, JWTService: jwtService}
	m := NewMiddleware(app, rl)

	r := gin.New()
	r.Use(m.RateLimiterMiddleware)
	r.GET("/me", m.AuthMiddleware, func(ctx *gin.Context) {
		user, _ := ctx.Get("user")
		ctx.JSON(http.StatusOK, user)
	})
	return r, jwtService
}

func TestAuthMiddleware(t *testing.T) {
	r, jwtService := newTestRouter(t, nil)
	refresh, access, err := jwtService.GenerateRefreshAndAccessToken(auth.JWTPayload{ID: "user-1", Email: "owner@example.com", Name: "Olivia"})
	if err != nil {
		t.Fatalf("GenerateRefreshAndAccessToken() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"Access token", "Bearer " + *access, http.StatusOK},
		{"Refresh token is rejected", "Bearer " + *refresh, http.StatusUnauthorized},
		{"Missing header", "", http.StatusUnauthorized},
		{"Wrong scheme", "Basic " + *access, http.StatusUnauthorized},
		{"Garbage token", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := ratelimiter.NewRateLimiter(config.RateLimiterConfig{RequestsPerTimeFrame: 1, TimeFrame: time.Hour, Enabled: true}, nil, nil)
	r, _ := newTestRouter(t, rl)

	codes := make([]int, 2)
	for i := range codes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		codes[i] = w.Code
		if i == 1 && w.Header().Get("Retry-After") == "" {
			t.Errorf("limited response has no Retry-After header")
		}
	}

	if codes[0] != http.StatusUnauthorized || codes[1] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [401 429]", codes)
	}
}
