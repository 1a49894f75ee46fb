package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Daya1222/Real-time-chat-app/internal/model"
)

func newAuthRouter(svc *TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", Authorize(svc), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userName": IdentityFrom(c).UserName})
	})
	router.GET("/admin", Authorize(svc), AdminOnly(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestAuthorize(t *testing.T) {
	req := require.New(t)
	svc := NewTokenService([]byte("test-secret"), time.Hour, "chat-app")
	router := newAuthRouter(svc)

	token, err := svc.Mint(Identity{UserName: "alice", Role: model.RoleUser})
	req.NoError(err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"malformed header", token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)
			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAdminOnly(t *testing.T) {
	req := require.New(t)
	svc := NewTokenService([]byte("test-secret"), time.Hour, "chat-app")
	router := newAuthRouter(svc)

	userToken, err := svc.Mint(Identity{UserName: "alice", Role: model.RoleUser})
	req.NoError(err)
	adminToken, err := svc.Mint(Identity{UserName: "root", Role: model.RoleAdmin})
	req.NoError(err)

	r := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.Header.Set("Authorization", "Bearer "+userToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	req.Equal(http.StatusUnauthorized, w.Code)

	r = httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.Header.Set("Authorization", "Bearer "+adminToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, r)
	req.Equal(http.StatusOK, w.Code)
}
