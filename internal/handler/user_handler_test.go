package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Daya1222/Real-time-chat-app/internal/db"
	"github.com/Daya1222/Real-time-chat-app/internal/model"
	"github.com/Daya1222/Real-time-chat-app/internal/repo"
	"github.com/Daya1222/Real-time-chat-app/internal/service"
)

type fakeUserService struct {
	loginErr    error
	registerErr error
	deleteErr   error
	listErr     error
}

func (f *fakeUserService) Register(ctx context.Context, req service.RegisterRequest) (*model.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &model.User{UserName: req.UserName}, nil
}

func (f *fakeUserService) Login(ctx context.Context, req service.LoginRequest) (string, *model.User, error) {
	if f.loginErr != nil {
		return "", nil, f.loginErr
	}
	return "a.jwt.token", &model.User{ID: primitive.NewObjectID(), UserName: req.UserName}, nil
}

func (f *fakeUserService) ListUsers(ctx context.Context) ([]model.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []model.User{{UserName: "alice"}, {UserName: "bob"}}, nil
}

func (f *fakeUserService) MessagesFor(ctx context.Context, userName, with string, page int64) (*db.PaginatedResult[model.Message], error) {
	return &db.PaginatedResult[model.Message]{Page: page, TotalPages: 1}, nil
}

func (f *fakeUserService) DeleteUser(ctx context.Context, userName string) error {
	return f.deleteErr
}

func newTestRouter(svc service.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewUserHandler(svc)
	router := gin.New()
	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
	router.POST("/api/delete-user", h.DeleteUser)
	router.GET("/health", h.Health)
	router.GET("/api/get-users", h.GetUsers)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)
	return w
}

func TestLoginHandler(t *testing.T) {
	req := require.New(t)

	w := postJSON(t, newTestRouter(&fakeUserService{}), "/login", gin.H{
		"creds": gin.H{"userName": "alice", "password": "hunter2hunter2"},
	})
	req.Equal(http.StatusOK, w.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			UserName string `json:"userName"`
		} `json:"user"`
	}
	req.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	req.Equal("a.jwt.token", resp.Token)
	req.Equal("alice", resp.User.UserName)
}

func TestLoginHandlerRejections(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"validation", service.ErrValidation, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeUserService{loginErr: tt.err})
			w := postJSON(t, router, "/login", gin.H{"creds": gin.H{"userName": "alice", "password": "x"}})
			require.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRegisterHandler(t *testing.T) {
	req := require.New(t)

	w := postJSON(t, newTestRouter(&fakeUserService{}), "/register", gin.H{
		"creds": gin.H{"userName": "alice", "email": "a@b.com", "password": "hunter2hunter2"},
	})
	req.Equal(http.StatusOK, w.Code)

	w = postJSON(t, newTestRouter(&fakeUserService{registerErr: repo.ErrDuplicateUser}), "/register", gin.H{
		"creds": gin.H{"userName": "alice", "email": "a@b.com", "password": "hunter2hunter2"},
	})
	req.Equal(http.StatusConflict, w.Code)

	w = postJSON(t, newTestRouter(&fakeUserService{registerErr: service.ErrValidation}), "/register", gin.H{
		"creds": gin.H{"userName": "a"},
	})
	req.Equal(http.StatusBadRequest, w.Code)
}

func TestDeleteUserHandler(t *testing.T) {
	req := require.New(t)

	w := postJSON(t, newTestRouter(&fakeUserService{}), "/api/delete-user", gin.H{"userName": "bob"})
	req.Equal(http.StatusOK, w.Code)

	w = postJSON(t, newTestRouter(&fakeUserService{deleteErr: repo.ErrUserNotFound}), "/api/delete-user", gin.H{"userName": "ghost"})
	req.Equal(http.StatusNotFound, w.Code)

	w = postJSON(t, newTestRouter(&fakeUserService{}), "/api/delete-user", gin.H{})
	req.Equal(http.StatusBadRequest, w.Code)
}

func TestGetUsersHandler(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(&fakeUserService{})

	r := httptest.NewRequest(http.MethodGet, "/api/get-users", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	var users []model.User
	req.NoError(json.Unmarshal(w.Body.Bytes(), &users))
	req.Len(users, 2)
}

func TestHealthHandler(t *testing.T) {
	req := require.New(t)
	router := newTestRouter(&fakeUserService{})

	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, r)

	req.Equal(http.StatusOK, w.Code)
	req.Contains(w.Body.String(), `"status":"ok"`)
}
