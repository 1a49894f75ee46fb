package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Daya1222/Real-time-chat-app/internal/auth"
	"github.com/Daya1222/Real-time-chat-app/internal/repo"
	"github.com/Daya1222/Real-time-chat-app/internal/service"
)

type UserHandler interface {
	Login(c *gin.Context)
	Register(c *gin.Context)
	VerifyAdmin(c *gin.Context)
	GetUsers(c *gin.Context)
	GetMessages(c *gin.Context)
	DeleteUser(c *gin.Context)
	Health(c *gin.Context)
}

type userHandler struct {
	service service.UserService
}

func NewUserHandler(service service.UserService) UserHandler {
	return &userHandler{
		service: service,
	}
}

type loginRequest struct {
	Creds service.LoginRequest `json:"creds"`
}

type registerRequest struct {
	Creds service.RegisterRequest `json:"creds"`
}

type deleteUserRequest struct {
	UserName string `json:"userName"`
}

func (h *userHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Malformed request"})
		return
	}

	token, user, err := h.service.Login(c.Request.Context(), req.Creds)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Username and password are required"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"_id":      user.ID.Hex(),
			"userName": user.UserName,
		},
	})
}

func (h *userHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Malformed request"})
		return
	}

	if _, err := h.service.Register(c.Request.Context(), req.Creds); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid registration details"})
		case errors.Is(err, repo.ErrDuplicateUser):
			c.JSON(http.StatusConflict, gin.H{"msg": "Username or email already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"msg": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User successfully created."})
}

func (h *userHandler) VerifyAdmin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"msg": "Admin verified successfully."})
}

func (h *userHandler) GetUsers(c *gin.Context) {
	users, err := h.service.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	c.JSON(http.StatusOK, users)
}

func (h *userHandler) GetMessages(c *gin.Context) {
	identity := auth.IdentityFrom(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"msg": "Unauthorized"})
		return
	}

	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid page number"})
		return
	}

	result, err := h.service.MessagesFor(c.Request.Context(), identity.UserName, c.Query("with"), page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages":   result.Data,
		"page":       result.Page,
		"totalPages": result.TotalPages,
	})
}

func (h *userHandler) DeleteUser(c *gin.Context) {
	var req deleteUserRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.UserName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Malformed request"})
		return
	}

	if err := h.service.DeleteUser(c.Request.Context(), req.UserName); err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "User not found."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"msg": "Server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"msg": "User deleted"})
}

func (h *userHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
