package approuters

import (
	"github.com/gin-gonic/gin"

	"github.com/Daya1222/Real-time-chat-app/internal/auth"
	"github.com/Daya1222/Real-time-chat-app/internal/configuration"
)

func UserRouters(router *gin.Engine, container *configuration.Container) {
	h := container.UserHandler

	router.POST("/login", h.Login)
	router.POST("/register", h.Register)
	router.GET("/health", h.Health)

	api := router.Group("/api", auth.Authorize(container.Verifier))
	{
		api.GET("/get-users", h.GetUsers)
		api.GET("/get-messages", h.GetMessages)
		api.POST("/verify-admin", auth.AdminOnly(), h.VerifyAdmin)
		api.POST("/delete-user", auth.AdminOnly(), h.DeleteUser)
	}
}
