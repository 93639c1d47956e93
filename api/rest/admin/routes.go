package admin

import (
	"codeberg.org/mise/server/internal/auth"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, spending SpendingReader) {
	admin := router.Group("/admin")
	admin.Use(auth.AuthMiddleware(), auth.AdminOnly())

	admin.GET("/spending", GetSpending(spending))
}
