package usage

import "github.com/gin-gonic/gin"

func RegisterRoutes(router *gin.RouterGroup, resolver Summarizer) {
	router.GET("/usage", GetUsage(resolver))
}
