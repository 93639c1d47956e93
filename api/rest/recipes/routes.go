package recipes

import (
	"github.com/gin-gonic/gin"
)

// registers the extraction and translation routes. strict applies to every
// route that makes a billable AI call.
func RegisterRoutes(router gin.IRoutes, h *Handlers, strict gin.HandlerFunc) {
	router.POST("/recipe/clean-url", strict, h.CleanURL)
	router.POST("/recipe/clean-photo", strict, h.CleanPhoto)
	router.POST("/recipe/clean-youtube", strict, h.CleanYouTube)
	router.POST("/recipe/translate", strict, h.Translate)
}
