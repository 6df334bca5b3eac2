package route

import (
	"github.com/SeakMengs/SignFlow/internal/controller"
	"github.com/SeakMengs/SignFlow/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_Documents(r *gin.RouterGroup, dc *controller.DocumentController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/documents")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", dc.UploadDocument)
		v1.GET("/:id", dc.GetDocumentById)
		v1.DELETE("/:id", dc.DeleteDocument)
	}
}
