package route

import (
	"github.com/SeakMengs/SignFlow/internal/controller"
	"github.com/gin-gonic/gin"
)

func V1_ShortLinks(r *gin.RouterGroup, slc *controller.ShortLinkController) {
	v1 := r.Group("/v1/s")
	{
		// Test endpoint with curl: curl http://localhost:8080/api/v1/s/{token}
		v1.GET("/:token", slc.ResolveShortLink)
		v1.GET("/:token/qr", slc.ServeQRCode)
	}
}
