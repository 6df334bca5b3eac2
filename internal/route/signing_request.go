package route

import (
	"github.com/SeakMengs/SignFlow/internal/controller"
	"github.com/SeakMengs/SignFlow/internal/middleware"
	"github.com/gin-gonic/gin"
)

func V1_SigningRequests(r *gin.RouterGroup, src *controller.SigningRequestController, middleware *middleware.Middleware) {
	v1 := r.Group("/v1/signing-requests")
	v1.Use(middleware.AuthMiddleware)
	{
		v1.POST("", src.CreateSigningRequest)
		v1.GET("", src.ListSigningRequests)
		v1.GET("/inbox", src.ListInbox)
		v1.GET("/:id", src.GetSigningRequestById)
		v1.PATCH("/:id", src.UpdateDraft)
		v1.POST("/:id/send", src.SendDraft)
		v1.PATCH("/:id/settings", src.UpdateSettings)
		v1.POST("/:id/void", src.VoidSigningRequest)
		v1.POST("/:id/resend", src.Resend)
		v1.GET("/:id/share", src.ShareLinks)
		v1.GET("/:id/logs", src.GetLogs)
	}
}
