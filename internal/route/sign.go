package route

import (
	"github.com/SeakMengs/SignFlow/internal/controller"
	"github.com/gin-gonic/gin"
)

// Signers authenticate with the email and token of their link, so these routes
// carry no auth middleware.
func V1_Sign(r *gin.RouterGroup, sc *controller.SignController) {
	v1 := r.Group("/v1/sign")
	{
		v1.GET("/:id", sc.GetSignerView)
		v1.GET("/:id/document", sc.GetDocument)
		v1.POST("/:id", sc.SubmitSignature)
		v1.POST("/:id/decline", sc.Decline)
	}
}
