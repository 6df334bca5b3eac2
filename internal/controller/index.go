package controller

import (
	"time"

	"github.com/SeakMengs/SignFlow/internal/util"
	"github.com/gin-gonic/gin"
)

type IndexController struct {
	*baseController
}

func (ic IndexController) Index(ctx *gin.Context) {
	util.ResponseSuccess(ctx, gin.H{
		"message": "Welcome to the " + util.GetAppName() + " api",
		"time":    time.Now().UTC(),
	})
}
