package controller

import (
	"net/http"

	"github.com/SeakMengs/SignFlow/internal/constant"
	"github.com/SeakMengs/SignFlow/internal/util"
	"github.com/gin-gonic/gin"
)

type ShortLinkController struct {
	*baseController
}

// ResolveShortLink turns /s/{token} into the full signing link.
func (sc ShortLinkController) ResolveShortLink(ctx *gin.Context) {
	link, err := sc.app.Service.ResolveShortLink(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"link":       link,
		"signingUrl": util.ToSigningURL(sc.app.Config.FrontendURL, link.SigningRequestID, link.Email, link.Token),
	})
}

func (sc ShortLinkController) ServeQRCode(ctx *gin.Context) {
	link, err := sc.app.Service.ResolveShortLink(ctx.Request.Context(), ctx.Param("token"))
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	png, err := util.GenerateQRCodePNG(util.ToShortLinkURL(sc.app.Config.FrontendURL, link.Token), constant.QR_CODE_SIZE)
	if err != nil {
		sc.app.Logger.Errorf("Failed to generate QR code: %v", err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to generate QR code", util.GenerateErrorMessages(err), nil)
		return
	}

	ctx.Header("Cache-Control", "private, max-age=300")
	ctx.Data(http.StatusOK, "image/png", png)
}
