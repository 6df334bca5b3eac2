package controller

import (
	"net/http"

	"github.com/SeakMengs/SignFlow/internal/constant"
	"github.com/SeakMengs/SignFlow/internal/util"
	"github.com/gin-gonic/gin"
)

// SignController serves signers. Access is granted by the email and token pair
// of the signing link, never by a session.
type SignController struct {
	*baseController
}

type signerAccess struct {
	Email string `json:"email" form:"email" binding:"required,email"`
	Token string `json:"token" form:"token" binding:"strNotEmpty"`
}

func (sc SignController) GetSignerView(ctx *gin.Context) {
	var q signerAccess
	if err := ctx.ShouldBindQuery(&q); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid signing link", util.GenerateErrorMessages(err), nil)
		return
	}

	view, err := sc.app.Service.GetForSigner(ctx.Request.Context(), ctx.Param("id"), q.Email, q.Token)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"signingRequest": view,
	})
}

// GetDocument hands the signer a short-lived link to the source PDF.
func (sc SignController) GetDocument(ctx *gin.Context) {
	var q signerAccess
	if err := ctx.ShouldBindQuery(&q); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid signing link", util.GenerateErrorMessages(err), nil)
		return
	}

	view, err := sc.app.Service.GetForSigner(ctx.Request.Context(), ctx.Param("id"), q.Email, q.Token)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	url, err := sc.app.Documents.PresignedURL(ctx.Request.Context(), view.DocumentRef, constant.DOCUMENT_URL_EXPIRY)
	if err != nil {
		sc.app.Logger.Errorf("Failed to presign document %s: %v", view.DocumentRef, err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to read document", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"documentName": view.DocumentName,
		"url":          url,
		"expiresIn":    int(constant.DOCUMENT_URL_EXPIRY.Seconds()),
	})
}

type submitBody struct {
	signerAccess
	FieldValues map[string]string `json:"fieldValues" binding:"required"`
}

func (sc SignController) SubmitSignature(ctx *gin.Context) {
	var body submitBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	req, err := sc.app.Service.SubmitSignature(ctx.Request.Context(), ctx.Param("id"), body.Email, body.Token, body.FieldValues)
	if err != nil {
		sc.app.Logger.Debugf("Signature of %s on %s rejected: %v", body.Email, ctx.Param("id"), err)
		util.ResponseError(ctx, err, "fieldValues")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"status": req.Status,
	})
}

type declineBody struct {
	signerAccess
	Reason string `json:"reason" binding:"cmax=500"`
}

func (sc SignController) Decline(ctx *gin.Context) {
	var body declineBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	req, err := sc.app.Service.Decline(ctx.Request.Context(), ctx.Param("id"), body.Email, body.Token, body.Reason)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"status": req.Status,
	})
}
