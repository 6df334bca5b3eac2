package controller

import (
	"net/http"
	"time"

	"github.com/SeakMengs/SignFlow/internal/constant"
	"github.com/SeakMengs/SignFlow/internal/util"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"github.com/gin-gonic/gin"
)

type SigningRequestController struct {
	*baseController
}

type signerBody struct {
	Order  int    `json:"order" form:"order" binding:"required,min=1"`
	Name   string `json:"name" form:"name" binding:"strNotEmpty,cmax=255"`
	Email  string `json:"email" form:"email" binding:"required,email"`
	IsSelf bool   `json:"isSelf" form:"isSelf"`
}

type fieldBody struct {
	ID          string  `json:"id" binding:"strNotEmpty,cmax=64"`
	SignerOrder int     `json:"signerOrder" binding:"required,min=1"`
	FieldType   string  `json:"fieldType" binding:"required,oneof=signature initials date text checkbox"`
	PageNumber  int     `json:"pageNumber" binding:"required,min=1"`
	X           float64 `json:"x" binding:"min=0,max=100"`
	Y           float64 `json:"y" binding:"min=0,max=100"`
	Width       float64 `json:"width" binding:"gt=0,max=100"`
	Height      float64 `json:"height" binding:"gt=0,max=100"`
	Required    bool    `json:"required"`
}

type signingRequestBody struct {
	DocumentName         string       `json:"documentName" binding:"strNotEmpty,cmax=255"`
	DocumentRef          string       `json:"documentRef" binding:"strNotEmpty"`
	DocumentPageCount    int          `json:"documentPageCount" binding:"min=0"`
	Message              string       `json:"message" binding:"cmax=2000"`
	DueDate              *time.Time   `json:"dueDate"`
	Ordering             string       `json:"ordering" binding:"omitempty,oneof=parallel sequential"`
	ReminderIntervalDays int          `json:"reminderIntervalDays" binding:"min=0,max=365"`
	Signers              []signerBody `json:"signers" binding:"required,min=1,dive"`
	Fields               []fieldBody  `json:"fields" binding:"required,min=1,dive"`
	// Send is true unless the request should be kept as a draft.
	Send *bool `json:"send"`
}

func (b signingRequestBody) toPayload() esign.CreatePayload {
	p := esign.CreatePayload{
		DocumentName:         b.DocumentName,
		DocumentRef:          b.DocumentRef,
		DocumentPageCount:    b.DocumentPageCount,
		Message:              b.Message,
		DueDate:              b.DueDate,
		Ordering:             esign.Ordering(b.Ordering),
		ReminderIntervalDays: b.ReminderIntervalDays,
	}
	for _, s := range b.Signers {
		p.Signers = append(p.Signers, esign.SignerInput{Order: s.Order, Name: s.Name, Email: s.Email, IsSelf: s.IsSelf})
	}
	for _, f := range b.Fields {
		p.Fields = append(p.Fields, esign.Field{
			ID:          f.ID,
			SignerOrder: f.SignerOrder,
			Type:        esign.FieldType(f.FieldType),
			PageNumber:  f.PageNumber,
			X:           f.X,
			Y:           f.Y,
			Width:       f.Width,
			Height:      f.Height,
			Required:    f.Required,
		})
	}
	return p
}

func (sc SigningRequestController) CreateSigningRequest(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var body signingRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	var result *esign.CreateResult
	if body.Send == nil || *body.Send {
		result, err = sc.app.Service.CreateAndSend(ctx.Request.Context(), owner, body.toPayload())
	} else {
		result, err = sc.app.Service.CreateDraft(ctx.Request.Context(), owner, body.toPayload())
	}
	if err != nil {
		sc.app.Logger.Debugf("Failed to create signing request for %s: %v", owner.UserID, err)
		util.ResponseError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, util.BuildResponseSuccess(gin.H{
		"signingRequest": result,
	}))
}

type listQuery struct {
	Page     uint   `form:"page" binding:"omitempty,min=1"`
	PageSize uint   `form:"pageSize" binding:"omitempty,min=1"`
	Status   string `form:"status" binding:"omitempty,oneof=draft pending in_progress completed expired voided"`
}

func (sc SigningRequestController) respondList(ctx *gin.Context, q listQuery, requests []esign.SigningRequest) {
	if q.Status != "" {
		filtered := make([]esign.SigningRequest, 0, len(requests))
		for _, r := range requests {
			if string(r.Status) == q.Status {
				filtered = append(filtered, r)
			}
		}
		requests = filtered
	}

	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 || q.PageSize > constant.MaxPageSize {
		q.PageSize = constant.DefaultPageSize
	}

	start, end := util.Paginate(len(requests), q.Page, q.PageSize)
	util.ResponseSuccess(ctx, gin.H{
		"signingRequests": requests[start:end],
		"total":           len(requests),
		"page":            q.Page,
		"pageSize":        q.PageSize,
		"totalPage":       util.CalculateTotalPage(int64(len(requests)), q.PageSize),
	})
}

// ListSigningRequests lists the requests the caller sent.
func (sc SigningRequestController) ListSigningRequests(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var q listQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	requests, err := sc.app.Service.ListOwned(ctx.Request.Context(), owner)
	if err != nil {
		sc.app.Logger.Errorf("Failed to list signing requests of %s: %v", owner.UserID, err)
		util.ResponseError(ctx, err)
		return
	}
	sc.respondList(ctx, q, requests)
}

// ListInbox lists the requests the caller's email has been asked to sign.
func (sc SigningRequestController) ListInbox(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var q listQuery
	if err := ctx.ShouldBindQuery(&q); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	requests, err := sc.app.Service.ListInbox(ctx.Request.Context(), owner.Email)
	if err != nil {
		sc.app.Logger.Errorf("Failed to list inbox of %s: %v", owner.Email, err)
		util.ResponseError(ctx, err)
		return
	}
	sc.respondList(ctx, q, requests)
}

func (sc SigningRequestController) GetSigningRequestById(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	req, err := sc.app.Service.GetForOwner(ctx.Request.Context(), owner, ctx.Param("id"))
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"signingRequest": req,
	})
}

// UpdateDraft replaces the structure of a request that has not been sent yet.
func (sc SigningRequestController) UpdateDraft(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var body signingRequestBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	req, err := sc.app.Service.UpdateDraft(ctx.Request.Context(), owner, ctx.Param("id"), body.toPayload())
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"signingRequest": req,
	})
}

func (sc SigningRequestController) SendDraft(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	result, err := sc.app.Service.SendDraft(ctx.Request.Context(), owner, ctx.Param("id"))
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"signingRequest": result,
	})
}

type settingsBody struct {
	Message              *string    `json:"message" binding:"omitempty,cmax=2000"`
	DueDate              *time.Time `json:"dueDate"`
	ClearDueDate         bool       `json:"clearDueDate"`
	ReminderIntervalDays *int       `json:"reminderIntervalDays" binding:"omitempty,min=1,max=365"`
}

func (sc SigningRequestController) UpdateSettings(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var body settingsBody
	if err := ctx.ShouldBindJSON(&body); err != nil {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
		return
	}

	req, err := sc.app.Service.UpdateSettings(ctx.Request.Context(), owner, ctx.Param("id"), esign.Settings{
		Message:              body.Message,
		DueDate:              body.DueDate,
		ClearDueDate:         body.ClearDueDate,
		ReminderIntervalDays: body.ReminderIntervalDays,
	})
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"signingRequest": req,
	})
}

type voidBody struct {
	Reason string `json:"reason" binding:"cmax=500"`
}

func (sc SigningRequestController) VoidSigningRequest(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var body voidBody
	// The reason is optional, so an empty body is accepted.
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&body); err != nil {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
			return
		}
	}

	req, report, err := sc.app.Service.VoidRequest(ctx.Request.Context(), owner, ctx.Param("id"), body.Reason)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"signingRequest": req,
		"notifications":  report,
	})
}

type resendBody struct {
	Email string `json:"email" binding:"omitempty,email"`
}

// Resend re-delivers the existing links of one signer, or of every signer
// who has not acted when no email is given.
func (sc SigningRequestController) Resend(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	var body resendBody
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&body); err != nil {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid request", util.GenerateErrorMessages(err), nil)
			return
		}
	}

	report, err := sc.app.Service.Resend(ctx.Request.Context(), owner, ctx.Param("id"), body.Email)
	if err != nil {
		util.ResponseError(ctx, err, "email")
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"notifications": report,
	})
}

type shareLink struct {
	esign.ShortLink
	SigningURL string `json:"signingUrl"`
	ShortURL   string `json:"shortUrl"`
}

func (sc SigningRequestController) ShareLinks(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	links, err := sc.app.Service.ShareLinks(ctx.Request.Context(), owner, ctx.Param("id"))
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	frontURL := sc.app.Config.FrontendURL
	out := make([]shareLink, 0, len(links))
	for _, l := range links {
		out = append(out, shareLink{
			ShortLink:  l,
			SigningURL: util.ToSigningURL(frontURL, l.SigningRequestID, l.Email, l.Token),
			ShortURL:   util.ToShortLinkURL(frontURL, l.Token),
		})
	}

	util.ResponseSuccess(ctx, gin.H{
		"links": out,
	})
}

// GetLogs returns the audit trail of a request to its owner.
func (sc SigningRequestController) GetLogs(ctx *gin.Context) {
	owner, err := sc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	req, err := sc.app.Service.GetForOwner(ctx.Request.Context(), owner, ctx.Param("id"))
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	if sc.app.AuditTrail == nil {
		util.ResponseSuccess(ctx, gin.H{"logs": []any{}})
		return
	}

	logs, err := sc.app.AuditTrail.ListBySigningRequestID(ctx.Request.Context(), nil, req.ID)
	if err != nil {
		sc.app.Logger.Errorf("Failed to list logs of signing request %s: %v", req.ID, err)
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"logs": logs,
	})
}
