package controller

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/SeakMengs/SignFlow/internal/constant"
	filestorage "github.com/SeakMengs/SignFlow/internal/file_storage"
	"github.com/SeakMengs/SignFlow/internal/model"
	"github.com/SeakMengs/SignFlow/internal/util"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"github.com/gin-gonic/gin"
)

type DocumentController struct {
	*baseController
}

const (
	ErrDocumentRequired = "document file is required"
	ErrDocumentTooLarge = "document must not be larger than 20 MB"
	ErrDocumentNotPDF   = "document must be a PDF file"
)

// UploadDocument stores a PDF and returns the ref and page count used when
// creating a signing request.
func (dc DocumentController) UploadDocument(ctx *gin.Context) {
	user, err := dc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	fileHeader, err := ctx.FormFile("document")
	if err != nil {
		dc.app.Logger.Debugf("Failed to read document form file: %v", err)
		util.ResponseFailed(ctx, http.StatusBadRequest, "No document uploaded", util.GenerateErrorMessages(errors.New(ErrDocumentRequired), "document"), nil)
		return
	}

	if fileHeader.Size > constant.MAX_DOCUMENT_SIZE {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Document too large", util.GenerateErrorMessages(errors.New(ErrDocumentTooLarge), "document"), nil)
		return
	}

	if !util.IsPDF(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid document", util.GenerateErrorMessages(errors.New(ErrDocumentNotPDF), "document"), nil)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to read document", util.GenerateErrorMessages(err), nil)
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, constant.MAX_DOCUMENT_SIZE+1))
	if err != nil {
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to read document", util.GenerateErrorMessages(err), nil)
		return
	}
	if len(data) > constant.MAX_DOCUMENT_SIZE {
		util.ResponseFailed(ctx, http.StatusBadRequest, "Document too large", util.GenerateErrorMessages(errors.New(ErrDocumentTooLarge), "document"), nil)
		return
	}

	doc, err := dc.app.Documents.Put(ctx.Request.Context(), user.ID, fileHeader.Filename, data)
	if err != nil {
		if errors.Is(err, filestorage.ErrInvalidPDF) {
			util.ResponseFailed(ctx, http.StatusBadRequest, "Invalid document", util.GenerateErrorMessages(errors.New(ErrDocumentNotPDF), "document"), nil)
			return
		}
		dc.app.Logger.Errorf("Failed to store document for %s: %v", user.ID, err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to upload document", util.GenerateErrorMessages(err), nil)
		return
	}

	file := &model.File{
		OwnerUserID:    user.ID,
		FileName:       fileHeader.Filename,
		UniqueFileName: doc.Ref,
		BucketName:     doc.BucketName,
		ContentType:    doc.ContentType,
		Size:           doc.Size,
		PageCount:      doc.PageCount,
	}
	if dc.app.Files != nil {
		if _, err := dc.app.Files.Create(ctx.Request.Context(), nil, file); err != nil {
			// The object is already stored and is still usable as a documentRef.
			dc.app.Logger.Errorf("Failed to record document %s: %v", doc.Ref, err)
		}
	}

	util.ResponseSuccess(ctx, gin.H{
		"document": gin.H{
			"id":          file.ID,
			"documentRef": doc.Ref,
			"fileName":    file.ToBaseFilename(),
			"pageCount":   doc.PageCount,
			"size":        doc.Size,
		},
	})
}

// ownedFile loads the document row named by the :id param. Documents of other
// users are reported as missing.
func (dc DocumentController) ownedFile(ctx *gin.Context, userID string) (*model.File, error) {
	if dc.app.Files == nil {
		return nil, fmt.Errorf("%w: document %s", esign.ErrNotFound, ctx.Param("id"))
	}

	file, err := dc.app.Files.GetById(ctx.Request.Context(), nil, ctx.Param("id"))
	if err != nil {
		return nil, err
	}
	if file.OwnerUserID != userID {
		return nil, fmt.Errorf("%w: document %s", esign.ErrNotFound, file.ID)
	}
	return file, nil
}

func (dc DocumentController) GetDocumentById(ctx *gin.Context) {
	user, err := dc.getAuthUser(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	file, err := dc.ownedFile(ctx, user.ID)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	url, err := dc.app.Documents.PresignedURL(ctx.Request.Context(), file.UniqueFileName, constant.DOCUMENT_URL_EXPIRY)
	if err != nil {
		dc.app.Logger.Errorf("Failed to presign document %s: %v", file.UniqueFileName, err)
		util.ResponseFailed(ctx, http.StatusInternalServerError, "Failed to read document", util.GenerateErrorMessages(err), nil)
		return
	}

	util.ResponseSuccess(ctx, gin.H{
		"document": gin.H{
			"id":          file.ID,
			"documentRef": file.UniqueFileName,
			"fileName":    file.ToBaseFilename(),
			"pageCount":   file.PageCount,
			"size":        file.Size,
		},
		"url":       url,
		"expiresIn": int(constant.DOCUMENT_URL_EXPIRY.Seconds()),
	})
}

// DeleteDocument removes an uploaded document unless an active signing
// request of the owner still points at it.
func (dc DocumentController) DeleteDocument(ctx *gin.Context) {
	owner, err := dc.getOwner(ctx)
	if err != nil {
		util.ResponseFailed(ctx, http.StatusUnauthorized, "Unauthorized", util.GenerateErrorMessages(err), nil)
		return
	}

	file, err := dc.ownedFile(ctx, owner.UserID)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}

	owned, err := dc.app.Service.ListOwned(ctx.Request.Context(), owner)
	if err != nil {
		util.ResponseError(ctx, err)
		return
	}
	for _, r := range owned {
		if r.DocumentRef == file.UniqueFileName && (r.Status == esign.RequestStatusDraft || r.Status.IsActive()) {
			util.ResponseError(ctx, fmt.Errorf("%w: document is used by signing request %s", esign.ErrConflict, r.ID), "document")
			return
		}
	}

	if err := dc.app.Files.Delete(ctx.Request.Context(), nil, file); err != nil {
		util.ResponseError(ctx, err)
		return
	}

	util.ResponseSuccess(ctx, gin.H{"id": file.ID})
}
