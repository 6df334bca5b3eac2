package util

import (
	"errors"
	"net/http"

	constant "github.com/SeakMengs/SignFlow/internal/constant"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"github.com/gin-gonic/gin"
)

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Errors  any    `json:"errors,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func BuildResponseSuccess(data any) Response {
	return Response{
		Success: true,
		Message: constant.REQUEST_SUCCESSFUL,
		Data:    data,
	}
}

func ResponseSuccess(ctx *gin.Context, data any) {
	if data == nil {
		data = gin.H{}
	}

	ctx.JSON(http.StatusOK, BuildResponseSuccess(data))
	ctx.Abort()
}

func BuildResponseFailed(message string, err any, data any) Response {
	if message == "" {
		message = constant.REQUEST_UNSUCCESSFUL
	}

	if e, ok := err.(error); ok {
		err = GenerateErrorMessages(e)
	}

	if err == nil {
		err = gin.H{}
	}

	if data == nil {
		data = gin.H{}
	}

	return Response{
		Success: false,
		Message: message,
		Errors:  err,
		Data:    data,
	}
}

func ResponseFailed(ctx *gin.Context, code int, message string, err any, data any) {
	ctx.JSON(code, BuildResponseFailed(message, err, data))
	ctx.Abort()
}

// StatusFromError maps a signing error kind onto an HTTP status code.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, esign.ErrValidation), errors.Is(err, esign.ErrIncompleteFields):
		return http.StatusBadRequest
	case errors.Is(err, esign.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, esign.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, esign.ErrInvalidTransition),
		errors.Is(err, esign.ErrAlreadyVoided),
		errors.Is(err, esign.ErrAlreadySigned),
		errors.Is(err, esign.ErrOutOfTurn),
		errors.Is(err, esign.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, esign.ErrTransient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func messageFromStatus(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "Invalid request"
	case http.StatusForbidden:
		return "You do not have access to this signing request"
	case http.StatusNotFound:
		return "Signing request not found"
	case http.StatusConflict:
		return "The signing request cannot accept this action in its current state"
	case http.StatusServiceUnavailable:
		return "Service temporarily unavailable, please try again"
	}
	return constant.REQUEST_UNSUCCESSFUL
}

// ResponseError writes a failed response whose status follows the error kind.
// Internal errors never leak their message.
func ResponseError(ctx *gin.Context, err error, fieldName ...string) {
	code := StatusFromError(err)
	if code == http.StatusInternalServerError {
		ResponseFailed(ctx, code, "", []ApiError{{Field: "Unknown", Message: "Internal server error"}}, nil)
		return
	}

	var errs []ApiError
	if len(fieldName) > 0 {
		errs = GenerateErrorMessages(err, fieldName[0])
	} else {
		errs = GenerateErrorMessages(err)
	}
	ResponseFailed(ctx, code, messageFromStatus(code), errs, nil)
}
