package controller

import (
	"encoding/json"
	"errors"
	"fmt"

	appcontext "github.com/SeakMengs/SignFlow/internal/app_context"
	"github.com/SeakMengs/SignFlow/internal/auth"
	"github.com/SeakMengs/SignFlow/pkg/esign"
	"github.com/gin-gonic/gin"
)

type baseController struct {
	app *appcontext.Application
}

type Controller struct {
	Index          *IndexController
	Document       *DocumentController
	SigningRequest *SigningRequestController
	Sign           *SignController
	ShortLink      *ShortLinkController
}

func newBaseController(app *appcontext.Application) *baseController {
	return &baseController{app: app}
}

func NewController(app *appcontext.Application) *Controller {
	bc := newBaseController(app)

	return &Controller{
		Index:          &IndexController{baseController: bc},
		Document:       &DocumentController{baseController: bc},
		SigningRequest: &SigningRequestController{baseController: bc},
		Sign:           &SignController{baseController: bc},
		ShortLink:      &ShortLinkController{baseController: bc},
	}
}

func (b *baseController) getAuthUser(ctx *gin.Context) (*auth.JWTPayload, error) {
	user, exists := ctx.Get("user")
	if !exists {
		return nil, errors.New("user not found in context")
	}

	if payload, ok := user.(auth.JWTPayload); ok {
		return &payload, nil
	}

	jsonUser, err := json.Marshal(user)
	if err != nil {
		return nil, err
	}

	var authUser *auth.JWTPayload
	err = json.Unmarshal(jsonUser, &authUser)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return authUser, nil
}

// getOwner turns the authenticated user into the sender identity of the signing core.
func (b *baseController) getOwner(ctx *gin.Context) (esign.Owner, error) {
	user, err := b.getAuthUser(ctx)
	if err != nil {
		return esign.Owner{}, err
	}
	return esign.Owner{UserID: user.ID, Name: user.Name, Email: user.Email}, nil
}
