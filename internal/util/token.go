package util

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// ReadAuthorizationHeader splits the Authorization header into scheme and credentials.
func ReadAuthorizationHeader(ctx *gin.Context) (string, string, error) {
	header := strings.TrimSpace(ctx.GetHeader("Authorization"))
	if header == "" {
		return "", "", errors.New("no authorization header specified")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found {
		return "", "", errors.New("wrong authorization header format")
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", "", errors.New("token is empty")
	}

	return strings.ToUpper(scheme), token, nil
}

// ReadBearerToken returns the owner's access token. Signers never send one;
// they authenticate with the token of their signing link instead.
func ReadBearerToken(ctx *gin.Context) (string, error) {
	scheme, token, err := ReadAuthorizationHeader(ctx)
	if err != nil {
		return "", err
	}

	if scheme != "BEARER" {
		return "", errors.New("invalid token type; expected 'Bearer'")
	}

	return token, nil
}
