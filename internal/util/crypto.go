package util

import (
	"github.com/SeakMengs/SignFlow/internal/constant"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func GenerateNChar(n int) (string, error) {
	return gonanoid.New(n)
}

// GenerateSignerToken returns the secret carried by a signer's link. It is
// url safe, so it can sit in a query string or a /s/{token} path as is.
func GenerateSignerToken() (string, error) {
	return GenerateNChar(constant.SIGNER_TOKEN_LENGTH)
}
