package util

import (
	"fmt"
	"net/url"
	"runtime"
	"strings"
)

func GetAppName() string {
	return "SignFlow"
}

func GetAppLogoURL(frontURL string) string {
	return frontURL + "/logo.png"
}

func DetermineWorkers(jobCount int) int {
	if jobCount <= 0 {
		return max(runtime.GOMAXPROCS(0), 1)
	}

	return min(max(runtime.GOMAXPROCS(0)*2, 1), jobCount)
}

// ToSigningURL is the page a signer lands on from an email.
func ToSigningURL(frontURL, requestID, email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return fmt.Sprintf("%s/sign/%s?%s", strings.TrimRight(frontURL, "/"), url.PathEscape(requestID), q.Encode())
}

// ToShortLinkURL only carries the token; the backend resolves the rest.
func ToShortLinkURL(frontURL, token string) string {
	return fmt.Sprintf("%s/s/%s", strings.TrimRight(frontURL, "/"), url.PathEscape(token))
}
