package auth

import (
	"errors"
	"strings"
)

const bearerPrefix = "Bearer "

// ErrMissingCredential reports an absent Authorization header or one not using the bearer scheme.
var ErrMissingCredential = errors.New("missing or malformed credential")

// ExtractBearerToken returns the credential carried by an Authorization header value.
func ExtractBearerToken(header string) (string, error) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMissingCredential
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", ErrMissingCredential
	}
	return token, nil
}
