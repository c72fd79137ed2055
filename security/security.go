package security

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateSecureToken generates a random URL-safe token, used for the
// remember-me vault keys.
func GenerateSecureToken() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ValidateContentType ensures the request has the correct content type
func ValidateContentType(contentType string) bool {
	validTypes := map[string]bool{
		"application/json":                  true,
		"application/x-www-form-urlencoded": true,
		"multipart/form-data":               true,
	}
	return validTypes[contentType]
}
