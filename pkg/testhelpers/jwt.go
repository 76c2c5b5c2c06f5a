// Package testhelpers provides utilities for testing farmcare-engine components.
package testhelpers

import (
	"encoding/base64"
	"fmt"
)

// GenerateTestJWT creates a test JWT token for use when verification is
// disabled. The token has a valid structure but no signature (alg: none).
// The subject must be the farmer's UUID.
func GenerateTestJWT(sub, name, email string) string {
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))

	payload := fmt.Sprintf(`{"sub":"%s"`, sub)
	if name != "" {
		payload += fmt.Sprintf(`,"name":"%s"`, name)
	}
	if email != "" {
		payload += fmt.Sprintf(`,"email":"%s"`, email)
	}
	payload += "}"

	encodedPayload := base64.RawURLEncoding.EncodeToString([]byte(payload))
	return fmt.Sprintf("%s.%s.", header, encodedPayload)
}

// GenerateTestJWTWithBearer returns the token with a "Bearer " prefix for the
// Authorization header.
func GenerateTestJWTWithBearer(sub, name, email string) string {
	return "Bearer " + GenerateTestJWT(sub, name, email)
}
