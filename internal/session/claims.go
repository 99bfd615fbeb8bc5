package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

const minJWTParts = 2

// Role is the access class embedded in the credential. It gates which console
// surfaces a session may use; the real authorization decision is made
// server-side on every request.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleClient  Role = "CLIENT"
	RoleService Role = "SERVICE"
)

// ParseRole normalizes a raw role value to its canonical upper-case form.
func ParseRole(raw string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(raw)))
}

// Claims is the advisory data decoded from the credential payload. It is
// recomputed from the stored token on every access and never cached, so it
// cannot go stale relative to the credential.
type Claims struct {
	Subject string
	Role    Role
	UserID  string
}

type jwtPayload struct {
	Sub    string  `json:"sub"`
	Role   *string `json:"role"`
	UserID string  `json:"userId"`
}

// DecodeClaims extracts Claims from the token's second dot-separated segment
// without verifying the signature. Malformed input (fewer than two segments,
// a non-base64url payload, non-JSON content, an absent or non-string role)
// yields nil as a whole rather than partially valid claims.
func DecodeClaims(token string) *Claims {
	if token == "" {
		return nil
	}

	parts := strings.Split(token, ".")
	if len(parts) < minJWTParts {
		return nil
	}

	segment := strings.TrimRight(parts[1], "=")
	payloadBytes, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return nil
	}

	var payload jwtPayload
	if err := json.Unmarshal(payloadBytes, &payload); err != nil {
		return nil
	}

	if payload.Role == nil || strings.TrimSpace(*payload.Role) == "" {
		return nil
	}

	return &Claims{
		Subject: payload.Sub,
		Role:    ParseRole(*payload.Role),
		UserID:  payload.UserID,
	}
}
