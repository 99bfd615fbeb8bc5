package bank

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const canonicalUUIDLength = 36

// BuildQuery encodes filter criteria, omitting blank values entirely instead
// of sending empty-string matches.
func BuildQuery(params map[string]string) string {
	query := url.Values{}
	for key, value := range params {
		text := strings.TrimSpace(value)
		if text == "" {
			continue
		}
		query.Set(key, text)
	}
	return query.Encode()
}

// IsUUID accepts only the canonical 8-4-4-4-12 textual form with a version
// nibble of 1-5 and an RFC 4122 variant. Braced, URN and compact forms that
// uuid.Parse would otherwise tolerate are rejected.
func IsUUID(value string) bool {
	value = strings.TrimSpace(value)
	if len(value) != canonicalUUIDLength {
		return false
	}

	parsed, err := uuid.Parse(value)
	if err != nil {
		return false
	}

	version := parsed.Version()
	if version < 1 || version > 5 {
		return false
	}

	return parsed.Variant() == uuid.RFC4122
}

func validateUUID(value, label string) error {
	if !IsUUID(value) {
		return fmt.Errorf("%s must be a canonical UUID", label)
	}
	return nil
}

func validateOptionalUUID(value, label string) error {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return validateUUID(value, label)
}
