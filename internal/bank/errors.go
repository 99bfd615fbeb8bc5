package bank

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotAuthenticated is returned before any network call when an
// authenticated request is attempted with no stored credential. It
// distinguishes "never logged in" from "server rejected".
var ErrNotAuthenticated = errors.New("authentication required: log in first")

// ErrEmptyToken is returned when /login answers without a usable credential.
var ErrEmptyToken = errors.New("login response contained an empty token")

// ErrAmountNotPositive rejects zero and negative money amounts locally,
// before any network call.
var ErrAmountNotPositive = errors.New("amount must be positive")

// APIError is the classified failure for every non-2xx upstream response.
// Code carries the machine-readable error code from the upstream error body
// (NOT_FOUND, NOT_ENOUGH_MONEY, ALREADY_EXISTS, ...) when one was supplied.
type APIError struct {
	Status  int
	Code    string
	Message string
}

// Error keeps the status machine-recoverable from the rendered text.
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Status, e.Message)
}

// AsAPIError unwraps err to the classified form, if it has one.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsStatus reports whether err is a classified upstream failure with the
// given HTTP status.
func IsStatus(err error, status int) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == status
}

// IsUserNotSynced recognizes the race between a user registration and the
// downstream projection of that user becoming queryable. The status comes
// from the structured error; the message prose is consulted only to tell a
// missing user apart from other 404s, since the upstream NOT_FOUND code does
// not name the entity.
func IsUserNotSynced(err error) bool {
	apiErr, ok := AsAPIError(err)
	if !ok || apiErr.Status != http.StatusNotFound {
		return false
	}
	message := strings.ToLower(apiErr.Message)
	return strings.Contains(message, "user with id") && strings.Contains(message, "not found")
}
