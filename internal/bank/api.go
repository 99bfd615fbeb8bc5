package bank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/nikitakapustkin/bankctl/pkg/logger"
)

const (
	eventLimitDefault = 100
	eventLimitMax     = 500
)

// Login authenticates against the external auth service and stores the
// returned credential. The upstream answers with either the bare token or a
// JSON-quoted string; both normalize to the same stored value.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	payload, err := c.Do(ctx, Descriptor{
		Path:     "/login",
		Method:   http.MethodPost,
		SkipAuth: true,
		Body: loginRequest{
			Username: strings.TrimSpace(username),
			Password: password,
		},
	})
	if err != nil {
		return "", err
	}

	token := normalizeTokenValue(payload)
	if token == "" {
		return "", ErrEmptyToken
	}

	if err := c.session.SetToken(ctx, token); err != nil {
		return "", err
	}
	return token, nil
}

// Logout revokes the session upstream and erases the stored credential even
// when the revocation call fails. With no stored credential there is nothing
// to revoke and logout succeeds as a no-op.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.Do(ctx, Descriptor{Path: "/logout", Method: http.MethodPost})
	if errors.Is(err, ErrNotAuthenticated) {
		err = nil
	}
	if err != nil {
		logger.WarnContext(ctx, "logout call failed, clearing session anyway",
			slog.String("error", err.Error()))
	}

	if clearErr := c.session.Clear(ctx); clearErr != nil {
		return clearErr
	}
	return err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	req.Login = strings.TrimSpace(req.Login)
	req.Name = strings.TrimSpace(req.Name)
	req.Sex = strings.ToUpper(strings.TrimSpace(req.Sex))
	req.HairColor = strings.ToUpper(strings.TrimSpace(req.HairColor))

	_, err := c.Do(ctx, Descriptor{
		Path:     "/users/register",
		Method:   http.MethodPost,
		SkipAuth: true,
		Body:     req,
	})
	return err
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	payload, err := c.Do(ctx, Descriptor{Path: "/users/me"})
	if err != nil {
		return nil, err
	}
	var user User
	if err := decodeInto(payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) MyAccounts(ctx context.Context) ([]Account, error) {
	payload, err := c.Do(ctx, Descriptor{Path: "/users/me/accounts"})
	if err != nil {
		return nil, err
	}
	var accounts []Account
	if err := decodeInto(payload, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) MyTransactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	return c.fetchTransactions(ctx, "/users/me/transactions", filter)
}

// CreateAccount opens a new account for the current user. It is retried
// under the sync policy because account creation immediately after
// registration races the user projection.
func (c *Client) CreateAccount(ctx context.Context) (*Account, error) {
	var account Account
	err := c.WithSyncRetry(ctx, "create account", func() error {
		payload, doErr := c.Do(ctx, Descriptor{Path: "/users/me/accounts", Method: http.MethodPost})
		if doErr != nil {
			return doErr
		}
		return decodeInto(payload, &account)
	})
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Deposit(ctx context.Context, accountID string, amount float64) error {
	if err := validateUUID(accountID, "account id"); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrAmountNotPositive
	}

	_, err := c.Do(ctx, Descriptor{
		Path:   fmt.Sprintf("/users/me/accounts/%s/deposit", accountID),
		Method: http.MethodPost,
		Body:   amountRequest{Amount: amount},
	})
	return err
}

func (c *Client) Withdraw(ctx context.Context, accountID string, amount float64) error {
	if err := validateUUID(accountID, "account id"); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrAmountNotPositive
	}

	_, err := c.Do(ctx, Descriptor{
		Path:   fmt.Sprintf("/users/me/accounts/%s/withdraw", accountID),
		Method: http.MethodPost,
		Body:   amountRequest{Amount: amount},
	})
	return err
}

func (c *Client) Transfer(ctx context.Context, fromAccountID, toAccountID string, amount float64) error {
	if err := validateUUID(fromAccountID, "from account id"); err != nil {
		return err
	}
	if err := validateUUID(toAccountID, "to account id"); err != nil {
		return err
	}
	if amount <= 0 {
		return ErrAmountNotPositive
	}

	_, err := c.Do(ctx, Descriptor{
		Path:   fmt.Sprintf("/users/me/accounts/%s/transfer", fromAccountID),
		Method: http.MethodPost,
		Body:   transferRequest{ToAccountID: toAccountID, Amount: amount},
	})
	return err
}

func (c *Client) AddFriend(ctx context.Context, friendID string) error {
	if err := validateUUID(friendID, "friend id"); err != nil {
		return err
	}
	_, err := c.Do(ctx, Descriptor{
		Path:   "/users/me/friends",
		Method: http.MethodPost,
		Body:   friendRequest{FriendID: friendID},
	})
	return err
}

func (c *Client) RemoveFriend(ctx context.Context, friendID string) error {
	if err := validateUUID(friendID, "friend id"); err != nil {
		return err
	}
	_, err := c.Do(ctx, Descriptor{
		Path:   "/users/me/friends",
		Method: http.MethodDelete,
		Body:   friendRequest{FriendID: friendID},
	})
	return err
}

func (c *Client) Users(ctx context.Context, filter UserFilter) ([]User, error) {
	path := "/users"
	query := BuildQuery(map[string]string{
		"hairColor": strings.ToUpper(strings.TrimSpace(filter.HairColor)),
		"sex":       strings.ToUpper(strings.TrimSpace(filter.Sex)),
	})
	if query != "" {
		path += "?" + query
	}

	payload, err := c.Do(ctx, Descriptor{Path: path})
	if err != nil {
		return nil, err
	}
	var users []User
	if err := decodeInto(payload, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) UserByID(ctx context.Context, userID string) (*User, error) {
	if err := validateUUID(userID, "user id"); err != nil {
		return nil, err
	}
	payload, err := c.Do(ctx, Descriptor{Path: "/users/" + userID})
	if err != nil {
		return nil, err
	}
	var user User
	if err := decodeInto(payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) Accounts(ctx context.Context) ([]Account, error) {
	payload, err := c.Do(ctx, Descriptor{Path: "/accounts"})
	if err != nil {
		return nil, err
	}
	var accounts []Account
	if err := decodeInto(payload, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c *Client) AccountByID(ctx context.Context, accountID string) (*Account, error) {
	if err := validateUUID(accountID, "account id"); err != nil {
		return nil, err
	}
	payload, err := c.Do(ctx, Descriptor{Path: "/accounts/" + accountID})
	if err != nil {
		return nil, err
	}
	var account Account
	if err := decodeInto(payload, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Transactions(ctx context.Context, filter TransactionFilter) ([]Transaction, error) {
	return c.fetchTransactions(ctx, "/transactions", filter)
}

func (c *Client) Events(ctx context.Context, filter EventFilter) ([]StorageEvent, error) {
	if err := validateOptionalUUID(filter.EntityID, "entity id"); err != nil {
		return nil, err
	}
	if err := validateOptionalUUID(filter.CorrelationID, "correlation id"); err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit == 0 {
		limit = eventLimitDefault
	}
	if limit < 1 || limit > eventLimitMax {
		return nil, fmt.Errorf("event limit must be between 1 and %d", eventLimitMax)
	}

	path := "/events"
	query := BuildQuery(map[string]string{
		"source":          strings.ToUpper(strings.TrimSpace(filter.Source)),
		"eventType":       strings.TrimSpace(filter.EventType),
		"entityId":        strings.TrimSpace(filter.EntityID),
		"correlationId":   strings.TrimSpace(filter.CorrelationID),
		"transactionType": strings.ToUpper(strings.TrimSpace(filter.TransactionType)),
		"limit":           strconv.Itoa(limit),
	})
	if query != "" {
		path += "?" + query
	}

	payload, err := c.Do(ctx, Descriptor{Path: path})
	if err != nil {
		return nil, err
	}
	var events []StorageEvent
	if err := decodeInto(payload, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) fetchTransactions(ctx context.Context, basePath string, filter TransactionFilter) ([]Transaction, error) {
	if err := validateOptionalUUID(filter.AccountID, "account id"); err != nil {
		return nil, err
	}

	path := basePath
	query := BuildQuery(map[string]string{
		"type":      strings.ToUpper(strings.TrimSpace(filter.Type)),
		"accountId": strings.TrimSpace(filter.AccountID),
	})
	if query != "" {
		path += "?" + query
	}

	payload, err := c.Do(ctx, Descriptor{Path: path})
	if err != nil {
		return nil, err
	}
	var transactions []Transaction
	if err := decodeInto(payload, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// normalizeTokenValue strips the quoting some upstreams wrap around a bare
// token string.
func normalizeTokenValue(payload any) string {
	switch value := payload.(type) {
	case nil:
		return ""
	case string:
		return strings.Trim(strings.TrimSpace(value), "\"")
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", value))
	}
}
