package bank

import "time"

type TransactionType string

const (
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTransfer   TransactionType = "TRANSFER"
)

// User mirrors the upstream user shape. Fields the server omits decode to
// their zero values.
type User struct {
	ID            string    `json:"id"`
	Login         string    `json:"login"`
	Name          string    `json:"name"`
	Age           int       `json:"age"`
	Sex           string    `json:"sex"`
	HairColor     string    `json:"hairColor"`
	FriendsLogins []string  `json:"friendsLogins,omitempty"`
	Accounts      []Account `json:"accounts,omitempty"`
}

type Account struct {
	AccountID    string        `json:"accountId"`
	OwnerID      string        `json:"ownerId,omitempty"`
	Balance      float64       `json:"balance"`
	Transactions []Transaction `json:"transactions,omitempty"`
}

type Transaction struct {
	TransactionID   string          `json:"transactionId"`
	AccountID       string          `json:"accountId"`
	TransactionType TransactionType `json:"transactionType"`
	Amount          float64         `json:"amount"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// StorageEvent is one row of the audit event feed. Amount is a pointer
// because most event kinds carry no money amount at all.
type StorageEvent struct {
	EventID          string     `json:"eventId"`
	CorrelationID    string     `json:"correlationId,omitempty"`
	Source           string     `json:"source,omitempty"`
	EntityID         string     `json:"entityId,omitempty"`
	TransactionID    string     `json:"transactionId,omitempty"`
	TransactionType  string     `json:"transactionType,omitempty"`
	Amount           *float64   `json:"amount,omitempty"`
	CreatedAt        time.Time  `json:"createdAt,omitempty"`
	EventType        string     `json:"eventType,omitempty"`
	EventTime        time.Time  `json:"eventTime,omitempty"`
	EventDescription string     `json:"eventDescription,omitempty"`
	PayloadType      string     `json:"payloadType,omitempty"`
	Payload          string     `json:"payload,omitempty"`
}

type RegisterRequest struct {
	Login     string `json:"login"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Sex       string `json:"sex"`
	HairColor string `json:"hairColor"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

type transferRequest struct {
	ToAccountID string  `json:"toAccountId"`
	Amount      float64 `json:"amount"`
}

type friendRequest struct {
	FriendID string `json:"friendId"`
}

// UserFilter narrows the admin user listing; blank fields are omitted from
// the query string.
type UserFilter struct {
	HairColor string
	Sex       string
}

type TransactionFilter struct {
	Type      string
	AccountID string
}

// EventFilter narrows the audit event feed. Limit 0 means the upstream
// default of 100.
type EventFilter struct {
	Source          string
	EventType       string
	EntityID        string
	CorrelationID   string
	TransactionType string
	Limit           int
}
