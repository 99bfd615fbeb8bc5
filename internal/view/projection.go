package view

import (
	"strings"

	"github.com/nikitakapustkin/bankctl/internal/bank"
)

// GroupTransactionsByAccount buckets transactions under their account id.
// Transactions without an account id are dropped.
func GroupTransactionsByAccount(transactions []bank.Transaction) map[string][]bank.Transaction {
	grouped := make(map[string][]bank.Transaction)
	for _, tx := range transactions {
		if tx.AccountID == "" {
			continue
		}
		grouped[tx.AccountID] = append(grouped[tx.AccountID], tx)
	}
	return grouped
}

// EnrichAccounts joins each account with its transactions, producing the
// denormalized rows the client console renders.
func EnrichAccounts(accounts []bank.Account, transactions []bank.Transaction) []bank.Account {
	grouped := GroupTransactionsByAccount(transactions)
	enriched := make([]bank.Account, 0, len(accounts))
	for _, account := range accounts {
		account.Transactions = grouped[account.AccountID]
		enriched = append(enriched, account)
	}
	return enriched
}

// BuildProfileView replaces the profile's account list with the enriched one.
// A nil profile yields nil.
func BuildProfileView(profile *bank.User, enrichedAccounts []bank.Account) *bank.User {
	if profile == nil {
		return nil
	}
	projected := *profile
	projected.Accounts = enrichedAccounts
	return &projected
}

// Stats is the client console's summary line.
type Stats struct {
	AccountCount     int     `json:"accountCount"`
	TotalBalance     float64 `json:"totalBalance"`
	TransactionCount int     `json:"transactionCount"`
}

func BuildStats(accounts []bank.Account, transactions []bank.Transaction) Stats {
	var total float64
	for _, account := range accounts {
		total += account.Balance
	}
	return Stats{
		AccountCount:     len(accounts),
		TotalBalance:     total,
		TransactionCount: len(transactions),
	}
}

// TransactionCriteria is an in-memory filter over already-loaded
// transactions; blank fields match everything.
type TransactionCriteria struct {
	Type      string
	AccountID string
}

func FilterTransactions(transactions []bank.Transaction, criteria TransactionCriteria) []bank.Transaction {
	wantType := strings.ToUpper(strings.TrimSpace(criteria.Type))
	wantAccount := strings.TrimSpace(criteria.AccountID)

	filtered := make([]bank.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if wantType != "" && strings.ToUpper(string(tx.TransactionType)) != wantType {
			continue
		}
		if wantAccount != "" && tx.AccountID != wantAccount {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}

// AccountCountByOwner feeds the admin user table's accounts column.
func AccountCountByOwner(accounts []bank.Account) map[string]int {
	counts := make(map[string]int)
	for _, account := range accounts {
		if account.OwnerID == "" {
			continue
		}
		counts[account.OwnerID]++
	}
	return counts
}

// TransactionCountByAccount feeds the admin account table's activity column.
func TransactionCountByAccount(transactions []bank.Transaction) map[string]int {
	counts := make(map[string]int)
	for _, tx := range transactions {
		if tx.AccountID == "" {
			continue
		}
		counts[tx.AccountID]++
	}
	return counts
}

// FilterAccountsByOwner narrows the loaded account list to one owner.
func FilterAccountsByOwner(accounts []bank.Account, ownerID string) []bank.Account {
	filtered := make([]bank.Account, 0, len(accounts))
	for _, account := range accounts {
		if account.OwnerID == ownerID {
			filtered = append(filtered, account)
		}
	}
	return filtered
}

// AccountDetail is a single account enriched with how many of the loaded
// transactions touch it.
type AccountDetail struct {
	bank.Account
	TransactionsCount int `json:"transactionsCount"`
}

func BuildAccountDetail(account bank.Account, transactions []bank.Transaction) AccountDetail {
	count := 0
	for _, tx := range transactions {
		if tx.AccountID == account.AccountID {
			count++
		}
	}
	return AccountDetail{Account: account, TransactionsCount: count}
}
