package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/nikitakapustkin/bankctl/internal/bank"
	"github.com/nikitakapustkin/bankctl/internal/session"
)

// Walks the full client flow against a live bank gateway: login, profile
// fetch with sync retry, account creation, deposit, logout.
func main() {
	if len(os.Args) < 3 {
		log.Fatalf("Usage: %s <username> <password> [base-url]", os.Args[0])
	}

	username := os.Args[1]
	password := os.Args[2]
	baseURL := "http://localhost:8080"
	if len(os.Args) > 3 {
		baseURL = os.Args[3]
	}

	ctx := context.Background()
	sess := session.New(session.NewMemoryStore(""))
	client := bank.NewClient(baseURL, sess, 30*time.Second, bank.DefaultRetryPolicy())

	token, err := client.Login(ctx, username, password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	claims := session.DecodeClaims(token)
	if claims == nil {
		log.Fatalf("Login returned an undecodable token: %q", token)
	}
	fmt.Printf("✅ Logged in as %s (%s)\n", claims.Subject, claims.Role)

	var profile *bank.User
	err = client.WithSyncRetry(ctx, "profile fetch", func() error {
		fetched, fetchErr := client.Me(ctx)
		if fetchErr != nil {
			return fetchErr
		}
		profile = fetched
		return nil
	})
	if err != nil {
		log.Fatalf("Profile fetch failed: %v", err)
	}
	fmt.Printf("✅ Profile synced: id=%s login=%s\n", profile.ID, profile.Login)

	account, err := client.CreateAccount(ctx)
	if err != nil {
		log.Fatalf("Account creation failed: %v", err)
	}
	fmt.Printf("✅ Account created: %s\n", account.AccountID)

	if err := client.Deposit(ctx, account.AccountID, 100); err != nil {
		log.Fatalf("Deposit failed: %v", err)
	}

	accounts, err := client.MyAccounts(ctx)
	if err != nil {
		log.Fatalf("Account listing failed: %v", err)
	}
	for _, acc := range accounts {
		if acc.AccountID == account.AccountID && acc.Balance < 100 {
			log.Fatalf("Deposit not reflected: balance=%v", acc.Balance)
		}
	}
	fmt.Printf("✅ Deposit reflected across %d account(s)\n", len(accounts))

	if err := client.Logout(ctx); err != nil {
		log.Fatalf("Logout failed: %v", err)
	}
	if _, err := client.Me(ctx); err == nil {
		log.Fatalf("Profile fetch succeeded after logout")
	}
	fmt.Println("✅ Logout dropped the session")
}
