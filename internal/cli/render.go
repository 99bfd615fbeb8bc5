package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/nikitakapustkin/bankctl/internal/bank"
	"github.com/nikitakapustkin/bankctl/internal/view"
)

func renderJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func renderUsers(w io.Writer, users []bank.User, accountCounts map[string]int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLOGIN\tNAME\tAGE\tSEX\tHAIR\tACCOUNTS")
	for _, user := range users {
		accounts := len(user.Accounts)
		if accountCounts != nil {
			accounts = accountCounts[user.ID]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%d\n",
			user.ID, user.Login, view.OrDash(user.Name), user.Age,
			view.OrDash(user.Sex), view.OrDash(user.HairColor), accounts)
	}
	return tw.Flush()
}

func renderAccounts(w io.Writer, accounts []bank.Account, txCounts map[string]int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOWNER\tBALANCE\tTRANSACTIONS")
	for _, account := range accounts {
		transactions := len(account.Transactions)
		if txCounts != nil {
			transactions = txCounts[account.AccountID]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n",
			account.AccountID, view.OrDash(account.OwnerID),
			view.Money(account.Balance), transactions)
	}
	return tw.Flush()
}

func renderTransactions(w io.Writer, transactions []bank.Transaction) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tACCOUNT\tTYPE\tAMOUNT\tCREATED")
	for _, tx := range transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			tx.TransactionID, tx.AccountID, tx.TransactionType,
			view.Money(tx.Amount), view.DateTime(tx.CreatedAt))
	}
	return tw.Flush()
}

func renderEvents(w io.Writer, events []bank.StorageEvent) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tTYPE\tENTITY\tTX TYPE\tAMOUNT\tTIME")
	for _, event := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			event.EventID, view.OrDash(event.Source), view.OrDash(event.EventType),
			view.OrDash(event.EntityID), view.OrDash(event.TransactionType),
			view.MoneyPtr(event.Amount), view.DateTime(event.EventTime))
	}
	return tw.Flush()
}
