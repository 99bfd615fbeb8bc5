package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nikitakapustkin/bankctl/internal/bank"
	"github.com/nikitakapustkin/bankctl/internal/session"
	"github.com/nikitakapustkin/bankctl/internal/view"
)

// adminState is one refresh cycle over the bank-wide feeds.
type adminState struct {
	users        []bank.User
	accounts     []bank.Account
	transactions []bank.Transaction
	events       []bank.StorageEvent
}

func (a *App) newAdminCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Bank-wide surface for administrators",
	}

	cmd.AddCommand(
		a.newAdminRefreshCommand(),
		a.newAdminUsersCommand(),
		a.newAdminUserCommand(),
		a.newAdminAccountsCommand(),
		a.newAdminAccountCommand(),
		a.newAdminTransactionsCommand(),
		a.newAdminEventsCommand(),
	)

	return cmd
}

func (a *App) loadAdminState(ctx context.Context) (*adminState, error) {
	state := &adminState{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		users, err := a.client.Users(gctx, bank.UserFilter{})
		if err != nil {
			return err
		}
		state.users = users
		return nil
	})
	g.Go(func() error {
		accounts, err := a.client.Accounts(gctx)
		if err != nil {
			return err
		}
		state.accounts = accounts
		return nil
	})
	g.Go(func() error {
		transactions, err := a.client.Transactions(gctx, bank.TransactionFilter{})
		if err != nil {
			return err
		}
		state.transactions = transactions
		return nil
	})
	g.Go(func() error {
		events, err := a.client.Events(gctx, bank.EventFilter{})
		if err != nil {
			return err
		}
		state.events = events
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return state, nil
}

func (a *App) newAdminRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Load all users, accounts, transactions and events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleAdmin); err != nil {
				return err
			}
			state, err := a.loadAdminState(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			stats := view.BuildStats(state.accounts, state.transactions)
			fmt.Fprintf(out, "users: %d, accounts: %d, balance: %s, transactions: %d, events: %d\n",
				len(state.users), stats.AccountCount, view.Money(stats.TotalBalance),
				stats.TransactionCount, len(state.events))

			if err := renderUsers(out, state.users, view.AccountCountByOwner(state.accounts)); err != nil {
				return err
			}
			return renderAccounts(out, state.accounts, view.TransactionCountByAccount(state.transactions))
		},
	}
}

func (a *App) newAdminUsersCommand() *cobra.Command {
	var hairColor, sex string

	cmd := &cobra.Command{
		Use:   "users",
		Short: "List users, optionally filtered upstream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleAdmin); err != nil {
				return err
			}
			users, err := a.client.Users(ctx, bank.UserFilter{HairColor: hairColor, Sex: sex})
			if err != nil {
				return err
			}
			return renderUsers(cmd.OutOrStdout(), users, nil)
		},
	}

	cmd.Flags().StringVar(&hairColor, "hair-color", "", "filter by hair color")
	cmd.Flags().StringVar(&sex, "sex", "", "filter by MALE or FEMALE")

	return cmd
}

func (a *App) newAdminUserCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "user <user-id>",
		Short: "Show one user profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleAdmin); err != nil {
				return err
			}
			user, err := a.client.UserByID(ctx, args[0])
			if err != nil {
				return err
			}
			return renderJSON(cmd.OutOrStdout(), user)
		},
	}
}

func (a *App) newAdminAccountsCommand() *cobra.Command {
	var ownerID string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts, optionally narrowed to one owner",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleAdmin); err != nil {
				return err
			}
			accounts, err := a.client.Accounts(ctx)
			if err != nil {
				return err
			}
			if ownerID != "" {
				accounts = view.FilterAccountsByOwner(accounts, ownerID)
			}
			return renderAccounts(cmd.OutOrStdout(), accounts, nil)
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "restrict to accounts of one user")

	return cmd
}

func (a *App) newAdminAccountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "account <account-id>",
		Short: "Show one account with its transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleAdmin); err != nil {
				return err
			}

			var account *bank.Account
			var transactions []bank.Transaction
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				found, err := a.client.AccountByID(gctx, args[0])
				if err != nil {
					return err
				}
				account = found
				return nil
			})
			g.Go(func() error {
				listed, err := a.client.Transactions(gctx, bank.TransactionFilter{AccountID: args[0]})
				if err != nil {
					return err
				}
				transactions = listed
				return nil
			})
			if err := g.Wait(); err != nil {
				return err
			}

			detail := view.BuildAccountDetail(*account, transactions)
			if err := renderJSON(cmd.OutOrStdout(), detail); err != nil {
				return err
			}
			return renderTransactions(cmd.OutOrStdout(), transactions)
		},
	}
}

func (a *App) newAdminTransactionsCommand() *cobra.Command {
	var txType, accountID string

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List transactions bank-wide, filtered upstream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleAdmin); err != nil {
				return err
			}
			transactions, err := a.client.Transactions(ctx, bank.TransactionFilter{
				Type:      txType,
				AccountID: accountID,
			})
			if err != nil {
				return err
			}
			return renderTransactions(cmd.OutOrStdout(), transactions)
		},
	}

	cmd.Flags().StringVar(&txType, "type", "", "DEPOSIT, WITHDRAWAL or TRANSFER")
	cmd.Flags().StringVar(&accountID, "account", "", "restrict to one account")

	return cmd
}

func (a *App) newAdminEventsCommand() *cobra.Command {
	filter := bank.EventFilter{}

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect the audit event feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleAdmin); err != nil {
				return err
			}
			events, err := a.client.Events(ctx, filter)
			if err != nil {
				return err
			}
			return renderEvents(cmd.OutOrStdout(), events)
		},
	}

	cmd.Flags().StringVar(&filter.Source, "source", "", "emitting service")
	cmd.Flags().StringVar(&filter.EventType, "event-type", "", "event type")
	cmd.Flags().StringVar(&filter.EntityID, "entity", "", "entity id")
	cmd.Flags().StringVar(&filter.CorrelationID, "correlation", "", "correlation id")
	cmd.Flags().StringVar(&filter.TransactionType, "transaction-type", "", "DEPOSIT, WITHDRAWAL or TRANSFER")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "max events, 1 to 500, 0 for the upstream default")

	return cmd
}
