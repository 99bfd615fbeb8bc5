package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nikitakapustkin/bankctl/internal/bank"
	"github.com/nikitakapustkin/bankctl/internal/session"
	"github.com/nikitakapustkin/bankctl/internal/view"
)

// clientState is one refresh cycle worth of data for the client surface:
// profile, own accounts and own transactions, loaded together so the
// projections never mix snapshots from different cycles.
type clientState struct {
	profile      *bank.User
	accounts     []bank.Account
	transactions []bank.Transaction
}

func (a *App) newClientCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Self-service surface for a logged-in client",
	}

	cmd.AddCommand(
		a.newClientRefreshCommand(),
		a.newClientCreateAccountCommand(),
		a.newClientDepositCommand(),
		a.newClientWithdrawCommand(),
		a.newClientTransferCommand(),
		a.newClientAddFriendCommand(),
		a.newClientRemoveFriendCommand(),
		a.newClientTransactionsCommand(),
	)

	return cmd
}

// loadClientState fetches the three client feeds in parallel, all or
// nothing, and retries the whole batch while the profile has not yet been
// synced into the bank's read model.
func (a *App) loadClientState(ctx context.Context) (*clientState, error) {
	state := &clientState{}

	err := a.client.WithSyncRetry(ctx, "client refresh", func() error {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			profile, err := a.client.Me(gctx)
			if err != nil {
				return err
			}
			state.profile = profile
			return nil
		})
		g.Go(func() error {
			accounts, err := a.client.MyAccounts(gctx)
			if err != nil {
				return err
			}
			state.accounts = accounts
			return nil
		})
		g.Go(func() error {
			transactions, err := a.client.MyTransactions(gctx, bank.TransactionFilter{})
			if err != nil {
				return err
			}
			state.transactions = transactions
			return nil
		})
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}

func (a *App) renderClientState(cmd *cobra.Command, state *clientState) error {
	enriched := view.EnrichAccounts(state.accounts, state.transactions)
	profile := view.BuildProfileView(state.profile, enriched)
	stats := view.BuildStats(enriched, state.transactions)

	if err := renderJSON(cmd.OutOrStdout(), profile); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "accounts: %d, balance: %s, transactions: %d\n",
		stats.AccountCount, view.Money(stats.TotalBalance), stats.TransactionCount)
	return nil
}

// refreshAfter re-runs the refresh cycle after a mutation so the operator
// sees the post-action state without a second command.
func (a *App) refreshAfter(cmd *cobra.Command) error {
	state, err := a.loadClientState(cmd.Context())
	if err != nil {
		return err
	}
	return a.renderClientState(cmd, state)
}

func (a *App) newClientRefreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Load profile, accounts and transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.requireRole(cmd.Context(), session.RoleClient); err != nil {
				return err
			}
			return a.refreshAfter(cmd)
		},
	}
}

func (a *App) newClientCreateAccountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-account",
		Short: "Open a new account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleClient); err != nil {
				return err
			}
			account, err := a.client.CreateAccount(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account created: %s\n", account.AccountID)
			return a.refreshAfter(cmd)
		},
	}
}

func (a *App) newClientDepositCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <account-id> <amount>",
		Short: "Deposit money into an own account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleClient); err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			if err := a.client.Deposit(ctx, args[0], amount); err != nil {
				return err
			}
			return a.refreshAfter(cmd)
		},
	}
}

func (a *App) newClientWithdrawCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <account-id> <amount>",
		Short: "Withdraw money from an own account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleClient); err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			if err := a.client.Withdraw(ctx, args[0], amount); err != nil {
				return err
			}
			return a.refreshAfter(cmd)
		},
	}
}

func (a *App) newClientTransferCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <from-account-id> <to-account-id> <amount>",
		Short: "Transfer money between accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleClient); err != nil {
				return err
			}
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			if err := a.client.Transfer(ctx, args[0], args[1], amount); err != nil {
				return err
			}
			return a.refreshAfter(cmd)
		},
	}
}

func (a *App) newClientAddFriendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add-friend <user-id>",
		Short: "Add another client as a friend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleClient); err != nil {
				return err
			}
			if err := a.client.AddFriend(ctx, args[0]); err != nil {
				return err
			}
			return a.refreshAfter(cmd)
		},
	}
}

func (a *App) newClientRemoveFriendCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-friend <user-id>",
		Short: "Remove a friend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleClient); err != nil {
				return err
			}
			if err := a.client.RemoveFriend(ctx, args[0]); err != nil {
				return err
			}
			return a.refreshAfter(cmd)
		},
	}
}

func (a *App) newClientTransactionsCommand() *cobra.Command {
	var txType, accountID string

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "List own transactions, filtered locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if _, err := a.requireRole(ctx, session.RoleClient); err != nil {
				return err
			}
			state, err := a.loadClientState(ctx)
			if err != nil {
				return err
			}
			filtered := view.FilterTransactions(state.transactions, view.TransactionCriteria{
				Type:      txType,
				AccountID: accountID,
			})
			return renderTransactions(cmd.OutOrStdout(), filtered)
		},
	}

	cmd.Flags().StringVar(&txType, "type", "", "DEPOSIT, WITHDRAWAL or TRANSFER")
	cmd.Flags().StringVar(&accountID, "account", "", "restrict to one account")

	return cmd
}

func parseAmount(raw string) (float64, error) {
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("amount %q is not a number", raw)
	}
	return amount, nil
}
