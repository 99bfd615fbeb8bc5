package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikitakapustkin/bankctl/internal/bank"
	"github.com/nikitakapustkin/bankctl/internal/session"
)

func (a *App) newLoginCommand() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Exchange credentials for a session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := a.client.Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}

			claims := session.DecodeClaims(token)
			if claims == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s), surface: %s\n",
				claims.Subject, claims.Role, session.HomeSurface(claims.Role))
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "login name")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func (a *App) newLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session upstream and drop the stored token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func (a *App) newRegisterCommand() *cobra.Command {
	req := bank.RegisterRequest{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new client profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Register(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s, now run: bankctl login -u %s\n",
				req.Login, req.Login)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Login, "login", "", "login name")
	cmd.Flags().StringVar(&req.Password, "password", "", "password")
	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().IntVar(&req.Age, "age", 0, "age in years")
	cmd.Flags().StringVar(&req.Sex, "sex", "", "MALE or FEMALE")
	cmd.Flags().StringVar(&req.HairColor, "hair-color", "", "hair color")
	_ = cmd.MarkFlagRequired("login")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("sex")
	_ = cmd.MarkFlagRequired("hair-color")

	return cmd
}

func (a *App) newWhoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the stored session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			claims, err := a.session.Claims(cmd.Context())
			if err != nil {
				return err
			}
			if claims == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "not authenticated")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", claims.Subject, claims.Role)
			return nil
		},
	}
}
