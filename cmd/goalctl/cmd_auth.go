package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			if password == "" {
				password = os.Getenv("SMARTGOALS_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or SMARTGOALS_PASSWORD) are required")
			}

			auth, err := s.client.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if err := s.store.SetToken(auth.Token); err != nil {
				return err
			}
			if err := s.store.SetServerURL(s.server); err != nil {
				return err
			}
			s.printf("Logged in as %s\n", auth.User.Email)
			return nil
		}),
	}
	c.Flags().String("email", "", "account email")
	c.Flags().String("password", "", "account password")
	return c
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if err := s.store.SetToken(""); err != nil {
				return err
			}
			s.printf("Logged out\n")
			return nil
		}),
	}
}
