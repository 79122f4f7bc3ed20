package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"
)

var (
	languages = []string{"en", "zh", "es"}
	themes    = []string{"light", "dark", "system"}
)

func newPrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change local preferences",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored preferences",
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			p := s.store.Get()
			loggedIn := "no"
			if p.Token != "" {
				loggedIn = "yes"
			}
			s.printf("language: %s\ntheme: %s\nserver: %s\nlogged in: %s\n", p.Language, p.Theme, s.server, loggedIn)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set-language <en|zh|es>",
		Short: "Change the display language",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if !slices.Contains(languages, args[0]) {
				return fmt.Errorf("unsupported language %q (en, zh, es)", args[0])
			}
			if err := s.store.SetLanguage(args[0]); err != nil {
				return err
			}
			s.printf("language: %s\n", args[0])
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "set-theme <light|dark|system>",
		Short: "Change the theme",
		Args:  cobra.ExactArgs(1),
		RunE: withSession(func(cmd *cobra.Command, s *session, args []string) error {
			if !slices.Contains(themes, args[0]) {
				return fmt.Errorf("unsupported theme %q (light, dark, system)", args[0])
			}
			if err := s.store.SetTheme(args[0]); err != nil {
				return err
			}
			s.printf("theme: %s\n", args[0])
			return nil
		}),
	})
	return cmd
}
