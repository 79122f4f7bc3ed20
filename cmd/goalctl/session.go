package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/arnold/smartgoals-api/pkg/client"
	"github.com/arnold/smartgoals-api/pkg/prefs"
)

const defaultServerURL = "http://localhost:8080"

var errNotLoggedIn = errors.New("not logged in, run 'goalctl login' first")

// session bundles the preferences store and an API client configured from
// flags, the environment and stored preferences, in that order.
type session struct {
	store  *prefs.Store
	client *client.Client
	server string
	out    io.Writer
	logger *slog.Logger
}

func openSession(cmd *cobra.Command) (*session, error) {
	level := slog.LevelWarn
	if v, _ := cmd.Flags().GetBool("verbose"); v {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		p, err := prefs.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	store, err := prefs.Open(path, prefs.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	server, _ := cmd.Flags().GetString("server-url")
	if server == "" {
		server = os.Getenv("SMARTGOALS_SERVER_URL")
	}
	if server == "" {
		server = store.Get().ServerURL
	}
	if server == "" {
		server = defaultServerURL
	}

	c := client.New(server, client.WithToken(store.Get().Token), client.WithLogger(logger))
	store.SetMirror(c)

	return &session{store: store, client: c, server: server, out: cmd.OutOrStdout(), logger: logger}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func (s *session) requireLogin() error {
	if s.client.Token() == "" {
		return errNotLoggedIn
	}
	return nil
}

func (s *session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// withSession opens a session for RunE and closes it afterwards.
func withSession(fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(cmd, s, args)
	}
}

// authed is withSession for commands that need a stored token.
func authed(fn func(cmd *cobra.Command, s *session, args []string) error) func(*cobra.Command, []string) error {
	return withSession(func(cmd *cobra.Command, s *session, args []string) error {
		if err := s.requireLogin(); err != nil {
			return err
		}
		return fn(cmd, s, args)
	})
}
