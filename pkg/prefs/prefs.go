// Package prefs persists local user preferences (language, theme, session
// token) in a YAML file and mirrors display preferences to the server when
// a session exists.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arnold/smartgoals-api/pkg/client"
)

const (
	DefaultLanguage = "en"
	DefaultTheme    = "light"
)

// Prefs is the on-disk document.
type Prefs struct {
	Language  string `yaml:"language"`
	Theme     string `yaml:"theme"`
	Token     string `yaml:"token,omitempty"`
	ServerURL string `yaml:"server_url,omitempty"`
}

// Mirror receives best-effort copies of language and theme changes.
type Mirror interface {
	UpdateSettings(ctx context.Context, u client.SettingsUpdate) (*client.Settings, error)
}

// Store is loaded once and written through on every change.
type Store struct {
	path          string
	logger        *slog.Logger
	mirror        Mirror
	mirrorTimeout time.Duration

	mu     sync.Mutex
	data   Prefs
	closed bool
	wg     sync.WaitGroup

	// queued collects changes made while a mirror call is in flight; a
	// single drain goroutine sends them in order, newest value per field.
	queued    *client.SettingsUpdate
	mirroring bool
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMirror enables mirroring to m while a token is stored.
func WithMirror(m Mirror) Option {
	return func(s *Store) { s.mirror = m }
}

// DefaultPath returns ~/.smartgoals/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".smartgoals", "config.yaml"), nil
}

// Open loads the file at path. A missing file yields defaults.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:          path,
		logger:        slog.Default(),
		mirrorTimeout: 10 * time.Second,
		data:          Prefs{Language: DefaultLanguage, Theme: DefaultTheme},
	}
	for _, opt := range opts {
		opt(s)
	}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	if err := yaml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("parse preferences %s: %w", path, err)
	}
	if s.data.Language == "" {
		s.data.Language = DefaultLanguage
	}
	if s.data.Theme == "" {
		s.data.Theme = DefaultTheme
	}
	return s, nil
}

// SetMirror attaches m after Open, e.g. once a client exists.
func (s *Store) SetMirror(m Mirror) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mirror = m
}

func (s *Store) Get() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *Store) SetLanguage(lang string) error {
	return s.update(func(p *Prefs) { p.Language = lang }, client.SettingsUpdate{Language: &lang})
}

func (s *Store) SetTheme(theme string) error {
	return s.update(func(p *Prefs) { p.Theme = theme }, client.SettingsUpdate{Theme: &theme})
}

func (s *Store) SetToken(token string) error {
	return s.update(func(p *Prefs) { p.Token = token }, client.SettingsUpdate{})
}

func (s *Store) SetServerURL(u string) error {
	return s.update(func(p *Prefs) { p.ServerURL = u }, client.SettingsUpdate{})
}

// Close waits for outstanding mirror calls. Later changes are rejected.
func (s *Store) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

func (s *Store) update(fn func(*Prefs), remote client.SettingsUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("prefs: store closed")
	}

	next := s.data
	fn(&next)
	if err := s.writeLocked(next); err != nil {
		return err
	}
	s.data = next

	if s.mirror != nil && next.Token != "" && (remote.Language != nil || remote.Theme != nil) {
		s.queueLocked(remote)
	}
	return nil
}

func (s *Store) queueLocked(u client.SettingsUpdate) {
	if s.queued == nil {
		s.queued = &client.SettingsUpdate{}
	}
	if u.Language != nil {
		s.queued.Language = u.Language
	}
	if u.Theme != nil {
		s.queued.Theme = u.Theme
	}
	if !s.mirroring {
		s.mirroring = true
		s.wg.Add(1)
		go s.drain()
	}
}

func (s *Store) drain() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		u, m := s.queued, s.mirror
		s.queued = nil
		if u == nil || m == nil {
			s.mirroring = false
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()
		s.push(m, *u)
	}
}

func (s *Store) push(m Mirror, u client.SettingsUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), s.mirrorTimeout)
	defer cancel()
	if _, err := m.UpdateSettings(ctx, u); err != nil {
		s.logger.Warn("mirror preferences failed", "error", err)
	}
}

func (s *Store) writeLocked(p Prefs) error {
	raw, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace preferences: %w", err)
	}
	return nil
}
