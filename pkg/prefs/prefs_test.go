package prefs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/smartgoals-api/pkg/client"
)

type fakeMirror struct {
	mu    sync.Mutex
	calls []client.SettingsUpdate
	err   error
	// gate, when set, holds every call until a value is received
	gate    chan struct{}
	started chan struct{}
}

func (f *fakeMirror) UpdateSettings(ctx context.Context, u client.SettingsUpdate) (*client.Settings, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, u)
	if f.err != nil {
		return nil, f.err
	}
	return &client.Settings{}, nil
}

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	p := s.Get()
	assert.Equal(t, DefaultLanguage, p.Language)
	assert.Equal(t, DefaultTheme, p.Theme)
	assert.Empty(t, p.Token)
}

func TestChangesAreWrittenThrough(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	s, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, s.SetLanguage("zh"))
	require.NoError(t, s.SetTheme("dark"))
	require.NoError(t, s.SetToken("tok"))
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, Prefs{Language: "zh", Theme: "dark", Token: "tok"}, reopened.Get())
}

func TestCorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: [unclosed"), 0o600))

	_, err := Open(path)
	assert.Error(t, err)
}

func TestMirrorOnlyWithToken(t *testing.T) {
	m := &fakeMirror{}
	s, err := Open(filepath.Join(t.TempDir(), "config.yaml"), WithMirror(m))
	require.NoError(t, err)

	require.NoError(t, s.SetTheme("dark"))
	require.NoError(t, s.SetToken("tok"))
	require.NoError(t, s.SetLanguage("es"))
	require.NoError(t, s.Close())

	require.Len(t, m.calls, 1)
	require.NotNil(t, m.calls[0].Language)
	assert.Equal(t, "es", *m.calls[0].Language)
	assert.Nil(t, m.calls[0].Theme)
}

func TestMirrorFailureIsSwallowed(t *testing.T) {
	m := &fakeMirror{err: errors.New("offline")}
	s, err := Open(filepath.Join(t.TempDir(), "config.yaml"), WithMirror(m))
	require.NoError(t, err)

	require.NoError(t, s.SetToken("tok"))
	require.NoError(t, s.SetTheme("system"))
	require.NoError(t, s.Close())

	assert.Equal(t, "system", s.Get().Theme)
	assert.Len(t, m.calls, 1)
}

func TestClosedStoreRejectsChanges(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	assert.Error(t, s.SetLanguage("es"))
}

func TestMirrorSendsChangesInOrder(t *testing.T) {
	m := &fakeMirror{gate: make(chan struct{}), started: make(chan struct{}, 4)}
	s, err := Open(filepath.Join(t.TempDir(), "config.yaml"), WithMirror(m))
	require.NoError(t, err)
	require.NoError(t, s.SetToken("tok"))

	require.NoError(t, s.SetLanguage("zh"))
	<-m.started
	// queued behind the in-flight call and folded into one update
	require.NoError(t, s.SetLanguage("es"))
	require.NoError(t, s.SetTheme("dark"))
	require.NoError(t, s.SetLanguage("en"))

	close(m.gate)
	require.NoError(t, s.Close())

	require.Len(t, m.calls, 2)
	assert.Equal(t, "zh", *m.calls[0].Language)
	require.NotNil(t, m.calls[1].Language)
	require.NotNil(t, m.calls[1].Theme)
	assert.Equal(t, "en", *m.calls[1].Language)
	assert.Equal(t, "dark", *m.calls[1].Theme)
}
