package store

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drivenmind/models"
)

func newTestSessionFile(t *testing.T) *SessionFile {
	t.Helper()
	return NewSessionFile(filepath.Join(t.TempDir(), "session.json"), log.New(io.Discard, "", 0))
}

func TestSessionFileRoundTrip(t *testing.T) {
	f := newTestSessionFile(t)

	assert.Nil(t, f.LoadIdentity())

	user := &models.User{ID: "1", Email: "admin@drivenmind.io", Role: models.RoleAdmin}
	require.NoError(t, f.SaveIdentity(user))

	loaded := f.LoadIdentity()
	require.NotNil(t, loaded)
	assert.Equal(t, "1", loaded.ID)
	assert.Equal(t, models.RoleAdmin, loaded.Role)

	require.NoError(t, f.ClearIdentity())
	assert.Nil(t, f.LoadIdentity())
	// Clearing twice is fine
	require.NoError(t, f.ClearIdentity())
}

func TestSessionFileDiscardsCorruptContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("][garbage"), 0o600))

	f := NewSessionFile(path, log.New(io.Discard, "", 0))
	assert.Nil(t, f.LoadIdentity())

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestVisitorIDIsStable(t *testing.T) {
	f := newTestSessionFile(t)

	first, err := f.VisitorID()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := f.VisitorID()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVisitorIDSurvivesIdentityChurn(t *testing.T) {
	f := newTestSessionFile(t)

	id, err := f.VisitorID()
	require.NoError(t, err)

	require.NoError(t, f.SaveIdentity(&models.User{ID: "4", Email: "user@example.com"}))
	require.NoError(t, f.ClearIdentity())

	again, err := f.VisitorID()
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestSessionFileCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	f := NewSessionFile(path, log.New(io.Discard, "", 0))

	require.NoError(t, f.SaveIdentity(&models.User{ID: "1"}))
	require.NotNil(t, f.LoadIdentity())
}
