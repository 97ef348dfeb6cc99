package desktop

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newDesktopPictureDB creates a database with the Dock's tables and n picture slots.
func newDesktopPictureDB(t *testing.T, n int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "desktoppicture.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE data (value)`,
		`CREATE TABLE preferences (key INTEGER, data_id INTEGER, picture_id INTEGER)`,
		`CREATE TABLE pictures (space_id INTEGER, display_id INTEGER)`,
		`INSERT INTO data (value) VALUES ('/System/Library/Desktop Pictures/Sonoma.heic')`,
		`INSERT INTO preferences (key, data_id, picture_id) VALUES (1, 1, 1)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	for i := 0; i < n; i++ {
		_, err := db.Exec(`INSERT INTO pictures (space_id, display_id) VALUES (?, 1)`, i+1)
		require.NoError(t, err)
	}
	return path
}

func queryInt(t *testing.T, path, q string, args ...any) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(q, args...).Scan(&n))
	return n
}

func TestDatastore_RewritesEverySlot(t *testing.T) {
	path := newDesktopPictureDB(t, 4)
	runner := &fakeRunner{}
	p := NewDatastorePropagator(path, runner)

	res, err := p.PropagateToAllSpaces(context.Background(), "/lib/a.png", builtin)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Spaces)
	assert.False(t, res.Partial())

	assert.Equal(t, 4, queryInt(t, path, `SELECT COUNT(*) FROM preferences`))
	dataID := queryInt(t, path, `SELECT rowid FROM data WHERE value = ?`, "/lib/a.png")
	assert.Equal(t, 4, queryInt(t, path, `SELECT COUNT(*) FROM preferences WHERE key = 1 AND data_id = ?`, dataID))
	assert.Equal(t, []string{"killall Dock"}, runner.Calls())
}

func TestDatastore_ReusesExistingDataRow(t *testing.T) {
	path := newDesktopPictureDB(t, 2)
	p := NewDatastorePropagator(path, &fakeRunner{})

	for i := 0; i < 2; i++ {
		_, err := p.PropagateToAllSpaces(context.Background(), "/lib/a.png", builtin)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, queryInt(t, path, `SELECT COUNT(*) FROM data WHERE value = ?`, "/lib/a.png"))
	assert.Equal(t, 2, queryInt(t, path, `SELECT COUNT(*) FROM data`))
	assert.Equal(t, 2, queryInt(t, path, `SELECT COUNT(*) FROM preferences`))
}

func TestDatastore_NoSlotsKeepsPreferences(t *testing.T) {
	path := newDesktopPictureDB(t, 0)
	runner := &fakeRunner{}
	p := NewDatastorePropagator(path, runner)

	_, err := p.PropagateToAllSpaces(context.Background(), "/lib/a.png", builtin)
	assert.Error(t, err)
	assert.Equal(t, 1, queryInt(t, path, `SELECT COUNT(*) FROM preferences`), "failed rewrite must roll back")
	assert.Empty(t, runner.Calls())
}

func TestDatastore_MissingDatabase(t *testing.T) {
	p := NewDatastorePropagator(filepath.Join(t.TempDir(), "nope.db"), &fakeRunner{})
	_, err := p.PropagateToAllSpaces(context.Background(), "/lib/a.png", builtin)
	assert.Error(t, err)
}

func TestDatastore_DockRestartFailure(t *testing.T) {
	path := newDesktopPictureDB(t, 1)
	runner := &fakeRunner{fail: func(int, string) error { return errors.New("no such process") }}
	p := NewDatastorePropagator(path, runner)

	_, err := p.PropagateToAllSpaces(context.Background(), "/lib/a.png", builtin)
	assert.ErrorContains(t, err, "restarting Dock")
}

func TestDatastore_InsertFailureRollsBackDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "desktoppicture.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE data (value)`,
		`CREATE TABLE preferences (key INTEGER, data_id INTEGER, picture_id INTEGER CHECK (picture_id < 2))`,
		`CREATE TABLE pictures (space_id INTEGER, display_id INTEGER)`,
		`INSERT INTO data (value) VALUES ('/System/Library/Desktop Pictures/Sonoma.heic')`,
		`INSERT INTO preferences (key, data_id, picture_id) VALUES (1, 1, 1)`,
		`INSERT INTO pictures (space_id, display_id) VALUES (1, 1)`,
		`INSERT INTO pictures (space_id, display_id) VALUES (2, 1)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	require.NoError(t, db.Close())

	runner := &fakeRunner{}
	p := NewDatastorePropagator(path, runner)
	_, err = p.PropagateToAllSpaces(context.Background(), "/lib/a.png", builtin)
	assert.ErrorContains(t, err, "inserting preference for picture 2")

	assert.Equal(t, 1, queryInt(t, path, `SELECT COUNT(*) FROM preferences`))
	assert.Equal(t, 1, queryInt(t, path, `SELECT COUNT(*) FROM preferences WHERE key = 1 AND data_id = 1 AND picture_id = 1`))
	assert.Equal(t, 1, queryInt(t, path, `SELECT COUNT(*) FROM data`), "the new data row is rolled back too")
	assert.Empty(t, runner.Calls(), "the Dock is not restarted after a failed rewrite")
}
