package desktop

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doorhinge/wallscenes/pkg/display"
	"github.com/doorhinge/wallscenes/util/log"
	_ "modernc.org/sqlite" // Register the "sqlite" driver
)

// DefaultDatastorePath returns the location of the Dock's desktop picture database.
func DefaultDatastorePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, "Library", "Application Support", "Dock", "desktoppicture.db"), nil
}

// DatastorePropagator rewrites the desktop picture database so every picture
// slot points at one image, then restarts the Dock to reload it. It updates
// the slots of every display, not only the one passed in.
type DatastorePropagator struct {
	path   string
	runner CommandRunner
}

// NewDatastorePropagator returns a propagator writing to the database at path.
func NewDatastorePropagator(path string, runner CommandRunner) *DatastorePropagator {
	return &DatastorePropagator{path: path, runner: runner}
}

func (p *DatastorePropagator) Name() string { return string(StrategyDatastore) }

// PropagateToAllSpaces points every picture slot at imagePath.
func (p *DatastorePropagator) PropagateToAllSpaces(ctx context.Context, imagePath string, d display.Display) (Result, error) {
	if _, err := os.Stat(p.path); err != nil {
		return Result{}, fmt.Errorf("desktop picture database: %w", err)
	}

	db, err := sql.Open("sqlite", p.path)
	if err != nil {
		return Result{}, fmt.Errorf("opening %s: %w", p.path, err)
	}
	defer db.Close()

	slots, err := p.rewrite(ctx, db, imagePath)
	if err != nil {
		return Result{}, err
	}
	log.Printf("[Display %s] Datastore: %d picture slots now use %s", d.ID, slots, imagePath)

	if _, err := p.runner.Run(ctx, "killall", "Dock"); err != nil {
		return Result{}, fmt.Errorf("restarting Dock: %w", err)
	}
	return Result{Spaces: slots}, nil
}

// rewrite replaces all preferences in one transaction and returns the number
// of picture slots written.
func (p *DatastorePropagator) rewrite(ctx context.Context, db *sql.DB, imagePath string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	dataID, err := ensureDataRow(ctx, tx, imagePath)
	if err != nil {
		return 0, err
	}

	pictures, err := pictureIDs(ctx, tx)
	if err != nil {
		return 0, err
	}
	if len(pictures) == 0 {
		return 0, errors.New("desktop picture database has no picture slots")
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM preferences`); err != nil {
		return 0, fmt.Errorf("clearing preferences: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO preferences (key, data_id, picture_id) VALUES (1, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()
	for _, pictureID := range pictures {
		if _, err := stmt.ExecContext(ctx, dataID, pictureID); err != nil {
			return 0, fmt.Errorf("inserting preference for picture %d: %w", pictureID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing: %w", err)
	}
	return len(pictures), nil
}

// ensureDataRow returns the row id of the data row holding value, inserting
// it when absent.
func ensureDataRow(ctx context.Context, tx *sql.Tx, value string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT rowid FROM data WHERE value = ? LIMIT 1`, value).Scan(&id)
	switch {
	case err == nil:
		return id, nil
	case !errors.Is(err, sql.ErrNoRows):
		return 0, fmt.Errorf("looking up data row: %w", err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO data (value) VALUES (?)`, value)
	if err != nil {
		return 0, fmt.Errorf("inserting data row: %w", err)
	}
	return res.LastInsertId()
}

func pictureIDs(ctx context.Context, tx *sql.Tx) ([]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT rowid FROM pictures ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing pictures: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("reading picture row: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
