/*
Package store implements a persistent library of named surfaces backed by a
SQLite database. Surfaces are stored serialized and zstd compressed, with
identical surfaces sharing a single blob.
*/
package store

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bodgit/surface"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when no surface has the requested name.
var ErrNotFound = errors.New("store: surface not found")

// Store is a surface library.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	enc    *zstd.Encoder
	dec    *zstd.Decoder
}

// New opens or creates the library in file. A nil logger discards all
// output.
func New(file string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("%s?_foreign_keys=on", file))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS blob (id INTEGER PRIMARY KEY NOT NULL, sha1 TEXT NOT NULL UNIQUE, data BLOB NOT NULL)"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err = db.Exec("CREATE TABLE IF NOT EXISTS surface (id INTEGER PRIMARY KEY NOT NULL, name STRING NOT NULL UNIQUE, blob_id INTEGER NOT NULL, FOREIGN KEY(blob_id) REFERENCES blob(id))"); err != nil {
		db.Close()
		return nil, err
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Store{
		db:     db,
		logger: logger,
		enc:    enc,
		dec:    dec,
	}, nil
}

// Close closes the library.
func (st *Store) Close() error {
	st.dec.Close()
	if err := st.enc.Close(); err != nil {
		st.db.Close()
		return err
	}
	return st.db.Close()
}

func (st *Store) addBlob(ctx context.Context, tx *sql.Tx, b []byte) (int64, error) {
	sha := fmt.Sprintf("%X", sha1.Sum(b))

	var id int64
	switch err := tx.QueryRowContext(ctx, "SELECT id FROM blob WHERE sha1 = ?", sha).Scan(&id); err {
	case sql.ErrNoRows:
		data := st.enc.EncodeAll(b, make([]byte, 0, len(b)))
		result, err := tx.ExecContext(ctx, "INSERT INTO blob (sha1, data) VALUES (?, ?)", sha, data)
		if err != nil {
			return 0, err
		}
		st.logger.Debug("stored blob", "sha1", sha, "size", len(b), "compressed", len(data))
		return result.LastInsertId()
	case nil:
		st.logger.Debug("reusing blob", "sha1", sha)
		return id, nil
	default:
		return 0, err
	}
}

// Put stores s under name, replacing any surface already called that.
func (st *Store) Put(ctx context.Context, name string, s *surface.Surface) error {
	b, err := s.MarshalBinary()
	if err != nil {
		return err
	}

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id, err := st.addBlob(ctx, tx, b)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "INSERT INTO surface (name, blob_id) VALUES (?, ?) ON CONFLICT(name) DO UPDATE SET blob_id = excluded.blob_id", name, id); err != nil {
		return err
	}

	if err := st.prune(ctx, tx); err != nil {
		return err
	}

	return tx.Commit()
}

// Get returns the surface called name.
func (st *Store) Get(ctx context.Context, name string) (*surface.Surface, error) {
	var data []byte
	switch err := st.db.QueryRowContext(ctx, "SELECT b.data FROM surface AS s JOIN blob AS b ON s.blob_id = b.id WHERE s.name = ?", name).Scan(&data); err {
	case sql.ErrNoRows:
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	case nil:
	default:
		return nil, err
	}

	b, err := st.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, err
	}
	return surface.Unmarshal(b)
}

// Names returns the names of every stored surface, sorted.
func (st *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := st.db.QueryContext(ctx, "SELECT name FROM surface ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Delete removes the surface called name.
func (st *Store) Delete(ctx context.Context, name string) error {
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM surface WHERE name = ?", name)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	if err := st.prune(ctx, tx); err != nil {
		return err
	}

	return tx.Commit()
}

// prune removes blobs no longer referenced by any surface.
func (st *Store) prune(ctx context.Context, tx *sql.Tx) error {
	result, err := tx.ExecContext(ctx, "DELETE FROM blob WHERE id NOT IN (SELECT blob_id FROM surface)")
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n > 0 {
		st.logger.Debug("pruned blobs", "count", n)
	}
	return nil
}

func (st *Store) blobs(ctx context.Context) (int, error) {
	var n int
	err := st.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blob").Scan(&n)
	return n, err
}
