// Package store keeps one sqlite table of downloaded images per community.
package store

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"imgurr/pkg/errors"
	"imgurr/pkg/validate"
)

const createTable = `CREATE TABLE imgur_r (
	hash TEXT PRIMARY KEY,
	title TEXT,
	complete_uri TEXT,
	final_filename TEXT,
	etag TEXT,
	datetime TEXT,
	mimetype TEXT,
	ext TEXT,
	width INTEGER,
	height INTEGER,
	size INTEGER,
	ups INTEGER,
	downs INTEGER,
	points INTEGER,
	permalink TEXT,
	subreddit TEXT,
	nsfw TEXT,
	created TEXT,
	score TEXT,
	author TEXT
)`

const createIndex = `CREATE UNIQUE INDEX hash_nsfw ON imgur_r(hash, nsfw)`

const columns = `hash, title, complete_uri, final_filename, etag, datetime, mimetype, ext,
	width, height, size, ups, downs, points, permalink, subreddit, nsfw, created, score, author`

// ImageRecord is one row of imgur_r
type ImageRecord struct {
	Hash          string
	Title         sql.NullString
	SourceURI     string
	LocalFilename string
	ETag          sql.NullString
	Datetime      sql.NullString
	Mimetype      sql.NullString
	Ext           string
	Width         sql.NullInt64
	Height        sql.NullInt64
	Size          sql.NullInt64
	Ups           sql.NullInt64
	Downs         sql.NullInt64
	Points        sql.NullInt64
	Permalink     sql.NullString
	Subreddit     sql.NullString
	NSFW          sql.NullString
	Created       sql.NullString
	Score         sql.NullString
	Author        sql.NullString
}

// Store is an open per-community database
type Store struct {
	db   *sql.DB
	path string
}

// FileName returns the database file name for a community, e.g.
// "/r/test" becomes "imgur_r_test.sqlite3"
func FileName(community string) string {
	return "imgur" + strings.ReplaceAll(community, "/", "_") + ".sqlite3"
}

// Open opens the store for community inside dir. A missing database file
// is created along with its schema; an existing one is used as-is.
func Open(ctx context.Context, dir, community string) (*Store, error) {
	if !validate.IsValidCommunityName(community) {
		return nil, errors.New(errors.ErrorTypeInvalidName, "invalid community name %q", community)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	path := filepath.Join(dir, FileName(community))

	fresh := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fresh = true
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat store: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path}
	if fresh {
		if err := s.createSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	} else if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return s, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{createTable, createIndex} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema: %w", err)
	}
	return nil
}

// Exists reports whether a row with this hash is already stored. The nsfw
// flag is not consulted.
func (s *Store) Exists(ctx context.Context, hash string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM imgur_r WHERE hash = ?`, hash).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to look up %s: %w", hash, err)
	}
	return n > 0, nil
}

// Append inserts rec and commits it immediately
func (s *Store) Append(ctx context.Context, rec *ImageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO imgur_r (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Hash, rec.Title, rec.SourceURI, rec.LocalFilename, rec.ETag, rec.Datetime, rec.Mimetype, rec.Ext,
		rec.Width, rec.Height, rec.Size, rec.Ups, rec.Downs, rec.Points,
		rec.Permalink, rec.Subreddit, rec.NSFW, rec.Created, rec.Score, rec.Author,
	)
	if err != nil {
		if isConstraint(err) {
			return errors.Wrap(errors.ErrorTypeConstraintViolation, err, "record %s already stored", rec.Hash)
		}
		return fmt.Errorf("failed to insert %s: %w", rec.Hash, err)
	}
	return nil
}

// Get loads the row for hash
func (s *Store) Get(ctx context.Context, hash string) (*ImageRecord, error) {
	var rec ImageRecord
	err := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM imgur_r WHERE hash = ?`, hash).Scan(
		&rec.Hash, &rec.Title, &rec.SourceURI, &rec.LocalFilename, &rec.ETag, &rec.Datetime, &rec.Mimetype, &rec.Ext,
		&rec.Width, &rec.Height, &rec.Size, &rec.Ups, &rec.Downs, &rec.Points,
		&rec.Permalink, &rec.Subreddit, &rec.NSFW, &rec.Created, &rec.Score, &rec.Author,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.New(errors.ErrorTypeNotFound, "no record for %s", hash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", hash, err)
	}
	return &rec, nil
}

// Count returns the number of stored rows
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM imgur_r`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

// Path returns the database file path
func (s *Store) Path() string {
	return s.path
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

func isConstraint(err error) bool {
	var serr *sqlite.Error
	if !stderrors.As(err, &serr) {
		return false
	}
	return serr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
