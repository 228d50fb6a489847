// Package store persists user-defined URL commands in a SQLite table.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS commands (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	command TEXT NOT NULL,
	url TEXT NOT NULL
)`

// Record is one row of the commands table.
type Record struct {
	ID     int64  `db:"id" yaml:"id"`
	Phrase string `db:"command" yaml:"command" validate:"required"`
	URL    string `db:"url" yaml:"url" validate:"required,url"`
}

// Commands is the persisted command table contract.
type Commands interface {
	Phrases(ctx context.Context) ([]string, error)
	List(ctx context.Context) ([]Record, error)
	Insert(ctx context.Context, phrase string, url string) (Record, error)
	Lookup(ctx context.Context, phrase string) (string, bool, error)
	Close() error
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DB is a Commands backed by SQLite.
type DB struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the database at path and migrates the
// commands table.
func Open(ctx context.Context, path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open store %q: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate store %q: %w", path, err)
	}
	return &DB{db: db}, nil
}

// List returns every record in insertion order.
func (s *DB) List(ctx context.Context) ([]Record, error) {
	var records []Record
	if err := s.db.SelectContext(ctx, &records, `SELECT id, command, url FROM commands ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list commands: %w", err)
	}
	return records, nil
}

// Phrases returns the command phrases in insertion order.
func (s *DB) Phrases(ctx context.Context) ([]string, error) {
	var phrases []string
	if err := s.db.SelectContext(ctx, &phrases, `SELECT command FROM commands ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list command phrases: %w", err)
	}
	return phrases, nil
}

// Insert validates and stores a new command.
func (s *DB) Insert(ctx context.Context, phrase string, url string) (Record, error) {
	record := Record{Phrase: strings.TrimSpace(phrase), URL: strings.TrimSpace(url)}
	if err := validate.Struct(record); err != nil {
		return Record{}, fmt.Errorf("invalid command: %w", err)
	}

	result, err := s.db.NamedExecContext(ctx, `INSERT INTO commands (command, url) VALUES (:command, :url)`, record)
	if err != nil {
		return Record{}, fmt.Errorf("insert command %q: %w", record.Phrase, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return Record{}, fmt.Errorf("insert command %q: %w", record.Phrase, err)
	}
	record.ID = id
	return record, nil
}

// Lookup returns the URL of the earliest record whose phrase equals phrase.
func (s *DB) Lookup(ctx context.Context, phrase string) (string, bool, error) {
	var url string
	err := s.db.GetContext(ctx, &url, `SELECT url FROM commands WHERE command = ? ORDER BY id LIMIT 1`, strings.TrimSpace(phrase))
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup command %q: %w", phrase, err)
	}
	return url, true, nil
}

func (s *DB) Close() error {
	return s.db.Close()
}

// Offline stands in for an unreachable database. Reads and writes fail with
// Err.
type Offline struct {
	Err error
}

func (o Offline) Phrases(context.Context) ([]string, error) { return nil, o.err() }
func (o Offline) List(context.Context) ([]Record, error)    { return nil, o.err() }
func (o Offline) Insert(context.Context, string, string) (Record, error) {
	return Record{}, o.err()
}
func (o Offline) Lookup(context.Context, string) (string, bool, error) { return "", false, o.err() }
func (o Offline) Close() error                                         { return nil }

func (o Offline) err() error {
	if o.Err == nil {
		return errors.New("command store unavailable")
	}
	return fmt.Errorf("command store unavailable: %w", o.Err)
}

type exportDoc struct {
	Commands []Record `yaml:"commands"`
}

// Export writes every record as YAML.
func Export(ctx context.Context, commands Commands, w io.Writer) error {
	records, err := commands.List(ctx)
	if err != nil {
		return err
	}
	if records == nil {
		records = []Record{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(exportDoc{Commands: records}); err != nil {
		return fmt.Errorf("encode commands: %w", err)
	}
	return enc.Close()
}
