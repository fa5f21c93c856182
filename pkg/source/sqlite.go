package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	apperrors "github.com/matzehuels/threadline/pkg/errors"
	"github.com/matzehuels/threadline/pkg/feed"

	// database driver
	_ "github.com/mattn/go-sqlite3"
)

// tableRE restricts table names to plain identifiers. The table name is
// interpolated into the query text, so anything else is rejected up front.
var tableRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLiteSource reads a feed from a SQLite database. The table must carry
// the standard record columns:
//
//	CREATE TABLE records (
//	    id      TEXT PRIMARY KEY,
//	    parent  TEXT,
//	    author  TEXT,
//	    body    TEXT,
//	    created INTEGER,  -- unix seconds
//	    score   INTEGER
//	);
//
// NULL parent, author, body, and score map to their Go zero values.
type SQLiteSource struct {
	db    *sql.DB
	table string
	path  string
}

// NewSQLiteSource opens the database at path. The connection is lazy;
// a missing or unreadable file surfaces on the first Fetch.
func NewSQLiteSource(path, table string) (*SQLiteSource, error) {
	if err := apperrors.ValidatePath(path); err != nil {
		return nil, err
	}
	if table == "" {
		table = DefaultCollection
	}
	if !tableRE.MatchString(table) {
		return nil, apperrors.New(apperrors.ErrCodeInvalidSource, "invalid table name: %q", table)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return &SQLiteSource{db: db, table: table, path: path}, nil
}

// Fetch reads all records ordered by creation time.
func (s *SQLiteSource) Fetch(ctx context.Context) (*feed.Feed, error) {
	return observeFetch(ctx, "sqlite", s.path, func() (*feed.Feed, error) {
		return s.fetch(ctx)
	})
}

func (s *SQLiteSource) fetch(ctx context.Context) (*feed.Feed, error) {
	query := fmt.Sprintf(
		`SELECT id, parent, author, body, created, score FROM %s ORDER BY created, id`,
		s.table)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	f := &feed.Feed{Version: feed.FormatVersion}
	for rows.Next() {
		var (
			id      string
			parent  sql.NullString
			author  sql.NullString
			body    sql.NullString
			created sql.NullInt64
			score   sql.NullInt64
		)
		if err := rows.Scan(&id, &parent, &author, &body, &created, &score); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		r := feed.Record{
			ID:     id,
			Parent: parent.String,
			Author: author.String,
			Body:   body.String,
			Score:  int(score.Int64),
		}
		if created.Valid {
			r.Created = time.Unix(created.Int64, 0).UTC()
		}
		f.Records = append(f.Records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}

	return f, nil
}

// Close closes the database connection.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Ensure SQLiteSource implements Source.
var _ Source = (*SQLiteSource)(nil)
