package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"jobboard-engine/internal/domain"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// fixed-width so created_at sorts as text
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLite struct {
	db *sql.DB
	clock
}

// OpenSQLite opens (creating if needed) the database file and migrates it.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	// modernc sqlite uses DSN like: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping sqlite %s", path)
	}

	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return NewSQLite(db), nil
}

// NewSQLite wraps an already-migrated handle.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, clock: defaultClock()}
}

// Migrate brings the schema to the current PRAGMA user_version.
func Migrate(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin migration")
	}
	defer func() { _ = tx.Rollback() }()

	var v int
	if err := tx.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&v); err != nil {
		return errors.Wrap(err, "read user_version")
	}
	if v >= schemaVersion {
		return tx.Commit()
	}

	// ---- Schema v1 ----
	stmts := []string{`
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  job_title TEXT NOT NULL,
  company_name TEXT NOT NULL,
  location TEXT NOT NULL DEFAULT '[]',
  date_posted TEXT,
  posted_at INTEGER,
  posted_day TEXT NOT NULL DEFAULT '',
  apply_url TEXT NOT NULL DEFAULT '',
  image_url TEXT,
  tags TEXT NOT NULL DEFAULT '[]',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);`, `
CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_match
ON jobs(job_title, company_name, posted_day);`, `
CREATE INDEX IF NOT EXISTS idx_jobs_posted_at
ON jobs(posted_at);`,
		fmt.Sprintf(`PRAGMA user_version = %d;`, schemaVersion),
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			return errors.Wrap(err, "migrate schema v1")
		}
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

const sqliteColumns = `id, source, job_title, company_name, location, date_posted, apply_url, image_url, tags, created_at, updated_at`

func (s *SQLite) FindMatching(ctx context.Context, title, company string, window *domain.DayWindow) (*domain.Record, error) {
	q := `SELECT ` + sqliteColumns + ` FROM jobs WHERE job_title = ? AND company_name = ?`
	args := []any{title, company}
	if window != nil {
		q += ` AND (posted_at IS NULL OR posted_at BETWEEN ? AND ?)`
		args = append(args, window.Start.UnixMilli(), window.End.UnixMilli())
	}
	q += ` ORDER BY created_at LIMIT 1;`

	rec, err := scanSQLite(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find matching job")
	}
	return &rec, nil
}

func (s *SQLite) Insert(ctx context.Context, p domain.Posting) (domain.Record, error) {
	rec := s.newRecord(p)

	var datePosted, imageURL sql.NullString
	var postedAt sql.NullInt64
	if rec.DatePosted != nil {
		datePosted = sql.NullString{String: rec.DatePosted.String(), Valid: true}
		postedAt = sql.NullInt64{Int64: rec.DatePosted.UnixMilli(), Valid: true}
	}
	if rec.ImageURL != "" {
		imageURL = sql.NullString{String: rec.ImageURL, Valid: true}
	}

	res, err := s.db.ExecContext(ctx, `
INSERT INTO jobs (id, source, job_title, company_name, location, date_posted, posted_at, posted_day, apply_url, image_url, tags, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(job_title, company_name, posted_day) DO NOTHING;`,
		rec.ID,
		rec.Source.DisplayName(),
		rec.JobTitle,
		rec.CompanyName,
		encodeList(rec.Location),
		datePosted,
		postedAt,
		postedDay(rec.Posting),
		rec.ApplyURL,
		imageURL,
		encodeList(rec.Tags),
		rec.CreatedAt.Format(sqliteTimeLayout),
		rec.UpdatedAt.Format(sqliteTimeLayout),
	)
	if err != nil {
		return domain.Record{}, errors.Wrap(err, "insert job")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Record{}, errors.Wrap(err, "insert job rows affected")
	}
	if n == 0 {
		return domain.Record{}, ErrDuplicate
	}
	return rec, nil
}

func (s *SQLite) List(ctx context.Context, opts ListOpts) ([]domain.Record, int, error) {
	opts = opts.normalized()

	where := ""
	var args []any
	if opts.Source != "" {
		where = "WHERE source = ?"
		args = append(args, opts.Source.DisplayName())
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs `+where+`;`, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count jobs")
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT `+sqliteColumns+`
FROM jobs
`+where+`
ORDER BY posted_at IS NULL, posted_at DESC, created_at DESC
LIMIT ? OFFSET ?;`, append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list jobs")
	}
	defer rows.Close()

	out := []domain.Record{}
	for rows.Next() {
		rec, err := scanSQLite(rows)
		if err != nil {
			return nil, 0, errors.Wrap(err, "scan job")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.Wrap(err, "list jobs")
	}
	return out, total, nil
}

func (s *SQLite) Get(ctx context.Context, id string) (domain.Record, error) {
	rec, err := scanSQLite(s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM jobs WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, ErrNotFound
	}
	if err != nil {
		return domain.Record{}, errors.Wrapf(err, "get job %s", id)
	}
	return rec, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?;`, id)
	if err != nil {
		return errors.Wrapf(err, "delete job %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(r rowScanner) (domain.Record, error) {
	var (
		rec                  domain.Record
		source, loc, tags    string
		datePosted, imageURL sql.NullString
		created, updated     string
	)
	if err := r.Scan(&rec.ID, &source, &rec.JobTitle, &rec.CompanyName, &loc, &datePosted,
		&rec.ApplyURL, &imageURL, &tags, &created, &updated); err != nil {
		return domain.Record{}, err
	}

	rec.Source = decodeSource(source)
	rec.Location = decodeList(loc)
	rec.Tags = decodeList(tags)
	rec.ImageURL = imageURL.String
	if datePosted.Valid && strings.TrimSpace(datePosted.String) != "" {
		var ts domain.Timestamp
		if err := ts.UnmarshalText([]byte(datePosted.String)); err == nil {
			rec.DatePosted = &ts
		}
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return rec, nil
}
