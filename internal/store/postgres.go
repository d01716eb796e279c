package store

import (
	"context"
	"strings"
	"time"

	"jobboard-engine/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Postgres struct {
	pool *pgxpool.Pool
	clock
}

// OpenPostgres connects a pool and creates the schema if it is missing.
func OpenPostgres(ctx context.Context, dsn string, maxConns int32) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "parse postgres dsn")
	}
	if maxConns <= 0 {
		maxConns = 2
	}
	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "connect postgres")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	p := &Postgres{pool: pool, clock: defaultClock()}
	if err := p.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	b := &pgx.Batch{}
	b.Queue(`
CREATE TABLE IF NOT EXISTS jobs (
  id TEXT PRIMARY KEY,
  source TEXT NOT NULL,
  job_title TEXT NOT NULL,
  company_name TEXT NOT NULL,
  location TEXT[] NOT NULL DEFAULT '{}',
  date_posted TEXT,
  posted_at TIMESTAMPTZ,
  posted_day TEXT NOT NULL DEFAULT '',
  apply_url TEXT NOT NULL DEFAULT '',
  image_url TEXT,
  tags TEXT[] NOT NULL DEFAULT '{}',
  created_at TIMESTAMPTZ NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL
)`)
	b.Queue(`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_match ON jobs(job_title, company_name, posted_day)`)
	b.Queue(`CREATE INDEX IF NOT EXISTS idx_jobs_posted_at ON jobs(posted_at)`)

	br := p.pool.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return errors.Wrap(err, "create postgres schema")
		}
	}
	return errors.Wrap(br.Close(), "create postgres schema")
}

func (p *Postgres) Close() error {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
	return nil
}

const pgColumns = `id, source, job_title, company_name, location, date_posted, apply_url, image_url, tags, created_at, updated_at`

func (p *Postgres) FindMatching(ctx context.Context, title, company string, window *domain.DayWindow) (*domain.Record, error) {
	q := `SELECT ` + pgColumns + ` FROM jobs WHERE job_title = $1 AND company_name = $2`
	args := []any{title, company}
	if window != nil {
		q += ` AND (posted_at IS NULL OR posted_at BETWEEN $3 AND $4)`
		args = append(args, window.Start, window.End)
	}
	q += ` ORDER BY created_at LIMIT 1`

	rec, err := scanPostgres(p.pool.QueryRow(ctx, q, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find matching job")
	}
	return &rec, nil
}

func (p *Postgres) Insert(ctx context.Context, in domain.Posting) (domain.Record, error) {
	rec := p.newRecord(in)

	var datePosted, imageURL *string
	var postedAt *time.Time
	if rec.DatePosted != nil {
		s := rec.DatePosted.String()
		t := rec.DatePosted.UTC()
		datePosted, postedAt = &s, &t
	}
	if rec.ImageURL != "" {
		imageURL = &rec.ImageURL
	}

	tag, err := p.pool.Exec(ctx, `
INSERT INTO jobs (id, source, job_title, company_name, location, date_posted, posted_at, posted_day, apply_url, image_url, tags, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
ON CONFLICT (job_title, company_name, posted_day) DO NOTHING`,
		rec.ID, rec.Source.DisplayName(), rec.JobTitle, rec.CompanyName, rec.Location,
		datePosted, postedAt, postedDay(rec.Posting), rec.ApplyURL, imageURL, rec.Tags,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return domain.Record{}, errors.Wrap(err, "insert job")
	}
	if tag.RowsAffected() == 0 {
		return domain.Record{}, ErrDuplicate
	}
	return rec, nil
}

func (p *Postgres) List(ctx context.Context, opts ListOpts) ([]domain.Record, int, error) {
	opts = opts.normalized()

	where := ""
	var args []any
	if opts.Source != "" {
		where = "WHERE source = $1"
		args = append(args, opts.Source.DisplayName())
	}

	var total int
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM jobs `+where, args...).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count jobs")
	}

	n := len(args)
	rows, err := p.pool.Query(ctx, `
SELECT `+pgColumns+`
FROM jobs
`+where+`
ORDER BY posted_at DESC NULLS LAST, created_at DESC
LIMIT $`+itoa(n+1)+` OFFSET $`+itoa(n+2),
		append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list jobs")
	}
	defer rows.Close()

	out := []domain.Record{}
	for rows.Next() {
		rec, err := scanPostgres(rows)
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

func (p *Postgres) Get(ctx context.Context, id string) (domain.Record, error) {
	rec, err := scanPostgres(p.pool.QueryRow(ctx, `SELECT `+pgColumns+` FROM jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Record{}, ErrNotFound
	}
	if err != nil {
		return domain.Record{}, errors.Wrapf(err, "get job %s", id)
	}
	return rec, nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return errors.Wrapf(err, "delete job %s", id)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanPostgres(r pgx.Row) (domain.Record, error) {
	var (
		rec                  domain.Record
		source               string
		datePosted, imageURL *string
	)
	if err := r.Scan(&rec.ID, &source, &rec.JobTitle, &rec.CompanyName, &rec.Location, &datePosted,
		&rec.ApplyURL, &imageURL, &rec.Tags, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return domain.Record{}, err
	}

	rec.Source = decodeSource(source)
	if rec.Location == nil {
		rec.Location = []string{}
	}
	if rec.Tags == nil {
		rec.Tags = []string{}
	}
	if imageURL != nil {
		rec.ImageURL = *imageURL
	}
	if datePosted != nil && strings.TrimSpace(*datePosted) != "" {
		var ts domain.Timestamp
		if err := ts.UnmarshalText([]byte(*datePosted)); err == nil {
			rec.DatePosted = &ts
		}
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	rec.UpdatedAt = rec.UpdatedAt.UTC()
	return rec, nil
}
