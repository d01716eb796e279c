// Package store persists job records. SQLite is the default embedded backend;
// Postgres serves shared deployments. Both enforce one record per
// (job_title, company_name, posted UTC day).
package store

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/domain"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("job not found")
	ErrDuplicate = errors.New("job already exists")
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500
)

type ListOpts struct {
	Source domain.Source // empty = all sources
	Limit  int
	Offset int
}

func (o ListOpts) normalized() ListOpts {
	if o.Limit <= 0 {
		o.Limit = DefaultListLimit
	}
	if o.Limit > MaxListLimit {
		o.Limit = MaxListLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}

// JobStore is the persistence contract the ingest engine and HTTP API use.
type JobStore interface {
	// FindMatching returns the first record with exactly this title and
	// company whose posting time falls inside window or that has no posting
	// time. A nil window matches on title and company alone. (nil, nil) when
	// there is no match.
	FindMatching(ctx context.Context, title, company string, window *domain.DayWindow) (*domain.Record, error)
	// Insert persists p under a new id. ErrDuplicate when the unique key
	// is already taken.
	Insert(ctx context.Context, p domain.Posting) (domain.Record, error)
	// List pages records by posting date, newest first, undated last.
	List(ctx context.Context, opts ListOpts) ([]domain.Record, int, error)
	Get(ctx context.Context, id string) (domain.Record, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Open returns the backend selected by store.driver.
func Open(ctx context.Context, cfg config.Config) (JobStore, error) {
	switch cfg.Store.Driver {
	case config.DriverPostgres:
		pg, err := OpenPostgres(ctx, cfg.Store.PostgresDSN, int32(cfg.Store.PostgresMaxConns))
		if err != nil {
			return nil, err
		}
		return pg, nil
	case config.DriverSQLite, "":
		sl, err := OpenSQLite(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, err
		}
		return sl, nil
	default:
		return nil, errors.Newf("unknown store driver %q", cfg.Store.Driver)
	}
}

type clock struct {
	now   func() time.Time
	newID func() string
}

func defaultClock() clock {
	return clock{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

// newRecord stamps a posting with id and times before it is written.
func (c clock) newRecord(p domain.Posting) domain.Record {
	now := c.now().UTC()
	return domain.Record{
		ID:        c.newID(),
		Posting:   p.Normalized(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func postedDay(p domain.Posting) string {
	if p.DatePosted == nil {
		return ""
	}
	return p.DatePosted.UTCDay()
}

func encodeList(v []string) string {
	if v == nil {
		v = []string{}
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func decodeList(s string) []string {
	out := []string{}
	if s == "" {
		return out
	}
	_ = json.Unmarshal([]byte(s), &out)
	if out == nil {
		out = []string{}
	}
	return out
}

func decodeSource(s string) domain.Source {
	if src, ok := domain.ParseSource(s); ok {
		return src
	}
	return domain.Source(s)
}

func itoa(n int) string { return strconv.Itoa(n) }
