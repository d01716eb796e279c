package ingest

import (
	"context"

	"jobboard-engine/internal/domain"
	"jobboard-engine/internal/store"

	"github.com/cockroachdb/errors"
)

type Outcome int

const (
	Inserted Outcome = iota + 1
	Duplicate
	Invalid
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Duplicate:
		return "duplicate"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Engine is the only writer of job records. A posting matches an existing
// record on exact title, exact company and the UTC calendar day of its
// posting date. An undated posting or record matches on title and company
// alone.
type Engine struct {
	store store.JobStore
	locks *keyLocks
}

func NewEngine(s store.JobStore) *Engine {
	return &Engine{store: s, locks: newKeyLocks()}
}

// Upsert inserts p unless a matching record exists. Existing records are
// never modified. On Duplicate the returned record is the existing one when
// the lookup found it, nil when the store's unique key caught the race.
func (e *Engine) Upsert(ctx context.Context, p domain.Posting) (Outcome, *domain.Record, error) {
	p = p.Normalized()
	if err := p.Validate(); err != nil {
		return Invalid, nil, err
	}

	// check-then-insert under the key lock; the store's unique index covers other processes.
	// The lock ignores the day so dated and undated variants serialize.
	unlock := e.locks.lock(lockKey(p))
	defer unlock()

	var window *domain.DayWindow
	if p.DatePosted != nil {
		w := domain.DayWindowFor(p.DatePosted.Time)
		window = &w
	}

	existing, err := e.store.FindMatching(ctx, p.JobTitle, p.CompanyName, window)
	if err != nil {
		return 0, nil, errors.Wrapf(err, "dedup lookup %q at %q", p.JobTitle, p.CompanyName)
	}
	if existing != nil {
		return Duplicate, existing, nil
	}

	rec, err := e.store.Insert(ctx, p)
	if errors.Is(err, store.ErrDuplicate) {
		return Duplicate, nil, nil
	}
	if err != nil {
		return 0, nil, errors.Wrapf(err, "insert %q at %q", p.JobTitle, p.CompanyName)
	}
	return Inserted, &rec, nil
}

func lockKey(p domain.Posting) string {
	return p.JobTitle + "\x00" + p.CompanyName
}
