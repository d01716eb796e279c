package domain

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// ErrInvalidPosting marks a posting missing a title or a company.
var ErrInvalidPosting = errors.New("posting requires job title and company name")

// Posting is the canonical, source-agnostic shape every adapter emits.
// An empty ImageURL means the listing has no image.
type Posting struct {
	Source      Source
	JobTitle    string
	CompanyName string
	Location    []string
	DatePosted  *Timestamp
	ApplyURL    string
	ImageURL    string
	Tags        []string
}

// Record is a Posting as persisted by the store.
type Record struct {
	ID string
	Posting
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Posting) Validate() error {
	if strings.TrimSpace(p.JobTitle) == "" || strings.TrimSpace(p.CompanyName) == "" {
		return ErrInvalidPosting
	}
	return nil
}

// Key identifies a posting for dedup: exact title, exact company and the UTC
// calendar day of DatePosted (empty when undated).
func (p Posting) Key() string {
	day := ""
	if p.DatePosted != nil {
		day = p.DatePosted.UTCDay()
	}
	return p.JobTitle + "\x00" + p.CompanyName + "\x00" + day
}

// Normalized returns a copy with trimmed text and non-nil slices.
func (p Posting) Normalized() Posting {
	p.JobTitle = strings.TrimSpace(p.JobTitle)
	p.CompanyName = strings.TrimSpace(p.CompanyName)
	p.ApplyURL = strings.TrimSpace(p.ApplyURL)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	if p.Location == nil {
		p.Location = []string{}
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p
}
