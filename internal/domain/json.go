package domain

import (
	"encoding/json"
	"time"
)

type postingJSON struct {
	Source      Source     `json:"source"`
	JobTitle    string     `json:"jobTitle"`
	CompanyName string     `json:"companyName"`
	Location    []string   `json:"location"`
	DatePosted  *Timestamp `json:"datePosted"`
	ApplyURL    string     `json:"applyUrl"`
	ImageURL    *string    `json:"imageUrl"`
	Tags        []string   `json:"tags"`
}

// MarshalJSON renders an absent image as null rather than "".
func (p Posting) MarshalJSON() ([]byte, error) {
	n := p.Normalized()
	out := postingJSON{
		Source:      n.Source,
		JobTitle:    n.JobTitle,
		CompanyName: n.CompanyName,
		Location:    n.Location,
		DatePosted:  n.DatePosted,
		ApplyURL:    n.ApplyURL,
		Tags:        n.Tags,
	}
	if n.ImageURL != "" {
		out.ImageURL = &n.ImageURL
	}
	return json.Marshal(out)
}

func (p *Posting) UnmarshalJSON(b []byte) error {
	var in postingJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*p = Posting{
		Source:      in.Source,
		JobTitle:    in.JobTitle,
		CompanyName: in.CompanyName,
		Location:    in.Location,
		DatePosted:  in.DatePosted,
		ApplyURL:    in.ApplyURL,
		Tags:        in.Tags,
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
	return nil
}

// MarshalJSON flattens the embedded posting next to the record metadata.
func (r Record) MarshalJSON() ([]byte, error) {
	pb, err := json.Marshal(r.Posting)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(pb, &m); err != nil {
		return nil, err
	}
	m["id"] = r.ID
	m["createdAt"] = r.CreatedAt
	m["updatedAt"] = r.UpdatedAt
	return json.Marshal(m)
}

func (r *Record) UnmarshalJSON(b []byte) error {
	var p Posting
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var meta struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
	if err := json.Unmarshal(b, &meta); err != nil {
		return err
	}
	*r = Record{ID: meta.ID, Posting: p, CreatedAt: meta.CreatedAt, UpdatedAt: meta.UpdatedAt}
	return nil
}
