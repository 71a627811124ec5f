package models

import (
	"encoding/json"
	"strings"
	"time"
)

// JobRecord is one catalog listing, in summary or detailed form. It is the
// unit of storage for the persistent store, the memory cache and the wire.
type JobRecord struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Company        string    `json:"company"`
	Location       string    `json:"location"`
	EmploymentType string    `json:"employment_type,omitempty"`
	Category       string    `json:"category,omitempty"`
	Featured       bool      `json:"featured,omitempty"`
	Salary         string    `json:"salary,omitempty"`
	PostedAt       time.Time `json:"posted_at,omitempty"`
	PostedAtRaw    string    `json:"posted_at_raw,omitempty"`

	// Detail fields, present only once the record has been fetched by id.
	Description  string   `json:"description,omitempty"`
	Requirements TextList `json:"requirements,omitempty"`
	Benefits     TextList `json:"benefits,omitempty"`

	// Persistence bookkeeping, not business data.
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Detailed reports whether the record has been fetched in detailed form.
// Presence of the description is the single signal used everywhere to decide
// whether a cached record can satisfy a detail request.
func (j JobRecord) Detailed() bool {
	return strings.TrimSpace(j.Description) != ""
}

// TextList is a list of strings that the remote source sometimes delivers as
// a single opaque string instead of an array. Decoding accepts both shapes;
// a bare string becomes a one-element list.
type TextList []string

func (l *TextList) UnmarshalJSON(data []byte) error {
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = items
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*l = nil
		return nil
	}
	*l = TextList{raw}
	return nil
}

// Join renders the list as a single display string.
func (l TextList) Join() string {
	return strings.Join(l, "; ")
}
