package application

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar-date format used by applied_date and
// next_follow_up on the wire.
const DateLayout = "2006-01-02"

// ID is the server-assigned record identifier. It is opaque to the client:
// decoded from either a JSON number or a JSON string and kept as text.
type ID string

// UnmarshalJSON accepts 7 as well as "7".
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return fmt.Errorf("application id must not be null")
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("application id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Record is the JSON shape of a persisted job application. Clients hold it
// read-only; only the server assigns ID.
type Record struct {
	ID           ID      `json:"id"`
	Company      string  `json:"company"`
	Role         string  `json:"role"`
	Location     string  `json:"location"`
	Status       Status  `json:"status"`
	AppliedDate  *string `json:"applied_date"`
	NextFollowUp *string `json:"next_follow_up"`
	Link         string  `json:"link"`
	Notes        string  `json:"notes"`
}

// FollowUpDue reports whether next_follow_up is set and falls on or before
// the calendar day of today. Unparseable dates are never due.
func (r Record) FollowUpDue(today time.Time) bool {
	if r.NextFollowUp == nil {
		return false
	}
	d, err := time.Parse(DateLayout, *r.NextFollowUp)
	if err != nil {
		return false
	}
	y, m, day := today.Date()
	return !d.After(time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

// Draft is the not-yet-submitted form state. Every field is plain text,
// including Status, so that input is never validated eagerly.
type Draft struct {
	Company      string
	Role         string
	Location     string
	Status       string
	AppliedDate  string
	NextFollowUp string
	Link         string
	Notes        string
}

// NewDraft returns the empty form shape: all fields empty, status APPLIED.
func NewDraft() Draft {
	return Draft{Status: string(StatusApplied)}
}

// Payload is the create request body.
type Payload struct {
	Company      string  `json:"company"`
	Role         string  `json:"role"`
	Location     string  `json:"location"`
	Status       Status  `json:"status"`
	AppliedDate  *string `json:"applied_date"`
	NextFollowUp *string `json:"next_follow_up"`
	Link         string  `json:"link"`
	Notes        string  `json:"notes"`
}

// Payload normalizes the draft for submission: an empty date becomes null,
// every other field is sent exactly as typed.
func (d Draft) Payload() Payload {
	return Payload{
		Company:      d.Company,
		Role:         d.Role,
		Location:     d.Location,
		Status:       Status(d.Status),
		AppliedDate:  nullIfEmpty(d.AppliedDate),
		NextFollowUp: nullIfEmpty(d.NextFollowUp),
		Link:         d.Link,
		Notes:        d.Notes,
	}
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
