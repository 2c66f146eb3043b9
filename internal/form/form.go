// Package form holds the draft of a job application being typed in.
package form

import (
	"fmt"
	"sync"

	"jobmate/tracker/internal/application"
)

// Field names one input of the creation form. Values match the wire keys.
type Field string

const (
	FieldCompany      Field = "company"
	FieldRole         Field = "role"
	FieldLocation     Field = "location"
	FieldStatus       Field = "status"
	FieldAppliedDate  Field = "applied_date"
	FieldNextFollowUp Field = "next_follow_up"
	FieldLink         Field = "link"
	FieldNotes        Field = "notes"
)

// Fields lists every form input in display order.
func Fields() []Field {
	return []Field{
		FieldCompany, FieldRole, FieldLocation, FieldStatus,
		FieldAppliedDate, FieldNextFollowUp, FieldLink, FieldNotes,
	}
}

// required inputs carry a presence constraint; nothing else is checked here.
var required = []Field{FieldCompany, FieldRole}

// Model is the mutable draft. It is written by the input surface and read by
// the sync controller at submission time.
type Model struct {
	mu    sync.Mutex
	draft application.Draft
}

// New returns a Model holding an empty draft.
func New() *Model {
	return &Model{draft: application.NewDraft()}
}

// SetField updates exactly one field. Values are stored as typed.
func (m *Model) SetField(key Field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch key {
	case FieldCompany:
		m.draft.Company = value
	case FieldRole:
		m.draft.Role = value
	case FieldLocation:
		m.draft.Location = value
	case FieldStatus:
		m.draft.Status = value
	case FieldAppliedDate:
		m.draft.AppliedDate = value
	case FieldNextFollowUp:
		m.draft.NextFollowUp = value
	case FieldLink:
		m.draft.Link = value
	case FieldNotes:
		m.draft.Notes = value
	default:
		return fmt.Errorf("unknown form field %q", key)
	}
	return nil
}

// Get returns the current value of one field.
func (m *Model) Get(key Field) (string, error) {
	d := m.Draft()
	switch key {
	case FieldCompany:
		return d.Company, nil
	case FieldRole:
		return d.Role, nil
	case FieldLocation:
		return d.Location, nil
	case FieldStatus:
		return d.Status, nil
	case FieldAppliedDate:
		return d.AppliedDate, nil
	case FieldNextFollowUp:
		return d.NextFollowUp, nil
	case FieldLink:
		return d.Link, nil
	case FieldNotes:
		return d.Notes, nil
	}
	return "", fmt.Errorf("unknown form field %q", key)
}

// Draft returns a copy of the current draft.
func (m *Model) Draft() application.Draft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

// Reset restores the empty draft (status APPLIED).
func (m *Model) Reset() {
	m.mu.Lock()
	m.draft = application.NewDraft()
	m.mu.Unlock()
}

// Missing returns the required inputs that are still empty. It mirrors the
// input-level "required" attribute; authoritative validation is the server's.
func (m *Model) Missing() []Field {
	var out []Field
	for _, f := range required {
		if v, _ := m.Get(f); v == "" {
			out = append(out, f)
		}
	}
	return out
}
