// Package application defines the job-application record shared by the
// tracker client and the reference API server.
//
// Status values:
//
//	APPLIED ─ SCREEN ─ ONSITE ─ OFFER
//	    REJECTED · WITHDRAWN
//
// There is no transition graph: any status may be set on creation.
package application

import "fmt"

// Status mirrors the status column of the applications table.
type Status string

const (
	StatusApplied   Status = "APPLIED"
	StatusScreen    Status = "SCREEN"
	StatusOnsite    Status = "ONSITE"
	StatusOffer     Status = "OFFER"
	StatusRejected  Status = "REJECTED"
	StatusWithdrawn Status = "WITHDRAWN"
)

var statusLabels = map[Status]string{
	StatusApplied:   "Applied",
	StatusScreen:    "Screen",
	StatusOnsite:    "Onsite",
	StatusOffer:     "Offer",
	StatusRejected:  "Rejected",
	StatusWithdrawn: "Withdrawn",
}

// Statuses returns every status in form select order.
func Statuses() []Status {
	return []Status{
		StatusApplied,
		StatusScreen,
		StatusOnsite,
		StatusOffer,
		StatusRejected,
		StatusWithdrawn,
	}
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values. Matching is exact: no case folding, no trimming.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := statusLabels[st]; ok {
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// Label returns the human-readable name, or the raw value when unknown.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}
