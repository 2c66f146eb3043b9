package application_test

import (
	"testing"

	"jobmate/tracker/internal/application"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{"APPLIED", "SCREEN", "ONSITE", "OFFER", "REJECTED", "WITHDRAWN"}
	for _, s := range valid {
		got, err := application.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
}

func TestParseStatus_InvalidValue(t *testing.T) {
	for _, s := range []string{"UNKNOWN", "HIRED", "INTERVIEW", ""} {
		if _, err := application.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// ParseStatus must be case-sensitive: lowercase variants are not valid.
func TestParseStatus_CaseSensitive(t *testing.T) {
	lowercase := []string{"applied", "screen", "onsite", "offer", "rejected", "withdrawn"}
	for _, s := range lowercase {
		if _, err := application.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) should reject lowercase value, got nil error", s)
		}
	}
}

func TestParseStatus_WithWhitespace(t *testing.T) {
	padded := []string{" APPLIED", "APPLIED ", " APPLIED "}
	for _, s := range padded {
		if _, err := application.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) should reject padded value, got nil error", s)
		}
	}
}

// ── Statuses / Label ───────────────────────────────────────────────────────

func TestStatuses_OrderAndRoundTrip(t *testing.T) {
	want := []application.Status{
		application.StatusApplied,
		application.StatusScreen,
		application.StatusOnsite,
		application.StatusOffer,
		application.StatusRejected,
		application.StatusWithdrawn,
	}
	got := application.Statuses()
	if len(got) != len(want) {
		t.Fatalf("Statuses() returned %d values, want %d", len(got), len(want))
	}
	for i, s := range got {
		if s != want[i] {
			t.Errorf("Statuses()[%d] = %s, want %s", i, s, want[i])
		}
		parsed, err := application.ParseStatus(string(s))
		if err != nil || parsed != s {
			t.Errorf("ParseStatus(%q) = %q, %v", s, parsed, err)
		}
	}
}

func TestLabel(t *testing.T) {
	cases := map[application.Status]string{
		application.StatusApplied:   "Applied",
		application.StatusOnsite:    "Onsite",
		application.StatusWithdrawn: "Withdrawn",
		application.Status("LOST"):  "LOST",
	}
	for s, want := range cases {
		if got := s.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", s, got, want)
		}
	}
}
