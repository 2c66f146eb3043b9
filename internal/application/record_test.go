package application_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/tracker/internal/application"
)

func TestNewDraft_DefaultsToApplied(t *testing.T) {
	d := application.NewDraft()
	assert.Equal(t, application.Draft{Status: "APPLIED"}, d)
}

func TestDraftPayload_EmptyDatesBecomeNull(t *testing.T) {
	d := application.NewDraft()
	d.Company = "Acme"
	d.Role = "Eng"

	raw, err := json.Marshal(d.Payload())
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	assert.Nil(t, body["applied_date"])
	assert.Contains(t, body, "applied_date")
	assert.Nil(t, body["next_follow_up"])
	assert.Contains(t, body, "next_follow_up")
	// Other empty strings are sent as-is.
	assert.Equal(t, "", body["location"])
	assert.Equal(t, "", body["link"])
	assert.Equal(t, "", body["notes"])
	assert.Equal(t, "APPLIED", body["status"])
}

func TestDraftPayload_KeepsDateText(t *testing.T) {
	d := application.NewDraft()
	d.AppliedDate = "2024-03-01"

	p := d.Payload()
	require.NotNil(t, p.AppliedDate)
	assert.Equal(t, "2024-03-01", *p.AppliedDate)
	assert.Nil(t, p.NextFollowUp)
}

func TestRecord_DecodesNumericAndStringIDs(t *testing.T) {
	var recs []application.Record
	err := json.Unmarshal([]byte(`[
		{"id": 7, "company": "Acme", "role": "Eng", "location": "", "status": "APPLIED",
		 "applied_date": null, "next_follow_up": "2024-05-02", "link": "", "notes": "a\nb"},
		{"id": "c0ffee", "company": "Initech", "role": "SRE", "location": "Remote", "status": "OFFER",
		 "applied_date": "2024-04-01", "next_follow_up": null, "link": "https://x.test", "notes": ""}
	]`), &recs)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, application.ID("7"), recs[0].ID)
	assert.Nil(t, recs[0].AppliedDate)
	assert.Equal(t, "a\nb", recs[0].Notes)
	assert.Equal(t, application.ID("c0ffee"), recs[1].ID)
	assert.Equal(t, application.StatusOffer, recs[1].Status)
}

func TestRecord_NullIDRejected(t *testing.T) {
	var r application.Record
	assert.Error(t, json.Unmarshal([]byte(`{"id": null}`), &r))
}

func TestRecord_FollowUpDue(t *testing.T) {
	today := time.Date(2024, 5, 2, 15, 30, 0, 0, time.UTC)
	date := func(s string) *string { return &s }

	cases := []struct {
		name string
		next *string
		want bool
	}{
		{"unset", nil, false},
		{"yesterday", date("2024-05-01"), true},
		{"today", date("2024-05-02"), true},
		{"tomorrow", date("2024-05-03"), false},
		{"garbage", date("soon"), false},
	}
	for _, c := range cases {
		r := application.Record{NextFollowUp: c.next}
		assert.Equal(t, c.want, r.FollowUpDue(today), c.name)
	}
}
