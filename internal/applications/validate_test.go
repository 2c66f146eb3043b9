package applications_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/tracker/internal/application"
	"jobmate/tracker/internal/applications"
)

func fieldErrors(t *testing.T, body string) map[string]string {
	t.Helper()
	_, err := applications.DecodeCreate([]byte(body))
	require.Error(t, err)
	var ve *applications.ValidationError
	require.True(t, errors.As(err, &ve), "want *ValidationError, got %T: %v", err, err)
	return ve.Fields
}

func TestDecodeCreate_Minimal(t *testing.T) {
	p, err := applications.DecodeCreate([]byte(`{"company":" Acme ","role":"Eng"}`))
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.Company)
	assert.Equal(t, "Eng", p.Role)
	assert.Equal(t, application.StatusApplied, p.Status)
	assert.Nil(t, p.AppliedDate)
	assert.Nil(t, p.NextFollowUp)
}

func TestDecodeCreate_FullDraftPayload(t *testing.T) {
	p, err := applications.DecodeCreate([]byte(`{
		"company": "Acme", "role": "Eng", "location": "", "status": "ONSITE",
		"applied_date": "2024-03-01", "next_follow_up": null,
		"link": "", "notes": "line one\n  line two"
	}`))
	require.NoError(t, err)
	assert.Equal(t, application.StatusOnsite, p.Status)
	require.NotNil(t, p.AppliedDate)
	assert.Equal(t, "2024-03-01", *p.AppliedDate)
	assert.Nil(t, p.NextFollowUp)
	assert.Equal(t, "line one\n  line two", p.Notes)
}

func TestDecodeCreate_MissingRequired(t *testing.T) {
	fields := fieldErrors(t, `{"location":"Paris"}`)
	assert.Equal(t, "this field is required", fields["company"])
	assert.Equal(t, "this field is required", fields["role"])
}

func TestDecodeCreate_BlankRequired(t *testing.T) {
	fields := fieldErrors(t, `{"company":"   ","role":"Eng"}`)
	assert.Equal(t, "may not be blank", fields["company"])
	assert.NotContains(t, fields, "role")
}

func TestDecodeCreate_Rejects(t *testing.T) {
	long := strings.Repeat("x", 201)
	cases := []struct {
		name, body, field string
	}{
		{"unknown status", `{"company":"A","role":"B","status":"HIRED"}`, "status"},
		{"lowercase status", `{"company":"A","role":"B","status":"applied"}`, "status"},
		{"empty date string", `{"company":"A","role":"B","applied_date":""}`, "applied_date"},
		{"impossible date", `{"company":"A","role":"B","next_follow_up":"2024-02-30"}`, "next_follow_up"},
		{"bad link", `{"company":"A","role":"B","link":"not a url"}`, "link"},
		{"long company", `{"company":"` + long + `","role":"B"}`, "company"},
		{"unknown field", `{"company":"A","role":"B","salary":1}`, "salary"},
		{"not an object", `[]`, "body"},
		{"not json", `{"company":`, "body"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Contains(t, fieldErrors(t, c.body), c.field)
		})
	}
}

func TestDecodeCreate_AcceptsLink(t *testing.T) {
	p, err := applications.DecodeCreate([]byte(`{"company":"A","role":"B","link":"https://jobs.example.com/1"}`))
	require.NoError(t, err)
	assert.Equal(t, "https://jobs.example.com/1", p.Link)
}

func TestValidationError_MessageIsSorted(t *testing.T) {
	err := &applications.ValidationError{Fields: map[string]string{"role": "r", "company": "c"}}
	assert.Equal(t, "invalid application: company: c; role: r", err.Error())
}
