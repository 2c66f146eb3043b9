package applications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"jobmate/tracker/internal/application"
)

const maxCharField = 200

// bodyField keys errors that are not about a single property.
const bodyField = "body"

var createSchema = mustSchema(map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"required":             []string{"company", "role"},
	"properties": map[string]any{
		"company":        charField(true),
		"role":           charField(true),
		"location":       charField(false),
		"status":         map[string]any{"type": "string", "enum": statusEnum()},
		"applied_date":   dateField(),
		"next_follow_up": dateField(),
		"link": map[string]any{
			"type":      "string",
			"maxLength": maxCharField,
			"pattern":   `^(|(https?|ftps?)://\S+)$`,
		},
		"notes": map[string]any{"type": "string"},
	},
})

func mustSchema(doc map[string]any) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
	if err != nil {
		panic(fmt.Sprintf("applications: bad create schema: %v", err))
	}
	return s
}

func charField(required bool) map[string]any {
	f := map[string]any{"type": "string", "maxLength": maxCharField}
	if required {
		f["pattern"] = `\S`
	}
	return f
}

func dateField() map[string]any {
	return map[string]any{
		"type":    []string{"string", "null"},
		"pattern": `^\d{4}-\d{2}-\d{2}$`,
	}
}

func statusEnum() []string {
	out := make([]string, 0, len(application.Statuses()))
	for _, s := range application.Statuses() {
		out = append(out, string(s))
	}
	return out
}

// DecodeCreate validates a create request body and returns the payload to
// store. Omitted status defaults to APPLIED and surrounding whitespace is
// trimmed from the short text fields. Invalid input yields *ValidationError.
func DecodeCreate(raw []byte) (application.Payload, error) {
	if !json.Valid(raw) {
		return application.Payload{}, &ValidationError{Fields: map[string]string{bodyField: "invalid JSON body"}}
	}

	result, err := createSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return application.Payload{}, fmt.Errorf("validation error: %w", err)
	}

	fields := map[string]string{}
	if !result.Valid() {
		for _, desc := range result.Errors() {
			field, msg := describe(desc)
			if _, seen := fields[field]; !seen {
				fields[field] = msg
			}
		}
		return application.Payload{}, &ValidationError{Fields: fields}
	}

	var p application.Payload
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return application.Payload{}, &ValidationError{Fields: map[string]string{bodyField: err.Error()}}
	}

	// The schema only checks the shape; reject days that do not exist.
	for name, v := range map[string]*string{"applied_date": p.AppliedDate, "next_follow_up": p.NextFollowUp} {
		if v == nil {
			continue
		}
		if _, err := time.Parse(application.DateLayout, *v); err != nil {
			fields[name] = "enter a valid date (YYYY-MM-DD)"
		}
	}
	if len(fields) > 0 {
		return application.Payload{}, &ValidationError{Fields: fields}
	}

	p.Company = strings.TrimSpace(p.Company)
	p.Role = strings.TrimSpace(p.Role)
	p.Location = strings.TrimSpace(p.Location)
	if p.Status == "" {
		p.Status = application.StatusApplied
	}
	st, err := application.ParseStatus(string(p.Status))
	if err != nil {
		return application.Payload{}, &ValidationError{Fields: map[string]string{"status": err.Error()}}
	}
	p.Status = st
	return p, nil
}

func describe(e gojsonschema.ResultError) (field, msg string) {
	field = e.Field()
	switch e.Type() {
	case "required":
		return fmt.Sprint(e.Details()["property"]), "this field is required"
	case "additional_property_not_allowed":
		return fmt.Sprint(e.Details()["property"]), "unknown field"
	case "pattern":
		switch field {
		case "company", "role":
			return field, "may not be blank"
		case "link":
			return field, "enter a valid URL"
		case "applied_date", "next_follow_up":
			return field, "enter a valid date (YYYY-MM-DD)"
		}
	case "invalid_type":
		if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
			return bodyField, "expected a JSON object"
		}
	}
	if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
		field = bodyField
	}
	return field, e.Description()
}
