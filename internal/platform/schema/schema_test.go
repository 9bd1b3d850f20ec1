package schema

import (
	"testing"
	"time"
)

func patientLikeShape() *Shape {
	return &Shape{Fields: []Field{
		{Name: "firstName", Type: String, Required: true, MaxLen: 100},
		{Name: "lastName", Type: String, Required: true, MaxLen: 100},
		{Name: "dateOfBirth", Type: Date, Required: true},
		{Name: "gender", Type: String, Required: true, Enum: []string{"MALE", "FEMALE", "OTHER", "UNKNOWN"}},
		{Name: "notes", Type: String, MaxLen: 10},
	}}
}

func TestValidate_ReportsAllViolations(t *testing.T) {
	shape := patientLikeShape()

	_, violations := shape.Validate(map[string]interface{}{
		"firstName": "Ada",
	})

	if len(violations) != 3 {
		t.Fatalf("expected 3 violations, got %d: %+v", len(violations), violations)
	}
	fields := make(map[string]bool)
	for _, v := range violations {
		fields[v.Field] = true
	}
	for _, want := range []string{"lastName", "dateOfBirth", "gender"} {
		if !fields[want] {
			t.Errorf("expected a violation for %q", want)
		}
	}
}

func TestValidate_EnumCaseFolding(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"FEMALE", "FEMALE"},
		{"female", "FEMALE"},
		{"Female", "FEMALE"},
		{" unknown ", "UNKNOWN"},
	}

	shape := patientLikeShape()
	for _, tt := range tests {
		out, violations := shape.Validate(map[string]interface{}{
			"firstName":   "Ada",
			"lastName":    "Lovelace",
			"dateOfBirth": "1990-03-14",
			"gender":      tt.in,
		})
		if len(violations) != 0 {
			t.Fatalf("gender %q: unexpected violations %+v", tt.in, violations)
		}
		if out["gender"] != tt.want {
			t.Errorf("gender %q: got %v, want %s", tt.in, out["gender"], tt.want)
		}
	}
}

func TestValidate_EnumFoldsSeparators(t *testing.T) {
	shape := &Shape{Fields: []Field{
		{Name: "type", Type: String, Required: true, Enum: []string{"FOLLOW_UP", "CONSULTATION"}},
	}}

	out, violations := shape.Validate(map[string]interface{}{"type": "follow-up"})
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}
	if out["type"] != "FOLLOW_UP" {
		t.Errorf("got %v, want FOLLOW_UP", out["type"])
	}
}

func TestValidate_RejectsUnknownEnumValue(t *testing.T) {
	shape := patientLikeShape()
	_, violations := shape.Validate(map[string]interface{}{
		"firstName":   "Ada",
		"lastName":    "Lovelace",
		"dateOfBirth": "1990-03-14",
		"gender":      "neither",
	})
	if len(violations) != 1 || violations[0].Field != "gender" {
		t.Fatalf("expected single gender violation, got %+v", violations)
	}
}

func TestValidate_DropsUndeclaredFields(t *testing.T) {
	shape := patientLikeShape()
	out, violations := shape.Validate(map[string]interface{}{
		"firstName":   "Ada",
		"lastName":    "Lovelace",
		"dateOfBirth": "1990-03-14",
		"gender":      "FEMALE",
		"role":        "ADMIN",
		"permissions": []string{"patient_write"},
	})
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}
	if _, ok := out["role"]; ok {
		t.Error("undeclared field 'role' survived validation")
	}
	if _, ok := out["permissions"]; ok {
		t.Error("undeclared field 'permissions' survived validation")
	}
}

func TestValidate_DateNormalization(t *testing.T) {
	shape := patientLikeShape()
	out, violations := shape.Validate(map[string]interface{}{
		"firstName":   "Ada",
		"lastName":    "Lovelace",
		"dateOfBirth": "1990-03-14",
		"gender":      "FEMALE",
	})
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}
	dob, ok := out["dateOfBirth"].(time.Time)
	if !ok {
		t.Fatalf("dateOfBirth not normalized to time.Time: %T", out["dateOfBirth"])
	}
	if dob.Year() != 1990 || dob.Month() != time.March || dob.Day() != 14 {
		t.Errorf("unexpected date: %v", dob)
	}
}

func TestValidate_MaxLen(t *testing.T) {
	shape := patientLikeShape()
	_, violations := shape.Validate(map[string]interface{}{
		"firstName":   "Ada",
		"lastName":    "Lovelace",
		"dateOfBirth": "1990-03-14",
		"gender":      "FEMALE",
		"notes":       "this is far too long for the field",
	})
	if len(violations) != 1 || violations[0].Field != "notes" {
		t.Fatalf("expected single notes violation, got %+v", violations)
	}
}

func TestValidate_NestedObjectViolationsArePrefixed(t *testing.T) {
	shape := &Shape{Fields: []Field{
		{Name: "contact", Type: Object, Shape: &Shape{Fields: []Field{
			{Name: "phone", Type: String, Required: true},
		}}},
	}}

	_, violations := shape.Validate(map[string]interface{}{
		"contact": map[string]interface{}{},
	})
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %+v", violations)
	}
	if violations[0].Field != "contact.phone" {
		t.Errorf("got field %q, want contact.phone", violations[0].Field)
	}
}

func TestValidateStrings_EmptyValuesAreAbsent(t *testing.T) {
	shape := &Shape{Fields: []Field{
		{Name: "startDate", Type: Date, Required: true},
		{Name: "doctorId", Type: String},
	}}

	out, violations := shape.ValidateStrings(map[string]string{
		"startDate": "2026-01-01",
		"doctorId":  "",
	})
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}
	if _, ok := out["doctorId"]; ok {
		t.Error("empty query parameter should not appear in the result")
	}
}

func TestValidateStrings_MissingRequiredDate(t *testing.T) {
	shape := &Shape{Fields: []Field{
		{Name: "startDate", Type: Date, Required: true},
		{Name: "endDate", Type: Date, Required: true},
	}}

	_, violations := shape.ValidateStrings(map[string]string{})
	if len(violations) != 2 {
		t.Fatalf("expected 2 violations, got %+v", violations)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct{ in, want string }{
		{"female", "FEMALE"},
		{"Follow-Up", "FOLLOW_UP"},
		{"no show", "NO_SHOW"},
		{"  Stage III ", "STAGE_III"},
	}
	for _, tt := range tests {
		if got := Canonical(tt.in); got != tt.want {
			t.Errorf("Canonical(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
