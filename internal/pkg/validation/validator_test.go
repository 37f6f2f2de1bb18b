package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name     string   `json:"name" validate:"required,min=3,max=10"`
	Email    string   `json:"email" validate:"required,email"`
	Level    string   `json:"coverage_level" validate:"required,coverage"`
	Latitude *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
}

func ptr(f float64) *float64 { return &f }

func TestStruct_Valid(t *testing.T) {
	s := sample{Name: "Park", Email: "a@b.co", Level: "High", Latitude: ptr(12.9)}
	if err := Struct(s); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_NilPointerSkipped(t *testing.T) {
	s := sample{Name: "Park", Email: "a@b.co", Level: "Low"}
	if err := Struct(s); err != nil {
		t.Fatalf("nil optional field should pass: %v", err)
	}
}

func TestStruct_FieldErrorsUseJSONNames(t *testing.T) {
	s := sample{Name: "P", Email: "nope", Level: "Dense", Latitude: ptr(91)}
	err := Struct(s)

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if len(verr.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %v", len(verr.Fields), verr)
	}

	fields := map[string]string{}
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	for _, name := range []string{"name", "email", "coverage_level", "latitude"} {
		if _, ok := fields[name]; !ok {
			t.Errorf("missing error for %q in %v", name, fields)
		}
	}
	if !strings.Contains(fields["coverage_level"], "High, Medium, or Low") {
		t.Errorf("unexpected coverage message: %s", fields["coverage_level"])
	}
	if !strings.Contains(fields["name"], "at least 3 characters") {
		t.Errorf("unexpected name message: %s", fields["name"])
	}
}
