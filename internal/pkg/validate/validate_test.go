package validate

import (
	"errors"
	"testing"
)

type samplePost struct {
	Title    string   `json:"title" validate:"required,max=10"`
	Priority string   `json:"priority" validate:"post_priority"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Tags     []string `json:"tags" validate:"max=2"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Struct(samplePost{Priority: "urgent", Email: "nope", Tags: []string{"a", "b", "c"}})
	var fields FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected FieldErrors, got %T %v", err, err)
	}
	for _, name := range []string{"title", "priority", "email", "tags"} {
		if _, ok := fields[name]; !ok {
			t.Fatalf("missing error for %s: %v", name, fields)
		}
	}
	if fields["title"] != "is required" {
		t.Fatalf("title message: got %q", fields["title"])
	}
}

func TestStructAcceptsValidInput(t *testing.T) {
	v := New()
	if err := v.Struct(samplePost{Title: "Hello", Priority: "high"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := v.Struct(samplePost{Title: "Hello"}); err != nil {
		t.Fatalf("empty enum should pass: %v", err)
	}
}

func TestRequired(t *testing.T) {
	if Required("  ") || !Required("x") {
		t.Fatalf("unexpected Required result")
	}
}
