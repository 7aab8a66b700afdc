package validation

import (
	"errors"
	"testing"

	"tastetrail/internal/apperr"
)

type fetchInput struct {
	PostIDs        []int64 `json:"postIds" validate:"required,min=1"`
	CollectionType string  `json:"collectionType" validate:"collectiontype"`
	Limit          int     `json:"limit" validate:"min=1,max=100"`
}

type nameInput struct {
	Name string `json:"name" validate:"notblank,max=10"`
}

func TestStructValid(t *testing.T) {
	in := fetchInput{PostIDs: []int64{1}, CollectionType: "recipes", Limit: 8}
	if err := Struct(&in); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	in := fetchInput{CollectionType: "posts", Limit: 0}
	err := Struct(&in)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, apperr.ErrInvalid) {
		t.Error("expected error to match apperr.ErrInvalid")
	}

	var verr *Error
	if !errors.As(err, &verr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	got := map[string]string{}
	for _, f := range verr.Fields {
		got[f.Field] = f.Tag
	}
	want := map[string]string{"postIds": "required", "collectionType": "collectiontype", "limit": "min"}
	for field, tag := range want {
		if got[field] != tag {
			t.Errorf("field %s: got tag %q, want %q", field, got[field], tag)
		}
	}
}

func TestNotBlank(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"Brunch", true},
		{"", false},
		{"   ", false},
		{"far too long a name", false},
	}
	for _, tt := range tests {
		err := Struct(&nameInput{Name: tt.name})
		if (err == nil) != tt.valid {
			t.Errorf("%q: valid=%v, err=%v", tt.name, tt.valid, err)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := Struct(&nameInput{Name: " "})
	if err == nil || err.Error() != "name is required" {
		t.Errorf("unexpected message: %v", err)
	}
}
