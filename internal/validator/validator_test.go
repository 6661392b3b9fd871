package validator

import (
	"errors"
	"testing"
)

type sampleRequest struct {
	Title    string  `json:"title" validate:"required,notblank,max=200"`
	Day      string  `json:"day" validate:"omitempty,weekday"`
	Status   string  `json:"status" validate:"omitempty,movie_status"`
	Date     string  `json:"date" validate:"omitempty,iso_date"`
	Language string  `json:"language" validate:"omitempty,language"`
	LoginID  string  `json:"loginId" validate:"omitempty,login_id"`
	Rating   float64 `json:"rating" validate:"gte=0,lte=10"`
}

func TestValidate(t *testing.T) {
	v := New("en", "he")

	tests := []struct {
		name      string
		req       sampleRequest
		wantField string
	}{
		{name: "valid", req: sampleRequest{Title: "Up", Day: "Mon", Status: "wishlist", Date: "2024-03-01", Language: "he", LoginID: "kid.01"}},
		{name: "missing title", req: sampleRequest{}, wantField: "title"},
		{name: "blank title", req: sampleRequest{Title: "   "}, wantField: "title"},
		{name: "bad day", req: sampleRequest{Title: "Up", Day: "Monday"}, wantField: "day"},
		{name: "bad status", req: sampleRequest{Title: "Up", Status: "watched"}, wantField: "status"},
		{name: "bad date", req: sampleRequest{Title: "Up", Date: "01/03/2024"}, wantField: "date"},
		{name: "bad language", req: sampleRequest{Title: "Up", Language: "fr"}, wantField: "language"},
		{name: "bad login id", req: sampleRequest{Title: "Up", LoginID: "a b"}, wantField: "loginId"},
		{name: "rating too high", req: sampleRequest{Title: "Up", Rating: 11}, wantField: "rating"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve ValidationErrors
			if !errors.As(err, &ve) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if ve[0].Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, ve[0].Field)
			}
		})
	}
}

func TestToValidationErrorsPassthrough(t *testing.T) {
	in := NewFieldError("title", "duplicate", "already exists", "Up")
	out := ToValidationErrors(in)
	if len(out) != 1 || out[0].Rule != "duplicate" {
		t.Fatalf("unexpected conversion: %+v", out)
	}
	if ToValidationErrors(nil) != nil {
		t.Fatalf("nil should stay nil")
	}
}
