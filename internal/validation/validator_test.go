// Reelrank - Movie Recommendation Scoring and Personalization Engine
// Copyright 2026 The Reelrank Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelrank/reelrank

package validation

import (
	"strings"
	"testing"
)

// signalForm mirrors the shape of the signal ingestion request.
type signalForm struct {
	MovieID string  `validate:"required"`
	Action  string  `validate:"required,oneof=view click save rate skip remove watch_time"`
	Value   float64 `validate:"gte=0,lte=5"`
}

// importMovieForm mirrors the shape of a catalog import entry.
type importMovieForm struct {
	Title     string `validate:"required,min=1,max=500"`
	Year      int    `validate:"gte=1870,lte=2100"`
	PosterURL string `validate:"omitempty,url"`
	Count     int    `validate:"min=1,max=100"`
}

// --- Test: singleton ---

func TestGetValidatorReturnsSameInstance(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Fatal("GetValidator() returned different instances")
	}
}

// --- Test: struct validation ---

func TestValidateStructPasses(t *testing.T) {
	t.Parallel()

	form := signalForm{MovieID: "tt0111161", Action: "rate", Value: 4.5}
	if err := ValidateStruct(&form); err != nil {
		t.Fatalf("ValidateStruct() = %v, want nil", err)
	}
}

func TestValidateStructRequired(t *testing.T) {
	t.Parallel()

	form := signalForm{Action: "view"}
	err := ValidateStruct(&form)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error for missing MovieID")
	}

	errs := err.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), err)
	}
	if errs[0].Field() != "MovieID" {
		t.Errorf("Field() = %q, want MovieID", errs[0].Field())
	}
	if errs[0].Tag() != "required" {
		t.Errorf("Tag() = %q, want required", errs[0].Tag())
	}
	if got := errs[0].Error(); got != "MovieID is required" {
		t.Errorf("Error() = %q, want %q", got, "MovieID is required")
	}
}

func TestValidateStructOneof(t *testing.T) {
	t.Parallel()

	form := signalForm{MovieID: "tt0111161", Action: "purchase"}
	err := ValidateStruct(&form)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error for unknown action")
	}

	errs := err.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), err)
	}
	if errs[0].Tag() != "oneof" {
		t.Errorf("Tag() = %q, want oneof", errs[0].Tag())
	}
	if !strings.Contains(errs[0].Error(), "Action must be one of:") {
		t.Errorf("Error() = %q, want oneof message", errs[0].Error())
	}
	if errs[0].Param() == "" {
		t.Error("Param() empty, want allowed value list")
	}
}

func TestValidateStructRangeBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		form    signalForm
		tag     string
		message string
	}{
		{
			name:    "value below range",
			form:    signalForm{MovieID: "m-1", Action: "rate", Value: -1},
			tag:     "gte",
			message: "Value must be greater than or equal to 0",
		},
		{
			name:    "value above range",
			form:    signalForm{MovieID: "m-1", Action: "rate", Value: 5.5},
			tag:     "lte",
			message: "Value must be less than or equal to 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.form)
			if err == nil {
				t.Fatal("ValidateStruct() = nil, want range error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), err)
			}
			if errs[0].Tag() != tt.tag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.tag)
			}
			if errs[0].Error() != tt.message {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.message)
			}
		})
	}
}

func TestValidateStructMinMaxMessages(t *testing.T) {
	t.Parallel()

	// String min/max mentions characters, numeric min/max does not.
	form := importMovieForm{Title: strings.Repeat("x", 501), Year: 1994, Count: 0}
	err := ValidateStruct(&form)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want errors")
	}

	byField := map[string]string{}
	for _, fe := range err.Errors() {
		byField[fe.Field()] = fe.Error()
	}

	if got := byField["Title"]; got != "Title must be at most 500 characters" {
		t.Errorf("Title message = %q", got)
	}
	if got := byField["Count"]; got != "Count must be at least 1" {
		t.Errorf("Count message = %q", got)
	}
}

func TestValidateStructURL(t *testing.T) {
	t.Parallel()

	form := importMovieForm{Title: "Heat", Year: 1995, Count: 10, PosterURL: "not-a-url"}
	err := ValidateStruct(&form)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want URL error")
	}

	errs := err.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), err)
	}
	if got := errs[0].Error(); got != "PosterURL must be a valid URL" {
		t.Errorf("Error() = %q", got)
	}
}

// --- Test: API error conversion ---

func TestToAPIErrorSingle(t *testing.T) {
	t.Parallel()

	form := signalForm{Action: "view"}
	err := ValidateStruct(&form)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message != "MovieID is required" {
		t.Errorf("Message = %q", apiErr.Message)
	}
	if apiErr.Details["field"] != "MovieID" {
		t.Errorf("Details[field] = %v, want MovieID", apiErr.Details["field"])
	}
	if apiErr.Details["tag"] != "required" {
		t.Errorf("Details[tag] = %v, want required", apiErr.Details["tag"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	t.Parallel()

	form := signalForm{Value: 9}
	err := ValidateStruct(&form)
	if err == nil {
		t.Fatal("ValidateStruct() = nil, want errors")
	}
	if len(err.Errors()) < 2 {
		t.Fatalf("got %d errors, want several: %v", len(err.Errors()), err)
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if !strings.Contains(apiErr.Message, "; ") {
		t.Errorf("Message = %q, want combined message", apiErr.Message)
	}

	fields, ok := apiErr.Details["fields"].([]map[string]any)
	if !ok {
		t.Fatalf("Details[fields] has type %T", apiErr.Details["fields"])
	}
	if len(fields) != len(err.Errors()) {
		t.Errorf("fields length = %d, want %d", len(fields), len(err.Errors()))
	}
}

func TestRequestValidationErrorMessage(t *testing.T) {
	t.Parallel()

	empty := &RequestValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Errorf("empty Error() = %q", got)
	}
}
