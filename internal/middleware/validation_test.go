package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Test struct mirroring the admin request shapes
type testCreateRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Slug        string `json:"slug" validate:"required"`
	ImageSource string `json:"image_source" validate:"omitempty,oneof=upload external"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeNameField bool, includeSlugField bool) bool {
			reqMap := make(map[string]interface{})

			if includeNameField {
				reqMap["name"] = "Wireless Headphones"
			}
			if includeSlugField {
				reqMap["slug"] = "wireless-headphones"
			}

			allFieldsPresent := includeNameField && includeSlugField

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var testReq testCreateRequest
			err := DecodeAndValidate(req, &testReq)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestValidationErrorsAreFormatted(t *testing.T) {
	reqMap := map[string]interface{}{
		"name":         "X", // below the minimum length
		"slug":         "wireless-headphones",
		"image_source": "hotlinked", // not in the allowed set
	}

	reqBody, _ := json.Marshal(reqMap)
	req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")

	var testReq testCreateRequest
	err := DecodeAndValidate(req, &testReq)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	validationErrors := FormatValidationErrors(err)
	if len(validationErrors) != 2 {
		t.Fatalf("expected 2 formatted errors, got %d: %+v", len(validationErrors), validationErrors)
	}
	for _, ve := range validationErrors {
		if ve.Field == "" || ve.Message == "" {
			t.Errorf("formatted error is missing field or message: %+v", ve)
		}
	}
}

func TestDecodeAndValidateRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	var testReq testCreateRequest
	if err := DecodeAndValidate(req, &testReq); err == nil {
		t.Fatal("expected a decode error")
	}
}
