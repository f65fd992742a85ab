package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
)

func TestWriteError_SubscriptionRequired(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.SubscriptionRequired(nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["subscription_required"] != true || body["success"] != false {
		t.Errorf("body = %v", body)
	}
}

func TestWriteError_OmitsSubscriptionFlag(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, errors.NotFound("Letter"))

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["subscription_required"]; ok {
		t.Errorf("unexpected subscription_required in %v", body)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
}

func TestWriteSuccessWithMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccessWithMessage(rec, http.StatusOK, "Subscription activated", map[string]int{"lettersRemaining": 4})

	var body struct {
		Success bool           `json:"success"`
		Message string         `json:"message"`
		Data    map[string]int `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || body.Message != "Subscription activated" || body.Data["lettersRemaining"] != 4 {
		t.Errorf("body = %+v", body)
	}
}
