package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/middleware"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/testutil"
)

func (f *handlerFixture) seedLetter(t *testing.T, owner access.Caller) artifact.Artifact {
	t.Helper()
	testutil.SeedActiveSubscription(t, f.db, owner.AccountID, 1)
	rec, env := f.do(t, f.artifact.GenerateLetter, call{path: "/api/letters/generate", caller: &owner, body: letterBody()})
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate status = %d (%s)", rec.Code, rec.Body.String())
	}
	var a artifact.Artifact
	decodeData(t, env, &a)
	return a
}

// getPDF calls the binary endpoint directly; the response is not a JSON envelope.
func (f *handlerFixture) getPDF(caller access.Caller, id string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/letters/"+id+"/pdf", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	ctx := context.WithValue(middleware.WithCaller(req.Context(), caller), chi.RouteCtxKey, rctx)

	rec := httptest.NewRecorder()
	f.delivery.PDF(rec, req.WithContext(ctx))
	return rec
}

func TestDeliveryHandler_PDF(t *testing.T) {
	f := newHandlerFixture(t)
	owner := seedCaller(t, f.db, account.RoleUser)
	letter := f.seedLetter(t, owner)

	rec := f.getPDF(owner, letter.ID)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="letter-`+letter.ID+`.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") {
		t.Errorf("body starts with %q", rec.Body.String()[:min(8, rec.Body.Len())])
	}

	admin := seedCaller(t, f.db, account.RoleAdmin)
	if rec := f.getPDF(admin, letter.ID); rec.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", rec.Code)
	}

	other := seedCaller(t, f.db, account.RoleUser)
	rec = f.getPDF(other, letter.ID)
	if rec.Code != http.StatusNotFound {
		t.Errorf("other user's status = %d, want 404", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("error Content-Type = %q", ct)
	}
}

func TestDeliveryHandler_SendEmail(t *testing.T) {
	f := newHandlerFixture(t)
	owner := seedCaller(t, f.db, account.RoleUser)
	letter := f.seedLetter(t, owner)
	params := map[string]string{"id": letter.ID}
	path := "/api/letters/" + letter.ID + "/send-email"

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{
			name:       "missing email",
			body:       map[string]string{"attorney_name": "Saul"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "invalid email",
			body:       map[string]string{"attorney_email": "not-an-email"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_REQUEST",
		},
		{
			name:       "name too long",
			body:       map[string]string{"attorney_email": "saul@example.com", "attorney_name": strings.Repeat("x", 201)},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
		{
			name:       "sent",
			body:       map[string]string{"attorney_email": "saul@example.com", "attorney_name": "Saul Goodman"},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := f.do(t, f.delivery.SendEmail, call{path: path, caller: &owner, params: params, body: tt.body})
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantCode != "" {
				if env.Error.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", env.Error.Code, tt.wantCode)
				}
				return
			}
			if env.Message != "Email sent successfully" {
				t.Errorf("message = %q", env.Message)
			}
			var receipt struct {
				LetterID string `json:"letter_id"`
				SentTo   string `json:"sent_to"`
			}
			decodeData(t, env, &receipt)
			if receipt.LetterID != letter.ID || receipt.SentTo != "saul@example.com" {
				t.Errorf("receipt = %+v", receipt)
			}
		})
	}

	if got := len(f.mailer.Sent()); got != 1 {
		t.Errorf("emails sent = %d, want 1", got)
	}

	other := seedCaller(t, f.db, account.RoleUser)
	rec, _ := f.do(t, f.delivery.SendEmail, call{path: path, caller: &other, params: params,
		body: map[string]string{"attorney_email": "saul@example.com"}})
	if rec.Code != http.StatusNotFound {
		t.Errorf("other user's status = %d, want 404", rec.Code)
	}
}
