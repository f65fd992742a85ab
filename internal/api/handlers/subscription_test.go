package handlers

import (
	"net/http"
	"testing"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/dto"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/testutil"
)

func TestSubscriptionHandler_Packages(t *testing.T) {
	f := newHandlerFixture(t)
	rec, env := f.do(t, f.subscription.Packages, call{method: "GET", path: "/api/subscription/packages"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Packages []struct {
			PackageType string `json:"packageType"`
			Letters     int    `json:"letters"`
		} `json:"packages"`
	}
	decodeData(t, env, &resp)
	if len(resp.Packages) != 3 {
		t.Fatalf("packages = %+v", resp.Packages)
	}
	want := map[string]int{"4letters": 4, "6letters": 6, "8letters": 8}
	for _, p := range resp.Packages {
		if want[p.PackageType] != p.Letters {
			t.Errorf("package %s has %d letters", p.PackageType, p.Letters)
		}
	}
}

func TestSubscriptionHandler_CheckoutFlow(t *testing.T) {
	f := newHandlerFixture(t)
	user := seedCaller(t, f.db, account.RoleUser)

	rec, env := f.do(t, f.subscription.CreateCheckout, call{
		path: "/api/subscription/create-checkout", caller: &user,
		body: map[string]string{"packageType": "2letters"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown package status = %d", rec.Code)
	}

	rec, env = f.do(t, f.subscription.CreateCheckout, call{
		path: "/api/subscription/create-checkout", caller: &user,
		body: map[string]string{"packageType": "6letters"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d (%s)", rec.Code, rec.Body.String())
	}
	var sess dto.CheckoutResponse
	decodeData(t, env, &sess)
	if sess.SessionID == "" || sess.AmountCents != 13999 {
		t.Fatalf("session = %+v", sess)
	}

	tests := []struct {
		name       string
		secret     string
		sessionID  string
		wantStatus int
	}{
		{name: "missing secret", sessionID: sess.SessionID, wantStatus: http.StatusUnauthorized},
		{name: "wrong secret", secret: "nope", sessionID: sess.SessionID, wantStatus: http.StatusUnauthorized},
		{name: "unknown session", secret: testWebhookSecret, sessionID: "cs_missing", wantStatus: http.StatusNotFound},
		{name: "completes", secret: testWebhookSecret, sessionID: sess.SessionID, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := map[string]string{}
			if tt.secret != "" {
				headers[WebhookSecretHeader] = tt.secret
			}
			rec, _ := f.do(t, f.subscription.CheckoutCompleted, call{
				path:    "/api/webhooks/checkout-completed",
				body:    map[string]string{"sessionId": tt.sessionID},
				headers: headers,
			})
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	if got := testutil.LettersRemaining(t, f.db, user.AccountID); got != 6 {
		t.Errorf("letters_remaining = %d, want 6", got)
	}

	rec, env = f.do(t, f.subscription.Status, call{method: "GET", path: "/api/subscription/status", caller: &user})
	if rec.Code != http.StatusOK {
		t.Fatalf("status code = %d", rec.Code)
	}
	var sub dto.SubscriptionDTO
	decodeData(t, env, &sub)
	if sub.Status != "active" || sub.LettersRemaining != 6 || sub.PackageType != "6letters" {
		t.Errorf("subscription = %+v", sub)
	}
}
