package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/auth"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/testutil"
)

const testSecret = "middleware-test-secret"

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	if body.Success {
		t.Fatalf("success = true for error response")
	}
	return body.Error.Code
}

func mintToken(t *testing.T, role account.Role, typ string) string {
	t.Helper()
	pair, err := auth.MintTokens(auth.Identity{AccountID: "acc-1", Email: "a@example.com", Role: string(role)},
		testSecret, time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("MintTokens: %v", err)
	}
	if typ == auth.TokenTypeRefresh {
		return pair.RefreshToken
	}
	return pair.AccessToken
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{name: "missing token", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "wrong scheme", header: "Basic " + mintToken(t, account.RoleUser, auth.TokenTypeAccess), wantStatus: http.StatusUnauthorized},
		{name: "refresh token rejected", header: "Bearer " + mintToken(t, account.RoleUser, auth.TokenTypeRefresh), wantStatus: http.StatusUnauthorized},
		{name: "bearer access token", header: "Bearer " + mintToken(t, account.RoleUser, auth.TokenTypeAccess), wantStatus: http.StatusOK},
		{name: "cookie access token", cookie: mintToken(t, account.RoleAdmin, auth.TokenTypeAccess), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got access.Caller
			h := AuthMiddleware(testSecret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = GetCaller(r)
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: AccessTokenCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus == http.StatusOK && got.AccountID != "acc-1" {
				t.Errorf("caller = %+v", got)
			}
		})
	}
}

func TestRequireAction(t *testing.T) {
	tests := []struct {
		name       string
		caller     *access.Caller
		action     access.Action
		wantStatus int
		wantAudit  bool
	}{
		{
			name:       "anonymous",
			action:     access.ActionGenerateLetter,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "user generates",
			caller:     &access.Caller{AccountID: "u1", Role: account.RoleUser},
			action:     access.ActionGenerateLetter,
			wantStatus: http.StatusOK,
		},
		{
			name:       "user on admin route",
			caller:     &access.Caller{AccountID: "u1", Role: account.RoleUser},
			action:     access.ActionListAccounts,
			wantStatus: http.StatusForbidden,
			wantAudit:  true,
		},
		{
			name:       "contractor stats",
			caller:     &access.Caller{AccountID: "c1", Role: account.RoleContractor},
			action:     access.ActionViewReferralStats,
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin stats",
			caller:     &access.Caller{AccountID: "a1", Role: account.RoleAdmin},
			action:     access.ActionViewReferralStats,
			wantStatus: http.StatusForbidden,
			wantAudit:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditSvc := &testutil.MockAuditService{}
			h := RequireAction(tt.action, auditSvc)(okHandler)

			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			if tt.caller != nil {
				req = req.WithContext(WithCaller(req.Context(), *tt.caller))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusForbidden && errorCode(t, rec) != "FORBIDDEN" {
				t.Errorf("unexpected error body %s", rec.Body.String())
			}

			events := auditSvc.Events()
			if tt.wantAudit {
				if len(events) != 1 || events[0] != audit.EventSecurity {
					t.Fatalf("audit events = %v, want one security event", events)
				}
				if auditSvc.Entries[0].Metadata["action"] != string(tt.action) {
					t.Errorf("metadata = %v", auditSvc.Entries[0].Metadata)
				}
			} else if len(events) != 0 {
				t.Errorf("audit events = %v, want none", events)
			}
		})
	}
}

func TestAuthRateLimit(t *testing.T) {
	auditSvc := &testutil.MockAuditService{}
	h := AuthRateLimit(2, time.Hour, auditSvc)(okHandler)

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = ip + ":1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("attempt %d status = %d", i+1, code)
		}
	}
	if code := send("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("third attempt status = %d, want 429", code)
	}
	if code := send("10.0.0.2"); code != http.StatusOK {
		t.Errorf("other ip status = %d, want 200", code)
	}

	events := auditSvc.Events()
	if len(events) != 1 || events[0] != audit.EventRateLimitExceeded {
		t.Fatalf("audit events = %v", events)
	}
	if auditSvc.Entries[0].IPAddress != "10.0.0.1" {
		t.Errorf("ip = %q", auditSvc.Entries[0].IPAddress)
	}
}

func TestAuthRateLimit_Disabled(t *testing.T) {
	h := AuthRateLimit(0, time.Minute, nil)(okHandler)
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	rl.Allow("a")
	rl.Allow("b")
	if rl.Len() != 2 {
		t.Fatalf("Len() = %d", rl.Len())
	}
	rl.Cleanup(-time.Second)
	if rl.Len() != 0 {
		t.Errorf("Len() after cleanup = %d", rl.Len())
	}
}

func TestRecovery(t *testing.T) {
	log := logger.Nop()
	h := Recovery(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("db password is hunter2")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hunter2") {
		t.Errorf("panic value leaked: %s", rec.Body.String())
	}
	if errorCode(t, rec) != "FATAL_ERROR" {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "req-123" || rec.Header().Get(RequestIDHeader) != "req-123" {
		t.Errorf("propagated id = %q / %q", seen, rec.Header().Get(RequestIDHeader))
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if len(seen) != 36 {
		t.Errorf("oversized id not replaced: %q", seen)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Errorf("headers = %v", rec.Header())
	}
}
