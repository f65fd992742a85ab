package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/notification"
)

func TestOpsNotifier_Notify(t *testing.T) {
	var received map[string]interface{}
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &received); err != nil {
			t.Errorf("invalid slack payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	alert := notification.Alert{
		Type:     notification.AlertLedgerFatal,
		Priority: notification.PriorityCritical,
		Title:    "Referral code allocation exhausted",
		Message:  "No unique referral code could be allocated",
		Fields:   map[string]string{"contractor_id": "c-1"},
	}

	tests := []struct {
		name      string
		url       string
		wantCalls int
		wantErr   bool
	}{
		{name: "log only without webhook", url: "", wantCalls: 0},
		{name: "posts to slack", url: server.URL, wantCalls: 1},
		{name: "unreachable webhook", url: "http://127.0.0.1:1/hook", wantCalls: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewOpsNotifier(newTestLogger(), tt.url, "#ops")
			err := n.Notify(context.Background(), alert)
			if (err != nil) != tt.wantErr {
				t.Errorf("Notify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("webhook calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}

	if received["channel"] != "#ops" {
		t.Errorf("channel = %v, want #ops", received["channel"])
	}
}
