package providers

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/config"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/delivery"
)

func testEmail() *delivery.Email {
	return &delivery.Email{
		To:      "saul@example.com",
		ToName:  "Saul Goodman",
		ReplyTo: "jane@example.com",
		Subject: "Legal Letter: Unpaid invoice",
		Text:    "Dear Saul Goodman,\n\nPlease find the letter attached.",
		HTML:    "<p>Dear Saul Goodman,</p>",
		Attachments: []delivery.Attachment{{
			Filename:    "letter-a1.pdf",
			ContentType: "application/pdf",
			Data:        []byte("%PDF-1.3 test"),
		}},
	}
}

func TestNewMailer(t *testing.T) {
	if _, ok := NewMailer(config.MailConfig{}).(DisabledMailer); !ok {
		t.Error("NewMailer() without host is not disabled")
	}
	if _, ok := NewMailer(config.MailConfig{Host: "smtp.example.com", Port: 587, FromEmail: "letters@example.com"}).(*SMTPMailer); !ok {
		t.Error("NewMailer() with host is not SMTP")
	}

	err := DisabledMailer{}.Send(context.Background(), testEmail())
	if !stderrors.Is(err, delivery.ErrMailDisabled) {
		t.Errorf("DisabledMailer.Send() error = %v, want ErrMailDisabled", err)
	}
}

func TestSMTPMailer_Message(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{
		Host:      "smtp.example.com",
		Port:      587,
		FromName:  "Talk To My Lawyer",
		FromEmail: "letters@example.com",
	})

	tests := []struct {
		name   string
		mutate func(e *delivery.Email)
		want   []string
	}{
		{
			name: "full message",
			want: []string{
				`From: "Talk To My Lawyer" <letters@example.com>`,
				`To: "Saul Goodman" <saul@example.com>`,
				"Reply-To: jane@example.com",
				"Subject: Legal Letter: Unpaid invoice",
				"multipart/alternative",
				`filename="letter-a1.pdf"`,
				"Dear Saul Goodman",
			},
		},
		{
			name: "no reply-to falls back to sender",
			mutate: func(e *delivery.Email) {
				e.ReplyTo = ""
				e.ToName = ""
			},
			want: []string{
				"To: saul@example.com",
				"Reply-To: letters@example.com",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := testEmail()
			if tt.mutate != nil {
				tt.mutate(e)
			}

			var buf bytes.Buffer
			if _, err := m.message(e).WriteTo(&buf); err != nil {
				t.Fatalf("WriteTo() error = %v", err)
			}
			raw := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(raw, w) {
					t.Errorf("message lacks %q\n%s", w, raw)
				}
			}
		})
	}
}

func TestSMTPMailer_SendHonoursCancelledContext(t *testing.T) {
	m := NewSMTPMailer(config.MailConfig{Host: "127.0.0.1", Port: 1, FromEmail: "letters@example.com"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Send(ctx, testEmail()); !stderrors.Is(err, context.Canceled) {
		t.Errorf("Send() error = %v, want context.Canceled", err)
	}
}
