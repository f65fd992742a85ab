package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/delivery"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/repository/postgres"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/testutil"
)

type stubRenderer struct {
	err error
}

func (r stubRenderer) Render(a *artifact.Artifact, w io.Writer) error {
	if r.err != nil {
		return r.err
	}
	_, err := fmt.Fprintf(w, "%%PDF-stub %s", a.Title)
	return err
}

type deliveryFixture struct {
	*gatekeeperFixture
	svc    *DeliveryService
	mailer *testutil.MockMailer
	owner  access.Caller
	letter *artifact.Artifact
}

func newDeliveryFixture(t *testing.T, renderer delivery.Renderer) *deliveryFixture {
	t.Helper()
	f := newGatekeeperFixture(t, 0)
	owner := userCaller(testutil.SeedAccount(t, f.db, "user"))
	testutil.SeedActiveSubscription(t, f.db, owner.AccountID, 1)

	req := letterRequest()
	req.FormData["recipientAddress"] = "1 Main St, Springfield"
	letter, err := f.gate.Generate(context.Background(), owner, req)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	mailer := &testutil.MockMailer{}
	svc := NewDeliveryService(f.gate, postgres.NewAccountRepository(f.db), renderer, mailer, f.audit,
		newTestLogger(), "https://api.example.com/")
	return &deliveryFixture{gatekeeperFixture: f, svc: svc, mailer: mailer, owner: owner, letter: letter}
}

func TestDeliveryService_ExportPDF(t *testing.T) {
	f := newDeliveryFixture(t, stubRenderer{})
	ctx := context.Background()
	admin := access.Caller{AccountID: testutil.SeedAccount(t, f.db, "admin"), Role: account.RoleAdmin}
	stranger := userCaller(testutil.SeedAccount(t, f.db, "user"))

	tests := []struct {
		name    string
		caller  access.Caller
		id      string
		wantErr string
	}{
		{name: "owner", caller: f.owner, id: f.letter.ID},
		{name: "admin sees any letter", caller: admin, id: f.letter.ID},
		{name: "other user sees nothing", caller: stranger, id: f.letter.ID, wantErr: errors.ErrCodeNotFound},
		{name: "anonymous", caller: access.Caller{}, id: f.letter.ID, wantErr: errors.ErrCodeUnauthorized},
		{name: "unknown letter", caller: f.owner, id: "missing", wantErr: errors.ErrCodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := f.svc.ExportPDF(ctx, tt.caller, tt.id)
			if tt.wantErr != "" {
				assertCode(t, err, tt.wantErr)
				return
			}
			if err != nil {
				t.Fatalf("ExportPDF() error = %v", err)
			}
			if doc.Filename != "letter-"+f.letter.ID+".pdf" || doc.ContentType != "application/pdf" {
				t.Errorf("document = %s (%s)", doc.Filename, doc.ContentType)
			}
			if !strings.HasPrefix(string(doc.Data), "%PDF-") {
				t.Errorf("data = %q", doc.Data)
			}
		})
	}
}

func TestDeliveryService_ExportPDFRenderFailure(t *testing.T) {
	f := newDeliveryFixture(t, stubRenderer{err: stderrors.New("font missing")})

	_, err := f.svc.ExportPDF(context.Background(), f.owner, f.letter.ID)
	assertCode(t, err, errors.ErrCodeInternal)
}

func TestDeliveryService_SendToAttorney(t *testing.T) {
	f := newDeliveryFixture(t, stubRenderer{})
	ctx := context.Background()

	owner, err := postgres.NewAccountRepository(f.db).GetByID(ctx, f.owner.AccountID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}

	receipt, err := f.svc.SendToAttorney(ctx, f.owner, f.letter.ID, delivery.SendRequest{
		AttorneyEmail: " saul@example.com ",
		AttorneyName:  "Saul Goodman\r\nBcc: everyone@example.com",
	})
	if err != nil {
		t.Fatalf("SendToAttorney() error = %v", err)
	}
	if receipt.SentTo != "saul@example.com" || receipt.ArtifactID != f.letter.ID || receipt.SentAt.IsZero() {
		t.Errorf("receipt = %+v", receipt)
	}

	sent := f.mailer.Sent()
	if len(sent) != 1 {
		t.Fatalf("emails = %d, want 1", len(sent))
	}
	e := sent[0]
	if e.To != "saul@example.com" {
		t.Errorf("To = %q", e.To)
	}
	if strings.ContainsAny(e.ToName, "\r\n") {
		t.Errorf("ToName keeps line breaks: %q", e.ToName)
	}
	if e.ReplyTo != owner.Email {
		t.Errorf("ReplyTo = %q, want %q", e.ReplyTo, owner.Email)
	}
	if e.Subject != "Legal Letter: Unpaid invoice" {
		t.Errorf("Subject = %q", e.Subject)
	}
	for _, want := range []string{
		"From: " + owner.Name,
		"To: Acme Corp",
		"Address: 1 Main St, Springfield",
		"https://api.example.com/api/letters/" + f.letter.ID + "/pdf",
	} {
		if !strings.Contains(e.Text, want) {
			t.Errorf("text body lacks %q", want)
		}
	}
	if !strings.Contains(e.HTML, "Unpaid invoice") {
		t.Error("html body lacks the title")
	}
	if len(e.Attachments) != 1 || e.Attachments[0].Filename != "letter-"+f.letter.ID+".pdf" {
		t.Errorf("attachments = %+v", e.Attachments)
	}

	var sentEvents int
	for _, ev := range f.audit.Events() {
		if ev == audit.EventLetterSent {
			sentEvents++
		}
	}
	if sentEvents != 1 {
		t.Errorf("letter_sent entries = %d, want 1", sentEvents)
	}
}

func TestDeliveryService_SendToAttorneyFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, f *deliveryFixture) access.Caller
		email   string
		wantErr string
	}{
		{
			name:    "missing email",
			setup:   func(_ *testing.T, f *deliveryFixture) access.Caller { return f.owner },
			wantErr: errors.ErrCodeValidation,
		},
		{
			name: "someone else's letter",
			setup: func(t *testing.T, f *deliveryFixture) access.Caller {
				return userCaller(testutil.SeedAccount(t, f.db, "user"))
			},
			email:   "saul@example.com",
			wantErr: errors.ErrCodeNotFound,
		},
		{
			name: "mail not configured",
			setup: func(t *testing.T, f *deliveryFixture) access.Caller {
				f.mailer.Err = delivery.ErrMailDisabled
				return f.owner
			},
			email:   "saul@example.com",
			wantErr: errors.ErrCodeServiceUnavailable,
		},
		{
			name: "relay rejects the message",
			setup: func(t *testing.T, f *deliveryFixture) access.Caller {
				f.mailer.Err = stderrors.New("550 mailbox unavailable")
				return f.owner
			},
			email:   "saul@example.com",
			wantErr: errors.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDeliveryFixture(t, stubRenderer{})
			caller := tt.setup(t, f)

			_, err := f.svc.SendToAttorney(context.Background(), caller, f.letter.ID, delivery.SendRequest{AttorneyEmail: tt.email})
			assertCode(t, err, tt.wantErr)

			if len(f.mailer.Sent()) != 0 {
				t.Errorf("emails = %d, want 0", len(f.mailer.Sent()))
			}
			for _, ev := range f.audit.Events() {
				if ev == audit.EventLetterSent {
					t.Error("failed send was audited as letter_sent")
				}
			}
		})
	}
}

func TestPreview(t *testing.T) {
	short := "Dear Acme"
	if got := preview(short); got != short {
		t.Errorf("preview(short) = %q", got)
	}

	long := strings.Repeat("é", delivery.PreviewLength+10)
	got := preview(long)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != delivery.PreviewLength+3 {
		t.Errorf("preview(long) has %d runes", len([]rune(got)))
	}
}
