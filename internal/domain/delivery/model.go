// Package delivery covers getting a generated letter out of the service:
// as a PDF download or as an email to an attorney.
package delivery

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
)

// ErrMailDisabled means no SMTP server is configured.
var ErrMailDisabled = errors.New("delivery: email is not configured")

// PreviewLength caps the letter excerpt shown in the email body.
const PreviewLength = 1000

// Attachment is a file sent along with an email
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Email is an outgoing message. HTML is sent as an alternative to Text.
type Email struct {
	To          string
	ToName      string
	ReplyTo     string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Mailer sends email
type Mailer interface {
	Send(ctx context.Context, e *Email) error
}

// Renderer writes an artifact as a PDF
type Renderer interface {
	Render(a *artifact.Artifact, w io.Writer) error
}

// Document is a rendered artifact ready for download
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SendRequest names the attorney a letter goes to
type SendRequest struct {
	AttorneyEmail string
	AttorneyName  string
}

// Receipt confirms a sent letter
type Receipt struct {
	ArtifactID string    `json:"letter_id"`
	SentTo     string    `json:"sent_to"`
	SentAt     time.Time `json:"sent_at"`
}

// Service exports and sends artifacts. Both are owner-or-admin actions.
type Service interface {
	ExportPDF(ctx context.Context, caller access.Caller, artifactID string) (*Document, error)
	SendToAttorney(ctx context.Context, caller access.Caller, artifactID string, req SendRequest) (*Receipt, error)
}
