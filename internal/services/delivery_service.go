package services

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/access"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/delivery"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/metrics"
)

const defaultSenderName = "Talk To My Lawyer User"

// DeliveryService implements delivery.Service. Visibility comes from the
// artifact service, so callers only reach their own letters unless they
// are admins.
type DeliveryService struct {
	artifacts artifact.Service
	accounts  account.Repository
	renderer  delivery.Renderer
	mailer    delivery.Mailer
	audit     audit.Service
	logger    *logger.Logger
	publicURL string
	now       func() time.Time
}

// NewDeliveryService creates a new delivery service. publicURL prefixes
// the download link placed in outgoing mail.
func NewDeliveryService(
	artifacts artifact.Service,
	accounts account.Repository,
	renderer delivery.Renderer,
	mailer delivery.Mailer,
	auditSvc audit.Service,
	log *logger.Logger,
	publicURL string,
) *DeliveryService {
	return &DeliveryService{
		artifacts: artifacts,
		accounts:  accounts,
		renderer:  renderer,
		mailer:    mailer,
		audit:     auditSvc,
		logger:    log,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// ExportPDF renders an artifact visible to the caller
func (s *DeliveryService) ExportPDF(ctx context.Context, caller access.Caller, artifactID string) (*delivery.Document, error) {
	if err := access.Authorize(caller, access.ActionExportArtifact); err != nil {
		return nil, err
	}
	a, err := s.artifacts.Get(ctx, caller, artifactID)
	if err != nil {
		return nil, err
	}
	doc, err := s.render(a)
	if err != nil {
		metrics.RecordDelivery("pdf", "failed")
		s.logger.With("artifact_id", a.ID).ErrorWithErr(err, "Failed to render PDF")
		return nil, errors.Internal("Failed to generate PDF", err)
	}
	metrics.RecordDelivery("pdf", "ok")
	return doc, nil
}

// SendToAttorney emails a completed artifact, with its PDF attached, to
// an attorney. Replies go to the caller.
func (s *DeliveryService) SendToAttorney(ctx context.Context, caller access.Caller, artifactID string, req delivery.SendRequest) (*delivery.Receipt, error) {
	if err := access.Authorize(caller, access.ActionSendArtifact); err != nil {
		return nil, err
	}
	to := strings.TrimSpace(req.AttorneyEmail)
	if to == "" || strings.ContainsAny(to, " \r\n") {
		return nil, errors.ValidationError("Attorney email is required", map[string]string{"attorney_email": to})
	}

	a, err := s.artifacts.Get(ctx, caller, artifactID)
	if err != nil {
		return nil, err
	}
	if a.Status != artifact.StatusCompleted {
		return nil, errors.BadRequest("Only completed letters can be sent")
	}

	doc, err := s.render(a)
	if err != nil {
		metrics.RecordDelivery("email", "failed")
		return nil, errors.Internal("Failed to generate PDF", err)
	}

	senderName, senderEmail := s.sender(ctx, caller)
	recipient := oneLine(req.AttorneyName)
	if recipient == "" {
		recipient = "Attorney"
	}

	view := letterMailView{
		RecipientName: recipient,
		SenderName:    senderName,
		Title:         a.Title,
		To:            a.Field("recipientName"),
		Address:       a.Field("recipientAddress"),
		Created:       a.CreatedAt.Format("January 2, 2006"),
		Preview:       preview(a.Content),
		Content:       a.Content,
		PDFURL:        fmt.Sprintf("%s/api/letters/%s/pdf", s.publicURL, a.ID),
		SentTo:        to,
	}
	var html bytes.Buffer
	if err := letterMailHTML.Execute(&html, view); err != nil {
		return nil, errors.Internal("Failed to build email", err)
	}

	email := &delivery.Email{
		To:      to,
		ToName:  oneLine(req.AttorneyName),
		ReplyTo: senderEmail,
		Subject: "Legal Letter: " + oneLine(a.Title),
		Text:    view.text(),
		HTML:    html.String(),
		Attachments: []delivery.Attachment{{
			Filename:    doc.Filename,
			ContentType: doc.ContentType,
			Data:        doc.Data,
		}},
	}

	log := s.logger.WithFields(map[string]interface{}{
		"artifact_id": a.ID,
		"account_id":  caller.AccountID,
	})
	if err := s.mailer.Send(ctx, email); err != nil {
		metrics.RecordDelivery("email", "failed")
		if stderrors.Is(err, delivery.ErrMailDisabled) {
			return nil, errors.ServiceUnavailable("Email delivery is not configured")
		}
		log.ErrorWithErr(err, "Failed to send letter")
		return nil, errors.Internal("Failed to send email", err)
	}

	metrics.RecordDelivery("email", "ok")
	log.With("sent_to", to).Info("Letter sent to attorney")

	s.audit.Record(ctx, audit.Entry{
		AccountID:    strPtr(caller.AccountID),
		EventType:    audit.EventLetterSent,
		Action:       "send_email",
		ResourceType: string(a.Kind),
		ResourceID:   a.ID,
		Metadata: map[string]interface{}{
			"attorney_email": to,
			"attorney_name":  req.AttorneyName,
		},
	})

	return &delivery.Receipt{ArtifactID: a.ID, SentTo: to, SentAt: s.now().UTC()}, nil
}

func (s *DeliveryService) render(a *artifact.Artifact) (*delivery.Document, error) {
	var buf bytes.Buffer
	if err := s.renderer.Render(a, &buf); err != nil {
		return nil, err
	}
	return &delivery.Document{
		Filename:    fmt.Sprintf("%s-%s.pdf", a.Kind, a.ID),
		ContentType: "application/pdf",
		Data:        buf.Bytes(),
	}, nil
}

// sender names the caller for the email body and Reply-To
func (s *DeliveryService) sender(ctx context.Context, caller access.Caller) (name, email string) {
	email = caller.Email
	if acct, err := s.accounts.GetByID(ctx, caller.AccountID); err == nil {
		name, email = acct.Name, acct.Email
	}
	switch {
	case name != "":
	case email != "":
		name = email
	default:
		name = defaultSenderName
	}
	return name, email
}

// oneLine drops control characters so user text cannot add mail headers
func oneLine(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s))
}

func preview(content string) string {
	r := []rune(content)
	if len(r) <= delivery.PreviewLength {
		return content
	}
	return string(r[:delivery.PreviewLength]) + "..."
}

type letterMailView struct {
	RecipientName string
	SenderName    string
	Title         string
	To            string
	Address       string
	Created       string
	Preview       string
	Content       string
	PDFURL        string
	SentTo        string
}

func (v letterMailView) text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", v.RecipientName)
	b.WriteString("You have received a legal letter generated through the Talk To My Lawyer platform.\n\n")
	fmt.Fprintf(&b, "Letter Title: %s\n", v.Title)
	fmt.Fprintf(&b, "From: %s\n", v.SenderName)
	if v.To != "" {
		fmt.Fprintf(&b, "To: %s\n", v.To)
	}
	if v.Address != "" {
		fmt.Fprintf(&b, "Address: %s\n", v.Address)
	}
	fmt.Fprintf(&b, "Date Created: %s\n\n", v.Created)
	fmt.Fprintf(&b, "Letter Content:\n%s\n\n", v.Content)
	fmt.Fprintf(&b, "Download PDF: %s\n\n", v.PDFURL)
	b.WriteString("Note: This letter was generated using AI technology. Please review the content carefully and consult with legal counsel if necessary.\n\n")
	b.WriteString("---\nTalk To My Lawyer\nProfessional Legal Letter Generation Service\n")
	return b.String()
}

var letterMailHTML = template.Must(template.New("letter").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #667eea; color: white; padding: 30px; border-radius: 8px 8px 0 0; text-align: center;">
    <h1 style="margin: 0;">Legal Letter</h1>
    <p style="margin: 10px 0 0 0;">From Talk To My Lawyer</p>
  </div>
  <div style="background: #f9fafb; padding: 30px; border: 1px solid #e5e7eb; border-top: none;">
    <p>Dear {{.RecipientName}},</p>
    <p>You have received a legal letter generated through the Talk To My Lawyer platform.</p>
    <div style="background: white; padding: 20px; border-radius: 8px; margin: 20px 0; border-left: 4px solid #667eea;">
      <h2 style="margin-top: 0; color: #667eea;">{{.Title}}</h2>
      <p><strong>From:</strong> {{.SenderName}}</p>
      {{- if .To}}
      <p><strong>To:</strong> {{.To}}</p>
      {{- end}}
      {{- if .Address}}
      <p><strong>Address:</strong> {{.Address}}</p>
      {{- end}}
      <p><strong>Date Created:</strong> {{.Created}}</p>
    </div>
    <p><strong>Letter Preview:</strong></p>
    <pre style="white-space: pre-wrap; font-family: 'Times New Roman', serif; font-size: 14px; background: white; padding: 20px; border: 1px solid #e5e7eb;">{{.Preview}}</pre>
    <p style="text-align: center;"><a href="{{.PDFURL}}" style="display: inline-block; background: #667eea; color: white; padding: 12px 30px; text-decoration: none; border-radius: 6px;">Download Full Letter (PDF)</a></p>
    <p style="color: #6b7280; font-size: 14px;"><strong>Note:</strong> This letter was generated using AI technology. Please review the content carefully and consult with legal counsel if necessary.</p>
  </div>
  <div style="text-align: center; padding: 20px; color: #6b7280; font-size: 12px;">
    <p><strong>Talk To My Lawyer</strong><br>Professional Legal Letter Generation Service</p>
    <p>This email was sent to {{.SentTo}} because a letter was addressed to you through our platform.</p>
  </div>
</body>
</html>
`))
