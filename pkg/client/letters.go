package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// LetterService handles letter operations
type LetterService struct {
	client *Client
}

// GenerateLetterRequest asks for a letter
type GenerateLetterRequest struct {
	Title        string                 `json:"title"`
	Prompt       string                 `json:"prompt,omitempty"`
	LetterType   string                 `json:"letterType,omitempty"`
	FormData     map[string]interface{} `json:"formData,omitempty"`
	UrgencyLevel string                 `json:"urgencyLevel,omitempty"`
}

// Generate generates a letter, consuming one letter of quota
func (s *LetterService) Generate(ctx context.Context, req GenerateLetterRequest) (*Artifact, error) {
	var a Artifact
	if err := s.client.doRequest(ctx, "POST", "/api/letters/generate", req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// List lists the caller's letters
func (s *LetterService) List(ctx context.Context, opts *ListOptions) (*Page[Artifact], error) {
	var page Page[Artifact]
	if err := s.client.doRequest(ctx, "GET", "/api/letters"+pageQuery(opts, nil), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get retrieves a letter or document by ID
func (s *LetterService) Get(ctx context.Context, id string) (*Artifact, error) {
	var a Artifact
	if err := s.client.doRequest(ctx, "GET", fmt.Sprintf("/api/letters/%s", url.PathEscape(id)), nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// PDF downloads a letter rendered as PDF
func (s *LetterService) PDF(ctx context.Context, id string) ([]byte, error) {
	return s.client.download(ctx, fmt.Sprintf("/api/letters/%s/pdf", url.PathEscape(id)), "application/pdf")
}

// SendEmailRequest names the attorney a letter is sent to
type SendEmailRequest struct {
	AttorneyEmail string `json:"attorney_email"`
	AttorneyName  string `json:"attorney_name,omitempty"`
}

// SendReceipt confirms a sent letter
type SendReceipt struct {
	LetterID string    `json:"letter_id"`
	SentTo   string    `json:"sent_to"`
	SentAt   time.Time `json:"sent_at"`
}

// SendEmail emails a completed letter, PDF attached, to an attorney
func (s *LetterService) SendEmail(ctx context.Context, id string, req SendEmailRequest) (*SendReceipt, error) {
	var r SendReceipt
	path := fmt.Sprintf("/api/letters/%s/send-email", url.PathEscape(id))
	if err := s.client.doRequest(ctx, "POST", path, req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DocumentService handles document operations
type DocumentService struct {
	client *Client
}

// GenerateDocumentRequest asks for a catalogue document
type GenerateDocumentRequest struct {
	Title        string                 `json:"title"`
	DocumentType string                 `json:"documentType"`
	Category     string                 `json:"category"`
	FormData     map[string]interface{} `json:"formData,omitempty"`
	UrgencyLevel string                 `json:"urgencyLevel,omitempty"`
}

// Types returns the document catalogue
func (s *DocumentService) Types(ctx context.Context) ([]DocumentCategory, error) {
	var resp struct {
		Categories []DocumentCategory `json:"categories"`
	}
	if err := s.client.doRequest(ctx, "GET", "/api/documents/types", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// Generate generates a document, consuming one letter of quota
func (s *DocumentService) Generate(ctx context.Context, req GenerateDocumentRequest) (*Artifact, error) {
	var a Artifact
	if err := s.client.doRequest(ctx, "POST", "/api/documents/generate", req, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// List lists the caller's documents
func (s *DocumentService) List(ctx context.Context, opts *ListOptions) (*Page[Artifact], error) {
	var page Page[Artifact]
	if err := s.client.doRequest(ctx, "GET", "/api/documents"+pageQuery(opts, nil), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func pageQuery(opts *ListOptions, extra url.Values) string {
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	if opts != nil {
		if opts.Page > 0 {
			q.Set("page", strconv.Itoa(opts.Page))
		}
		if opts.PageSize > 0 {
			q.Set("page_size", strconv.Itoa(opts.PageSize))
		}
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}
