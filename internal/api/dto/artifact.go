package dto

import (
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
)

// GenerateLetterRequest asks for a letter
type GenerateLetterRequest struct {
	Title        string                 `json:"title" validate:"required,max=200"`
	Prompt       string                 `json:"prompt,omitempty" validate:"max=5000"`
	LetterType   string                 `json:"letterType,omitempty" validate:"max=50"`
	FormData     map[string]interface{} `json:"formData,omitempty"`
	UrgencyLevel string                 `json:"urgencyLevel,omitempty" validate:"omitempty,oneof=standard urgent rush"`
}

// ToRequest converts the DTO to a generation request
func (r GenerateLetterRequest) ToRequest() artifact.Request {
	return artifact.Request{
		Kind:         artifact.KindLetter,
		Type:         r.LetterType,
		Title:        r.Title,
		Prompt:       r.Prompt,
		FormData:     r.FormData,
		UrgencyLevel: r.UrgencyLevel,
	}
}

// GenerateDocumentRequest asks for a document from the catalogue
type GenerateDocumentRequest struct {
	Title        string                 `json:"title" validate:"required,max=200"`
	DocumentType string                 `json:"documentType" validate:"required"`
	Category     string                 `json:"category" validate:"required"`
	FormData     map[string]interface{} `json:"formData,omitempty"`
	UrgencyLevel string                 `json:"urgencyLevel,omitempty" validate:"omitempty,oneof=standard urgent rush"`
}

// ToRequest converts the DTO to a generation request
func (r GenerateDocumentRequest) ToRequest() artifact.Request {
	return artifact.Request{
		Kind:         artifact.KindDocument,
		Type:         r.DocumentType,
		Category:     r.Category,
		Title:        r.Title,
		FormData:     r.FormData,
		UrgencyLevel: r.UrgencyLevel,
	}
}

// DocumentTypesResponse is the document catalogue
type DocumentTypesResponse struct {
	Categories []artifact.DocumentCategory `json:"categories"`
}

// SendEmailRequest sends a completed letter to an attorney
type SendEmailRequest struct {
	AttorneyEmail string `json:"attorney_email"`
	AttorneyName  string `json:"attorney_name,omitempty" validate:"max=200"`
}
