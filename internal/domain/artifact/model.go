package artifact

import (
	"fmt"
	"strings"
	"time"
)

// Kind distinguishes letters from documents
type Kind string

const (
	KindLetter   Kind = "letter"
	KindDocument Kind = "document"
)

// Status of an artifact. Artifacts are only stored once generated.
type Status string

const (
	StatusCompleted Status = "completed"
)

// Urgency levels accepted on generation requests
const (
	UrgencyStandard = "standard"
	UrgencyUrgent   = "urgent"
	UrgencyRush     = "rush"
)

// Artifact is a generated letter or document. It is append-only.
type Artifact struct {
	ID            string                 `json:"id"`
	AccountID     string                 `json:"user_id"`
	Kind          Kind                   `json:"kind"`
	Type          string                 `json:"type"`
	Category      string                 `json:"category,omitempty"`
	Title         string                 `json:"title"`
	Prompt        string                 `json:"prompt,omitempty"`
	FormData      map[string]interface{} `json:"formData,omitempty"`
	UrgencyLevel  string                 `json:"urgencyLevel"`
	Content       string                 `json:"content"`
	Status        Status                 `json:"status"`
	ArchiveKey    string                 `json:"archive_key,omitempty"`
	ReservationID string                 `json:"-"`
	CreatedAt     time.Time              `json:"created_at"`
}

// Field returns a form value as trimmed text, or "" when it is absent.
func (a *Artifact) Field(key string) string {
	v, ok := a.FormData[key]
	if !ok || v == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Request is a generation request after transport decoding.
type Request struct {
	Kind         Kind
	Type         string
	Category     string
	Title        string
	Prompt       string
	FormData     map[string]interface{}
	UrgencyLevel string
}

// DocumentType is an entry of the document catalogue.
type DocumentType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DocumentCategory groups document types.
type DocumentCategory struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Types []DocumentType `json:"types"`
}

var catalogue = []DocumentCategory{
	{
		ID:   "business",
		Name: "Business Disputes",
		Types: []DocumentType{
			{ID: "cease_desist", Name: "Cease and Desist", Description: "Demand that a party stop an infringing or harmful activity"},
			{ID: "contract_breach", Name: "Breach of Contract", Description: "Notice of failure to perform contractual obligations"},
			{ID: "employment_issue", Name: "Employment Issue", Description: "Workplace disputes, wages and wrongful termination"},
			{ID: "intellectual_property", Name: "Intellectual Property", Description: "Trademark, copyright or patent infringement"},
		},
	},
	{
		ID:   "consumer",
		Name: "Consumer Protection",
		Types: []DocumentType{
			{ID: "debt_collection", Name: "Debt Collection", Description: "Respond to or demand payment of a debt"},
			{ID: "insurance_claim", Name: "Insurance Claim", Description: "Dispute a denied or underpaid insurance claim"},
			{ID: "landlord_tenant", Name: "Landlord / Tenant", Description: "Deposits, repairs and lease disputes"},
			{ID: "product_liability", Name: "Product Liability", Description: "Defective or dangerous product claims"},
		},
	},
	{
		ID:   "legal",
		Name: "Legal Notices",
		Types: []DocumentType{
			{ID: "regulatory_compliance", Name: "Regulatory Compliance", Description: "Notices about regulatory obligations"},
			{ID: "legal_demand", Name: "Legal Demand", Description: "Formal demand before litigation"},
			{ID: "settlement_proposal", Name: "Settlement Proposal", Description: "Offer to resolve a dispute"},
			{ID: "mediation_request", Name: "Mediation Request", Description: "Invitation to mediate a dispute"},
		},
	},
}

// Catalogue returns the document categories.
func Catalogue() []DocumentCategory {
	out := make([]DocumentCategory, len(catalogue))
	copy(out, catalogue)
	return out
}

// LookupDocumentType finds a document type inside a category.
func LookupDocumentType(category, typeID string) (DocumentType, bool) {
	for _, c := range catalogue {
		if c.ID != category {
			continue
		}
		for _, t := range c.Types {
			if t.ID == typeID {
				return t, true
			}
		}
	}
	return DocumentType{}, false
}
