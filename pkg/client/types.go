package client

import "time"

// User is an account as returned by the API
type User struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Name         string        `json:"name"`
	Role         string        `json:"role"`
	Subscription *Subscription `json:"subscription,omitempty"`
	CreatedAt    *time.Time    `json:"created_at,omitempty"`
}

// Subscription is the quota view of an account
type Subscription struct {
	Status           string  `json:"status"`
	PackageType      string  `json:"packageType,omitempty"`
	LettersRemaining int     `json:"lettersRemaining"`
	DiscountPercent  int     `json:"discount_percent"`
	ReferredBy       *string `json:"referred_by,omitempty"`
}

// Package is a purchasable tier
type Package struct {
	PackageType string `json:"packageType"`
	Name        string `json:"name"`
	Letters     int    `json:"letters"`
	PriceCents  int64  `json:"price_cents"`
}

// CheckoutSession is an opened purchase
type CheckoutSession struct {
	SessionID       string `json:"sessionId"`
	URL             string `json:"url"`
	PackageType     string `json:"packageType"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	DiscountPercent int    `json:"discount_percent"`
}

// Artifact is a generated letter or document
type Artifact struct {
	ID           string                 `json:"id"`
	UserID       string                 `json:"user_id"`
	Kind         string                 `json:"kind"`
	Type         string                 `json:"type"`
	Category     string                 `json:"category,omitempty"`
	Title        string                 `json:"title"`
	Prompt       string                 `json:"prompt,omitempty"`
	FormData     map[string]interface{} `json:"formData,omitempty"`
	UrgencyLevel string                 `json:"urgencyLevel"`
	Content      string                 `json:"content"`
	Status       string                 `json:"status"`
	ArchiveKey   string                 `json:"archive_key,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// DocumentType is an entry of the document catalogue
type DocumentType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DocumentCategory groups document types
type DocumentCategory struct {
	ID    string         `json:"id"`
	Name  string         `json:"name"`
	Types []DocumentType `json:"types"`
}

// AuditEntry is one line of the audit log
type AuditEntry struct {
	ID           string                 `json:"id"`
	UserID       *string                `json:"user_id,omitempty"`
	EventType    string                 `json:"event_type"`
	Action       string                 `json:"action"`
	ResourceType string                 `json:"resource_type,omitempty"`
	ResourceID   string                 `json:"resource_id,omitempty"`
	IPAddress    string                 `json:"ip_address,omitempty"`
	UserAgent    string                 `json:"user_agent,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// Page is a paginated list
type Page[T any] struct {
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// ListOptions selects a page
type ListOptions struct {
	Page     int
	PageSize int
}

// HealthResponse is the body of the health probes
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database,omitempty"`
	Generator string `json:"generator,omitempty"`
}
