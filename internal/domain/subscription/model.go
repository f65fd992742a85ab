package subscription

import (
	"errors"
	"time"
)

// Status of a subscription
type Status string

const (
	StatusInactive Status = "inactive"
	StatusActive   Status = "active"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
)

// Tier names a purchasable package
type Tier string

const (
	Tier4Letters Tier = "4letters"
	Tier6Letters Tier = "6letters"
	Tier8Letters Tier = "8letters"
)

var (
	// ErrQuotaExhausted means an active subscription has no letters left.
	ErrQuotaExhausted = errors.New("subscription: quota exhausted")
	// ErrSubscriptionInactive means the subscription is not active.
	ErrSubscriptionInactive = errors.New("subscription: not active")
	// ErrReservationSettled means the reservation was already committed or released.
	ErrReservationSettled = errors.New("subscription: reservation already settled")
	// ErrUnknownTier means the package tier is not in the catalogue.
	ErrUnknownTier = errors.New("subscription: unknown package tier")
)

// Subscription is the 1:1 quota record of an account.
type Subscription struct {
	AccountID        string    `json:"account_id"`
	Tier             Tier      `json:"package_type,omitempty"`
	Status           Status    `json:"status"`
	LettersRemaining int       `json:"letters_remaining"`
	DiscountPercent  int       `json:"discount_percent"`
	ReferredBy       *string   `json:"referred_by,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Package describes a purchasable tier.
type Package struct {
	Tier       Tier   `json:"packageType"`
	Name       string `json:"name"`
	Letters    int    `json:"letters"`
	PriceCents int64  `json:"price_cents"`
}

var packages = []Package{
	{Tier: Tier4Letters, Name: "4 Letters", Letters: 4, PriceCents: 9999},
	{Tier: Tier6Letters, Name: "6 Letters", Letters: 6, PriceCents: 13999},
	{Tier: Tier8Letters, Name: "8 Letters", Letters: 8, PriceCents: 17999},
}

// Packages returns the package catalogue.
func Packages() []Package {
	out := make([]Package, len(packages))
	copy(out, packages)
	return out
}

// LookupPackage finds a package by tier.
func LookupPackage(tier Tier) (Package, error) {
	for _, p := range packages {
		if p.Tier == tier {
			return p, nil
		}
	}
	return Package{}, ErrUnknownTier
}

// DiscountedPrice applies a percentage discount, rounding to the nearest cent.
func (p Package) DiscountedPrice(discountPercent int) int64 {
	if discountPercent <= 0 {
		return p.PriceCents
	}
	if discountPercent >= 100 {
		return 0
	}
	return (p.PriceCents*int64(100-discountPercent) + 50) / 100
}

// ReservationStatus tracks a provisional quota unit
type ReservationStatus string

const (
	ReservationHeld      ReservationStatus = "held"
	ReservationCommitted ReservationStatus = "committed"
	ReservationReleased  ReservationStatus = "released"
)

// Reservation is a token for one quota unit taken by TryReserve. It must be
// committed or released exactly once.
type Reservation struct {
	ID         string            `json:"id"`
	AccountID  string            `json:"account_id"`
	Status     ReservationStatus `json:"status"`
	ArtifactID *string           `json:"artifact_id,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	SettledAt  *time.Time        `json:"settled_at,omitempty"`
}

// QuotaStatus is the caller-facing view of a subscription.
type QuotaStatus struct {
	Status           Status  `json:"status"`
	Tier             Tier    `json:"packageType,omitempty"`
	LettersRemaining int     `json:"lettersRemaining"`
	DiscountPercent  int     `json:"discount_percent"`
	ReferredBy       *string `json:"referred_by,omitempty"`
}
