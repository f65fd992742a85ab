package referral

import (
	"errors"
	"time"
)

// DiscountPercent is granted to every account that signs up with a code.
const DiscountPercent = 20

// MaxCodeLength bounds the length of an issued code.
const MaxCodeLength = 5

var (
	// ErrCodeTaken is returned by the repository when a code already exists.
	ErrCodeTaken = errors.New("referral: code already taken")
	// ErrCodeSpaceExhausted means no free code could be found within the retry budget.
	ErrCodeSpaceExhausted = errors.New("referral: could not allocate a unique code")
	// ErrUnknownCode is returned when a code does not exist.
	ErrUnknownCode = errors.New("referral: unknown code")
	// ErrAlreadyRedeemed means the account has redeemed a code before.
	ErrAlreadyRedeemed = errors.New("referral: account already redeemed a code")
	// ErrSelfReferral means a contractor tried to redeem their own code.
	ErrSelfReferral = errors.New("referral: cannot redeem own code")
)

// Code is a contractor's referral code. Codes are stored lower-case.
type Code struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	ContractorID    string    `json:"contractor_id"`
	TotalSignups    int       `json:"total_signups"`
	DiscountPercent int       `json:"discount_percent"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Validation is the side-effect free answer to "is this code usable".
type Validation struct {
	Valid           bool `json:"valid"`
	DiscountPercent int  `json:"discount_percent"`
}

// Stats is what a contractor sees about their code.
type Stats struct {
	Code            string `json:"code"`
	TotalSignups    int    `json:"total_signups"`
	DiscountPercent int    `json:"discount_percent"`
}
