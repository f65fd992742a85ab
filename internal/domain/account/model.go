package account

import "time"

// Account is a registered identity. Its role never changes after creation.
type Account struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Role is one of the three disjoint capability sets.
type Role string

const (
	RoleUser       Role = "user"
	RoleContractor Role = "contractor"
	RoleAdmin      Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleContractor, RoleAdmin:
		return true
	}
	return false
}

// RegisterInput carries what a new account needs.
type RegisterInput struct {
	Email      string
	Password   string
	Name       string
	Role       Role
	CouponCode string

	// AdminSecret must match the configured signup secret when Role is admin
	AdminSecret string
}

// Registration is the result of a successful sign-up.
type Registration struct {
	Account      *Account
	ReferralCode string
	Discount     int
}
