// Package access holds the static role policy every request is checked against.
package access

import (
	"errors"
	"net/http"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	apperrors "github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
)

// Action names an operation the API exposes.
type Action string

// Public actions
const (
	ActionRegister          Action = "auth.register"
	ActionLogin             Action = "auth.login"
	ActionValidateCoupon    Action = "coupon.validate"
	ActionListDocumentTypes Action = "document.types"
	ActionListPackages      Action = "subscription.packages"
)

// Self-service actions
const (
	ActionViewProfile      Action = "account.me"
	ActionGenerateLetter   Action = "letter.generate"
	ActionGenerateDocument Action = "document.generate"
	ActionListOwnArtifacts Action = "artifact.list_own"
	ActionViewArtifact     Action = "artifact.view"
	ActionExportArtifact   Action = "artifact.export"
	ActionSendArtifact     Action = "artifact.send"
	ActionCreateCheckout   Action = "subscription.checkout"
	ActionViewQuota        Action = "subscription.status"
)

// Contractor-only actions
const (
	ActionViewReferralStats Action = "referral.stats"
)

// Admin-only actions
const (
	ActionListAccounts         Action = "admin.accounts"
	ActionListAllArtifacts     Action = "admin.artifacts"
	ActionListAuditLog         Action = "admin.audit"
	ActionActivateSubscription Action = "admin.activate"
)

var (
	// ErrUnauthenticated means the action needs a caller and there is none.
	ErrUnauthenticated = errors.New("access: authentication required")
	// ErrForbidden means the caller's role does not hold the action.
	ErrForbidden = errors.New("access: forbidden")
)

// Caller is the authenticated principal of a request. The zero value is
// an anonymous caller.
type Caller struct {
	AccountID string
	Email     string
	Role      account.Role
}

// Authenticated reports whether the caller carries an identity.
func (c Caller) Authenticated() bool {
	return c.AccountID != "" && c.Role.Valid()
}

type roleSet map[account.Role]struct{}

func rolesOf(roles ...account.Role) roleSet {
	s := make(roleSet, len(roles))
	for _, r := range roles {
		s[r] = struct{}{}
	}
	return s
}

var (
	public      = roleSet(nil)
	anyRole     = rolesOf(account.RoleUser, account.RoleContractor, account.RoleAdmin)
	contractors = rolesOf(account.RoleContractor)
	admins      = rolesOf(account.RoleAdmin)
)

// policy maps every action to the single role-set allowed to perform it.
// A nil set marks a public action.
var policy = map[Action]roleSet{
	ActionRegister:          public,
	ActionLogin:             public,
	ActionValidateCoupon:    public,
	ActionListDocumentTypes: public,
	ActionListPackages:      public,

	ActionViewProfile:      anyRole,
	ActionGenerateLetter:   anyRole,
	ActionGenerateDocument: anyRole,
	ActionListOwnArtifacts: anyRole,
	ActionViewArtifact:     anyRole,
	ActionExportArtifact:   anyRole,
	ActionSendArtifact:     anyRole,
	ActionCreateCheckout:   anyRole,
	ActionViewQuota:        anyRole,

	ActionViewReferralStats: contractors,

	ActionListAccounts:         admins,
	ActionListAllArtifacts:     admins,
	ActionListAuditLog:         admins,
	ActionActivateSubscription: admins,
}

// Authorize decides whether caller may perform action. It never has side
// effects. Unknown actions are refused.
func Authorize(caller Caller, action Action) error {
	allowed, known := policy[action]
	if !known {
		return forbidden()
	}
	if allowed == nil {
		return nil
	}
	if !caller.Authenticated() {
		return apperrors.Wrap(ErrUnauthenticated, apperrors.ErrCodeUnauthorized,
			"Authentication required", http.StatusUnauthorized)
	}
	if _, ok := allowed[caller.Role]; !ok {
		return forbidden()
	}
	return nil
}

// IsPublic reports whether action needs no caller.
func IsPublic(action Action) bool {
	allowed, known := policy[action]
	return known && allowed == nil
}

// Actions lists every action in the policy.
func Actions() []Action {
	out := make([]Action, 0, len(policy))
	for a := range policy {
		out = append(out, a)
	}
	return out
}

func forbidden() error {
	return apperrors.Wrap(ErrForbidden, apperrors.ErrCodeForbidden,
		"You do not have permission to perform this action", http.StatusForbidden)
}
