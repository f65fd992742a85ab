package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/auth"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/referral"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
)

// AccountService implements account.Service
type AccountService struct {
	repo        account.Repository
	referrals   referral.Ledger
	audit       audit.Service
	logger      *logger.Logger
	bcryptCost  int
	adminSecret string
}

// NewAccountService creates a new account service. Admin registrations
// must present adminSecret; an empty one disables them.
func NewAccountService(repo account.Repository, referrals referral.Ledger, auditSvc audit.Service, log *logger.Logger, bcryptCost int, adminSecret string) account.Service {
	return &AccountService{
		repo:        repo,
		referrals:   referrals,
		audit:       auditSvc,
		logger:      log,
		bcryptCost:  bcryptCost,
		adminSecret: adminSecret,
	}
}

// Register creates an account. A contractor is issued a referral code in
// the same flow; a coupon is checked before anything is written and
// redeemed once the account exists. If either step fails the account is
// removed again so the email can be retried.
func (s *AccountService) Register(ctx context.Context, in account.RegisterInput) (*account.Registration, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	role := in.Role
	if role == "" {
		role = account.RoleUser
	}
	if !role.Valid() {
		return nil, errors.ValidationError("Invalid role", map[string]string{"role": string(in.Role)})
	}
	if email == "" || name == "" {
		return nil, errors.ValidationError("Email and name are required", nil)
	}
	if len(in.Password) < auth.MinPasswordLength {
		return nil, errors.ValidationError("Password must be at least 6 characters long", nil)
	}
	if role == account.RoleAdmin && !auth.SecretMatches(in.AdminSecret, s.adminSecret) {
		s.logger.With("email", email).Warn("Admin registration rejected")
		return nil, errors.Forbidden("A valid admin signup secret is required")
	}

	coupon := strings.TrimSpace(in.CouponCode)
	if coupon != "" {
		if role != account.RoleUser {
			return nil, errors.ValidationError("Referral codes can only be used by user accounts", nil)
		}
		v, err := s.referrals.ValidateCode(ctx, coupon)
		if err != nil {
			return nil, err
		}
		if !v.Valid {
			return nil, errors.BadRequest("Invalid referral code")
		}
	}

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, errors.Conflict("Email already registered")
	} else if !errors.HasCode(err, errors.ErrCodeNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	a := &account.Account{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create account")
		return nil, err
	}

	entries := []audit.Entry{{
		AccountID:    strPtr(a.ID),
		EventType:    audit.EventUserCreated,
		Action:       "register",
		ResourceType: "account",
		ResourceID:   a.ID,
		Metadata:     map[string]interface{}{"role": string(a.Role)},
	}}
	reg := &account.Registration{Account: a}

	if role == account.RoleContractor {
		code, err := s.referrals.IssueCode(ctx, a.ID, a.Name)
		if err != nil {
			s.discard(ctx, a)
			return nil, err
		}
		reg.ReferralCode = code.Code
		entries = append(entries, audit.Entry{
			AccountID:    strPtr(a.ID),
			EventType:    audit.EventCouponCreated,
			Action:       "issue_referral_code",
			ResourceType: "referral_code",
			ResourceID:   code.ID,
			Metadata:     map[string]interface{}{"code": code.Code},
		})
	}

	if coupon != "" {
		code, err := s.referrals.RedeemCode(ctx, coupon, a.ID)
		if err != nil {
			s.discard(ctx, a)
			return nil, err
		}
		reg.Discount = code.DiscountPercent
		entries = append(entries, audit.Entry{
			AccountID:    strPtr(a.ID),
			EventType:    audit.EventCouponRedeemed,
			Action:       "redeem_referral_code",
			ResourceType: "referral_code",
			ResourceID:   code.ID,
			Metadata: map[string]interface{}{
				"code":          code.Code,
				"contractor_id": code.ContractorID,
			},
		})
	}

	s.logger.WithFields(map[string]interface{}{
		"account_id": a.ID,
		"role":       a.Role,
	}).Info("Account created")
	for _, e := range entries {
		s.audit.Record(ctx, e)
	}

	return reg, nil
}

// discard removes an account whose registration could not be finished.
func (s *AccountService) discard(ctx context.Context, a *account.Account) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	log := s.logger.WithFields(map[string]interface{}{
		"account_id": a.ID,
		"role":       a.Role,
	})
	if err := s.repo.Delete(dctx, a.ID); err != nil {
		log.With("fatal", true).ErrorWithErr(err, "Failed to remove partially registered account")
		return
	}
	log.Warn("Registration rolled back")
}

// Authenticate checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*account.Account, error) {
	a, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return nil, errors.Unauthorized("Invalid email or password")
		}
		return nil, err
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		return nil, errors.Unauthorized("Invalid email or password")
	}

	if a.Role == account.RoleAdmin {
		s.audit.Record(ctx, audit.Entry{
			AccountID:    strPtr(a.ID),
			EventType:    audit.EventAdminLogin,
			Action:       "login",
			ResourceType: "account",
			ResourceID:   a.ID,
		})
	}
	return a, nil
}

// GetByID retrieves an account by ID
func (s *AccountService) GetByID(ctx context.Context, id string) (*account.Account, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves accounts with pagination
func (s *AccountService) List(ctx context.Context, limit, offset int) ([]*account.Account, int64, error) {
	return s.repo.List(ctx, limit, offset)
}
