package services

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"math/big"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/notification"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/referral"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/errors"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/metrics"
)

// MaxIssueAttempts bounds how many candidate codes IssueCode tries.
const MaxIssueAttempts = 8

const codeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// ReferralLedger implements referral.Ledger
type ReferralLedger struct {
	repo     referral.Repository
	notifier notification.Notifier
	logger   *logger.Logger
	// randomSuffix returns n characters from codeAlphabet
	randomSuffix func(n int) string
}

// NewReferralLedger creates a new referral ledger
func NewReferralLedger(repo referral.Repository, notifier notification.Notifier, log *logger.Logger) *ReferralLedger {
	return &ReferralLedger{
		repo:         repo,
		notifier:     notifier,
		logger:       log,
		randomSuffix: randomCodeChars,
	}
}

// IssueCode allocates a unique code derived from the contractor's name. A
// contractor that already owns a code gets it back.
func (l *ReferralLedger) IssueCode(ctx context.Context, contractorID, name string) (*referral.Code, error) {
	existing, err := l.repo.GetByContractor(ctx, contractorID)
	if err == nil {
		return existing, nil
	}
	if !errors.HasCode(err, errors.ErrCodeNotFound) {
		return nil, err
	}

	base := deriveCodeBase(name)
	for attempt := 0; attempt < MaxIssueAttempts; attempt++ {
		candidate := l.candidate(base, attempt)

		c := &referral.Code{
			ID:              uuid.NewString(),
			Code:            candidate,
			ContractorID:    contractorID,
			DiscountPercent: referral.DiscountPercent,
		}
		err := l.repo.Insert(ctx, c)
		if err == nil {
			metrics.RecordReferralEvent("issued")
			l.logger.WithFields(map[string]interface{}{
				"contractor_id": contractorID,
				"code":          c.Code,
				"attempt":       attempt + 1,
			}).Info("Referral code issued")
			return c, nil
		}
		if !stderrors.Is(err, referral.ErrCodeTaken) {
			return nil, err
		}
		// The violation may be on contractor_id: a concurrent call for the
		// same contractor won the insert.
		if existing, gerr := l.repo.GetByContractor(ctx, contractorID); gerr == nil {
			return existing, nil
		}
	}

	metrics.RecordReferralEvent("exhausted")
	l.logger.WithFields(map[string]interface{}{
		"contractor_id": contractorID,
		"base":          base,
		"attempts":      MaxIssueAttempts,
		"fatal":         true,
	}).Error("Referral code space exhausted")

	if l.notifier != nil {
		alert := notification.Alert{
			Type:     notification.AlertLedgerFatal,
			Priority: notification.PriorityCritical,
			Title:    "Referral code allocation exhausted",
			Message:  "No unique referral code could be allocated within the retry budget.",
			Fields: map[string]string{
				"contractor_id": contractorID,
				"base":          base,
			},
		}
		if nerr := l.notifier.Notify(context.WithoutCancel(ctx), alert); nerr != nil {
			l.logger.ErrorWithErr(nerr, "Failed to send operator alert")
		}
	}

	return nil, errors.Fatal(referral.ErrCodeSpaceExhausted)
}

// candidate returns the code to try on the given attempt. The first attempt
// uses the name-derived base; later ones overwrite a growing tail with
// random characters.
func (l *ReferralLedger) candidate(base string, attempt int) string {
	if attempt == 0 && base != "" {
		return base
	}
	suffixLen := 2 + attempt/2
	if suffixLen > referral.MaxCodeLength {
		suffixLen = referral.MaxCodeLength
	}
	keep := referral.MaxCodeLength - suffixLen
	if keep > len(base) {
		keep = len(base)
	}
	return base[:keep] + l.randomSuffix(suffixLen)
}

// ValidateCode checks a code without side effects
func (l *ReferralLedger) ValidateCode(ctx context.Context, code string) (*referral.Validation, error) {
	code = strings.TrimSpace(code)
	if code == "" || len(code) > referral.MaxCodeLength {
		return &referral.Validation{Valid: false}, nil
	}

	c, err := l.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			return &referral.Validation{Valid: false}, nil
		}
		return nil, err
	}

	return &referral.Validation{Valid: true, DiscountPercent: c.DiscountPercent}, nil
}

// RedeemCode credits a sign-up to the code's owner and discounts the account
func (l *ReferralLedger) RedeemCode(ctx context.Context, code, accountID string) (*referral.Code, error) {
	c, err := l.repo.Redeem(ctx, code, accountID)
	switch {
	case err == nil:
	case stderrors.Is(err, referral.ErrUnknownCode):
		metrics.RecordReferralEvent("rejected")
		return nil, errors.Wrap(err, errors.ErrCodeNotFound, "Referral code not found", http.StatusNotFound)
	case stderrors.Is(err, referral.ErrAlreadyRedeemed):
		metrics.RecordReferralEvent("rejected")
		return nil, errors.Wrap(err, errors.ErrCodeConflict, "A referral code was already redeemed for this account", http.StatusConflict)
	case stderrors.Is(err, referral.ErrSelfReferral):
		metrics.RecordReferralEvent("rejected")
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "You cannot redeem your own referral code", http.StatusBadRequest)
	default:
		return nil, err
	}

	metrics.RecordReferralEvent("redeemed")
	l.logger.WithFields(map[string]interface{}{
		"code":          c.Code,
		"contractor_id": c.ContractorID,
		"account_id":    accountID,
		"total_signups": c.TotalSignups,
	}).Info("Referral code redeemed")

	return c, nil
}

// Stats returns the contractor's code and counters
func (l *ReferralLedger) Stats(ctx context.Context, contractorID string) (*referral.Stats, error) {
	c, err := l.repo.GetByContractor(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	return &referral.Stats{
		Code:            c.Code,
		TotalSignups:    c.TotalSignups,
		DiscountPercent: c.DiscountPercent,
	}, nil
}

// deriveCodeBase transliterates the name, keeps letters and digits and
// truncates to the maximum code length.
func deriveCodeBase(name string) string {
	var b strings.Builder
	for _, r := range slug.Make(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			if b.Len() == referral.MaxCodeLength {
				break
			}
		}
	}
	return b.String()
}

func randomCodeChars(n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range out {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		out[i] = codeAlphabet[v.Int64()]
	}
	return string(out)
}
