package integration

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/testutil"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apiError(t *testing.T, err error) *client.APIError {
	t.Helper()
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr), "expected *client.APIError, got %v", err)
	return apiErr
}

// A contractor's code gives a new user 20% off and counts one signup.
func TestReferralFlow(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()

	contractor, reg := srv.register(t, "alice@example.com", "Alice", "contractor")
	require.NotEmpty(t, reg.ReferralCode)
	assert.Equal(t, "contractor", reg.User.Role)

	anon := srv.client()
	v, err := anon.ValidateCoupon(ctx, reg.ReferralCode)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, 20, v.DiscountPercent)

	v, err = anon.ValidateCoupon(ctx, "nope1")
	require.NoError(t, err)
	assert.False(t, v.Valid)

	user := srv.client()
	resp, err := user.RegisterWithCoupon(ctx, client.RegisterRequest{
		Email:      "bob@example.com",
		Password:   "secret1",
		Name:       "Bob",
		CouponCode: reg.ReferralCode,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.User.Subscription)
	assert.Equal(t, 20, resp.User.Subscription.DiscountPercent)
	require.NotNil(t, resp.User.Subscription.ReferredBy)
	assert.Equal(t, reg.User.ID, *resp.User.Subscription.ReferredBy)

	stats, err := contractor.ReferralStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalSignups)
	assert.Equal(t, 1, stats.Points)
	assert.Equal(t, reg.ReferralCode, stats.Code)

	// The discount shows up in the checkout price.
	sess, err := user.Subscription().CreateCheckout(ctx, "4letters")
	require.NoError(t, err)
	assert.Equal(t, int64(7999), sess.AmountCents)
	assert.Equal(t, 20, sess.DiscountPercent)

	// Contractors cannot redeem codes.
	_, err = srv.client().RegisterWithCoupon(ctx, client.RegisterRequest{
		Email:      "carol@example.com",
		Password:   "secret1",
		Name:       "Carol",
		Role:       "contractor",
		CouponCode: reg.ReferralCode,
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apiError(t, err).StatusCode)
}

// Generation needs an active subscription and each letter consumes one unit.
func TestSubscriptionAndGenerationFlow(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()

	user, reg := srv.register(t, "dana@example.com", "Dana", "")

	_, err := user.Letters().Generate(ctx, client.GenerateLetterRequest{Title: "Deposit refund"})
	require.Error(t, err)
	apiErr := apiError(t, err)
	assert.True(t, apiErr.SubscriptionRequired)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, 0, srv.generator.CallCount())

	sess, err := user.Subscription().CreateCheckout(ctx, "4letters")
	require.NoError(t, err)
	assert.Equal(t, int64(9999), sess.AmountCents)

	_, err = srv.client().Subscription().CompleteCheckout(ctx, sess.SessionID, "wrong")
	require.Error(t, err)
	assert.True(t, apiError(t, err).IsUnauthorized())

	_, err = srv.client().Subscription().CompleteCheckout(ctx, sess.SessionID, webhookSecret)
	require.NoError(t, err)

	// Completing twice does not grant the package twice.
	_, err = srv.client().Subscription().CompleteCheckout(ctx, sess.SessionID, webhookSecret)
	require.Error(t, err)
	assert.True(t, apiError(t, err).IsConflict())

	sub, err := user.Subscription().Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, "active", sub.Status)
	assert.Equal(t, 4, sub.LettersRemaining)

	letter, err := user.Letters().Generate(ctx, client.GenerateLetterRequest{
		Title:        "Deposit refund",
		LetterType:   "demand_letter",
		UrgencyLevel: "urgent",
		FormData:     map[string]interface{}{"amount": 1500},
	})
	require.NoError(t, err)
	assert.Equal(t, "letter", letter.Kind)
	assert.Equal(t, reg.User.ID, letter.UserID)
	assert.NotEmpty(t, letter.Content)
	assert.Equal(t, 3, testutil.LettersRemaining(t, srv.db, reg.User.ID))

	doc, err := user.Documents().Generate(ctx, client.GenerateDocumentRequest{
		Title:        "Lease dispute",
		Category:     "consumer",
		DocumentType: "landlord_tenant",
	})
	require.NoError(t, err)
	assert.Equal(t, "document", doc.Kind)
	assert.Equal(t, 2, testutil.LettersRemaining(t, srv.db, reg.User.ID))

	letters, err := user.Letters().List(ctx, nil)
	require.NoError(t, err)
	require.Len(t, letters.Data, 1)
	assert.Equal(t, letter.ID, letters.Data[0].ID)

	got, err := user.Letters().Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lease dispute", got.Title)

	me, err := user.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, me.Subscription.LettersRemaining)
}

// A letter's owner can download it and send it to an attorney; nobody else can.
func TestLetterDeliveryFlow(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()

	user, reg := srv.register(t, "erin@example.com", "Erin", "")
	testutil.SeedActiveSubscription(t, srv.db, reg.User.ID, 1)

	letter, err := user.Letters().Generate(ctx, client.GenerateLetterRequest{
		Title:    "Security deposit",
		FormData: map[string]interface{}{"recipientName": "Acme Rentals"},
	})
	require.NoError(t, err)

	pdf, err := user.Letters().PDF(ctx, letter.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))

	receipt, err := user.Letters().SendEmail(ctx, letter.ID, client.SendEmailRequest{
		AttorneyEmail: "saul@example.com",
		AttorneyName:  "Saul Goodman",
	})
	require.NoError(t, err)
	assert.Equal(t, letter.ID, receipt.LetterID)
	assert.Equal(t, "saul@example.com", receipt.SentTo)

	sent := srv.mailer.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "Legal Letter: Security deposit", sent[0].Subject)
	assert.Equal(t, "erin@example.com", sent[0].ReplyTo)
	require.Len(t, sent[0].Attachments, 1)
	assert.True(t, strings.HasPrefix(string(sent[0].Attachments[0].Data), "%PDF-"))

	_, err = user.Letters().SendEmail(ctx, letter.ID, client.SendEmailRequest{AttorneyEmail: "nope"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apiError(t, err).StatusCode)

	other, _ := srv.register(t, "frank@example.com", "Frank", "")
	_, err = other.Letters().PDF(ctx, letter.ID)
	require.Error(t, err)
	assert.True(t, apiError(t, err).IsNotFound())
	_, err = other.Letters().SendEmail(ctx, letter.ID, client.SendEmailRequest{AttorneyEmail: "saul@example.com"})
	require.Error(t, err)
	assert.True(t, apiError(t, err).IsNotFound())

	admin, _ := srv.register(t, "root@example.com", "Root", "admin")
	_, err = admin.Letters().PDF(ctx, letter.ID)
	require.NoError(t, err)

	_, err = srv.client().Letters().PDF(ctx, letter.ID)
	require.Error(t, err)
	assert.True(t, apiError(t, err).IsUnauthorized())

	assert.Len(t, srv.mailer.Sent(), 1)
}

// Role guards hold and refusals land in the audit log.
func TestRoleGuards(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()

	admin, _ := srv.register(t, "root@example.com", "Root", "admin")
	user, userReg := srv.register(t, "erin@example.com", "Erin", "")
	contractor, _ := srv.register(t, "frank@example.com", "Frank", "contractor")

	_, err := user.Admin().Users(ctx, nil)
	require.Error(t, err)
	assert.True(t, apiError(t, err).IsForbidden())

	_, err = user.ReferralStats(ctx)
	require.Error(t, err)
	assert.True(t, apiError(t, err).IsForbidden())

	_, err = contractor.Admin().Activate(ctx, userReg.User.ID, "4letters")
	require.Error(t, err)
	assert.True(t, apiError(t, err).IsForbidden())

	_, err = srv.client().Subscription().Status(ctx)
	require.Error(t, err)
	assert.True(t, apiError(t, err).IsUnauthorized())

	sub, err := admin.Admin().Activate(ctx, userReg.User.ID, "6letters")
	require.NoError(t, err)
	assert.Equal(t, 6, sub.LettersRemaining)

	users, err := admin.Admin().Users(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, users.TotalItems)

	logs, err := admin.Admin().Logs(ctx, "security_event", nil)
	require.NoError(t, err)
	assert.EqualValues(t, 3, logs.TotalItems)
	for _, e := range logs.Data {
		assert.Equal(t, "forbidden", e.Action)
		assert.NotEmpty(t, e.IPAddress)
	}

	updates, err := admin.Admin().Logs(ctx, "subscription_updated", nil)
	require.NoError(t, err)
	require.NotEmpty(t, updates.Data)
	assert.Equal(t, "admin_activate", updates.Data[0].Action)
}

func TestAdminSignupRequiresSecret(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()

	for _, secret := range []string{"", "guess"} {
		_, err := srv.client().Register(ctx, client.RegisterRequest{
			Email:     "mallory@example.com",
			Password:  "secret1",
			Name:      "Mallory",
			Role:      "admin",
			SecretKey: secret,
		})
		require.Error(t, err, "secret %q", secret)
		assert.True(t, apiError(t, err).IsForbidden(), "secret %q", secret)
	}

	// the rejected attempts left nothing behind
	admin, reg := srv.register(t, "root@example.com", "Root", "admin")
	assert.Equal(t, "admin", reg.User.Role)

	users, err := admin.Admin().Users(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, users.TotalItems)

	_, mallory := srv.register(t, "mallory@example.com", "Mallory", "")
	assert.Equal(t, "user", mallory.User.Role)
}

func TestHealthAndCatalogue(t *testing.T) {
	srv := newTestServer(t)
	ctx := t.Context()
	c := srv.client()

	require.NoError(t, c.Ping(ctx))

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ready", health.Status)
	assert.Equal(t, "mock", health.Generator)

	pkgs, err := c.Subscription().Packages(ctx)
	require.NoError(t, err)
	assert.Len(t, pkgs, 3)

	cats, err := c.Documents().Types(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, cats)
}
