package integration

import (
	"database/sql"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/handlers"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/router"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/config"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/validator"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/providers"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/repository/postgres"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/services"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/testutil"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/pkg/client"
	"golang.org/x/crypto/bcrypt"
)

const (
	webhookSecret = "whsec_integration"
	adminSecret   = "admin-signup-integration"
)

type testServer struct {
	URL       string
	db        *sql.DB
	generator *testutil.MockGenerator
	mailer    *testutil.MockMailer
}

// newTestServer wires the full API over an in-memory database with a
// canned generator.
func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.NewTestDB(t)
	log := logger.Nop()
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          "integration-secret",
			AccessTokenExpiry:  15 * time.Minute,
			RefreshTokenExpiry: time.Hour,
			BCryptCost:         bcrypt.MinCost,
			AdminSignupSecret:  adminSecret,
		},
		Billing: config.BillingConfig{
			CheckoutBaseURL: "https://pay.example.com/checkout",
			WebhookSecret:   webhookSecret,
			Currency:        "usd",
		},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
			AuthRequests:      100,
			AuthWindow:        time.Minute,
		},
	}

	auditSvc := services.NewAuditService(postgres.NewAuditRepository(db), log)
	notifier := &testutil.MockNotifier{}
	gen := &testutil.MockGenerator{}
	mailer := &testutil.MockMailer{}

	ledger := services.NewQuotaLedger(postgres.NewSubscriptionRepository(db), log)
	referrals := services.NewReferralLedger(postgres.NewReferralRepository(db), notifier, log)
	accountRepo := postgres.NewAccountRepository(db)
	accounts := services.NewAccountService(accountRepo, referrals, auditSvc, log, cfg.Auth.BCryptCost, cfg.Auth.AdminSignupSecret)
	checkoutSvc := services.NewCheckoutService(postgres.NewCheckoutRepository(db), ledger, auditSvc, log,
		cfg.Billing.CheckoutBaseURL, cfg.Billing.Currency)
	gate := services.NewGatekeeper(services.GatekeeperConfig{
		Ledger:    ledger,
		Artifacts: postgres.NewArtifactRepository(db),
		Generator: gen,
		Archive:   testutil.NewMockArchive(),
		Audit:     auditSvc,
		Logger:    log,
	})

	deliverySvc := services.NewDeliveryService(gate, accountRepo, providers.NewPDFRenderer("talk-to-my-lawyer"),
		mailer, auditSvc, log, "http://api.test")

	val := validator.New()
	h := &router.Handlers{
		Health:       handlers.NewHealthHandler(db, gen.Name(), log),
		Auth:         handlers.NewAuthHandler(accounts, ledger, cfg, log, val),
		Referral:     handlers.NewReferralHandler(referrals, accounts, log, val),
		Subscription: handlers.NewSubscriptionHandler(ledger, checkoutSvc, cfg.Billing.WebhookSecret, log, val),
		Artifact:     handlers.NewArtifactHandler(gate, log, val),
		Admin:        handlers.NewAdminHandler(accounts, ledger, gate, auditSvc, log, val),
		Delivery:     handlers.NewDeliveryHandler(deliverySvc, log, val),
	}

	ts := httptest.NewServer(router.New(cfg, log, auditSvc, h))
	t.Cleanup(ts.Close)

	return &testServer{URL: ts.URL, db: db, generator: gen, mailer: mailer}
}

func (s *testServer) client() *client.Client {
	return client.NewClient(client.Config{BaseURL: s.URL, Timeout: 10 * time.Second})
}

func (s *testServer) register(t *testing.T, email, name, role string) (*client.Client, *client.AuthResponse) {
	t.Helper()
	c := s.client()
	req := client.RegisterRequest{
		Email:    email,
		Password: "secret1",
		Name:     name,
		Role:     role,
	}
	if role == "admin" {
		req.SecretKey = adminSecret
	}
	resp, err := c.Register(t.Context(), req)
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return c, resp
}
