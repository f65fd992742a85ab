package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/dto"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/middleware"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/account"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/audit"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/subscription"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/utils"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/validator"
)

// AdminHandler serves the admin read views and manual grants
type AdminHandler struct {
	accounts  account.Service
	ledger    subscription.Ledger
	artifacts artifact.Service
	audit     audit.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	accounts account.Service,
	ledger subscription.Ledger,
	artifacts artifact.Service,
	auditSvc audit.Service,
	log *logger.Logger,
	val *validator.Validator,
) *AdminHandler {
	return &AdminHandler{
		accounts:  accounts,
		ledger:    ledger,
		artifacts: artifacts,
		audit:     auditSvc,
		logger:    log,
		validator: val,
	}
}

// AdminUserDTO is an account row in the admin view
type AdminUserDTO struct {
	*dto.UserDTO
	CreatedAt time.Time `json:"created_at"`
}

// Users lists accounts with their subscriptions
// @Summary List accounts
// @Tags Admin
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Failure 403 {object} utils.ErrorResponse "Admins only"
// @Security BearerAuth
// @Router /admin/users [get]
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	p := utils.ParsePaginationParams(r)
	accounts, total, err := h.accounts.List(r.Context(), p.PageSize, p.Offset)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}

	rows := make([]AdminUserDTO, 0, len(accounts))
	for _, a := range accounts {
		status, err := h.ledger.StatusOf(r.Context(), a.ID)
		if err != nil {
			writeErr(w, h.logger, err)
			return
		}
		rows = append(rows, AdminUserDTO{UserDTO: dto.ToUserDTO(a, status), CreatedAt: a.CreatedAt})
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(rows, p.Page, p.PageSize, total))
}

// Letters lists every artifact
// @Summary List all artifacts
// @Tags Admin
// @Produce json
// @Param kind query string false "letter or document"
// @Success 200 {object} utils.PaginatedResponse
// @Security BearerAuth
// @Router /admin/letters [get]
func (h *AdminHandler) Letters(w http.ResponseWriter, r *http.Request) {
	p := utils.ParsePaginationParams(r)
	kind := artifact.Kind(r.URL.Query().Get("kind"))

	items, total, err := h.artifacts.ListAll(r.Context(), kind, p.PageSize, p.Offset)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	if items == nil {
		items = []*artifact.Artifact{}
	}
	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(items, p.Page, p.PageSize, total))
}

// Logs lists audit entries, newest first
// @Summary Audit log
// @Tags Admin
// @Produce json
// @Param event_type query string false "Filter by event type"
// @Success 200 {object} utils.PaginatedResponse
// @Security BearerAuth
// @Router /admin/logs [get]
func (h *AdminHandler) Logs(w http.ResponseWriter, r *http.Request) {
	p := utils.ParsePaginationParams(r)
	eventType := audit.EventType(r.URL.Query().Get("event_type"))

	entries, total, err := h.audit.List(r.Context(), eventType, p.PageSize, p.Offset)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	if entries == nil {
		entries = []*audit.Entry{}
	}
	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(entries, p.Page, p.PageSize, total))
}

// Activate grants a package to an account without checkout
// @Summary Activate subscription
// @Tags Admin
// @Accept json
// @Produce json
// @Param accountID path string true "Account ID"
// @Param request body dto.ActivateRequest true "Package"
// @Success 200 {object} dto.SubscriptionDTO
// @Failure 404 {object} utils.ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /admin/subscriptions/{accountID}/activate [post]
func (h *AdminHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var req dto.ActivateRequest
	if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}

	accountID := chi.URLParam(r, "accountID")
	if _, err := h.accounts.GetByID(r.Context(), accountID); err != nil {
		writeErr(w, h.logger, err)
		return
	}

	current, err := h.ledger.StatusOf(r.Context(), accountID)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	discount := current.DiscountPercent
	if req.DiscountPercent != nil {
		discount = *req.DiscountPercent
	}

	tier := subscription.Tier(req.PackageType)
	if err := h.ledger.Activate(r.Context(), accountID, tier, discount); err != nil {
		writeErr(w, h.logger, err)
		return
	}

	admin := middleware.GetCaller(r)
	h.audit.Record(r.Context(), audit.Entry{
		AccountID:    &admin.AccountID,
		EventType:    audit.EventSubscriptionUpdated,
		Action:       "admin_activate",
		ResourceType: "subscription",
		ResourceID:   accountID,
		Metadata: map[string]interface{}{
			"tier":             string(tier),
			"discount_percent": discount,
		},
	})

	status, err := h.ledger.StatusOf(r.Context(), accountID)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Subscription activated", dto.ToSubscriptionDTO(status))
}
