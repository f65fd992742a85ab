package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/dto"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/api/middleware"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/domain/artifact"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/logger"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/utils"
	"github.com/jamilahmedansari/app-talk-to-my-lawyer/internal/pkg/validator"
)

// ArtifactHandler serves letter and document generation
type ArtifactHandler struct {
	artifacts artifact.Service
	logger    *logger.Logger
	validator *validator.Validator
}

// NewArtifactHandler creates a new artifact handler
func NewArtifactHandler(artifacts artifact.Service, log *logger.Logger, val *validator.Validator) *ArtifactHandler {
	return &ArtifactHandler{
		artifacts: artifacts,
		logger:    log,
		validator: val,
	}
}

// GenerateLetter generates a letter and consumes one letter of quota
// @Summary Generate letter
// @Description Requires an active subscription with letters remaining
// @Tags Letters
// @Accept json
// @Produce json
// @Param request body dto.GenerateLetterRequest true "Letter request"
// @Success 201 {object} artifact.Artifact
// @Failure 403 {object} utils.ErrorResponse "Subscription required"
// @Failure 502 {object} utils.ErrorResponse "Generation failed"
// @Security BearerAuth
// @Router /letters/generate [post]
func (h *ArtifactHandler) GenerateLetter(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateLetterRequest
	if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	h.generate(w, r, req.ToRequest())
}

// GenerateDocument generates a catalogue document and consumes one letter of quota
// @Summary Generate document
// @Tags Documents
// @Accept json
// @Produce json
// @Param request body dto.GenerateDocumentRequest true "Document request"
// @Success 201 {object} artifact.Artifact
// @Failure 400 {object} utils.ErrorResponse "Unknown document type"
// @Failure 403 {object} utils.ErrorResponse "Subscription required"
// @Failure 502 {object} utils.ErrorResponse "Generation failed"
// @Security BearerAuth
// @Router /documents/generate [post]
func (h *ArtifactHandler) GenerateDocument(w http.ResponseWriter, r *http.Request) {
	var req dto.GenerateDocumentRequest
	if appErr := decodeAndValidate(w, r, h.validator, &req); appErr != nil {
		utils.WriteError(w, appErr)
		return
	}
	h.generate(w, r, req.ToRequest())
}

func (h *ArtifactHandler) generate(w http.ResponseWriter, r *http.Request, req artifact.Request) {
	a, err := h.artifacts.Generate(r.Context(), middleware.GetCaller(r), req)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusCreated, a)
}

// ListLetters lists the caller's letters
// @Summary List own letters
// @Tags Letters
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} utils.PaginatedResponse
// @Security BearerAuth
// @Router /letters [get]
func (h *ArtifactHandler) ListLetters(w http.ResponseWriter, r *http.Request) {
	h.listMine(w, r, artifact.KindLetter)
}

// ListDocuments lists the caller's documents
// @Summary List own documents
// @Tags Documents
// @Produce json
// @Success 200 {object} utils.PaginatedResponse
// @Security BearerAuth
// @Router /documents [get]
func (h *ArtifactHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	h.listMine(w, r, artifact.KindDocument)
}

func (h *ArtifactHandler) listMine(w http.ResponseWriter, r *http.Request, kind artifact.Kind) {
	p := utils.ParsePaginationParams(r)
	items, total, err := h.artifacts.ListMine(r.Context(), middleware.GetCaller(r), kind, p.PageSize, p.Offset)
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	if items == nil {
		items = []*artifact.Artifact{}
	}
	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(items, p.Page, p.PageSize, total))
}

// Get returns one artifact owned by the caller; admins see every artifact
// @Summary Get letter
// @Tags Letters
// @Produce json
// @Param id path string true "Artifact ID"
// @Success 200 {object} artifact.Artifact
// @Failure 404 {object} utils.ErrorResponse "Not found"
// @Security BearerAuth
// @Router /letters/{id} [get]
func (h *ArtifactHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.artifacts.Get(r.Context(), middleware.GetCaller(r), chi.URLParam(r, "id"))
	if err != nil {
		writeErr(w, h.logger, err)
		return
	}
	utils.WriteSuccess(w, http.StatusOK, a)
}

// DocumentTypes returns the document catalogue
// @Summary Document types
// @Tags Documents
// @Produce json
// @Success 200 {object} dto.DocumentTypesResponse
// @Router /documents/types [get]
func (h *ArtifactHandler) DocumentTypes(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, dto.DocumentTypesResponse{Categories: artifact.Catalogue()})
}
