package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sf1tzp/symbology-sub000/orm"
	"github.com/sf1tzp/symbology-sub000/store"
)

// ArtifactHandler serves artifact CRUD, fingerprint lookup and lineage.
type ArtifactHandler struct {
	svc *store.Service
}

func NewArtifactHandler(svc *store.Service) *ArtifactHandler {
	return &ArtifactHandler{svc: svc}
}

type createArtifactRequest struct {
	Body        string `json:"body"`
	Summary     string `json:"summary"`
	Description string `json:"description"`

	Ticker         string     `json:"ticker"`
	CompanyGroupID *uuid.UUID `json:"companyGroupId"`

	Stage        *orm.Stage `json:"stage"`
	DocumentType *string    `json:"documentType"`
	FormType     *string    `json:"formType"`

	SourceArtifactIDs []uuid.UUID `json:"sourceArtifactIds"`
	SourceDocumentIDs []uuid.UUID `json:"sourceDocumentIds"`
	Relationship      string      `json:"relationship"`

	ModelConfigID  *uuid.UUID `json:"modelConfigId"`
	SystemPromptID *uuid.UUID `json:"systemPromptId"`
	UserPromptID   *uuid.UUID `json:"userPromptId"`

	PromptTokens     int    `json:"promptTokens"`
	CompletionTokens int    `json:"completionTokens"`
	TotalTokens      int    `json:"totalTokens"`
	DurationMS       int64  `json:"durationMs"`
	Warning          string `json:"warning"`
}

// POST /api/artifacts
func (h *ArtifactHandler) Create(c *gin.Context) {
	var req createArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	artifact, created, err := h.svc.CreateArtifact(c.Request.Context(), store.CreateArtifactInput{
		Body:              req.Body,
		Summary:           req.Summary,
		Description:       req.Description,
		Ticker:            req.Ticker,
		CompanyGroupID:    req.CompanyGroupID,
		Stage:             req.Stage,
		DocumentType:      req.DocumentType,
		FormType:          req.FormType,
		SourceArtifactIDs: req.SourceArtifactIDs,
		SourceDocumentIDs: req.SourceDocumentIDs,
		Relationship:      req.Relationship,
		ModelConfigID:     req.ModelConfigID,
		SystemPromptID:    req.SystemPromptID,
		UserPromptID:      req.UserPromptID,
		PromptTokens:      req.PromptTokens,
		CompletionTokens:  req.CompletionTokens,
		TotalTokens:       req.TotalTokens,
		DurationMS:        req.DurationMS,
		Warning:           req.Warning,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"artifact": artifact, "created": created})
}

// GET /api/artifacts/:id?include_body=true
func (h *ArtifactHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid artifact id")
		return
	}

	includeBody := c.Query("include_body") == "true"
	artifact, err := h.svc.GetArtifact(c.Request.Context(), id, includeBody)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifact": artifact})
}

// GET /api/fingerprints/:fingerprint
func (h *ArtifactHandler) GetByFingerprint(c *gin.Context) {
	artifact, err := h.svc.GetArtifactByFingerprint(
		c.Request.Context(),
		c.Param("fingerprint"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifact": artifact})
}

type updateArtifactRequest struct {
	Body         *string    `json:"body"`
	Summary      *string    `json:"summary"`
	Description  *string    `json:"description"`
	Stage        *orm.Stage `json:"stage"`
	DocumentType *string    `json:"documentType"`
	FormType     *string    `json:"formType"`
	Warning      *string    `json:"warning"`
}

// PATCH /api/artifacts/:id
func (h *ArtifactHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid artifact id")
		return
	}

	var req updateArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	artifact, err := h.svc.UpdateArtifact(c.Request.Context(), id, orm.ArtifactPatch{
		Body:         req.Body,
		Summary:      req.Summary,
		Description:  req.Description,
		Stage:        req.Stage,
		DocumentType: req.DocumentType,
		FormType:     req.FormType,
		Warning:      req.Warning,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifact": artifact})
}

// DELETE /api/artifacts/:id
func (h *ArtifactHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid artifact id")
		return
	}

	deleted, err := h.svc.DeleteArtifact(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, errorEnvelope{
			Error: apiError{Message: "artifact not found"},
		})
		return
	}

	c.Status(http.StatusNoContent)
}

type linkRequest struct {
	SourceArtifactID *uuid.UUID `json:"sourceArtifactId"`
	SourceDocumentID *uuid.UUID `json:"sourceDocumentId"`
	Relationship     string     `json:"relationship"`
}

// POST /api/artifacts/:id/sources
func (h *ArtifactHandler) Link(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid artifact id")
		return
	}

	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	switch {
	case req.SourceArtifactID != nil:
		err = h.svc.Link(c.Request.Context(), id, *req.SourceArtifactID, req.Relationship)
	case req.SourceDocumentID != nil:
		err = h.svc.LinkDocument(c.Request.Context(), id, *req.SourceDocumentID)
	default:
		respondBadRequest(c, "sourceArtifactId or sourceDocumentId is required")
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GET /api/artifacts/:id/sources
func (h *ArtifactHandler) Sources(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid artifact id")
		return
	}

	sources, err := h.svc.Sources(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": sources})
}

// GET /api/artifacts/:id/derivatives
func (h *ArtifactHandler) Derivatives(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid artifact id")
		return
	}

	derivatives, err := h.svc.Derivatives(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": derivatives})
}

// GET /api/artifacts/:id/documents
func (h *ArtifactHandler) Documents(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid artifact id")
		return
	}

	documents, err := h.svc.DocumentsOf(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}

// GET /api/artifacts/:id/depth?max_depth=10
func (h *ArtifactHandler) Depth(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid artifact id")
		return
	}

	maxDepth := 0
	if raw := c.Query("max_depth"); raw != "" {
		maxDepth, err = strconv.Atoi(raw)
		if err != nil || maxDepth < 0 {
			respondBadRequest(c, "invalid max_depth")
			return
		}
	}

	depth, err := h.svc.LineageDepth(c.Request.Context(), id, maxDepth)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"depth": depth})
}

// GET /api/artifacts?document_type=risk_factors&form_type=10-K
func (h *ArtifactHandler) ListByClassification(c *gin.Context) {
	documentType := c.Query("document_type")
	if documentType == "" {
		respondBadRequest(c, "document_type is required")
		return
	}

	artifacts, err := h.svc.ListArtifactsByClassification(
		c.Request.Context(),
		documentType,
		c.Query("form_type"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": artifacts})
}
