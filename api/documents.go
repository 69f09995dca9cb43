package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sf1tzp/symbology-sub000/store"
)

// DocumentHandler serves filing-section ingestion and retrieval.
type DocumentHandler struct {
	svc *store.Service
}

func NewDocumentHandler(svc *store.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

type ingestDocumentRequest struct {
	FilingID     *uuid.UUID `json:"filingId"`
	DocumentType string     `json:"documentType" binding:"required"`
	Content      string     `json:"content" binding:"required"`
}

// POST /api/companies/:ticker/documents
func (h *DocumentHandler) Ingest(c *gin.Context) {
	var req ingestDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "documentType and content are required")
		return
	}

	document, err := h.svc.IngestDocument(c.Request.Context(), store.IngestDocumentInput{
		Ticker:       c.Param("ticker"),
		FilingID:     req.FilingID,
		DocumentType: req.DocumentType,
		Content:      []byte(req.Content),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"document": document})
}

// GET /api/documents/:id
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid document id")
		return
	}

	document, err := h.svc.GetDocument(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"document": document})
}

// GET /api/documents/:id/content
//
// Returns the raw stored bytes, not a JSON envelope.
func (h *DocumentHandler) GetContent(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid document id")
		return
	}

	_, content, err := h.svc.GetDocumentContent(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", content)
}

// GET /api/documents/:id/artifacts
func (h *DocumentHandler) Artifacts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid document id")
		return
	}

	artifacts, err := h.svc.ArtifactsForDocuments(c.Request.Context(), []uuid.UUID{id})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": artifacts})
}

// GET /api/filings/:id/documents
func (h *DocumentHandler) ListByFiling(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid filing id")
		return
	}

	documents, err := h.svc.ListDocuments(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"documents": documents})
}
