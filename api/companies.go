package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sf1tzp/symbology-sub000/orm"
	"github.com/sf1tzp/symbology-sub000/store"
)

// CompanyHandler serves company and group reference data plus the queries
// scoped to them: the hash router, listings and the pipeline-stage views.
type CompanyHandler struct {
	svc *store.Service
}

func NewCompanyHandler(svc *store.Service) *CompanyHandler {
	return &CompanyHandler{svc: svc}
}

type createCompanyRequest struct {
	Ticker         string     `json:"ticker" binding:"required"`
	Name           string     `json:"name" binding:"required"`
	CIK            string     `json:"cik"`
	CompanyGroupID *uuid.UUID `json:"companyGroupId"`
}

// POST /api/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	var req createCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "ticker and name are required")
		return
	}

	company, err := h.svc.CreateCompany(c.Request.Context(), &orm.Company{
		Ticker:         req.Ticker,
		Name:           req.Name,
		CIK:            req.CIK,
		CompanyGroupID: req.CompanyGroupID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"company": company})
}

// GET /api/companies/:ticker
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.svc.GetCompany(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"company": company})
}

// GET /api/companies/:ticker/artifacts
func (h *CompanyHandler) ListArtifacts(c *gin.Context) {
	artifacts, err := h.svc.ListArtifacts(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": artifacts})
}

// GET /api/companies/:ticker/artifacts/:fingerprint
//
// The public resolver: a ticker plus a full digest or prefix names one
// artifact.
func (h *CompanyHandler) Resolve(c *gin.Context) {
	artifact, err := h.svc.Resolve(
		c.Request.Context(),
		c.Param("ticker"),
		c.Param("fingerprint"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifact": artifact})
}

// GET /api/companies/:ticker/summaries
func (h *CompanyHandler) LatestSummaries(c *gin.Context) {
	summaries, err := h.svc.LatestSingleSummaries(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": summaries})
}

// GET /api/companies/:ticker/aggregates
func (h *CompanyHandler) LatestAggregates(c *gin.Context) {
	summaries, err := h.svc.LatestAggregateSummaries(c.Request.Context(), c.Param("ticker"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": summaries})
}

// GET /api/companies/:ticker/frontpage?document_type=risk_factors
func (h *CompanyHandler) LatestFrontpage(c *gin.Context) {
	summary, err := h.svc.LatestFrontpageSummary(
		c.Request.Context(),
		c.Param("ticker"),
		c.Query("document_type"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifact": summary})
}

type createFilingRequest struct {
	AccessionNumber string    `json:"accessionNumber" binding:"required"`
	FormType        string    `json:"formType" binding:"required"`
	FiledAt         time.Time `json:"filedAt"`
}

// POST /api/companies/:ticker/filings
func (h *CompanyHandler) CreateFiling(c *gin.Context) {
	var req createFilingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "accessionNumber and formType are required")
		return
	}

	filing, err := h.svc.CreateFiling(c.Request.Context(), c.Param("ticker"), &orm.Filing{
		AccessionNumber: req.AccessionNumber,
		FormType:        req.FormType,
		FiledAt:         req.FiledAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"filing": filing})
}

// GroupHandler serves company-group reference data and group-scoped views.
type GroupHandler struct {
	svc *store.Service
}

func NewGroupHandler(svc *store.Service) *GroupHandler {
	return &GroupHandler{svc: svc}
}

type createGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

// POST /api/groups
func (h *GroupHandler) Create(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name is required")
		return
	}

	group, err := h.svc.CreateCompanyGroup(c.Request.Context(), &orm.CompanyGroup{
		Name: req.Name,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"group": group})
}

// GET /api/groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid group id")
		return
	}

	group, err := h.svc.GetCompanyGroup(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"group": group})
}

// GET /api/groups/:id/artifacts
func (h *GroupHandler) ListArtifacts(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid group id")
		return
	}

	artifacts, err := h.svc.ListGroupArtifacts(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": artifacts})
}

// GET /api/groups/:id/analyses?limit=5
func (h *GroupHandler) LatestAnalyses(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid group id")
		return
	}

	limit := 1
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respondBadRequest(c, "invalid limit")
			return
		}
	}

	analyses, err := h.svc.LatestGroupAnalyses(c.Request.Context(), id, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifacts": analyses})
}

// GET /api/groups/:id/frontpage
func (h *GroupHandler) LatestFrontpage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid group id")
		return
	}

	artifact, err := h.svc.LatestGroupFrontpage(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"artifact": artifact})
}
