package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/sf1tzp/symbology-sub000/store"
)

// NewRouter wires every handler group onto one engine.
func NewRouter(svc *store.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	artifacts := NewArtifactHandler(svc)
	companies := NewCompanyHandler(svc)
	groups := NewGroupHandler(svc)
	documents := NewDocumentHandler(svc)
	provenance := NewProvenanceHandler(svc)

	r.GET("/healthcheck", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/artifacts", artifacts.Create)
		api.GET("/artifacts", artifacts.ListByClassification)
		api.GET("/artifacts/:id", artifacts.Get)
		api.PATCH("/artifacts/:id", artifacts.Update)
		api.DELETE("/artifacts/:id", artifacts.Delete)
		api.POST("/artifacts/:id/sources", artifacts.Link)
		api.GET("/artifacts/:id/sources", artifacts.Sources)
		api.GET("/artifacts/:id/derivatives", artifacts.Derivatives)
		api.GET("/artifacts/:id/documents", artifacts.Documents)
		api.GET("/artifacts/:id/depth", artifacts.Depth)

		// Bare digest lookup; the scoped resolver lives under companies.
		api.GET("/fingerprints/:fingerprint", artifacts.GetByFingerprint)

		api.POST("/companies", companies.Create)
		api.GET("/companies/:ticker", companies.Get)
		api.GET("/companies/:ticker/artifacts", companies.ListArtifacts)
		api.GET("/companies/:ticker/artifacts/:fingerprint", companies.Resolve)
		api.GET("/companies/:ticker/summaries", companies.LatestSummaries)
		api.GET("/companies/:ticker/aggregates", companies.LatestAggregates)
		api.GET("/companies/:ticker/frontpage", companies.LatestFrontpage)
		api.POST("/companies/:ticker/filings", companies.CreateFiling)
		api.POST("/companies/:ticker/documents", documents.Ingest)

		api.POST("/groups", groups.Create)
		api.GET("/groups/:id", groups.Get)
		api.GET("/groups/:id/artifacts", groups.ListArtifacts)
		api.GET("/groups/:id/analyses", groups.LatestAnalyses)
		api.GET("/groups/:id/frontpage", groups.LatestFrontpage)

		api.GET("/documents/:id", documents.Get)
		api.GET("/documents/:id/content", documents.GetContent)
		api.GET("/documents/:id/artifacts", documents.Artifacts)
		api.GET("/filings/:id/documents", documents.ListByFiling)

		api.POST("/model-configs", provenance.CreateModelConfig)
		api.GET("/model-configs/:id", provenance.GetModelConfig)
		api.POST("/prompts", provenance.CreatePrompt)
		api.GET("/prompts/:id", provenance.GetPrompt)
	}

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(started)).
			Msg("request handled")
	}
}
