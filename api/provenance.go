package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/sf1tzp/symbology-sub000/orm"
	"github.com/sf1tzp/symbology-sub000/store"
)

// ProvenanceHandler serves the generation metadata artifacts point at:
// model configurations and prompts.
type ProvenanceHandler struct {
	svc *store.Service
}

func NewProvenanceHandler(svc *store.Service) *ProvenanceHandler {
	return &ProvenanceHandler{svc: svc}
}

type createModelConfigRequest struct {
	Name        string          `json:"name" binding:"required"`
	Model       string          `json:"model" binding:"required"`
	Temperature float32         `json:"temperature"`
	Options     json.RawMessage `json:"options"`
}

// POST /api/model-configs
func (h *ProvenanceHandler) CreateModelConfig(c *gin.Context) {
	var req createModelConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name and model are required")
		return
	}

	config, err := h.svc.CreateModelConfig(c.Request.Context(), &orm.ModelConfig{
		Name:        req.Name,
		Model:       req.Model,
		Temperature: req.Temperature,
		Options:     datatypes.JSON(req.Options),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"modelConfig": config})
}

// GET /api/model-configs/:id
func (h *ProvenanceHandler) GetModelConfig(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid model config id")
		return
	}

	config, err := h.svc.GetModelConfig(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"modelConfig": config})
}

type createPromptRequest struct {
	Name    string `json:"name" binding:"required"`
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// POST /api/prompts
func (h *ProvenanceHandler) CreatePrompt(c *gin.Context) {
	var req createPromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "name, role and content are required")
		return
	}

	prompt, err := h.svc.CreatePrompt(c.Request.Context(), &orm.Prompt{
		Name:    req.Name,
		Role:    req.Role,
		Content: req.Content,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"prompt": prompt})
}

// GET /api/prompts/:id
func (h *ProvenanceHandler) GetPrompt(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid prompt id")
		return
	}

	prompt, err := h.svc.GetPrompt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"prompt": prompt})
}
