package orm

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Stage records which pipeline step produced an artifact. Legacy rows predate
// the field and carry a nil stage; their role is inferred from Description.
type Stage string

const (
	StageSingleSummary    Stage = "single_summary"
	StageAggregateSummary Stage = "aggregate_summary"
	StageFrontpageSummary Stage = "frontpage_summary"
	StageGroupAnalysis    Stage = "group_analysis"
	StageGroupFrontpage   Stage = "group_frontpage"
)

// legacyMarkers maps each stage to the free-text token matched against
// Description on legacy rows. Frontpage summaries historically used the
// marker as the whole description, so that stage is matched exactly.
var legacyMarkers = map[Stage]string{
	StageSingleSummary:    "single summary",
	StageAggregateSummary: "aggregate summary",
	StageFrontpageSummary: "frontpage summary",
	StageGroupAnalysis:    "group analysis",
	StageGroupFrontpage:   "group frontpage",
}

// KnownStage reports whether s is one of the pipeline stages.
func KnownStage(s Stage) bool {
	_, ok := legacyMarkers[s]

	return ok
}

// Artifact is a single stored unit of generated content.
type Artifact struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Digest of Body; nil only when Body is empty. The unique index is the
	// authority for dedup under concurrent creates.
	Fingerprint *string `gorm:"size:64;uniqueIndex" json:"fingerprint,omitempty"`
	Body        string  `gorm:"type:text"           json:"body,omitempty"`
	Summary     string  `gorm:"type:text"           json:"summary,omitempty"`

	CompanyID      *uuid.UUID `gorm:"type:uuid;index" json:"companyId,omitempty"`
	CompanyGroupID *uuid.UUID `gorm:"type:uuid;index" json:"companyGroupId,omitempty"`

	DocumentType *string `gorm:"size:64;index" json:"documentType,omitempty"`
	FormType     *string `gorm:"size:16"       json:"formType,omitempty"`

	Stage *Stage `gorm:"size:32;index" json:"stage,omitempty"`

	// Free-text tag; on legacy rows (nil Stage) this is the only record of
	// the pipeline role and is matched by substring.
	Description string `gorm:"type:text" json:"description,omitempty"`

	ModelConfigID  *uuid.UUID `gorm:"type:uuid" json:"modelConfigId,omitempty"`
	SystemPromptID *uuid.UUID `gorm:"type:uuid" json:"systemPromptId,omitempty"`
	UserPromptID   *uuid.UUID `gorm:"type:uuid" json:"userPromptId,omitempty"`

	PromptTokens     int    `json:"promptTokens,omitempty"`
	CompletionTokens int    `json:"completionTokens,omitempty"`
	TotalTokens      int    `json:"totalTokens,omitempty"`
	DurationMS       int64  `json:"durationMs,omitempty"`
	Warning          string `json:"warning,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

// artifactMetadataColumns is the projection used by every list and lookup
// path that does not need the body. Bodies can be large; callers that want
// one fetch it explicitly.
var artifactMetadataColumns = []string{
	"id", "fingerprint", "summary",
	"company_id", "company_group_id",
	"document_type", "form_type", "stage", "description",
	"model_config_id", "system_prompt_id", "user_prompt_id",
	"prompt_tokens", "completion_tokens", "total_tokens",
	"duration_ms", "warning", "created_at",
}

// ArtifactSource is a directed derivation edge: ArtifactID was derived from
// SourceID. Edge identity is the ordered pair.
type ArtifactSource struct {
	ArtifactID   uuid.UUID `gorm:"type:uuid;primaryKey"       json:"artifactId"`
	SourceID     uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"sourceId"`
	Relationship string    `gorm:"size:64;not null"           json:"relationship"`
	CreatedAt    time.Time `gorm:"not null"                   json:"createdAt"`
}

// DefaultRelationship is the edge kind recorded when callers do not name one.
const DefaultRelationship = "derived_from"

// ArtifactDocument links an artifact to a source document it was generated
// from. No lineage semantics beyond "used as input".
type ArtifactDocument struct {
	ArtifactID uuid.UUID `gorm:"type:uuid;primaryKey"       json:"artifactId"`
	DocumentID uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"documentId"`
}

// Company is the owning organizational entity for company-scoped artifacts.
type Company struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"         json:"id"`
	Ticker         string     `gorm:"size:16;not null;uniqueIndex" json:"ticker"`
	Name           string     `gorm:"size:255;not null"            json:"name"`
	CIK            string     `gorm:"size:16"                      json:"cik,omitempty"`
	CompanyGroupID *uuid.UUID `gorm:"type:uuid;index"              json:"companyGroupId,omitempty"`
	CreatedAt      time.Time  `gorm:"not null"                     json:"createdAt"`
}

// CompanyGroup is the coarser grouping for group-scoped analyses.
type CompanyGroup struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Name      string    `gorm:"size:255;not null;uniqueIndex" json:"name"`
	CreatedAt time.Time `gorm:"not null"                      json:"createdAt"`
}

// Filing is one SEC filing; documents belong to filings.
type Filing struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	CompanyID       uuid.UUID `gorm:"type:uuid;not null;index"     json:"companyId"`
	AccessionNumber string    `gorm:"size:32;not null;uniqueIndex" json:"accessionNumber"`
	FormType        string    `gorm:"size:16;not null"             json:"formType"`
	FiledAt         time.Time `gorm:"not null"                     json:"filedAt"`
	CreatedAt       time.Time `gorm:"not null"                     json:"createdAt"`
}

// Document is one section of a filing, the unit the generation layer reads.
// Raw content lives in the blob store keyed by ContentHash; the row carries
// identity and classification only.
type Document struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"     json:"id"`
	FilingID     *uuid.UUID `gorm:"type:uuid;index"          json:"filingId,omitempty"`
	CompanyID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"companyId"`
	DocumentType string     `gorm:"size:64;not null"         json:"documentType"`
	ContentHash  string     `gorm:"size:64"                  json:"contentHash,omitempty"`
	CreatedAt    time.Time  `gorm:"not null"                 json:"createdAt"`
}

// ModelConfig is a named generation configuration referenced by artifacts.
type ModelConfig struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"size:255;not null"    json:"name"`
	Model       string         `gorm:"size:255;not null"    json:"model"`
	Temperature float32        `json:"temperature"`
	Options     datatypes.JSON `json:"options,omitempty"`
	CreatedAt   time.Time      `gorm:"not null"             json:"createdAt"`
}

// Prompt is a reusable system or user prompt referenced by artifacts.
type Prompt struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null"    json:"name"`
	Role      string    `gorm:"size:16;not null"     json:"role"`
	Content   string    `gorm:"type:text;not null"   json:"content"`
	CreatedAt time.Time `gorm:"not null"             json:"createdAt"`
}

// newID assigns a UUIDv7: time-sortable, so id ordering agrees with creation
// order and serves as the tiebreaker for "latest" queries.
func newID() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate id: %w", err)
	}

	return id, nil
}

func assignID(current *uuid.UUID) error {
	if *current != uuid.Nil {
		return nil
	}

	id, err := newID()
	if err != nil {
		return err
	}
	*current = id

	return nil
}

func (a *Artifact) BeforeCreate(*gorm.DB) error { return assignID(&a.ID) }

func (c *Company) BeforeCreate(*gorm.DB) error { return assignID(&c.ID) }

func (g *CompanyGroup) BeforeCreate(*gorm.DB) error { return assignID(&g.ID) }

func (f *Filing) BeforeCreate(*gorm.DB) error { return assignID(&f.ID) }

func (d *Document) BeforeCreate(*gorm.DB) error { return assignID(&d.ID) }

func (m *ModelConfig) BeforeCreate(*gorm.DB) error { return assignID(&m.ID) }

func (p *Prompt) BeforeCreate(*gorm.DB) error { return assignID(&p.ID) }
