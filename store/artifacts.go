package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/sf1tzp/symbology-sub000/fingerprint"
	"github.com/sf1tzp/symbology-sub000/orm"
)

// CreateArtifactInput carries everything the generation layer hands over for
// one artifact: the content itself, its scope and classification, derivation
// references, and provenance metadata.
type CreateArtifactInput struct {
	Body        string
	Summary     string
	Description string

	Ticker         string
	CompanyGroupID *uuid.UUID

	Stage        *orm.Stage
	DocumentType *string
	FormType     *string

	SourceArtifactIDs []uuid.UUID
	SourceDocumentIDs []uuid.UUID
	Relationship      string

	ModelConfigID  *uuid.UUID
	SystemPromptID *uuid.UUID
	UserPromptID   *uuid.UUID

	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	DurationMS       int64
	Warning          string
}

// CreateArtifact stores one generated artifact and its derivation edges in a
// single transaction. Identical content deduplicates: the existing artifact
// comes back unchanged with created=false and no edges are added.
func (s *Service) CreateArtifact(
	ctx context.Context,
	input CreateArtifactInput,
) (*orm.Artifact, bool, error) {
	if err := validateCreateArtifactInput(input); err != nil {
		return nil, false, err
	}

	var companyID *uuid.UUID
	if input.Ticker != "" {
		company, err := s.db.GetCompanyByTicker(ctx, input.Ticker)
		if err != nil {
			return nil, false, wrapServiceError(err, "resolving ticker")
		}
		companyID = &company.ID
	}

	var artifact *orm.Artifact
	var created bool

	err := s.db.Gorm().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		db := s.db.UseTransaction(tx)

		draft := &orm.Artifact{
			Body:             input.Body,
			Summary:          input.Summary,
			Description:      input.Description,
			CompanyID:        companyID,
			CompanyGroupID:   input.CompanyGroupID,
			Stage:            input.Stage,
			DocumentType:     input.DocumentType,
			FormType:         input.FormType,
			ModelConfigID:    input.ModelConfigID,
			SystemPromptID:   input.SystemPromptID,
			UserPromptID:     input.UserPromptID,
			PromptTokens:     input.PromptTokens,
			CompletionTokens: input.CompletionTokens,
			TotalTokens:      input.TotalTokens,
			DurationMS:       input.DurationMS,
			Warning:          input.Warning,
		}

		var err error
		artifact, created, err = db.CreateArtifact(ctx, draft)
		if err != nil {
			return err
		}

		// A dedup hit returns the existing artifact unchanged; recording
		// fresh edges against it would be a mutation.
		if !created {
			return nil
		}

		for _, sourceID := range input.SourceArtifactIDs {
			if err := db.LinkArtifacts(
				ctx,
				artifact.ID,
				sourceID,
				input.Relationship,
			); err != nil {
				return err
			}
		}

		for _, documentID := range input.SourceDocumentIDs {
			if err := db.LinkDocument(ctx, artifact.ID, documentID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, false, wrapServiceError(err, "creating artifact")
	}

	logEvent := log.Info().
		Str("artifact_id", artifact.ID.String()).
		Bool("created", created)
	if artifact.Fingerprint != nil {
		logEvent = logEvent.Str(
			"fingerprint",
			fingerprint.Truncate(*artifact.Fingerprint, 0),
		)
	}
	logEvent.Msg("artifact stored")

	return artifact, created, nil
}

// GetArtifact retrieves one artifact, with or without its body.
func (s *Service) GetArtifact(
	ctx context.Context,
	id uuid.UUID,
	includeBody bool,
) (*orm.Artifact, error) {
	var artifact *orm.Artifact
	var err error
	if includeBody {
		artifact, err = s.db.GetArtifact(ctx, id)
	} else {
		artifact, err = s.db.GetArtifactMeta(ctx, id)
	}
	if err != nil {
		return nil, wrapServiceError(err, "retrieving artifact")
	}

	return artifact, nil
}

// GetArtifactByFingerprint resolves a digest or prefix to one artifact.
func (s *Service) GetArtifactByFingerprint(
	ctx context.Context,
	fingerprintOrPrefix string,
) (*orm.Artifact, error) {
	artifact, err := s.db.GetArtifactByFingerprint(ctx, fingerprintOrPrefix)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving artifact by fingerprint")
	}

	return artifact, nil
}

// UpdateArtifact applies a patch; a body change re-fingerprints.
func (s *Service) UpdateArtifact(
	ctx context.Context,
	id uuid.UUID,
	patch orm.ArtifactPatch,
) (*orm.Artifact, error) {
	artifact, err := s.db.UpdateArtifact(ctx, id, patch)
	if err != nil {
		return nil, wrapServiceError(err, "updating artifact")
	}

	log.Info().Str("artifact_id", id.String()).Msg("artifact updated")

	return artifact, nil
}

// DeleteArtifact removes an artifact and its edges.
func (s *Service) DeleteArtifact(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted, err := s.db.DeleteArtifact(ctx, id)
	if err != nil {
		return false, wrapServiceError(err, "deleting artifact")
	}

	if deleted {
		log.Info().Str("artifact_id", id.String()).Msg("artifact deleted")
	}

	return deleted, nil
}

// Link records a derivation edge after the fact: artifact id was derived
// from sourceID. Idempotent on the ordered pair.
func (s *Service) Link(
	ctx context.Context,
	id, sourceID uuid.UUID,
	relationship string,
) error {
	if err := s.db.LinkArtifacts(ctx, id, sourceID, relationship); err != nil {
		return wrapServiceError(err, "linking artifacts")
	}

	return nil
}

// LinkDocument records that artifact id was derived from a source document.
func (s *Service) LinkDocument(
	ctx context.Context,
	id, documentID uuid.UUID,
) error {
	if err := s.db.LinkDocument(ctx, id, documentID); err != nil {
		return wrapServiceError(err, "linking document")
	}

	return nil
}

// Sources returns the artifacts id was directly derived from, newest first.
func (s *Service) Sources(
	ctx context.Context,
	id uuid.UUID,
) ([]orm.Artifact, error) {
	sources, err := s.db.SourcesOf(ctx, id)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving artifact sources")
	}

	return sources, nil
}

// Derivatives returns the artifacts that used id as a source.
func (s *Service) Derivatives(
	ctx context.Context,
	id uuid.UUID,
) ([]orm.Artifact, error) {
	derivatives, err := s.db.DerivativesOf(ctx, id)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving artifact derivatives")
	}

	return derivatives, nil
}

// LineageDepth returns the bounded derivation depth of an artifact.
func (s *Service) LineageDepth(
	ctx context.Context,
	id uuid.UUID,
	maxDepth int,
) (int, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxLineageDepth
	}

	if err := s.requireArtifact(ctx, id); err != nil {
		return 0, err
	}

	depth, err := s.db.LineageDepth(ctx, id, maxDepth)
	if err != nil {
		return 0, wrapServiceError(err, "computing lineage depth")
	}

	return depth, nil
}

// DefaultMaxLineageDepth bounds lineage walks when callers do not.
const DefaultMaxLineageDepth = 10

// Resolve is the hash-router entry point: a ticker plus a fingerprint or
// prefix names exactly one artifact without exposing internal ids.
func (s *Service) Resolve(
	ctx context.Context,
	ticker, fingerprintOrPrefix string,
) (*orm.Artifact, error) {
	company, err := s.db.GetCompanyByTicker(ctx, ticker)
	if err != nil {
		return nil, wrapServiceError(err, "resolving ticker")
	}

	artifact, err := s.db.ResolveArtifact(ctx, company.ID, fingerprintOrPrefix)
	if err != nil {
		return nil, wrapServiceError(err, "resolving artifact reference")
	}

	return artifact, nil
}

func (s *Service) requireArtifact(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.GetArtifactMeta(ctx, id); err != nil {
		return wrapServiceError(err, "retrieving artifact")
	}

	return nil
}
