package orm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sf1tzp/symbology-sub000/fingerprint"
)

// CreateArtifact persists a new artifact, deduplicating on fingerprint.
// When the body already exists the stored artifact is returned unchanged and
// created=false; no duplicate row is ever inserted for identical content.
// The unique index on fingerprint is the authority: a duplicate-key insert
// from a concurrent creator is converted into a return-existing response.
func (db DB) CreateArtifact(
	ctx context.Context,
	draft *Artifact,
) (*Artifact, bool, error) {
	if draft == nil {
		return nil, false, &BadInputError{Reason: "artifact is nil"}
	}

	if err := validateClassification(draft.DocumentType, draft.FormType); err != nil {
		return nil, false, err
	}

	if draft.Stage != nil && !KnownStage(*draft.Stage) {
		return nil, false, &BadInputError{
			Reason: fmt.Sprintf("unknown stage %q", *draft.Stage),
		}
	}

	if draft.Body != "" && draft.Fingerprint == nil {
		digest, ok := fingerprint.Compute(draft.Body)
		if !ok {
			return nil, false, &BadInputError{Reason: "body is unhashable"}
		}
		draft.Fingerprint = &digest
	}

	if draft.Fingerprint != nil {
		existing, err := db.getArtifactByExactFingerprint(ctx, *draft.Fingerprint)
		if err == nil {
			return existing, false, nil
		}
		if !IsNotFound(err) {
			return nil, false, err
		}
	}

	// DO NOTHING instead of letting the unique index raise: a raised
	// violation would abort a surrounding postgres transaction and poison
	// the recovery read. Zero rows affected means a concurrent creator of
	// identical content won the race, and the winner's row is the artifact
	// to return.
	result := db.dbGorm.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(draft)
	if result.Error != nil {
		return nil, false, wrapErrorWithDetails(
			result.Error,
			"create artifact",
			fmt.Sprintf("id=%s", draft.ID),
		)
	}

	if result.RowsAffected == 0 && draft.Fingerprint != nil {
		existing, err := db.getArtifactByExactFingerprint(ctx, *draft.Fingerprint)
		if err != nil {
			return nil, false, err
		}

		return existing, false, nil
	}

	return draft, true, nil
}

// GetArtifact retrieves a single artifact including its body.
func (db DB) GetArtifact(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	artifact, err := gorm.G[Artifact](db.dbGorm).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get artifact",
			fmt.Sprintf("id=%s", id),
		)
	}

	return &artifact, nil
}

// GetArtifactMeta retrieves a single artifact without loading the body.
func (db DB) GetArtifactMeta(ctx context.Context, id uuid.UUID) (*Artifact, error) {
	artifact, err := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("id = ?", id).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get artifact metadata",
			fmt.Sprintf("id=%s", id),
		)
	}

	return &artifact, nil
}

// GetArtifactByFingerprint resolves a full digest or a shorter prefix to one
// artifact. Exact match is tried first; prefix fallback applies only to
// inputs shorter than a full digest and resolves ambiguity deterministically
// by lexicographic fingerprint order. Body is not loaded.
func (db DB) GetArtifactByFingerprint(
	ctx context.Context,
	fingerprintOrPrefix string,
) (*Artifact, error) {
	return db.resolveFingerprint(ctx, fingerprintOrPrefix, uuid.Nil)
}

// ResolveArtifact is the hash-router lookup: the fingerprint resolution of
// GetArtifactByFingerprint narrowed to artifacts owned by one company.
func (db DB) ResolveArtifact(
	ctx context.Context,
	companyID uuid.UUID,
	fingerprintOrPrefix string,
) (*Artifact, error) {
	if companyID == uuid.Nil {
		return nil, &BadInputError{Reason: "company id must be provided"}
	}

	return db.resolveFingerprint(ctx, fingerprintOrPrefix, companyID)
}

func (db DB) resolveFingerprint(
	ctx context.Context,
	fingerprintOrPrefix string,
	companyID uuid.UUID,
) (*Artifact, error) {
	if fingerprintOrPrefix == "" {
		return nil, &BadInputError{Reason: "fingerprint must be provided"}
	}

	if !isHex(fingerprintOrPrefix) {
		return nil, &BadInputError{
			Reason: fmt.Sprintf(
				"fingerprint %q is not lowercase hex",
				fingerprintOrPrefix,
			),
		}
	}

	details := fmt.Sprintf("fingerprint=%s", fingerprintOrPrefix)

	query := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("fingerprint = ?", fingerprintOrPrefix)
	if companyID != uuid.Nil {
		query = query.Where("company_id = ?", companyID)
		details += fmt.Sprintf(", company_id=%s", companyID)
	}

	artifact, err := query.First(ctx)
	if err == nil {
		return &artifact, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) ||
		fingerprint.IsFull(fingerprintOrPrefix) {
		return nil, wrapErrorWithDetails(err, "get artifact by fingerprint", details)
	}

	prefixQuery := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("fingerprint LIKE ?", fingerprintOrPrefix+"%").
		Order("fingerprint ASC")
	if companyID != uuid.Nil {
		prefixQuery = prefixQuery.Where("company_id = ?", companyID)
	}

	artifact, err = prefixQuery.First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get artifact by fingerprint prefix",
			details,
		)
	}

	return &artifact, nil
}

func (db DB) getArtifactByExactFingerprint(
	ctx context.Context,
	digest string,
) (*Artifact, error) {
	artifact, err := gorm.G[Artifact](db.dbGorm).
		Where("fingerprint = ?", digest).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get artifact by exact fingerprint",
			fmt.Sprintf("fingerprint=%s", digest),
		)
	}

	return &artifact, nil
}

// ArtifactPatch carries the fields UpdateArtifact may change. Nil fields are
// left untouched. ID and CreatedAt are not patchable.
type ArtifactPatch struct {
	Body         *string
	Summary      *string
	Description  *string
	Stage        *Stage
	DocumentType *string
	FormType     *string
	Warning      *string
}

// UpdateArtifact applies a patch to an existing artifact. A body change
// recomputes the fingerprint; an emptied body clears it.
func (db DB) UpdateArtifact(
	ctx context.Context,
	id uuid.UUID,
	patch ArtifactPatch,
) (*Artifact, error) {
	if patch.Stage != nil && !KnownStage(*patch.Stage) {
		return nil, &BadInputError{
			Reason: fmt.Sprintf("unknown stage %q", *patch.Stage),
		}
	}

	updates := map[string]any{}
	if patch.Body != nil {
		updates["body"] = *patch.Body
		if digest, ok := fingerprint.Compute(*patch.Body); ok {
			updates["fingerprint"] = digest
		} else {
			updates["fingerprint"] = nil
		}
	}
	if patch.Summary != nil {
		updates["summary"] = *patch.Summary
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Stage != nil {
		updates["stage"] = *patch.Stage
	}
	if patch.DocumentType != nil {
		updates["document_type"] = *patch.DocumentType
	}
	if patch.FormType != nil {
		updates["form_type"] = *patch.FormType
	}
	if patch.Warning != nil {
		updates["warning"] = *patch.Warning
	}

	details := fmt.Sprintf("id=%s", id)

	if len(updates) > 0 {
		result := db.dbGorm.WithContext(ctx).
			Model(&Artifact{}).
			Where("id = ?", id).
			Updates(updates)
		if result.Error != nil {
			return nil, wrapErrorWithDetails(result.Error, "update artifact", details)
		}
		if result.RowsAffected == 0 {
			return nil, &NotFoundError{
				Search: fmt.Sprintf("update artifact (%s)", details),
			}
		}
	}

	return db.GetArtifact(ctx, id)
}

// DeleteArtifact removes an artifact together with every edge referencing
// it, in one transaction. Artifacts on the other end of those edges are left
// intact. Returns false without error when the id is absent.
func (db DB) DeleteArtifact(ctx context.Context, id uuid.UUID) (bool, error) {
	deleted := false

	err := db.dbGorm.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("artifact_id = ? OR source_id = ?", id, id).
			Delete(&ArtifactSource{}).Error; err != nil {
			return err
		}

		if err := tx.
			Where("artifact_id = ?", id).
			Delete(&ArtifactDocument{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&Artifact{})
		if result.Error != nil {
			return result.Error
		}
		deleted = result.RowsAffected > 0

		return nil
	})
	if err != nil {
		return false, wrapErrorWithDetails(
			err,
			"delete artifact",
			fmt.Sprintf("id=%s", id),
		)
	}

	return deleted, nil
}

// ListArtifactsByCompany returns metadata for every artifact owned by the
// company, newest first.
func (db DB) ListArtifactsByCompany(
	ctx context.Context,
	companyID uuid.UUID,
) ([]Artifact, error) {
	artifacts, err := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("company_id = ?", companyID).
		Order("created_at DESC, id DESC").
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list artifacts by company",
			fmt.Sprintf("company_id=%s", companyID),
		)
	}

	return artifacts, nil
}

// ListArtifactsByGroup returns metadata for every group-scoped artifact,
// newest first.
func (db DB) ListArtifactsByGroup(
	ctx context.Context,
	groupID uuid.UUID,
) ([]Artifact, error) {
	artifacts, err := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("company_group_id = ?", groupID).
		Order("created_at DESC, id DESC").
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list artifacts by group",
			fmt.Sprintf("company_group_id=%s", groupID),
		)
	}

	return artifacts, nil
}

// ListArtifactsByClassification returns metadata for artifacts matching a
// (document_type, form_type) pair; formType may be empty to match any form.
func (db DB) ListArtifactsByClassification(
	ctx context.Context,
	documentType, formType string,
) ([]Artifact, error) {
	if documentType == "" {
		return nil, &BadInputError{Reason: "document type must be provided"}
	}

	query := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("document_type = ?", documentType)
	if formType != "" {
		query = query.Where("form_type = ?", formType)
	}

	artifacts, err := query.Order("created_at DESC, id DESC").Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list artifacts by classification",
			fmt.Sprintf("document_type=%s, form_type=%s", documentType, formType),
		)
	}

	return artifacts, nil
}

// ListArtifactsByDocuments returns metadata for artifacts that used any of
// the given source documents as input.
func (db DB) ListArtifactsByDocuments(
	ctx context.Context,
	documentIDs []uuid.UUID,
) ([]Artifact, error) {
	if len(documentIDs) == 0 {
		return []Artifact{}, nil
	}

	var artifacts []Artifact
	err := db.dbGorm.WithContext(ctx).
		Model(&Artifact{}).
		Select(prefixedMetadataColumns("artifacts")).
		Joins("JOIN artifact_documents ON artifact_documents.artifact_id = artifacts.id").
		Where("artifact_documents.document_id IN ?", documentIDs).
		Distinct().
		Order("artifacts.created_at DESC, artifacts.id DESC").
		Find(&artifacts).Error
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"list artifacts by documents",
			fmt.Sprintf("document_ids=%d", len(documentIDs)),
		)
	}

	return artifacts, nil
}

func prefixedMetadataColumns(table string) []string {
	columns := make([]string, 0, len(artifactMetadataColumns))
	for _, column := range artifactMetadataColumns {
		columns = append(columns, table+"."+column)
	}

	return columns
}

func validateClassification(documentType, formType *string) error {
	if formType != nil && *formType != "" &&
		(documentType == nil || *documentType == "") {
		return &BadInputError{
			Reason: "form type requires a document type",
		}
	}

	return nil
}

// isHex accepts only lowercase hex, the alphabet fingerprints are rendered
// in. Rejecting anything else keeps LIKE metacharacters out of the prefix
// query without dialect-specific escaping.
func isHex(s string) bool {
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return false
		}
	}

	return true
}
