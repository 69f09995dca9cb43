package orm

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LinkArtifacts records a directed derivation edge: artifactID was derived
// from sourceID. Idempotent; linking the same ordered pair twice leaves a
// single edge. Both endpoints must exist. Graph operations never delete
// artifacts.
func (db DB) LinkArtifacts(
	ctx context.Context,
	artifactID, sourceID uuid.UUID,
	relationship string,
) error {
	if relationship == "" {
		relationship = DefaultRelationship
	}

	details := fmt.Sprintf(
		"artifact_id=%s, source_id=%s, relationship=%s",
		artifactID,
		sourceID,
		relationship,
	)

	for _, id := range []uuid.UUID{artifactID, sourceID} {
		if err := db.requireArtifact(ctx, id); err != nil {
			return err
		}
	}

	edge := ArtifactSource{
		ArtifactID:   artifactID,
		SourceID:     sourceID,
		Relationship: relationship,
		CreatedAt:    time.Now().UTC(),
	}

	err := db.dbGorm.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
	if err != nil {
		return wrapErrorWithDetails(err, "link artifacts", details)
	}

	return nil
}

// LinkDocument records that an artifact used a source document as input.
// Idempotent, non-recursive; documents never participate in lineage depth.
func (db DB) LinkDocument(
	ctx context.Context,
	artifactID, documentID uuid.UUID,
) error {
	details := fmt.Sprintf(
		"artifact_id=%s, document_id=%s",
		artifactID,
		documentID,
	)

	if err := db.requireArtifact(ctx, artifactID); err != nil {
		return err
	}

	count, err := gorm.G[Document](db.dbGorm).
		Where("id = ?", documentID).
		Count(ctx, "*")
	if err != nil {
		return wrapErrorWithDetails(err, "check document exists", details)
	}
	if count == 0 {
		return &NotFoundError{
			Search: fmt.Sprintf("document (id=%s)", documentID),
		}
	}

	edge := ArtifactDocument{ArtifactID: artifactID, DocumentID: documentID}

	err = db.dbGorm.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&edge).Error
	if err != nil {
		return wrapErrorWithDetails(err, "link document", details)
	}

	return nil
}

// SourcesOf returns the artifacts the given artifact was directly derived
// from, most recently produced source first. Bodies are not loaded.
func (db DB) SourcesOf(ctx context.Context, id uuid.UUID) ([]Artifact, error) {
	var sources []Artifact
	err := db.dbGorm.WithContext(ctx).
		Model(&Artifact{}).
		Select(prefixedMetadataColumns("artifacts")).
		Joins("JOIN artifact_sources ON artifact_sources.source_id = artifacts.id").
		Where("artifact_sources.artifact_id = ?", id).
		Order("artifacts.created_at DESC, artifacts.id DESC").
		Find(&sources).Error
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get artifact sources",
			fmt.Sprintf("artifact_id=%s", id),
		)
	}

	return sources, nil
}

// DerivativesOf returns the artifacts that directly used the given artifact
// as a source. Computed from the edge table on demand; loading an artifact
// never fans out into this query implicitly.
func (db DB) DerivativesOf(ctx context.Context, id uuid.UUID) ([]Artifact, error) {
	var derivatives []Artifact
	err := db.dbGorm.WithContext(ctx).
		Model(&Artifact{}).
		Select(prefixedMetadataColumns("artifacts")).
		Joins("JOIN artifact_sources ON artifact_sources.artifact_id = artifacts.id").
		Where("artifact_sources.source_id = ?", id).
		Order("artifacts.created_at DESC, artifacts.id DESC").
		Find(&derivatives).Error
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get artifact derivatives",
			fmt.Sprintf("source_id=%s", id),
		)
	}

	return derivatives, nil
}

// DocumentsOf returns the source documents an artifact was generated from.
func (db DB) DocumentsOf(ctx context.Context, id uuid.UUID) ([]Document, error) {
	var documents []Document
	err := db.dbGorm.WithContext(ctx).
		Model(&Document{}).
		Select("documents.*").
		Joins("JOIN artifact_documents ON artifact_documents.document_id = documents.id").
		Where("artifact_documents.artifact_id = ?", id).
		Order("documents.created_at DESC").
		Find(&documents).Error
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get artifact documents",
			fmt.Sprintf("artifact_id=%s", id),
		)
	}

	return documents, nil
}

// LineageDepth returns the longest chain of source derivation reachable from
// id, bounded by maxDepth. The walk carries a per-branch visited set passed
// down by value, so a node already seen on the current path contributes
// depth 0 instead of being re-expanded; a true cycle therefore yields a
// conservative, truncated depth rather than an error. An artifact with no
// sources has depth 0.
func (db DB) LineageDepth(
	ctx context.Context,
	id uuid.UUID,
	maxDepth int,
) (int, error) {
	return db.lineageDepth(ctx, id, maxDepth, map[uuid.UUID]bool{id: true})
}

func (db DB) lineageDepth(
	ctx context.Context,
	id uuid.UUID,
	maxDepth int,
	visited map[uuid.UUID]bool,
) (int, error) {
	if maxDepth <= 0 {
		return 0, nil
	}

	sourceIDs, err := db.sourceIDsOf(ctx, id)
	if err != nil {
		return 0, err
	}

	deepest := 0
	for _, sourceID := range sourceIDs {
		if visited[sourceID] {
			continue
		}

		branch := make(map[uuid.UUID]bool, len(visited)+1)
		for seen := range visited {
			branch[seen] = true
		}
		branch[sourceID] = true

		depth, err := db.lineageDepth(ctx, sourceID, maxDepth-1, branch)
		if err != nil {
			return 0, err
		}
		if depth+1 > deepest {
			deepest = depth + 1
		}
	}

	return deepest, nil
}

// sourceIDsOf reads only edge endpoints; the depth walk never materializes
// artifact rows.
func (db DB) sourceIDsOf(
	ctx context.Context,
	id uuid.UUID,
) ([]uuid.UUID, error) {
	edges, err := gorm.G[ArtifactSource](db.dbGorm).
		Where("artifact_id = ?", id).
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get source edges",
			fmt.Sprintf("artifact_id=%s", id),
		)
	}

	sourceIDs := make([]uuid.UUID, 0, len(edges))
	for _, edge := range edges {
		sourceIDs = append(sourceIDs, edge.SourceID)
	}

	return sourceIDs, nil
}

func (db DB) requireArtifact(ctx context.Context, id uuid.UUID) error {
	count, err := gorm.G[Artifact](db.dbGorm).
		Where("id = ?", id).
		Count(ctx, "*")
	if err != nil {
		return wrapErrorWithDetails(
			err,
			"check artifact exists",
			fmt.Sprintf("id=%s", id),
		)
	}
	if count == 0 {
		return &NotFoundError{Search: fmt.Sprintf("artifact (id=%s)", id)}
	}

	return nil
}
