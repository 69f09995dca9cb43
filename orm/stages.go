package orm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Stage resolution queries bridge two record generations in one expression:
// current rows match on the stage enum, legacy rows (nil stage) match on a
// substring of the free-text description. Every query below evaluates both
// predicates ORed together; there is no per-generation code path.
//
// "Latest" is max created_at within the matched set, per grouping key, with
// id as the tiebreaker. Ids are UUIDv7, so DESC id ordering agrees with
// creation order even when two rows share a timestamp.

// stageCondition matches current rows by enum and legacy rows by substring
// marker.
func stageCondition(stage Stage) (string, []any) {
	return "(stage = ? OR (stage IS NULL AND description LIKE ?))",
		[]any{stage, "%" + legacyMarkers[stage] + "%"}
}

// exactStageCondition is the frontpage variant: legacy frontpage summaries
// used the marker as the entire description, so the legacy branch matches
// exactly rather than by substring.
func exactStageCondition(stage Stage) (string, []any) {
	return "(stage = ? OR (stage IS NULL AND description = ?))",
		[]any{stage, legacyMarkers[stage]}
}

const latestOrdering = "created_at DESC, id DESC"

// LatestSingleSummaries returns the current single-document summary for each
// document type of a company.
func (db DB) LatestSingleSummaries(
	ctx context.Context,
	companyID uuid.UUID,
) ([]Artifact, error) {
	condition, args := stageCondition(StageSingleSummary)

	candidates, err := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("company_id = ?", companyID).
		Where(condition, args...).
		Order(latestOrdering).
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get latest single summaries",
			fmt.Sprintf("company_id=%s", companyID),
		)
	}

	return latestPerKey(candidates, func(a Artifact) string {
		if a.DocumentType != nil {
			return *a.DocumentType
		}

		return "legacy:" + a.Description
	}), nil
}

// LatestAggregateSummaries returns the current aggregate summary per
// (document_type, form_type) pair for a company. Legacy rows with no
// structured classification at all fall back to the description as their
// grouping key.
func (db DB) LatestAggregateSummaries(
	ctx context.Context,
	companyID uuid.UUID,
) ([]Artifact, error) {
	condition, args := stageCondition(StageAggregateSummary)

	candidates, err := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("company_id = ?", companyID).
		Where(condition, args...).
		Order(latestOrdering).
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get latest aggregate summaries",
			fmt.Sprintf("company_id=%s", companyID),
		)
	}

	return latestPerKey(candidates, func(a Artifact) string {
		if a.DocumentType != nil {
			formType := ""
			if a.FormType != nil {
				formType = *a.FormType
			}

			return *a.DocumentType + "|" + formType
		}

		return "legacy:" + a.Description
	}), nil
}

// LatestFrontpageSummary returns the single most recent frontpage summary of
// a company for the given document type.
func (db DB) LatestFrontpageSummary(
	ctx context.Context,
	companyID uuid.UUID,
	documentType string,
) (*Artifact, error) {
	if documentType == "" {
		return nil, &BadInputError{Reason: "document type must be provided"}
	}

	condition, args := exactStageCondition(StageFrontpageSummary)

	artifact, err := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("company_id = ?", companyID).
		Where(
			"((stage IS NOT NULL AND document_type = ?) OR stage IS NULL)",
			documentType,
		).
		Where(condition, args...).
		Order(latestOrdering).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get latest frontpage summary",
			fmt.Sprintf("company_id=%s, document_type=%s", companyID, documentType),
		)
	}

	return &artifact, nil
}

// LatestGroupAnalyses returns the most recent group-level analyses for a
// company group, newest first, capped at limit. There is no document-type
// axis at group scope.
func (db DB) LatestGroupAnalyses(
	ctx context.Context,
	groupID uuid.UUID,
	limit int,
) ([]Artifact, error) {
	if limit <= 0 {
		limit = 1
	}

	condition, args := stageCondition(StageGroupAnalysis)

	analyses, err := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("company_group_id = ?", groupID).
		Where(condition, args...).
		Order(latestOrdering).
		Limit(limit).
		Find(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get latest group analyses",
			fmt.Sprintf("company_group_id=%s", groupID),
		)
	}

	return analyses, nil
}

// LatestGroupFrontpage returns the single most recent group frontpage
// artifact for a company group.
func (db DB) LatestGroupFrontpage(
	ctx context.Context,
	groupID uuid.UUID,
) (*Artifact, error) {
	condition, args := stageCondition(StageGroupFrontpage)

	artifact, err := gorm.G[Artifact](db.dbGorm).
		Select(strings.Join(artifactMetadataColumns, ", ")).
		Where("company_group_id = ?", groupID).
		Where(condition, args...).
		Order(latestOrdering).
		First(ctx)
	if err != nil {
		return nil, wrapErrorWithDetails(
			err,
			"get latest group frontpage",
			fmt.Sprintf("company_group_id=%s", groupID),
		)
	}

	return &artifact, nil
}

// latestPerKey keeps the first candidate seen for each grouping key. Input
// must already be ordered newest first; output preserves that order.
func latestPerKey(
	candidates []Artifact,
	keyOf func(Artifact) string,
) []Artifact {
	winners := make([]Artifact, 0, len(candidates))
	seen := map[string]bool{}
	for _, candidate := range candidates {
		key := keyOf(candidate)
		if seen[key] {
			continue
		}
		seen[key] = true
		winners = append(winners, candidate)
	}

	return winners
}
