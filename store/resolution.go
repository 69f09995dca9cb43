package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/sf1tzp/symbology-sub000/orm"
)

// LatestSingleSummaries returns the current single-document summary per
// document type for a company, resolved by ticker.
func (s *Service) LatestSingleSummaries(
	ctx context.Context,
	ticker string,
) ([]orm.Artifact, error) {
	company, err := s.db.GetCompanyByTicker(ctx, ticker)
	if err != nil {
		return nil, wrapServiceError(err, "resolving ticker")
	}

	summaries, err := s.db.LatestSingleSummaries(ctx, company.ID)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving single summaries")
	}

	return summaries, nil
}

// LatestAggregateSummaries returns the current aggregate summary per
// classification for a company, resolved by ticker.
func (s *Service) LatestAggregateSummaries(
	ctx context.Context,
	ticker string,
) ([]orm.Artifact, error) {
	company, err := s.db.GetCompanyByTicker(ctx, ticker)
	if err != nil {
		return nil, wrapServiceError(err, "resolving ticker")
	}

	summaries, err := s.db.LatestAggregateSummaries(ctx, company.ID)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving aggregate summaries")
	}

	return summaries, nil
}

// LatestFrontpageSummary returns the most recent frontpage summary of a
// company for one document type.
func (s *Service) LatestFrontpageSummary(
	ctx context.Context,
	ticker, documentType string,
) (*orm.Artifact, error) {
	company, err := s.db.GetCompanyByTicker(ctx, ticker)
	if err != nil {
		return nil, wrapServiceError(err, "resolving ticker")
	}

	summary, err := s.db.LatestFrontpageSummary(ctx, company.ID, documentType)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving frontpage summary")
	}

	return summary, nil
}

// LatestGroupAnalyses returns the most recent analyses of a company group,
// newest first.
func (s *Service) LatestGroupAnalyses(
	ctx context.Context,
	groupID uuid.UUID,
	limit int,
) ([]orm.Artifact, error) {
	analyses, err := s.db.LatestGroupAnalyses(ctx, groupID, limit)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving group analyses")
	}

	return analyses, nil
}

// LatestGroupFrontpage returns the most recent group frontpage artifact.
func (s *Service) LatestGroupFrontpage(
	ctx context.Context,
	groupID uuid.UUID,
) (*orm.Artifact, error) {
	artifact, err := s.db.LatestGroupFrontpage(ctx, groupID)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving group frontpage")
	}

	return artifact, nil
}

// ListArtifacts returns metadata for every artifact owned by the company,
// newest first.
func (s *Service) ListArtifacts(
	ctx context.Context,
	ticker string,
) ([]orm.Artifact, error) {
	company, err := s.db.GetCompanyByTicker(ctx, ticker)
	if err != nil {
		return nil, wrapServiceError(err, "resolving ticker")
	}

	artifacts, err := s.db.ListArtifactsByCompany(ctx, company.ID)
	if err != nil {
		return nil, wrapServiceError(err, "listing artifacts")
	}

	return artifacts, nil
}

// ListGroupArtifacts returns metadata for every artifact owned by the group,
// newest first.
func (s *Service) ListGroupArtifacts(
	ctx context.Context,
	groupID uuid.UUID,
) ([]orm.Artifact, error) {
	artifacts, err := s.db.ListArtifactsByGroup(ctx, groupID)
	if err != nil {
		return nil, wrapServiceError(err, "listing group artifacts")
	}

	return artifacts, nil
}

// ListArtifactsByClassification returns metadata for artifacts of one
// document type, optionally narrowed by form type.
func (s *Service) ListArtifactsByClassification(
	ctx context.Context,
	documentType, formType string,
) ([]orm.Artifact, error) {
	artifacts, err := s.db.ListArtifactsByClassification(ctx, documentType, formType)
	if err != nil {
		return nil, wrapServiceError(err, "listing artifacts by classification")
	}

	return artifacts, nil
}
