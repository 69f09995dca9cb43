package store

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sf1tzp/symbology-sub000/orm"
)

func TestLatestSingleSummariesByTicker(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, &orm.Company{Ticker: "ACME", Name: "Acme"})
	require.NoError(t, err)

	older, _, err := svc.CreateArtifact(ctx, CreateArtifactInput{
		Body:         "old risk take",
		Ticker:       "ACME",
		Stage:        ptr(orm.StageSingleSummary),
		DocumentType: ptr("risk_factors"),
	})
	require.NoError(t, err)

	newer, _, err := svc.CreateArtifact(ctx, CreateArtifactInput{
		Body:         "new risk take",
		Ticker:       "ACME",
		Stage:        ptr(orm.StageSingleSummary),
		DocumentType: ptr("risk_factors"),
	})
	require.NoError(t, err)

	mda, _, err := svc.CreateArtifact(ctx, CreateArtifactInput{
		Body:         "management discussion take",
		Ticker:       "ACME",
		Stage:        ptr(orm.StageSingleSummary),
		DocumentType: ptr("mda"),
	})
	require.NoError(t, err)

	summaries, err := svc.LatestSingleSummaries(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := map[string]bool{}
	for _, s := range summaries {
		byID[s.ID.String()] = true
	}
	assert.True(t, byID[newer.ID.String()])
	assert.True(t, byID[mda.ID.String()])
	assert.False(t, byID[older.ID.String()])
}

func TestLatestAggregateSummariesByTicker(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, &orm.Company{Ticker: "ACME", Name: "Acme"})
	require.NoError(t, err)

	// A legacy row with no stage column matches through its description.
	legacy, _, err := svc.CreateArtifact(ctx, CreateArtifactInput{
		Body:        "older pipeline output",
		Ticker:      "ACME",
		Description: "ACME risk_factors aggregate summary",
	})
	require.NoError(t, err)

	current, _, err := svc.CreateArtifact(ctx, CreateArtifactInput{
		Body:         "current pipeline output",
		Ticker:       "ACME",
		Stage:        ptr(orm.StageAggregateSummary),
		DocumentType: ptr("risk_factors"),
		FormType:     ptr("10-K"),
	})
	require.NoError(t, err)

	summaries, err := svc.LatestAggregateSummaries(ctx, "ACME")
	require.NoError(t, err)
	require.Len(t, summaries, 2)

	byID := map[string]bool{}
	for _, s := range summaries {
		byID[s.ID.String()] = true
	}
	assert.True(t, byID[legacy.ID.String()])
	assert.True(t, byID[current.ID.String()])
}

func TestLatestFrontpageSummaryByTicker(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, &orm.Company{Ticker: "ACME", Name: "Acme"})
	require.NoError(t, err)

	_, _, err = svc.CreateArtifact(ctx, CreateArtifactInput{
		Body:         "first frontpage",
		Ticker:       "ACME",
		Stage:        ptr(orm.StageFrontpageSummary),
		DocumentType: ptr("risk_factors"),
	})
	require.NoError(t, err)

	latest, _, err := svc.CreateArtifact(ctx, CreateArtifactInput{
		Body:         "second frontpage",
		Ticker:       "ACME",
		Stage:        ptr(orm.StageFrontpageSummary),
		DocumentType: ptr("risk_factors"),
	})
	require.NoError(t, err)

	got, err := svc.LatestFrontpageSummary(ctx, "ACME", "risk_factors")
	require.NoError(t, err)
	assert.Equal(t, latest.ID, got.ID)

	_, err = svc.LatestFrontpageSummary(ctx, "ACME", "mda")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestLatestGroupAnalyses(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	group, err := svc.CreateCompanyGroup(ctx, &orm.CompanyGroup{Name: "Megacaps"})
	require.NoError(t, err)

	var lastID string
	for _, body := range []string{"first pass", "second pass", "third pass"} {
		artifact, _, createErr := svc.CreateArtifact(ctx, CreateArtifactInput{
			Body:           body,
			CompanyGroupID: &group.ID,
			Stage:          ptr(orm.StageGroupAnalysis),
		})
		require.NoError(t, createErr)
		lastID = artifact.ID.String()
	}

	analyses, err := svc.LatestGroupAnalyses(ctx, group.ID, 2)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, lastID, analyses[0].ID.String())

	all, err := svc.ListGroupArtifacts(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestListArtifactsByClassification(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, &orm.Company{Ticker: "ACME", Name: "Acme"})
	require.NoError(t, err)

	annual, _, err := svc.CreateArtifact(ctx, CreateArtifactInput{
		Body:         "annual aggregate",
		Ticker:       "ACME",
		Stage:        ptr(orm.StageAggregateSummary),
		DocumentType: ptr("risk_factors"),
		FormType:     ptr("10-K"),
	})
	require.NoError(t, err)

	_, _, err = svc.CreateArtifact(ctx, CreateArtifactInput{
		Body:         "quarterly aggregate",
		Ticker:       "ACME",
		Stage:        ptr(orm.StageAggregateSummary),
		DocumentType: ptr("risk_factors"),
		FormType:     ptr("10-Q"),
	})
	require.NoError(t, err)

	artifacts, err := svc.ListArtifactsByClassification(ctx, "risk_factors", "10-K")
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, annual.ID, artifacts[0].ID)
}
