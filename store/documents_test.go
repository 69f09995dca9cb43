package store

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sf1tzp/symbology-sub000/orm"
)

func TestIngestAndRetrieveDocument(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, &orm.Company{Ticker: "ACME", Name: "Acme"})
	require.NoError(t, err)

	filing, err := svc.CreateFiling(ctx, "ACME", &orm.Filing{
		AccessionNumber: "0000320193-25-000001",
		FormType:        "10-K",
		FiledAt:         time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	content := []byte("<html>Item 1A. Risk Factors</html>")
	document, err := svc.IngestDocument(ctx, IngestDocumentInput{
		Ticker:       "ACME",
		FilingID:     &filing.ID,
		DocumentType: "risk_factors",
		Content:      content,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, document.ContentHash)
	assert.Equal(t, 1, blobs.Count())

	row, got, err := svc.GetDocumentContent(ctx, document.ID)
	require.NoError(t, err)
	assert.Equal(t, content, got)
	assert.Equal(t, document.ID, row.ID)

	documents, err := svc.ListDocuments(ctx, filing.ID)
	require.NoError(t, err)
	require.Len(t, documents, 1)
}

func TestIngestDocumentValidation(t *testing.T) {
	svc, blobs := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, &orm.Company{Ticker: "ACME", Name: "Acme"})
	require.NoError(t, err)

	_, err = svc.IngestDocument(ctx, IngestDocumentInput{
		Ticker: "ACME", DocumentType: "risk_factors",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))

	_, err = svc.IngestDocument(ctx, IngestDocumentInput{
		Ticker:       "NOPE",
		DocumentType: "risk_factors",
		Content:      []byte("content"),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))

	// A failed row insert must not leave the blob behind.
	_, err = svc.IngestDocument(ctx, IngestDocumentInput{
		Ticker:  "ACME",
		Content: []byte("content"),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
	assert.Equal(t, 0, blobs.Count())
}

func TestGetDocumentContentMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.GetDocumentContent(context.Background(), uuid.Must(uuid.NewV7()))
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, StatusOf(err))
}

func TestArtifactsForDocuments(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCompany(ctx, &orm.Company{Ticker: "ACME", Name: "Acme"})
	require.NoError(t, err)

	document, err := svc.IngestDocument(ctx, IngestDocumentInput{
		Ticker:       "ACME",
		DocumentType: "risk_factors",
		Content:      []byte("section text"),
	})
	require.NoError(t, err)

	artifact, _, err := svc.CreateArtifact(ctx, CreateArtifactInput{
		Body:              "summary of the section",
		Ticker:            "ACME",
		SourceDocumentIDs: []uuid.UUID{document.ID},
	})
	require.NoError(t, err)

	artifacts, err := svc.ArtifactsForDocuments(ctx, []uuid.UUID{document.ID})
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, artifact.ID, artifacts[0].ID)

	documents, err := svc.DocumentsOf(ctx, artifact.ID)
	require.NoError(t, err)
	require.Len(t, documents, 1)
	assert.Equal(t, document.ID, documents[0].ID)
}
