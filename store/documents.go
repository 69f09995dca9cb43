package store

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sf1tzp/symbology-sub000/blobstore"
	"github.com/sf1tzp/symbology-sub000/orm"
)

// IngestDocumentInput carries one filing section for ingestion: its scope,
// classification and raw content.
type IngestDocumentInput struct {
	Ticker       string
	FilingID     *uuid.UUID
	DocumentType string
	Content      []byte
}

// IngestDocument persists a filing section: the raw bytes go to the blob
// store, the row records their content hash. The document id is minted up
// front so the blob path and the row agree.
func (s *Service) IngestDocument(
	ctx context.Context,
	input IngestDocumentInput,
) (*orm.Document, error) {
	if len(input.Content) == 0 {
		return nil, invalidInput("document content must not be empty")
	}

	company, err := s.db.GetCompanyByTicker(ctx, input.Ticker)
	if err != nil {
		return nil, wrapServiceError(err, "resolving ticker")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, wrapServiceError(err, "assigning document id")
	}

	ref := blobstore.DocumentRef{Ticker: company.Ticker, DocumentID: id}
	hash, err := s.blobs.StoreDocument(ref, input.Content)
	if err != nil {
		return nil, wrapServiceError(err, "storing document content")
	}

	document, err := s.db.CreateDocument(ctx, &orm.Document{
		ID:           id,
		FilingID:     input.FilingID,
		CompanyID:    company.ID,
		DocumentType: input.DocumentType,
		ContentHash:  hash,
	})
	if err != nil {
		// The blob is orphaned otherwise; removal failures are only logged
		// since the row error is what the caller needs.
		if cleanupErr := s.blobs.DeleteDocument(ref, hash); cleanupErr != nil {
			log.Warn().
				Err(cleanupErr).
				Str("document_id", id.String()).
				Msg("failed to remove orphaned document content")
		}

		return nil, wrapServiceError(err, "creating document")
	}

	log.Info().
		Str("document_id", document.ID.String()).
		Str("ticker", company.Ticker).
		Str("document_type", document.DocumentType).
		Str("content_hash", hash[:12]).
		Msg("document ingested")

	return document, nil
}

// GetDocument retrieves one document row.
func (s *Service) GetDocument(
	ctx context.Context,
	id uuid.UUID,
) (*orm.Document, error) {
	document, err := s.db.GetDocument(ctx, id)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving document")
	}

	return document, nil
}

// GetDocumentContent retrieves the raw bytes of a document from the blob
// store, resolving the ticker and content hash through the row.
func (s *Service) GetDocumentContent(
	ctx context.Context,
	id uuid.UUID,
) (*orm.Document, []byte, error) {
	document, err := s.db.GetDocument(ctx, id)
	if err != nil {
		return nil, nil, wrapServiceError(err, "retrieving document")
	}
	if document.ContentHash == "" {
		return nil, nil, &ServiceError{
			Status:  http.StatusNotFound,
			Message: "document has no stored content",
			Inner:   blobstore.ErrDocumentNotFound,
		}
	}

	company, err := s.db.GetCompany(ctx, document.CompanyID)
	if err != nil {
		return nil, nil, wrapServiceError(err, "resolving document company")
	}

	ref := blobstore.DocumentRef{Ticker: company.Ticker, DocumentID: document.ID}
	content, err := s.blobs.GetDocument(ref, document.ContentHash)
	if err != nil {
		if errors.Is(err, blobstore.ErrDocumentNotFound) {
			return nil, nil, &ServiceError{
				Status:  http.StatusNotFound,
				Message: "document content not found",
				Inner:   err,
			}
		}

		return nil, nil, wrapServiceError(err, "retrieving document content")
	}

	return document, content, nil
}

// ListDocuments returns the documents of one filing.
func (s *Service) ListDocuments(
	ctx context.Context,
	filingID uuid.UUID,
) ([]orm.Document, error) {
	documents, err := s.db.ListDocumentsByFiling(ctx, filingID)
	if err != nil {
		return nil, wrapServiceError(err, "listing documents")
	}

	return documents, nil
}

// DocumentsOf returns the source documents an artifact was derived from.
func (s *Service) DocumentsOf(
	ctx context.Context,
	artifactID uuid.UUID,
) ([]orm.Document, error) {
	documents, err := s.db.DocumentsOf(ctx, artifactID)
	if err != nil {
		return nil, wrapServiceError(err, "retrieving artifact documents")
	}

	return documents, nil
}

// ArtifactsForDocuments returns metadata for artifacts derived from any of
// the given documents.
func (s *Service) ArtifactsForDocuments(
	ctx context.Context,
	documentIDs []uuid.UUID,
) ([]orm.Artifact, error) {
	artifacts, err := s.db.ListArtifactsByDocuments(ctx, documentIDs)
	if err != nil {
		return nil, wrapServiceError(err, "listing artifacts by documents")
	}

	return artifacts, nil
}
