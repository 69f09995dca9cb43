// Package blobstore persists raw source-document content (filing sections as
// extracted by ingestion) outside the relational store. Rows in the documents
// table carry only the content hash; the bytes live behind this interface.
package blobstore

import (
	"errors"

	"github.com/google/uuid"
)

// ErrDocumentNotFound is returned when no content exists for a reference.
var ErrDocumentNotFound = errors.New("document content not found")

// DocumentRef locates a document's content within a store.
type DocumentRef struct {
	Ticker     string
	DocumentID uuid.UUID
}

// Store is implemented by every blob persister.
type Store interface {
	// StoreDocument writes content and returns its sha256 hex hash, which
	// callers record on the document row.
	StoreDocument(ref DocumentRef, content []byte) (string, error)
	GetDocument(ref DocumentRef, hash string) ([]byte, error)
	DeleteDocument(ref DocumentRef, hash string) error
}
