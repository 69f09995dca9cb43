package filesystem

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sf1tzp/symbology-sub000/blobstore"
	"github.com/sf1tzp/symbology-sub000/fingerprint"
)

// FilesystemStore implements the blob store on local disk.
type FilesystemStore struct {
	baseDir string
}

// New creates a filesystem-backed document store under baseDir.
func New(baseDir string) (*FilesystemStore, error) {
	//nolint:gosec,mnd // Directory permissions 0755 are intentional
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &FilesystemStore{baseDir: baseDir}, nil
}

// StoreDocument writes the content to disk and returns its content hash.
func (s *FilesystemStore) StoreDocument(
	ref blobstore.DocumentRef,
	content []byte,
) (string, error) {
	hash, ok := fingerprint.Compute(string(content))
	if !ok {
		return "", fmt.Errorf("refusing to store empty document content")
	}

	documentPath := s.getDocumentPath(ref, hash)

	//nolint:gosec,mnd // Directory permissions 0755 are intentional
	if err := os.MkdirAll(filepath.Dir(documentPath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	//nolint:mnd // filemode constant
	if err := os.WriteFile(documentPath, content, 0o644); err != nil {
		return hash, fmt.Errorf("failed to write file: %w", err)
	}

	return hash, nil
}

// GetDocument retrieves stored content by reference and hash.
func (s *FilesystemStore) GetDocument(
	ref blobstore.DocumentRef,
	hash string,
) ([]byte, error) {
	documentPath := s.getDocumentPath(ref, hash)
	//nolint:gosec // G304: File path is constructed internally and validated
	content, err := os.ReadFile(documentPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, blobstore.ErrDocumentNotFound
		}

		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	return content, nil
}

// DeleteDocument removes stored content.
func (s *FilesystemStore) DeleteDocument(
	ref blobstore.DocumentRef,
	hash string,
) error {
	documentPath := s.getDocumentPath(ref, hash)
	if err := os.Remove(documentPath); err != nil {
		if os.IsNotExist(err) {
			return blobstore.ErrDocumentNotFound
		}

		return fmt.Errorf("failed to remove document: %w", err)
	}

	return nil
}

// getDocumentPath returns the file path for a document's content.
func (s *FilesystemStore) getDocumentPath(
	ref blobstore.DocumentRef,
	hash string,
) string {
	return filepath.Join(
		s.baseDir,
		ref.Ticker,
		ref.DocumentID.String(),
		hash+".html",
	)
}
