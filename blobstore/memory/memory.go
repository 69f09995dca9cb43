package memory

import (
	"fmt"
	"sync"

	"github.com/sf1tzp/symbology-sub000/blobstore"
	"github.com/sf1tzp/symbology-sub000/fingerprint"
)

// MemoryStore implements the blob store in memory. Used only for testing.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string][]byte
}

// New creates a memory-backed document store.
func New() *MemoryStore {
	return &MemoryStore{
		documents: make(map[string][]byte),
	}
}

// StoreDocument stores content in memory and returns its content hash.
func (s *MemoryStore) StoreDocument(
	ref blobstore.DocumentRef,
	content []byte,
) (string, error) {
	hash, ok := fingerprint.Compute(string(content))
	if !ok {
		return "", fmt.Errorf("refusing to store empty document content")
	}

	key := s.getDocumentKey(ref, hash)

	s.mu.Lock()
	s.documents[key] = content
	s.mu.Unlock()

	return hash, nil
}

// GetDocument retrieves stored content by reference and hash.
func (s *MemoryStore) GetDocument(
	ref blobstore.DocumentRef,
	hash string,
) ([]byte, error) {
	key := s.getDocumentKey(ref, hash)

	s.mu.RLock()
	content, exists := s.documents[key]
	s.mu.RUnlock()

	if !exists {
		return nil, blobstore.ErrDocumentNotFound
	}

	// Return a copy to prevent external modifications
	result := make([]byte, len(content))
	copy(result, content)

	return result, nil
}

// DeleteDocument removes stored content.
func (s *MemoryStore) DeleteDocument(
	ref blobstore.DocumentRef,
	hash string,
) error {
	key := s.getDocumentKey(ref, hash)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[key]; !exists {
		return blobstore.ErrDocumentNotFound
	}

	delete(s.documents, key)

	return nil
}

// Count returns the number of documents stored (useful for testing)
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.documents)
}

func (s *MemoryStore) getDocumentKey(
	ref blobstore.DocumentRef,
	hash string,
) string {
	return fmt.Sprintf("%s/%s/%s", ref.Ticker, ref.DocumentID, hash)
}
