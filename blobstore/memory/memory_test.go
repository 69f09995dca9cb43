package memory

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sf1tzp/symbology-sub000/blobstore"
)

func TestMemoryStore(t *testing.T) {
	store := New()

	ref := blobstore.DocumentRef{
		Ticker:     "MSFT",
		DocumentID: uuid.New(),
	}
	content := []byte("Item 1A. Risk Factors")

	hash, err := store.StoreDocument(ref, content)
	require.NoError(t, err)
	assert.Len(t, hash, 64)
	assert.Equal(t, 1, store.Count())

	retrieved, err := store.GetDocument(ref, hash)
	require.NoError(t, err)
	assert.Equal(t, content, retrieved)

	// Mutating the returned slice must not affect the stored copy.
	retrieved[0] = 'X'
	again, err := store.GetDocument(ref, hash)
	require.NoError(t, err)
	assert.Equal(t, content, again)

	_, err = store.GetDocument(ref, "deadbeef")
	assert.ErrorIs(t, err, blobstore.ErrDocumentNotFound)

	require.NoError(t, store.DeleteDocument(ref, hash))
	assert.Equal(t, 0, store.Count())
	assert.ErrorIs(
		t,
		store.DeleteDocument(ref, hash),
		blobstore.ErrDocumentNotFound,
	)
}

func TestMemoryStoreSameContentTwoRefs(t *testing.T) {
	store := New()
	content := []byte("shared section text")

	first := blobstore.DocumentRef{Ticker: "KO", DocumentID: uuid.New()}
	second := blobstore.DocumentRef{Ticker: "PEP", DocumentID: uuid.New()}

	hashFirst, err := store.StoreDocument(first, content)
	require.NoError(t, err)
	hashSecond, err := store.StoreDocument(second, content)
	require.NoError(t, err)

	// Content hashes agree but the copies are stored per reference.
	assert.Equal(t, hashFirst, hashSecond)
	assert.Equal(t, 2, store.Count())
}
