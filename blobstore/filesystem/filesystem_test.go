package filesystem

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sf1tzp/symbology-sub000/blobstore"
)

func TestFilesystemStore(t *testing.T) {
	store, err := New(t.TempDir() + "/documents")
	require.NoError(t, err)

	ref := blobstore.DocumentRef{
		Ticker:     "AAPL",
		DocumentID: uuid.New(),
	}
	content := []byte("<html>Item 7. Management's Discussion and Analysis</html>")

	var hash string
	t.Run("StoreDocument", func(t *testing.T) {
		hash, err = store.StoreDocument(ref, content)
		require.NoError(t, err)
		assert.Len(t, hash, 64)

		expectedPath := filepath.Join(
			store.baseDir,
			ref.Ticker,
			ref.DocumentID.String(),
			hash+".html",
		)
		_, statErr := os.Stat(expectedPath)
		assert.NoError(t, statErr)
	})

	t.Run("GetDocument", func(t *testing.T) {
		retrieved, getErr := store.GetDocument(ref, hash)
		require.NoError(t, getErr)
		assert.Equal(t, content, retrieved)
	})

	t.Run("GetDocumentNotFound", func(t *testing.T) {
		_, getErr := store.GetDocument(ref, "deadbeef")
		assert.ErrorIs(t, getErr, blobstore.ErrDocumentNotFound)
	})

	t.Run("DeleteDocument", func(t *testing.T) {
		require.NoError(t, store.DeleteDocument(ref, hash))
		_, getErr := store.GetDocument(ref, hash)
		assert.ErrorIs(t, getErr, blobstore.ErrDocumentNotFound)

		assert.ErrorIs(
			t,
			store.DeleteDocument(ref, hash),
			blobstore.ErrDocumentNotFound,
		)
	})

	t.Run("StoreEmptyContent", func(t *testing.T) {
		_, storeErr := store.StoreDocument(ref, nil)
		assert.Error(t, storeErr)
	})
}
