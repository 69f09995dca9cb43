package orm

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sf1tzp/symbology-sub000/fingerprint"
)

func TestCreateArtifactComputesFingerprint(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	artifact, created, err := db.CreateArtifact(ctx, &Artifact{Body: "hello"})
	require.NoError(t, err)
	assert.True(t, created)
	require.NotNil(t, artifact.Fingerprint)
	assert.Equal(
		t,
		"2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		*artifact.Fingerprint,
	)
	assert.NotEqual(t, uuid.Nil, artifact.ID)
}

func TestCreateArtifactDedupIdempotence(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, created, err := db.CreateArtifact(ctx, &Artifact{Body: "hello"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := db.CreateArtifact(ctx, &Artifact{
		Body:    "hello",
		Summary: "this summary is never stored, the existing row wins",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Empty(t, second.Summary)
}

func TestCreateArtifactEmptyBodyHasNoFingerprint(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, created, err := db.CreateArtifact(ctx, &Artifact{Description: "one"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Nil(t, first.Fingerprint)

	// Unhashable records never deduplicate against each other.
	second, created, err := db.CreateArtifact(ctx, &Artifact{Description: "two"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCreateArtifactValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		draft *Artifact
	}{
		{
			name:  "nil artifact",
			draft: nil,
		},
		{
			name:  "form type without document type",
			draft: &Artifact{Body: "x", FormType: ptr("10-K")},
		},
		{
			name: "unknown stage",
			draft: &Artifact{
				Body:  "y",
				Stage: ptr(Stage("summarize_everything")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := db.CreateArtifact(ctx, tt.draft)
			var badInput *BadInputError
			assert.ErrorAs(t, err, &badInput)
		})
	}
}

func TestGetArtifactNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.GetArtifact(ctx, uuid.New())
	assert.True(t, IsNotFound(err))
}

func TestGetArtifactByFingerprintPrefix(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	artifact, _, err := db.CreateArtifact(ctx, &Artifact{Body: "hello"})
	require.NoError(t, err)

	// Full digest, then a short unique prefix.
	byFull, err := db.GetArtifactByFingerprint(ctx, *artifact.Fingerprint)
	require.NoError(t, err)
	assert.Equal(t, artifact.ID, byFull.ID)

	byPrefix, err := db.GetArtifactByFingerprint(ctx, (*artifact.Fingerprint)[:8])
	require.NoError(t, err)
	assert.Equal(t, artifact.ID, byPrefix.ID)

	_, err = db.GetArtifactByFingerprint(ctx, "ffffffff")
	assert.True(t, IsNotFound(err))

	_, err = db.GetArtifactByFingerprint(ctx, "NOT-HEX")
	var badInput *BadInputError
	assert.ErrorAs(t, err, &badInput)
}

func TestGetArtifactByFingerprintAmbiguousPrefixIsDeterministic(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	lower := "00aa11bb5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b0001"
	higher := "00aa22cc5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b0002"

	_, _, err := db.CreateArtifact(ctx, &Artifact{
		Body:        "first",
		Fingerprint: ptr(higher),
	})
	require.NoError(t, err)
	_, _, err = db.CreateArtifact(ctx, &Artifact{
		Body:        "second",
		Fingerprint: ptr(lower),
	})
	require.NoError(t, err)

	// Both fingerprints share the prefix; the lexicographically smaller one
	// wins regardless of insert order.
	resolved, err := db.GetArtifactByFingerprint(ctx, "00aa")
	require.NoError(t, err)
	require.NotNil(t, resolved.Fingerprint)
	assert.Equal(t, lower, *resolved.Fingerprint)
}

func TestUpdateArtifactRecomputesFingerprint(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	artifact, _, err := db.CreateArtifact(ctx, &Artifact{Body: "hello"})
	require.NoError(t, err)
	originalID := artifact.ID
	originalCreatedAt := artifact.CreatedAt
	originalFingerprint := *artifact.Fingerprint

	updated, err := db.UpdateArtifact(ctx, artifact.ID, ArtifactPatch{
		Body:    ptr("world"),
		Summary: ptr("now about the world"),
	})
	require.NoError(t, err)
	assert.Equal(t, originalID, updated.ID)
	assert.WithinDuration(t, originalCreatedAt, updated.CreatedAt, time.Second)
	require.NotNil(t, updated.Fingerprint)
	assert.NotEqual(t, originalFingerprint, *updated.Fingerprint)
	assert.Equal(t, "now about the world", updated.Summary)

	// Emptying the body clears the fingerprint.
	cleared, err := db.UpdateArtifact(ctx, artifact.ID, ArtifactPatch{
		Body: ptr(""),
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.Fingerprint)
}

func TestUpdateArtifactNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.UpdateArtifact(ctx, uuid.New(), ArtifactPatch{
		Summary: ptr("nope"),
	})
	assert.True(t, IsNotFound(err))
}

func TestDeleteArtifactCascadesEdges(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	x, _, err := db.CreateArtifact(ctx, &Artifact{Body: "x"})
	require.NoError(t, err)
	y, _, err := db.CreateArtifact(ctx, &Artifact{Body: "y"})
	require.NoError(t, err)
	z, _, err := db.CreateArtifact(ctx, &Artifact{Body: "z"})
	require.NoError(t, err)

	// X derived from Y, Z derived from X.
	require.NoError(t, db.LinkArtifacts(ctx, x.ID, y.ID, ""))
	require.NoError(t, db.LinkArtifacts(ctx, z.ID, x.ID, ""))

	deleted, err := db.DeleteArtifact(ctx, x.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	// Both edges are gone, both neighbors remain queryable.
	_, err = db.GetArtifact(ctx, x.ID)
	assert.True(t, IsNotFound(err))

	yRow, err := db.GetArtifact(ctx, y.ID)
	require.NoError(t, err)
	derivatives, err := db.DerivativesOf(ctx, yRow.ID)
	require.NoError(t, err)
	assert.Empty(t, derivatives)

	zRow, err := db.GetArtifact(ctx, z.ID)
	require.NoError(t, err)
	sources, err := db.SourcesOf(ctx, zRow.ID)
	require.NoError(t, err)
	assert.Empty(t, sources)

	// Deleting again is a no-op, not an error.
	deleted, err = db.DeleteArtifact(ctx, x.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestMetadataProjectionOmitsBody(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	company, err := db.CreateCompany(ctx, &Company{Ticker: "aapl", Name: "Apple"})
	require.NoError(t, err)

	_, _, err = db.CreateArtifact(ctx, &Artifact{
		Body:      "a very large body",
		Summary:   "short",
		CompanyID: &company.ID,
	})
	require.NoError(t, err)

	listed, err := db.ListArtifactsByCompany(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Empty(t, listed[0].Body)
	assert.Equal(t, "short", listed[0].Summary)
	assert.NotNil(t, listed[0].Fingerprint)

	meta, err := db.GetArtifactMeta(ctx, listed[0].ID)
	require.NoError(t, err)
	assert.Empty(t, meta.Body)

	full, err := db.GetArtifact(ctx, listed[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "a very large body", full.Body)
}

func TestListArtifactsByDocuments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	company, err := db.CreateCompany(ctx, &Company{Ticker: "msft", Name: "Microsoft"})
	require.NoError(t, err)

	document, err := db.CreateDocument(ctx, &Document{
		CompanyID:    company.ID,
		DocumentType: "mda",
	})
	require.NoError(t, err)
	unrelated, err := db.CreateDocument(ctx, &Document{
		CompanyID:    company.ID,
		DocumentType: "risk_factors",
	})
	require.NoError(t, err)

	artifact, _, err := db.CreateArtifact(ctx, &Artifact{Body: "summary of mda"})
	require.NoError(t, err)
	require.NoError(t, db.LinkDocument(ctx, artifact.ID, document.ID))

	matched, err := db.ListArtifactsByDocuments(
		ctx,
		[]uuid.UUID{document.ID, unrelated.ID},
	)
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, artifact.ID, matched[0].ID)
	assert.Empty(t, matched[0].Body)

	empty, err := db.ListArtifactsByDocuments(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCreateArtifactLostInsertRaceReturnsWinner(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	digest, ok := fingerprint.Compute("contested body")
	require.True(t, ok)

	// A concurrent creator commits the same fingerprint after the dedup
	// pre-check but before the insert. A create callback stands in for the
	// other writer so the insert itself hits the unique index.
	var winner Artifact
	fired := false
	err := db.Gorm().Callback().Create().Before("gorm:create").
		Register("race_winner", func(tx *gorm.DB) {
			if fired {
				return
			}
			if _, isArtifact := tx.Statement.Dest.(*Artifact); !isArtifact {
				return
			}
			fired = true

			winner = Artifact{Body: "contested body", Fingerprint: &digest}
			require.NoError(
				t,
				tx.Session(&gorm.Session{NewDB: true}).Create(&winner).Error,
			)
		})
	require.NoError(t, err)

	artifact, created, err := db.CreateArtifact(ctx, &Artifact{Body: "contested body"})
	require.NoError(t, err)
	require.True(t, fired)

	assert.False(t, created)
	assert.Equal(t, winner.ID, artifact.ID)

	var count int64
	require.NoError(t, db.Gorm().Model(&Artifact{}).
		Where("fingerprint = ?", digest).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
