package collector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMissingFileIsEmptySequence(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "queue.json"))

	items, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "queue.json"))

	lat, lon := -23.5505, -46.6333
	assetID := uint(42)
	items := []CollectedItem{
		{
			ID:                   1001,
			AssetID:              &assetID,
			TagCode:              "PAT-100001",
			CollectedAt:          time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
			CollectorUserID:      7,
			Latitude:             &lat,
			Longitude:            &lon,
			ReconciliationStatus: StatusMatched,
			IsSynced:             false,
		},
		{
			ID:                   1002,
			TagCode:              "PAT-100002",
			CollectedAt:          time.Date(2025, 6, 1, 10, 31, 0, 0, time.UTC),
			CollectorUserID:      7,
			ReconciliationStatus: StatusNotFound,
			Note:                 "descricao: Cadeira, setor: TI",
			IsSynced:             true,
		},
	}

	require.NoError(t, store.Save(items))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, items, loaded)
}

func TestFileStoreOverwritesWholesale(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "queue.json"))

	require.NoError(t, store.Save([]CollectedItem{{ID: 1, TagCode: "A"}, {ID: 2, TagCode: "B"}}))
	require.NoError(t, store.Save([]CollectedItem{{ID: 3, TagCode: "C"}}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "C", loaded[0].TagCode)
}

func TestFileStoreQueueReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")

	q1, err := NewQueue(NewFileStore(path), seqIDGen(), &fakeInserter{})
	require.NoError(t, err)
	_, err = q1.Append(testCandidate("PAT-100001"))
	require.NoError(t, err)
	_, err = q1.Append(testCandidate("PAT-100002"))
	require.NoError(t, err)

	// A fresh queue over the same slot sees the identical sequence.
	q2, err := NewQueue(NewFileStore(path), seqIDGen(), &fakeInserter{})
	require.NoError(t, err)
	assert.Equal(t, q1.List(), q2.List())
	assert.Equal(t, 2, q2.PendingCount())
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "queue.json"))

	require.NoError(t, store.Save([]CollectedItem{{ID: 1, TagCode: "A"}}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "queue.json", entries[0].Name())
}
