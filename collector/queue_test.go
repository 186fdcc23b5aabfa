package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventario-app/types"
)

// memStore keeps the sequence in memory and can be told to fail writes.
type memStore struct {
	items    []CollectedItem
	failSave bool
	saves    int
}

func (s *memStore) Load() ([]CollectedItem, error) {
	out := make([]CollectedItem, len(s.items))
	copy(out, s.items)
	return out, nil
}

func (s *memStore) Save(items []CollectedItem) error {
	if s.failSave {
		return errors.New("disk full")
	}
	s.saves++
	s.items = make([]CollectedItem, len(items))
	copy(s.items, items)
	return nil
}

// fakeInserter records batches and can fail or run a hook mid-call.
type fakeInserter struct {
	calls    int
	batches  [][]RemoteItem
	fail     bool
	onInsert func()
}

func (f *fakeInserter) InsertBatch(ctx context.Context, items []RemoteItem) error {
	f.calls++
	f.batches = append(f.batches, items)
	if f.onInsert != nil {
		f.onInsert()
	}
	if f.fail {
		return errors.New("remote unavailable")
	}
	return nil
}

func seqIDGen() func() int64 {
	var next int64
	return func() int64 {
		next++
		return next
	}
}

func testCandidate(tag string) Candidate {
	return Candidate{
		TagCode:              tag,
		CollectedAt:          time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
		CollectorUserID:      7,
		ReconciliationStatus: StatusNotFound,
	}
}

func newTestQueue(t *testing.T, remote BulkInserter) (*Queue, *memStore) {
	t.Helper()
	store := &memStore{}
	q, err := NewQueue(store, seqIDGen(), remote)
	require.NoError(t, err)
	return q, store
}

func TestQueueAppendAssignsLocalFields(t *testing.T) {
	q, store := newTestQueue(t, &fakeInserter{})

	item, err := q.Append(testCandidate("PAT-100001"))
	require.NoError(t, err)

	assert.Equal(t, types.SnowflakeID(1), item.ID)
	assert.False(t, item.IsSynced)
	assert.Equal(t, "PAT-100001", item.TagCode)

	// Write-through: the store saw the mutation immediately.
	require.Len(t, store.items, 1)
	assert.Equal(t, item, store.items[0])
}

func TestQueueAppendRollsBackOnStoreFailure(t *testing.T) {
	store := &memStore{failSave: true}
	q, err := NewQueue(store, seqIDGen(), &fakeInserter{})
	require.NoError(t, err)

	_, err = q.Append(testCandidate("PAT-100001"))
	require.Error(t, err)

	// An error return guarantees the item was not kept.
	assert.Empty(t, q.List())
	assert.Equal(t, 0, q.PendingCount())
	assert.False(t, q.HasPending("PAT-100001"))
}

func TestQueueListReturnsCopy(t *testing.T) {
	q, _ := newTestQueue(t, &fakeInserter{})
	_, err := q.Append(testCandidate("PAT-100001"))
	require.NoError(t, err)

	view := q.List()
	view[0].TagCode = "mutated"

	assert.Equal(t, "PAT-100001", q.List()[0].TagCode)
}

func TestQueueHasPendingOnlyForUnsynced(t *testing.T) {
	remote := &fakeInserter{}
	q, _ := newTestQueue(t, remote)

	_, err := q.Append(testCandidate("PAT-100001"))
	require.NoError(t, err)
	assert.True(t, q.HasPending("PAT-100001"))
	assert.False(t, q.HasPending("PAT-999999"))

	_, err = q.Sync(context.Background())
	require.NoError(t, err)

	// Synced items no longer block a new collection of the same tag.
	assert.False(t, q.HasPending("PAT-100001"))
}

func TestSyncAllOrNothingOnFailure(t *testing.T) {
	remote := &fakeInserter{fail: true}
	q, _ := newTestQueue(t, remote)

	_, err := q.Append(testCandidate("PAT-100001"))
	require.NoError(t, err)
	_, err = q.Append(testCandidate("PAT-100002"))
	require.NoError(t, err)

	before := q.PendingCount()
	_, err = q.Sync(context.Background())
	require.Error(t, err)

	assert.Equal(t, before, q.PendingCount())
	for _, item := range q.List() {
		assert.False(t, item.IsSynced)
	}
}

func TestSyncFlipsExactlyTheBatchAndStripsLocalFields(t *testing.T) {
	remote := &fakeInserter{}
	q, store := newTestQueue(t, remote)

	_, err := q.Append(testCandidate("PAT-100001"))
	require.NoError(t, err)
	_, err = q.Append(testCandidate("PAT-100002"))
	require.NoError(t, err)

	count, err := q.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 0, q.PendingCount())

	require.Equal(t, 1, remote.calls)
	require.Len(t, remote.batches[0], 2)
	assert.Equal(t, "PAT-100001", remote.batches[0][0].TagCode)
	assert.Equal(t, "PAT-100002", remote.batches[0][1].TagCode)

	// Flipped flags reached the store.
	for _, item := range store.items {
		assert.True(t, item.IsSynced)
	}
}

func TestSyncSetDifferenceKeepsConcurrentAppendPending(t *testing.T) {
	remote := &fakeInserter{}
	q, _ := newTestQueue(t, remote)

	_, err := q.Append(testCandidate("PAT-A"))
	require.NoError(t, err)
	_, err = q.Append(testCandidate("PAT-B"))
	require.NoError(t, err)

	// PAT-C arrives while the remote call is in flight.
	remote.onInsert = func() {
		_, err := q.Append(testCandidate("PAT-C"))
		require.NoError(t, err)
	}

	count, err := q.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	assert.Equal(t, 1, q.PendingCount())
	for _, item := range q.List() {
		if item.TagCode == "PAT-C" {
			assert.False(t, item.IsSynced)
		} else {
			assert.True(t, item.IsSynced)
		}
	}
}

func TestSyncPersistFailureAfterRemoteSuccess(t *testing.T) {
	remote := &fakeInserter{}
	store := &memStore{}
	q, err := NewQueue(store, seqIDGen(), remote)
	require.NoError(t, err)

	_, err = q.Append(testCandidate("PAT-100001"))
	require.NoError(t, err)

	store.failSave = true
	count, err := q.Sync(context.Background())

	// The sync itself succeeded; the error names the persist step.
	require.ErrorIs(t, err, ErrSyncPersist)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, remote.calls)
	assert.True(t, q.List()[0].IsSynced)
	assert.Equal(t, 0, q.PendingCount())
}

func TestSyncEmptyQueueSkipsRemoteCall(t *testing.T) {
	remote := &fakeInserter{}
	q, _ := newTestQueue(t, remote)

	count, err := q.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0, remote.calls)
}

func TestSyncedFlagIsMonotonic(t *testing.T) {
	remote := &fakeInserter{}
	q, _ := newTestQueue(t, remote)

	_, err := q.Append(testCandidate("PAT-100001"))
	require.NoError(t, err)
	_, err = q.Sync(context.Background())
	require.NoError(t, err)

	// A failing retry must not revert already-synced items.
	remote.fail = true
	_, err = q.Sync(context.Background())
	require.NoError(t, err) // nothing pending, no remote call

	assert.True(t, q.List()[0].IsSynced)
}
