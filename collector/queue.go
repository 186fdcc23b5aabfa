package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"inventario-app/types"
)

// ErrSyncPersist means the remote accepted the batch but the follow-up
// store write failed. The flags stay flipped in memory and the next
// successful write catches up.
var ErrSyncPersist = errors.New("synced remotely but local persist failed")

// Queue owns the ordered local log of collected items. All mutation goes
// through Append and Sync; the log is mirrored to the store on every
// mutation. Built once at startup with its dependencies injected.
type Queue struct {
	mu     sync.Mutex
	items  []CollectedItem
	store  Store
	genID  func() int64
	remote BulkInserter
}

// NewQueue loads the persisted sequence and returns the queue manager.
func NewQueue(store Store, genID func() int64, remote BulkInserter) (*Queue, error) {
	items, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Queue{
		items:  items,
		store:  store,
		genID:  genID,
		remote: remote,
	}, nil
}

// Append assigns a local id and the unsynced flag, appends the item and
// persists the sequence. The append is transactional: when the store
// write fails the in-memory append is rolled back, so an error return
// guarantees the item was not kept.
func (q *Queue) Append(c Candidate) (CollectedItem, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	item := CollectedItem{
		ID:                   types.SnowflakeID(q.genID()),
		AssetID:              c.AssetID,
		TagCode:              c.TagCode,
		CollectedAt:          c.CollectedAt,
		CollectorUserID:      c.CollectorUserID,
		Latitude:             c.Latitude,
		Longitude:            c.Longitude,
		ReconciliationStatus: c.ReconciliationStatus,
		Note:                 c.Note,
		IsSynced:             false,
	}

	q.items = append(q.items, item)
	if err := q.store.Save(q.items); err != nil {
		q.items = q.items[:len(q.items)-1]
		return CollectedItem{}, fmt.Errorf("persist queue: %w", err)
	}
	return item, nil
}

// List returns a copy of the current sequence.
func (q *Queue) List() []CollectedItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]CollectedItem, len(q.items))
	copy(out, q.items)
	return out
}

// PendingCount reports how many items still await sync.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	count := 0
	for _, item := range q.items {
		if !item.IsSynced {
			count++
		}
	}
	return count
}

// HasPending reports whether an unsynced item with this tag code already
// exists. Callers check this before Append so one tag never has two
// pending entries.
func (q *Queue) HasPending(tagCode string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range q.items {
		if item.TagCode == tagCode && !item.IsSynced {
			return true
		}
	}
	return false
}

// Sync submits all currently unsynced items as one batch. On failure no
// local state changes and the whole batch stays retryable. On success
// exactly the snapshotted items are flipped; items appended while the
// remote call was in flight stay unsynced.
func (q *Queue) Sync(ctx context.Context) (int, error) {
	q.mu.Lock()
	var batch []CollectedItem
	for _, item := range q.items {
		if !item.IsSynced {
			batch = append(batch, item)
		}
	}
	q.mu.Unlock()

	if len(batch) == 0 {
		return 0, nil
	}

	payload := make([]RemoteItem, len(batch))
	for i, item := range batch {
		payload[i] = RemoteItem{
			AssetID:              item.AssetID,
			TagCode:              item.TagCode,
			CollectedAt:          item.CollectedAt,
			CollectorUserID:      item.CollectorUserID,
			Latitude:             item.Latitude,
			Longitude:            item.Longitude,
			ReconciliationStatus: item.ReconciliationStatus,
			Note:                 item.Note,
		}
	}

	if err := q.remote.InsertBatch(ctx, payload); err != nil {
		return 0, fmt.Errorf("sync batch: %w", err)
	}

	synced := make(map[types.SnowflakeID]struct{}, len(batch))
	for _, item := range batch {
		synced[item.ID] = struct{}{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if _, ok := synced[q.items[i].ID]; ok {
			q.items[i].IsSynced = true
		}
	}
	if err := q.store.Save(q.items); err != nil {
		return len(batch), fmt.Errorf("%w: %v", ErrSyncPersist, err)
	}
	return len(batch), nil
}
