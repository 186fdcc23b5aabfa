package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Status of the collect flow. Scanning, syncing and importing are gated
// on idle and mutually exclusive; there is no lock beyond that gate.
type Status string

const (
	StatusIdle          Status = "idle"
	StatusScanning      Status = "scanning"
	StatusCheckingAsset Status = "checking_asset"
	StatusLocating      Status = "locating"
	StatusSaving        Status = "saving"
	StatusSyncing       Status = "syncing"
	StatusImporting     Status = "importing"
)

var (
	// ErrBusy means another collect/sync/import flow is already active.
	ErrBusy = errors.New("collector is busy")
	// ErrDuplicatePending means the tag already has an unsynced item.
	ErrDuplicatePending = errors.New("item already collected and pending sync")
	// ErrNoUser means collection was attempted without an authenticated user.
	ErrNoUser = errors.New("no authenticated user")
	// ErrNotScanning means scan completion/cancellation without an active scan.
	ErrNotScanning = errors.New("no scan in progress")
)

// Machine orchestrates the scan/collect flow above the queue. It owns
// the single state variable; entry into a flow is refused unless the
// state is idle.
type Machine struct {
	mu        sync.Mutex
	status    Status
	queue     *Queue
	assets    AssetLookup
	geo       *GeoResolver
	clock     Clock
	importer  *Importer
	observers []func(Status)
}

func NewMachine(queue *Queue, assets AssetLookup, geo *GeoResolver, clock Clock) *Machine {
	if clock == nil {
		clock = SystemClock()
	}
	return &Machine{
		status:   StatusIdle,
		queue:    queue,
		assets:   assets,
		geo:      geo,
		clock:    clock,
		importer: NewImporter(queue, assets, clock),
	}
}

// Queue exposes the underlying queue for read paths.
func (m *Machine) Queue() *Queue { return m.queue }

// Status reports the current flow state.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Subscribe registers a callback invoked on every state transition.
func (m *Machine) Subscribe(fn func(Status)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

func (m *Machine) setStatus(s Status) {
	m.mu.Lock()
	m.status = s
	observers := make([]func(Status), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
}

// begin gates entry into a flow: only allowed from idle.
func (m *Machine) begin(s Status) error {
	m.mu.Lock()
	if m.status != StatusIdle {
		m.mu.Unlock()
		return ErrBusy
	}
	m.status = s
	observers := make([]func(Status), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, fn := range observers {
		fn(s)
	}
	return nil
}

// StartScan marks the device capture active.
func (m *Machine) StartScan() error {
	return m.begin(StatusScanning)
}

// CancelScan returns cleanly to idle with no queue mutation.
func (m *Machine) CancelScan() error {
	m.mu.Lock()
	if m.status != StatusScanning {
		m.mu.Unlock()
		return ErrNotScanning
	}
	m.mu.Unlock()
	m.setStatus(StatusIdle)
	return nil
}

// CompleteScan takes a decoded tag code through duplicate check, asset
// lookup, location and save. Both a matched and an unknown tag are valid
// outcomes; only transport failures and save failures return errors.
// Every path ends back in idle.
func (m *Machine) CompleteScan(ctx context.Context, tagCode string, userID uint, pos *Position) (CollectedItem, error) {
	m.mu.Lock()
	if m.status != StatusScanning {
		m.mu.Unlock()
		return CollectedItem{}, ErrNotScanning
	}
	m.mu.Unlock()
	defer m.setStatus(StatusIdle)

	if userID == 0 {
		return CollectedItem{}, ErrNoUser
	}
	if m.queue.HasPending(tagCode) {
		return CollectedItem{}, ErrDuplicatePending
	}

	m.setStatus(StatusCheckingAsset)
	asset, err := m.assets.LookupByTag(ctx, tagCode)
	if err != nil {
		return CollectedItem{}, fmt.Errorf("asset lookup: %w", err)
	}

	m.setStatus(StatusLocating)
	if pos == nil {
		resolved := m.geo.Resolve(ctx)
		pos = &resolved
	}

	m.setStatus(StatusSaving)
	status := StatusNotFound
	var assetID *uint
	if asset != nil {
		status = StatusMatched
		id := asset.ID
		assetID = &id
	}

	item, err := m.queue.Append(Candidate{
		AssetID:              assetID,
		TagCode:              tagCode,
		CollectedAt:          m.clock.Now(),
		CollectorUserID:      userID,
		Latitude:             &pos.Latitude,
		Longitude:            &pos.Longitude,
		ReconciliationStatus: status,
	})
	if err != nil {
		return CollectedItem{}, err
	}
	return item, nil
}

// Collect runs a full scan cycle for an already-decoded tag code. A scan
// opened via StartScan counts as active capture, so Collect treats the
// call as that scan's decode arriving instead of refusing with ErrBusy.
func (m *Machine) Collect(ctx context.Context, tagCode string, userID uint, pos *Position) (CollectedItem, error) {
	m.mu.Lock()
	switch m.status {
	case StatusScanning:
		m.mu.Unlock()
	case StatusIdle:
		m.status = StatusScanning
		observers := make([]func(Status), len(m.observers))
		copy(observers, m.observers)
		m.mu.Unlock()
		for _, fn := range observers {
			fn(StatusScanning)
		}
	default:
		m.mu.Unlock()
		return CollectedItem{}, ErrBusy
	}
	return m.CompleteScan(ctx, tagCode, userID, pos)
}

// Sync submits the pending batch. Success or failure, the machine ends
// back in idle; on failure the queue is untouched and retryable.
func (m *Machine) Sync(ctx context.Context) (int, error) {
	if err := m.begin(StatusSyncing); err != nil {
		return 0, err
	}
	defer m.setStatus(StatusIdle)

	return m.queue.Sync(ctx)
}

// Import feeds a batch of files through the import adapter. Files are
// processed sequentially; one file's failure never halts the batch.
func (m *Machine) Import(ctx context.Context, files []ImportFile, userID uint) ([]FileResult, error) {
	if userID == 0 {
		return nil, ErrNoUser
	}
	if err := m.begin(StatusImporting); err != nil {
		return nil, err
	}
	defer m.setStatus(StatusIdle)

	return m.importer.ImportFiles(ctx, files, userID), nil
}
