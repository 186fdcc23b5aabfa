package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLookup struct {
	assets map[string]uint
	err    error
}

func (f *fakeLookup) LookupByTag(ctx context.Context, tagCode string) (*Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	if id, ok := f.assets[tagCode]; ok {
		return &Asset{ID: id}, nil
	}
	return nil, nil
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

var testTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestMachine(t *testing.T, lookup AssetLookup, remote BulkInserter) *Machine {
	t.Helper()
	q, _ := newTestQueue(t, remote)
	geo := &GeoResolver{Default: fallback}
	return NewMachine(q, lookup, geo, fixedClock{testTime})
}

func TestCollectMatchedAsset(t *testing.T) {
	lookup := &fakeLookup{assets: map[string]uint{"PAT-100001": 42}}
	m := newTestMachine(t, lookup, &fakeInserter{})

	pos := &Position{Latitude: -22.9, Longitude: -43.2}
	item, err := m.Collect(context.Background(), "PAT-100001", 7, pos)
	require.NoError(t, err)

	assert.Equal(t, StatusMatched, item.ReconciliationStatus)
	require.NotNil(t, item.AssetID)
	assert.Equal(t, uint(42), *item.AssetID)
	assert.Equal(t, uint(7), item.CollectorUserID)
	assert.Equal(t, testTime, item.CollectedAt)
	assert.Equal(t, -22.9, *item.Latitude)
	assert.Equal(t, StatusIdle, m.Status())
}

func TestCollectUnknownTagIsNotFoundNotError(t *testing.T) {
	m := newTestMachine(t, &fakeLookup{}, &fakeInserter{})

	item, err := m.Collect(context.Background(), "PAT-999999", 7, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusNotFound, item.ReconciliationStatus)
	assert.Nil(t, item.AssetID)
	// No client position: the fallback pair is used.
	assert.Equal(t, fallback.Latitude, *item.Latitude)
	assert.Equal(t, fallback.Longitude, *item.Longitude)
}

func TestStartScanThenCollectCompletesTheScan(t *testing.T) {
	lookup := &fakeLookup{assets: map[string]uint{"PAT-100001": 42}}
	m := newTestMachine(t, lookup, &fakeInserter{})

	var seen []Status
	m.Subscribe(func(s Status) { seen = append(seen, s) })

	require.NoError(t, m.StartScan())

	item, err := m.Collect(context.Background(), "PAT-100001", 7, nil)
	require.NoError(t, err)

	assert.Equal(t, StatusMatched, item.ReconciliationStatus)
	assert.Equal(t, StatusIdle, m.Status())
	assert.Equal(t, 1, m.Queue().PendingCount())

	// One scanning entry only: the open scan is completed, not restarted.
	assert.Equal(t, []Status{
		StatusScanning,
		StatusCheckingAsset,
		StatusLocating,
		StatusSaving,
		StatusIdle,
	}, seen)
}

func TestCollectRejectsDuplicatePendingTag(t *testing.T) {
	m := newTestMachine(t, &fakeLookup{}, &fakeInserter{})

	_, err := m.Collect(context.Background(), "PAT-100001", 7, nil)
	require.NoError(t, err)

	_, err = m.Collect(context.Background(), "PAT-100001", 7, nil)
	assert.ErrorIs(t, err, ErrDuplicatePending)
	assert.Equal(t, StatusIdle, m.Status())
	assert.Equal(t, 1, m.Queue().PendingCount())
}

func TestCollectRequiresUser(t *testing.T) {
	m := newTestMachine(t, &fakeLookup{}, &fakeInserter{})

	_, err := m.Collect(context.Background(), "PAT-100001", 0, nil)
	assert.ErrorIs(t, err, ErrNoUser)
	assert.Equal(t, StatusIdle, m.Status())
	assert.Equal(t, 0, m.Queue().PendingCount())
}

func TestCollectPropagatesLookupErrorAndReturnsToIdle(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection refused")}
	m := newTestMachine(t, lookup, &fakeInserter{})

	_, err := m.Collect(context.Background(), "PAT-100001", 7, nil)
	require.Error(t, err)
	assert.Equal(t, StatusIdle, m.Status())
	assert.Equal(t, 0, m.Queue().PendingCount())
}

func TestFlowsAreMutuallyExclusive(t *testing.T) {
	m := newTestMachine(t, &fakeLookup{}, &fakeInserter{})

	require.NoError(t, m.StartScan())
	assert.Equal(t, StatusScanning, m.Status())

	_, err := m.Sync(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	_, err = m.Import(context.Background(), nil, 7)
	assert.ErrorIs(t, err, ErrBusy)

	assert.ErrorIs(t, m.StartScan(), ErrBusy)
}

func TestCancelScanReturnsToIdleWithoutMutation(t *testing.T) {
	m := newTestMachine(t, &fakeLookup{}, &fakeInserter{})

	require.NoError(t, m.StartScan())
	require.NoError(t, m.CancelScan())

	assert.Equal(t, StatusIdle, m.Status())
	assert.Equal(t, 0, m.Queue().PendingCount())

	// Cancel without an active scan is refused.
	assert.ErrorIs(t, m.CancelScan(), ErrNotScanning)
}

func TestSyncFailureEndsInIdle(t *testing.T) {
	remote := &fakeInserter{fail: true}
	m := newTestMachine(t, &fakeLookup{}, remote)

	_, err := m.Collect(context.Background(), "PAT-100001", 7, nil)
	require.NoError(t, err)

	_, err = m.Sync(context.Background())
	require.Error(t, err)
	assert.Equal(t, StatusIdle, m.Status())
	assert.Equal(t, 1, m.Queue().PendingCount())
}

func TestSubscribeSeesTransitions(t *testing.T) {
	m := newTestMachine(t, &fakeLookup{}, &fakeInserter{})

	var seen []Status
	m.Subscribe(func(s Status) { seen = append(seen, s) })

	_, err := m.Collect(context.Background(), "PAT-100001", 7, nil)
	require.NoError(t, err)

	assert.Equal(t, []Status{
		StatusScanning,
		StatusCheckingAsset,
		StatusLocating,
		StatusSaving,
		StatusIdle,
	}, seen)
}
