package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMultiStorageStoreReplicatesToAllAvailable(t *testing.T) {
	data := []byte("snapshot payload")
	id := interfaces.ComputeID(data)

	first := new(MockStorageBackend)
	first.On("Available", mock.Anything).Return(true)
	first.On("Store", mock.Anything, data, interfaces.SnapshotType).Return(id, nil)

	second := new(MockStorageBackend)
	second.On("Available", mock.Anything).Return(true)
	second.On("Store", mock.Anything, data, interfaces.SnapshotType).Return(id, nil)

	multi, err := NewMultiStorageBackend([]interfaces.StorageBackend{first, second}, testLogger())
	require.NoError(t, err)

	got, err := multi.Store(context.Background(), data, interfaces.SnapshotType)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestMultiStorageStoreSucceedsWithPartialFailure(t *testing.T) {
	data := []byte("snapshot payload")
	id := interfaces.ComputeID(data)

	down := new(MockStorageBackend)
	down.On("Available", mock.Anything).Return(false)
	down.On("Name").Return("down-backend")

	up := new(MockStorageBackend)
	up.On("Available", mock.Anything).Return(true)
	up.On("Store", mock.Anything, data, interfaces.SnapshotType).Return(id, nil)

	multi, err := NewMultiStorageBackend([]interfaces.StorageBackend{down, up}, testLogger())
	require.NoError(t, err)

	got, err := multi.Store(context.Background(), data, interfaces.SnapshotType)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	down.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything)
}

func TestMultiStorageStoreFailsWhenAllBackendsFail(t *testing.T) {
	down := new(MockStorageBackend)
	down.On("Available", mock.Anything).Return(false)
	down.On("Name").Return("down-backend")

	multi, err := NewMultiStorageBackend([]interfaces.StorageBackend{down}, testLogger())
	require.NoError(t, err)

	_, err = multi.Store(context.Background(), []byte("payload"), interfaces.SnapshotType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all storage backends failed")
}

func TestMultiStorageFetchReturnsFirstHit(t *testing.T) {
	data := []byte("snapshot payload")
	id := interfaces.ComputeID(data)

	miss := new(MockStorageBackend)
	miss.On("Available", mock.Anything).Return(true)
	miss.On("Fetch", mock.Anything, id, interfaces.SnapshotType).Return(nil, interfaces.ErrContentNotFound)

	hit := new(MockStorageBackend)
	hit.On("Available", mock.Anything).Return(true)
	hit.On("Fetch", mock.Anything, id, interfaces.SnapshotType).Return(data, nil)

	multi, err := NewMultiStorageBackend([]interfaces.StorageBackend{miss, hit}, testLogger())
	require.NoError(t, err)

	got, err := multi.Fetch(context.Background(), id, interfaces.SnapshotType)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestMultiStorageFetchRejectsCorruptedContent(t *testing.T) {
	data := []byte("snapshot payload")
	id := interfaces.ComputeID(data)

	corrupted := new(MockStorageBackend)
	corrupted.On("Available", mock.Anything).Return(true)
	corrupted.On("Fetch", mock.Anything, id, interfaces.SnapshotType).Return([]byte("tampered"), nil)
	corrupted.On("Name").Return("corrupted-backend")

	multi, err := NewMultiStorageBackend([]interfaces.StorageBackend{corrupted}, testLogger())
	require.NoError(t, err)

	_, err = multi.Fetch(context.Background(), id, interfaces.SnapshotType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}

func TestMultiStorageFetchNotFound(t *testing.T) {
	id := interfaces.ComputeID([]byte("missing"))

	backend := new(MockStorageBackend)
	backend.On("Available", mock.Anything).Return(true)
	backend.On("Fetch", mock.Anything, id, interfaces.SnapshotType).Return(nil, interfaces.ErrContentNotFound)

	multi, err := NewMultiStorageBackend([]interfaces.StorageBackend{backend}, testLogger())
	require.NoError(t, err)

	_, err = multi.Fetch(context.Background(), id, interfaces.SnapshotType)
	assert.ErrorIs(t, err, interfaces.ErrContentNotFound)
}

func TestMultiStorageFetchTreatsWrappedNotFoundAsMiss(t *testing.T) {
	data := []byte("snapshot payload")
	id := interfaces.ComputeID(data)

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	miss := new(MockStorageBackend)
	miss.On("Available", mock.Anything).Return(true)
	miss.On("Fetch", mock.Anything, id, interfaces.SnapshotType).
		Return(nil, fmt.Errorf("key %s: %w", id.String(), interfaces.ErrContentNotFound))
	miss.On("Name").Return("wrapping-backend")

	hit := new(MockStorageBackend)
	hit.On("Available", mock.Anything).Return(true)
	hit.On("Fetch", mock.Anything, id, interfaces.SnapshotType).Return(data, nil)

	multi, err := NewMultiStorageBackend([]interfaces.StorageBackend{miss, hit}, logger)
	require.NoError(t, err)

	got, err := multi.Fetch(context.Background(), id, interfaces.SnapshotType)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.NotContains(t, logs.String(), "Backend fetch failed")
}

func TestMultiStorageRequiresBackends(t *testing.T) {
	_, err := NewMultiStorageBackend(nil, testLogger())
	assert.Error(t, err)
}
