package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// MultiStorageBackend replicates archived content across several
// backends. Stores go to every available backend, fetches return the
// first hit. A store succeeds as long as at least one backend took the
// write.
type MultiStorageBackend struct {
	backends []interfaces.StorageBackend
	log      *slog.Logger
}

// NewMultiStorageBackend creates a replicating backend over the given
// backends. At least one backend is required.
func NewMultiStorageBackend(backends []interfaces.StorageBackend, log *slog.Logger) (*MultiStorageBackend, error) {
	if len(backends) == 0 {
		return nil, fmt.Errorf("at least one storage backend is required")
	}
	return &MultiStorageBackend{
		backends: backends,
		log:      log,
	}, nil
}

// Fetch tries each backend in order and returns the first successful
// result. Returns ErrContentNotFound only when no backend has the
// content.
func (m *MultiStorageBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			m.log.Debug("Skipping unavailable backend during fetch",
				slog.String("backend", backend.Name()))
			continue
		}

		data, err := backend.Fetch(ctx, id, contentType)
		if err == nil {
			if computed := interfaces.ComputeID(data); computed != id {
				m.log.Warn("Backend returned content with mismatched hash",
					slog.String("backend", backend.Name()),
					slog.String("expected", id.String()),
					slog.String("got", computed.String()))
				continue
			}
			return data, nil
		}
		if !errors.Is(err, interfaces.ErrContentNotFound) {
			m.log.Debug("Backend fetch failed",
				slog.String("backend", backend.Name()),
				"err", err)
		}
	}

	return nil, interfaces.ErrContentNotFound
}

// Store writes data to every available backend.
func (m *MultiStorageBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)

	var stored int
	var failures []string
	for _, backend := range m.backends {
		if !backend.Available(ctx) {
			failures = append(failures, fmt.Sprintf("%s: unavailable", backend.Name()))
			continue
		}

		if _, err := backend.Store(ctx, data, contentType); err != nil {
			m.log.Warn("Backend store failed",
				slog.String("backend", backend.Name()),
				"err", err)
			failures = append(failures, fmt.Sprintf("%s: %v", backend.Name(), err))
			continue
		}
		stored++
	}

	if stored == 0 {
		return id, fmt.Errorf("all storage backends failed: %s", strings.Join(failures, "; "))
	}

	if len(failures) > 0 {
		m.log.Warn("Content stored with partial replication",
			slog.String("content_id", id.String()),
			slog.Int("stored", stored),
			slog.Int("failed", len(failures)))
	}

	return id, nil
}

// Available reports whether at least one underlying backend is up.
func (m *MultiStorageBackend) Available(ctx context.Context) bool {
	for _, backend := range m.backends {
		if backend.Available(ctx) {
			return true
		}
	}
	return false
}

// Name returns a unique identifier for this storage backend.
func (m *MultiStorageBackend) Name() string {
	names := make([]string, len(m.backends))
	for i, backend := range m.backends {
		names[i] = backend.Name()
	}
	return fmt.Sprintf("multi[%s]", strings.Join(names, ","))
}

// LocationURI returns the URIs of all underlying backends.
func (m *MultiStorageBackend) LocationURI() string {
	uris := make([]string, len(m.backends))
	for i, backend := range m.backends {
		uris[i] = backend.LocationURI()
	}
	return strings.Join(uris, ",")
}

// Backends returns the underlying backends in configuration order.
func (m *MultiStorageBackend) Backends() []interfaces.StorageBackend {
	return m.backends
}
