package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
)

// StorageBackendFactory creates storage backends from location URIs.
//
// Supported URI schemes:
//   - file:///path/to/dir
//   - s3://bucket/prefix?region=eu-west-1&endpoint=...&access_key=...&secret_key=...
//   - ipfs://host:port
//   - vault://host:port/mount/path?token=...&tls=true
type StorageBackendFactory struct {
	log *slog.Logger
}

// NewStorageBackendFactory creates a factory with the given logger.
func NewStorageBackendFactory(log *slog.Logger) *StorageBackendFactory {
	return &StorageBackendFactory{log: log}
}

// StorageBackendFor creates a single backend for the given location URI.
func (f *StorageBackendFactory) StorageBackendFor(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	uri := string(location)

	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid storage location %q: %w", uri, err)
	}

	switch parsed.Scheme {
	case "file":
		return f.createFileBackend(parsed)
	case "s3":
		return f.createS3Backend(parsed)
	case "ipfs":
		return f.createIPFSBackend(parsed)
	case "vault":
		return f.createVaultBackend(parsed)
	default:
		return nil, fmt.Errorf("unsupported storage scheme %q in %q", parsed.Scheme, uri)
	}
}

// CreateMultiBackend creates a replicating backend over all the given
// locations. A single location yields the plain backend.
func (f *StorageBackendFactory) CreateMultiBackend(locations []interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	if len(locations) == 0 {
		return nil, fmt.Errorf("at least one storage location is required")
	}

	backends := make([]interfaces.StorageBackend, 0, len(locations))
	for _, location := range locations {
		backend, err := f.StorageBackendFor(location)
		if err != nil {
			return nil, fmt.Errorf("failed to create backend for %s: %w", location, err)
		}
		backends = append(backends, backend)
	}

	if len(backends) == 1 {
		return backends[0], nil
	}
	return NewMultiStorageBackend(backends, f.log)
}

func (f *StorageBackendFactory) createFileBackend(parsed *url.URL) (interfaces.StorageBackend, error) {
	path := parsed.Path
	if parsed.Host != "" {
		path = parsed.Host + path
	}
	if path == "" {
		return nil, fmt.Errorf("file storage location requires a path")
	}
	return NewFileBackend(path, f.log)
}

func (f *StorageBackendFactory) createS3Backend(parsed *url.URL) (interfaces.StorageBackend, error) {
	query := parsed.Query()
	cfg := S3BackendConfig{
		Bucket:          parsed.Host,
		Prefix:          strings.Trim(parsed.Path, "/"),
		Region:          query.Get("region"),
		Endpoint:        query.Get("endpoint"),
		AccessKeyID:     query.Get("access_key"),
		SecretAccessKey: query.Get("secret_key"),
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	return NewS3Backend(cfg, f.log)
}

func (f *StorageBackendFactory) createIPFSBackend(parsed *url.URL) (interfaces.StorageBackend, error) {
	if parsed.Host == "" {
		return nil, fmt.Errorf("ipfs storage location requires a host")
	}
	return NewIPFSBackend(parsed.Host, f.log), nil
}

func (f *StorageBackendFactory) createVaultBackend(parsed *url.URL) (interfaces.StorageBackend, error) {
	if parsed.Host == "" {
		return nil, fmt.Errorf("vault storage location requires a host")
	}

	pathParts := strings.SplitN(strings.Trim(parsed.Path, "/"), "/", 2)
	if len(pathParts) < 2 || pathParts[0] == "" || pathParts[1] == "" {
		return nil, fmt.Errorf("vault storage location requires /mount/path")
	}

	query := parsed.Query()
	scheme := "http"
	if query.Get("tls") == "true" {
		scheme = "https"
	}
	address := fmt.Sprintf("%s://%s", scheme, parsed.Host)

	return NewVaultBackend(address, pathParts[0], pathParts[1], query.Get("token"), f.log)
}

var _ interfaces.StorageBackendFactory = (*StorageBackendFactory)(nil)
