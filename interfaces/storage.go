package interfaces

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Storage errors returned by backends.
var (
	// ErrContentNotFound indicates the requested content does not exist in
	// the backend.
	ErrContentNotFound = errors.New("content not found")

	// ErrBackendUnavailable indicates the backend cannot be reached.
	ErrBackendUnavailable = errors.New("storage backend unavailable")
)

// ContentID is a 32-byte SHA-256 hash uniquely identifying archived content.
// Snapshots are content-addressed so an archived audit record can be verified
// by re-hashing what was fetched.
type ContentID [32]byte

// NewContentIDFromBytes creates a content ID from a raw 32-byte slice.
func NewContentIDFromBytes(source []byte) (ContentID, error) {
	if len(source) != 32 {
		return ContentID{}, errors.New("invalid content ID length: must be 32 bytes")
	}

	var hash [32]byte
	copy(hash[:], source)
	return ContentID(hash), nil
}

// NewContentIDFromHex creates a content ID from a 64-character hex string,
// with or without a 0x prefix.
func NewContentIDFromHex(source string) (ContentID, error) {
	clean := strings.TrimPrefix(source, "0x")
	if len(clean) != 64 {
		return ContentID{}, errors.New("invalid content ID length: hex string must be 64 characters")
	}

	hashBytes, err := hex.DecodeString(clean)
	if err != nil {
		return ContentID{}, fmt.Errorf("invalid hex format: %w", err)
	}

	var hash [32]byte
	copy(hash[:], hashBytes)
	return ContentID(hash), nil
}

// ComputeID calculates the content ID of data.
func ComputeID(data []byte) ContentID {
	hash := sha256.Sum256(data)
	return ContentID(hash)
}

// String returns the hex representation.
func (id ContentID) String() string {
	return hex.EncodeToString(id[:])
}

// Bytes returns the raw 32-byte hash.
func (id ContentID) Bytes() []byte {
	return id[:]
}

// Equal compares two content IDs.
func (id ContentID) Equal(other ContentID) bool {
	return bytes.Equal(id[:], other[:])
}

// ContentType indicates the storage namespace for archived content.
type ContentType int

const (
	// SnapshotType for device audit snapshots.
	SnapshotType ContentType = iota
	// ManifestType for archive manifests listing snapshot IDs.
	ManifestType
)

// String returns the type name.
func (ct ContentType) String() string {
	switch ct {
	case SnapshotType:
		return "snapshot"
	case ManifestType:
		return "manifest"
	default:
		return "unknown"
	}
}

// StorageBackendLocation is a URI identifying a storage backend, such as
// file:///var/lib/ewaste/archive or s3://bucket/prefix?region=eu-west-1.
type StorageBackendLocation string

// String returns the location URI as a string.
func (l StorageBackendLocation) String() string {
	return string(l)
}

// StorageBackend stores and retrieves content-addressed audit archives.
// Implementations must return the SHA-256 hash of the stored data as its
// content ID so every backend agrees on addressing.
type StorageBackend interface {
	// Fetch retrieves content by ID and type. Returns ErrContentNotFound if
	// the backend does not hold the content.
	Fetch(ctx context.Context, id ContentID, contentType ContentType) ([]byte, error)

	// Store persists data and returns its content ID.
	Store(ctx context.Context, data []byte, contentType ContentType) (ContentID, error)

	// Available reports whether the backend is currently reachable.
	Available(ctx context.Context) bool

	// Name returns a short identifier for logs.
	Name() string

	// LocationURI returns the URI this backend was created from.
	LocationURI() string
}

// StorageBackendFactory creates storage backends from location URIs.
type StorageBackendFactory interface {
	StorageBackendFor(location StorageBackendLocation) (StorageBackend, error)
	CreateMultiBackend(locations []StorageBackendLocation) (StorageBackend, error)
}
