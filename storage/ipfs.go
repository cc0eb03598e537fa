package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
	shell "github.com/ipfs/go-ipfs-api"
)

// IPFSBackend archives snapshots in IPFS through a local or remote
// daemon API. Content is pinned on store so the daemon keeps it.
//
// IPFS addresses content by its own multihash CID, not by our SHA-256
// content ID, so the backend additionally tracks a mapping object per
// content ID under the MFS files API.
type IPFSBackend struct {
	shell       *shell.Shell
	apiAddress  string
	prefixes    map[interfaces.ContentType]string
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates an IPFS backend talking to the daemon API at
// apiAddress (e.g. "localhost:5001").
func NewIPFSBackend(apiAddress string, log *slog.Logger) *IPFSBackend {
	return &IPFSBackend{
		shell:      shell.NewShell(apiAddress),
		apiAddress: apiAddress,
		prefixes: map[interfaces.ContentType]string{
			interfaces.SnapshotType: "snapshots",
			interfaces.ManifestType: "manifests",
		},
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s", apiAddress),
	}
}

// Fetch retrieves archived content by ID and type.
func (b *IPFSBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	mfsPath := b.getMFSPath(id, contentType)

	reader, err := b.shell.FilesRead(ctx, mfsPath)
	if err != nil {
		if strings.Contains(err.Error(), "does not exist") || strings.Contains(err.Error(), "file does not exist") {
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to read from IPFS: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read IPFS content: %w", err)
	}

	b.log.Debug("Fetched archived content from IPFS",
		slog.String("path", mfsPath),
		slog.Int("size", len(data)))

	return data, nil
}

// Store adds data to IPFS, pins it, and records it under the MFS path
// derived from the content ID.
func (b *IPFSBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)

	cid, err := b.shell.Add(bytes.NewReader(data), shell.Pin(true))
	if err != nil {
		return id, fmt.Errorf("failed to add content to IPFS: %w", err)
	}

	mfsPath := b.getMFSPath(id, contentType)
	dir := mfsPath[:strings.LastIndex(mfsPath, "/")]
	if err := b.shell.FilesMkdir(ctx, dir, shell.FilesMkdir.Parents(true)); err != nil {
		return id, fmt.Errorf("failed to create IPFS directory: %w", err)
	}

	// Replace any previous mapping for this content ID.
	_ = b.shell.FilesRm(ctx, mfsPath, true)
	if err := b.shell.FilesCp(ctx, "/ipfs/"+cid, mfsPath); err != nil {
		return id, fmt.Errorf("failed to link IPFS content: %w", err)
	}

	b.log.Debug("Archived content to IPFS",
		slog.String("cid", cid),
		slog.String("content_id", id.String()))

	return id, nil
}

// Available checks that the IPFS daemon API responds.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	if !b.shell.IsUp() {
		b.log.Debug("IPFS backend unavailable", slog.String("api", b.apiAddress))
		return false
	}
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s", b.apiAddress)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}

func (b *IPFSBackend) getMFSPath(id interfaces.ContentID, contentType interfaces.ContentType) string {
	return fmt.Sprintf("/ewaste-archive/%s/%s", b.prefixes[contentType], id.String())
}
