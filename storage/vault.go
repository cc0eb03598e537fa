package storage

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/greenloop/ewaste-registry-backend/interfaces"
	vault "github.com/hashicorp/vault/api"
)

// VaultBackend archives snapshots in a HashiCorp Vault KV v2 mount.
// Suited for compliance archives that must live behind Vault's access
// policies and audit log.
type VaultBackend struct {
	client      *vault.Client
	mountPath   string
	dataPath    string
	prefixes    map[interfaces.ContentType]string
	log         *slog.Logger
	locationURI string
}

// NewVaultBackend creates a Vault backend against the KV v2 secrets
// engine mounted at mountPath, storing content under dataPath.
func NewVaultBackend(address, mountPath, dataPath, token string, log *slog.Logger) (*VaultBackend, error) {
	config := vault.DefaultConfig()
	config.Address = address

	client, err := vault.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if token != "" {
		client.SetToken(token)
	}

	return &VaultBackend{
		client:    client,
		mountPath: mountPath,
		dataPath:  dataPath,
		prefixes: map[interfaces.ContentType]string{
			interfaces.SnapshotType: "snapshots",
			interfaces.ManifestType: "manifests",
		},
		log:         log,
		locationURI: fmt.Sprintf("vault://%s/%s/%s", address, mountPath, dataPath),
	}, nil
}

// Fetch retrieves archived content by ID and type.
func (b *VaultBackend) Fetch(ctx context.Context, id interfaces.ContentID, contentType interfaces.ContentType) ([]byte, error) {
	secretPath := b.getSecretPath(id, contentType)

	secret, err := b.client.KVv2(b.mountPath).Get(ctx, secretPath)
	if err != nil {
		if err == vault.ErrSecretNotFound {
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to read from vault: %w", err)
	}

	encoded, ok := secret.Data["content"].(string)
	if !ok {
		return nil, fmt.Errorf("vault secret at %s has no content field", secretPath)
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode vault content: %w", err)
	}

	b.log.Debug("Fetched archived content from vault",
		slog.String("path", secretPath),
		slog.Int("size", len(data)))

	return data, nil
}

// Store writes data to the vault mount and returns its content ID.
func (b *VaultBackend) Store(ctx context.Context, data []byte, contentType interfaces.ContentType) (interfaces.ContentID, error) {
	id := interfaces.ComputeID(data)
	secretPath := b.getSecretPath(id, contentType)

	_, err := b.client.KVv2(b.mountPath).Put(ctx, secretPath, map[string]interface{}{
		"content": base64.StdEncoding.EncodeToString(data),
	})
	if err != nil {
		return id, fmt.Errorf("failed to write to vault: %w", err)
	}

	b.log.Debug("Archived content to vault",
		slog.String("path", secretPath),
		slog.String("content_id", id.String()))

	return id, nil
}

// Available checks the Vault server health endpoint.
func (b *VaultBackend) Available(ctx context.Context) bool {
	health, err := b.client.Sys().HealthWithContext(ctx)
	if err != nil {
		b.log.Debug("Vault backend unavailable", "err", err)
		return false
	}
	if !health.Initialized || health.Sealed {
		b.log.Debug("Vault backend not ready",
			slog.Bool("initialized", health.Initialized),
			slog.Bool("sealed", health.Sealed))
		return false
	}
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *VaultBackend) Name() string {
	return fmt.Sprintf("vault-%s", b.mountPath)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *VaultBackend) LocationURI() string {
	return b.locationURI
}

func (b *VaultBackend) getSecretPath(id interfaces.ContentID, contentType interfaces.ContentType) string {
	return fmt.Sprintf("%s/%s/%s", b.dataPath, b.prefixes[contentType], id.String())
}
