// Package storage provides content-addressed backends for archiving device
// audit snapshots. Backends are created from location URIs and can be
// aggregated into a multi-backend that writes to every available backend and
// reads from the first one that has the content.
//
// Supported schemes:
//   - file:// for local filesystem archives
//   - s3:// for Amazon S3 or compatible object stores
//   - ipfs:// for IPFS nodes or gateways
//   - vault:// for HashiCorp Vault KV v2 mounts
//
// All backends address content by its SHA-256 hash, so a snapshot archived
// to several backends has one ID everywhere and any copy can be verified
// offline.
package storage
