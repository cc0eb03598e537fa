// Package common holds build metadata and logging setup shared by all
// commands.
package common

// PackageName is the service identifier used for metrics and logs.
const PackageName = "ewaste-registry-backend"

// Version is set at build time via -ldflags.
var Version = "dev"
