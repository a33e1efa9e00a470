// Package repositories implements snapshot persistence.
//
// A snapshot is a point-in-time JSON export written to the fixed [Container]. [SnapshotExporter] serializes the
// payload with two-space indentation, so identical payloads produce identical bytes, and hands it to a [BlobStore].
//
// Key Implementations:
//   - [AzureStore] : Azure Blob Storage via a connection string
//   - [MemoryStore] : in-process map used by tests and the memory driver
//
// Writes are blind overwrites. Nothing is ever read back by the service itself.
package repositories
