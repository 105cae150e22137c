// Package repositories implements SQLite persistence for the gallery's categories and images.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// Categories are soft-deleted via deleted_at timestamps and excluded from queries by default.
// Images are hard-deleted: a row exists exactly while its file is indexed.
//
// Key Implementations:
//   - [CategoryRepository] : Category persistence with name lookups
//   - [ImageRepository] : Image persistence with paged search, sort index maintenance and details
//   - [ScanStore] : Adapter exposing [ImageRepository] to folder scan tasks
//
// Sequence numbers provide stable, human-readable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
