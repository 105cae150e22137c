// Package tasks keeps the image index in step with category folders on disk.
//
// # Scanning
//
// [Scanner.Scan] runs a full pass over one category folder:
//
//  1. Walk the folder, keeping files with an allowed image extension that match
//     the include globs and none of the exclude globs
//  2. Probe each file's dimensions on a rate-limited worker pool
//  3. Upsert every probed file into the [IndexStore]
//  4. Remove rows whose file no longer exists
//  5. Rebuild the category's sort order
//
// Only one scan runs at a time per [Scanner]; a concurrent call fails with
// shared.ErrScanInProgress.
//
// # Watching
//
// [Scanner.Watch] subscribes to filesystem events below a folder and triggers a
// rescan once events settle for the configured debounce window.
//
// # Progress Reporting
//
// Operations report through an optional channel of [ProgressUpdate].
// Updates use select with default so a slow reader never stalls a scan.
package tasks
