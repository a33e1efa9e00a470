// Package tasks runs the workflows behind the HTTP surface and the CLI.
//
// # Core Operations
//
//  1. [PlaylistEngine.Upsert] : replace a playlist by name
//     - Fetches the first page (50) of the user's playlists
//     - Unfollows the first exact name match, if any
//     - Creates the new playlist and sets its items in one call
//
//  2. [Orchestrator.HandleCallback] : finish the authorization-code flow
//     - Exchanges the code for a bearer token
//     - update-data queues six snapshot exports on the [Pool] and returns immediately
//     - create-playlist-<time_range> rebuilds the generated playlist and records its id
//
//  3. [SnapshotRunner.ExportAll] : write every top items snapshot and wait for the results
//
// # Progress Reporting
//
// Operations that accept a progress channel send [ProgressUpdate] values with select and default, so a slow or
// absent reader never blocks the operation.
//
// # Background Work
//
// [Pool] runs queued jobs on a fixed number of workers. Every job waits on a shared rate limiter before it starts.
// Submit never blocks; a full queue drops the job with a warning. Job failures are logged only.
package tasks
