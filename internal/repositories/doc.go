// Package repositories implements SQLite persistence for steamwatch's local state.
//
// The remote track store owns tracked items; only client-side state lives here:
//   - [PreferencesRepository] : key/value preferences (signed-in identity, refresh interval)
//   - [NotificationRepository] : notification history with read state and soft deletes
//
// Sequence numbers provide stable ordering independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
