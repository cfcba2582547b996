// Package session implements the tracking session [Controller]: the signed-in identity, the cached
// list of tracked items, the refresh interval and the poller that drives periodic price refreshes.
//
// # State
//
// The remote track store is the source of truth. The controller keeps an identity-scoped copy that
// every successful reload replaces wholesale; failed reloads leave it untouched. Nothing is inserted
// optimistically, so an added item appears only once a reload returns it.
//
// # Polling
//
// Exactly one scheduled task exists while there is at least one tracked item and the interval is
// non-zero. The condition is re-evaluated whenever the list or the interval changes, and the task is
// stopped on Logout and Close.
//
// # Notices
//
// Every remote failure is caught here and turned into a [models.Notification] for the [Notifier];
// operations also return the error so the CLI can set an exit status. Refresh outcomes produce exactly
// one notice, chosen in priority order: purchases, targets reached, plain update.
//
// # Busy Flags
//
// Add, refresh, credential save and URL import each carry a loading flag. A second call while one is
// in flight fails fast with [shared.ErrBusy].
package session
