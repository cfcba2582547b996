// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a set of tabs over one [session.Controller]:
//  1. [TracksTab] : The watchlist, with target-reached items highlighted
//  2. [SearchTab] : Market search and add-with-target
//  3. [HistoryTab] : Items auto-purchase has bought
//  4. [NotificationsTab] : Persisted notices
//  5. [SettingsTab] : Auto refresh interval
//  6. [ProfileTab] : Signed-in Steam identity
//
// Controller notices arrive through [Notices], a channel-backed notifier read by a waiting command,
// and the view re-reads controller state on a short tick so scheduled refreshes show up.
//
// Keyboard navigation uses vim-style bindings (j/k, h/l, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
