package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/steamwatch/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgTracksLoaded MsgKind = iota
	MsgSearchDone
	MsgActionDone
	MsgNotice
	MsgNotificationsLoaded
	MsgTick
)

// tracksLoadedMsg is the constructor for [MsgTracksLoaded]
func tracksLoadedMsg(err error) Msg {
	return Msg{kind: MsgTracksLoaded, data: err}
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(results []models.SearchResult, err error) Msg {
	return Msg{
		kind: MsgSearchDone,
		data: struct {
			results []models.SearchResult
			err     error
		}{results, err},
	}
}

// actionDoneMsg is the constructor for [MsgActionDone]
func actionDoneMsg(action string, err error) Msg {
	return Msg{
		kind: MsgActionDone,
		data: struct {
			action string
			err    error
		}{action, err},
	}
}

// noticeMsg is the constructor for [MsgNotice]
func noticeMsg(n *models.Notification) Msg {
	return Msg{kind: MsgNotice, data: n}
}

// notificationsLoadedMsg is the constructor for [MsgNotificationsLoaded]
func notificationsLoadedMsg(notices []*models.Notification, err error) Msg {
	return Msg{
		kind: MsgNotificationsLoaded,
		data: struct {
			notices []*models.Notification
			err     error
		}{notices, err},
	}
}

func tickMsg() Msg {
	return Msg{kind: MsgTick}
}

// Notices is a [session.Notifier] that forwards notices into the TUI event loop.
//
// Sends never block: when the buffer is full the notice is still persisted by the
// other notifiers and simply not shown live.
type Notices chan *models.Notification

func NewNotices() Notices {
	return make(Notices, 32)
}

func (n Notices) Notify(notice *models.Notification) {
	select {
	case n <- notice:
	default:
	}
}
