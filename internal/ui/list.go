package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/steamwatch/internal/models"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = resultItem{}
	_ list.Item = noticeItem{}
)

// trackItem wraps [models.TrackedItem] to implement [list.Item].
type trackItem struct {
	track models.TrackedItem
}

func (i trackItem) FilterValue() string { return i.track.Name }

func (i trackItem) Title() string {
	switch {
	case i.track.Purchased():
		return styles.purchased.Render(i.track.Name)
	case i.track.TargetReached():
		return styles.reached.Render("★ " + i.track.Name)
	default:
		return i.track.Name
	}
}

func (i trackItem) Description() string {
	parts := []string{
		fmt.Sprintf("$%s / target $%s", i.track.CurrentPrice.StringFixed(2), i.track.TargetPrice.StringFixed(2)),
		string(i.track.Status),
	}
	if i.track.AutoPurchase {
		parts = append(parts, "auto-purchase")
	}
	if i.track.TargetReached() {
		parts = append(parts, "target reached")
	}
	return strings.Join(parts, " • ")
}

// resultItem wraps [models.SearchResult] to implement [list.Item].
type resultItem struct {
	result models.SearchResult
}

func (i resultItem) FilterValue() string { return i.result.Name }
func (i resultItem) Title() string       { return i.result.Name }
func (i resultItem) Description() string {
	desc := fmt.Sprintf("%d listings", i.result.SellListings)
	if i.result.Price != "" {
		desc = fmt.Sprintf("%s • from %s", desc, i.result.Price)
	}
	return desc
}

// noticeItem wraps [models.Notification] to implement [list.Item].
type noticeItem struct {
	notice *models.Notification
}

func (i noticeItem) FilterValue() string { return i.notice.Message() }

func (i noticeItem) Title() string {
	msg := i.notice.Message()
	if !i.notice.Read() {
		msg = "• " + msg
	}
	if i.notice.IsError() {
		return styles.err.Render(msg)
	}
	return msg
}

func (i noticeItem) Description() string {
	return fmt.Sprintf("%s • %s", i.notice.Kind(), i.notice.CreatedAt().Local().Format("Jan 2 15:04"))
}

func trackItems(tracks []models.TrackedItem) []list.Item {
	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	return items
}

func resultItems(results []models.SearchResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}

func noticeItems(notices []*models.Notification) []list.Item {
	items := make([]list.Item, len(notices))
	for i, n := range notices {
		items[i] = noticeItem{notice: n}
	}
	return items
}
