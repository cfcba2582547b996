package ui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/session"
	"github.com/shopspring/decimal"
)

// Tab is one of the top-level views.
type Tab int

const (
	TracksTab Tab = iota
	SearchTab
	HistoryTab
	NotificationsTab
	SettingsTab
	ProfileTab
)

var tabNames = []string{"Tracks", "Search", "History", "Notifications", "Settings", "Profile"}

func (t Tab) String() string { return tabNames[t] }

type inputMode int

const (
	modeBrowse inputMode = iota
	modeQuery
	modeTarget
	modeConfirmDelete
)

// syncEvery is how often the view re-reads controller state so scheduled refreshes show up.
const syncEvery = 5 * time.Second

// NotificationSource lists and acknowledges persisted notices.
type NotificationSource interface {
	List(criteria map[string]any) ([]*models.Notification, error)
	MarkAllRead() (int64, error)
}

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	ctl     *session.Controller
	notes   NotificationSource
	notices Notices

	tab    Tab
	mode   inputMode
	width  int
	height int

	snapshot session.Snapshot
	tracks   list.Model
	history  list.Model
	results  list.Model
	inbox    list.Model
	query    textinput.Model
	price    textinput.Model

	pendingResult *models.SearchResult
	pendingTrack  *models.TrackedItem

	status    string
	statusErr bool

	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model. notes and notices may be nil.
func NewModel(ctx context.Context, ctl *session.Controller, notes NotificationSource, notices Notices) *Model {
	query := textinput.New()
	query.Placeholder = "AK-47 | Redline (Field-Tested)"
	query.CharLimit = 128

	price := textinput.New()
	price.Placeholder = "0.00"
	price.CharLimit = 16

	return &Model{
		ctx:      ctx,
		ctl:      ctl,
		notes:    notes,
		notices:  notices,
		tab:      TracksTab,
		snapshot: ctl.Snapshot(),
		tracks:   newList("Watchlist"),
		history:  newList("Purchase History"),
		results:  newList("Search Results"),
		inbox:    newList("Notifications"),
		query:    query,
		price:    price,
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

func newList(title string) list.Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	return l
}

// Init loads tracks and notifications and subscribes to live notices.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadTracks(), m.loadNotifications(), m.waitForNotice(), tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.tracks, &m.history, &m.results, &m.inbox} {
			l.SetSize(msg.Width-4, msg.Height-10)
		}
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTracksLoaded:
		m.sync()
		if err, _ := msg.data.(error); err != nil {
			m.setStatus(err.Error(), true)
		}
		return m, nil

	case MsgSearchDone:
		data := msg.data.(struct {
			results []models.SearchResult
			err     error
		})
		if data.err != nil {
			m.results.SetItems(nil)
			m.setStatus(data.err.Error(), true)
			return m, nil
		}
		m.results.SetItems(resultItems(data.results))
		m.results.Title = fmt.Sprintf("Results for '%s'", m.query.Value())
		return m, nil

	case MsgActionDone:
		data := msg.data.(struct {
			action string
			err    error
		})
		m.sync()
		if data.err != nil {
			m.setStatus(fmt.Sprintf("%s failed: %v", data.action, data.err), true)
		}
		return m, m.loadNotifications()

	case MsgNotice:
		n := msg.data.(*models.Notification)
		m.setStatus(n.Message(), n.IsError())
		m.sync()
		return m, tea.Batch(m.waitForNotice(), m.loadNotifications())

	case MsgNotificationsLoaded:
		data := msg.data.(struct {
			notices []*models.Notification
			err     error
		})
		if data.err == nil {
			m.inbox.SetItems(noticeItems(data.notices))
		}
		return m, nil

	case MsgTick:
		m.sync()
		return m, tick()
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case modeQuery:
		return m.handleQueryKeys(msg)
	case modeTarget:
		return m.handleTargetKeys(msg)
	case modeConfirmDelete:
		return m.handleConfirmKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		m.tab = (m.tab + 1) % Tab(len(tabNames))
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.tab = (m.tab + Tab(len(tabNames)) - 1) % Tab(len(tabNames))
		return m, nil
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.refresh):
		return m, m.act("refresh", func() error {
			_, err := m.ctl.RefreshPrices(m.ctx)
			return err
		})
	}

	switch m.tab {
	case TracksTab:
		return m.handleTrackKeys(msg)
	case SearchTab:
		return m.handleSearchKeys(msg)
	case HistoryTab:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd
	case NotificationsTab:
		if key.Matches(msg, m.keys.markRead) && m.notes != nil {
			return m, m.act("mark read", func() error {
				_, err := m.notes.MarkAllRead()
				return err
			})
		}
		var cmd tea.Cmd
		m.inbox, cmd = m.inbox.Update(msg)
		return m, cmd
	case SettingsTab:
		return m.handleSettingsKeys(msg)
	case ProfileTab:
		if key.Matches(msg, m.keys.logout) {
			return m, m.act("sign out", m.ctl.Logout)
		}
	}
	return m, nil
}

func (m *Model) handleTrackKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	selected, ok := m.tracks.SelectedItem().(trackItem)

	switch {
	case key.Matches(msg, m.keys.target) && ok:
		m.pendingTrack = &selected.track
		m.pendingResult = nil
		m.price.SetValue(selected.track.TargetPrice.StringFixed(2))
		m.mode = modeTarget
		return m, m.price.Focus()
	case key.Matches(msg, m.keys.auto) && ok:
		id, enabled := selected.track.ID, !selected.track.AutoPurchase
		return m, m.act("auto-purchase", func() error {
			return m.ctl.ToggleAutoPurchase(m.ctx, id, enabled)
		})
	case key.Matches(msg, m.keys.remove) && ok:
		m.pendingTrack = &selected.track
		m.mode = modeConfirmDelete
		return m, nil
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.search):
		m.mode = modeQuery
		return m, m.query.Focus()
	case key.Matches(msg, m.keys.enter):
		selected, ok := m.results.SelectedItem().(resultItem)
		if !ok {
			m.mode = modeQuery
			return m, m.query.Focus()
		}
		m.pendingResult = &selected.result
		m.pendingTrack = nil
		m.price.SetValue("")
		m.mode = modeTarget
		return m, m.price.Focus()
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m *Model) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := 0
	switch {
	case key.Matches(msg, m.keys.faster):
		step = -1
	case key.Matches(msg, m.keys.slower):
		step = 1
	default:
		return m, nil
	}

	i := slices.Index(models.Intervals, m.snapshot.Interval)
	next := max(0, min(len(models.Intervals)-1, i+step))
	if next == i {
		return m, nil
	}
	interval := models.Intervals[next]
	return m, m.act("interval", func() error { return m.ctl.SetInterval(interval) })
}

func (m *Model) handleQueryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.mode = modeBrowse
		m.query.Blur()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.mode = modeBrowse
		m.query.Blur()
		return m, m.runSearch(m.query.Value())
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m *Model) handleTargetKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		m.resetInput()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		target, err := parsePrice(m.price.Value())
		if err != nil {
			m.setStatus("Enter a price like 12.50", true)
			return m, nil
		}
		result, track := m.pendingResult, m.pendingTrack
		m.resetInput()

		switch {
		case result != nil:
			item := *result
			m.tab = TracksTab
			return m, m.act("add", func() error { return m.ctl.AddTrack(m.ctx, item, target) })
		case track != nil:
			id := track.ID
			return m, m.act("update target", func() error { return m.ctl.UpdateTarget(m.ctx, id, target) })
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.price, cmd = m.price.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	track := m.pendingTrack
	switch msg.String() {
	case "y":
		m.resetInput()
		if track == nil {
			return m, nil
		}
		id := track.ID
		return m, m.act("delete", func() error { return m.ctl.DeleteTrack(m.ctx, id) })
	case "n", "esc", "q":
		m.resetInput()
	}
	return m, nil
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.mode {
	case modeQuery:
		m.query, cmd = m.query.Update(msg)
	case modeTarget:
		m.price, cmd = m.price.Update(msg)
	}
	return m, cmd
}

func (m *Model) resetInput() {
	m.mode = modeBrowse
	m.pendingResult = nil
	m.pendingTrack = nil
	m.price.Blur()
	m.price.SetValue("")
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

// sync copies controller state into the lists.
func (m *Model) sync() {
	m.snapshot = m.ctl.Snapshot()
	m.tracks.SetItems(trackItems(m.snapshot.Tracks))
	m.history.SetItems(trackItems(m.ctl.History()))
}

func (m *Model) loadTracks() tea.Cmd {
	return func() tea.Msg {
		return tracksLoadedMsg(m.ctl.LoadTracks(m.ctx))
	}
}

func (m *Model) runSearch(query string) tea.Cmd {
	return func() tea.Msg {
		results, err := m.ctl.Search(m.ctx, query)
		return searchDoneMsg(results, err)
	}
}

func (m *Model) act(action string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg(action, fn())
	}
}

func (m *Model) loadNotifications() tea.Cmd {
	if m.notes == nil {
		return nil
	}
	return func() tea.Msg {
		notices, err := m.notes.List(map[string]any{"limit": 100})
		return notificationsLoadedMsg(notices, err)
	}
}

func (m *Model) waitForNotice() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-m.notices
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

func tick() tea.Cmd {
	return tea.Tick(syncEvery, func(time.Time) tea.Msg { return tickMsg() })
}

// parsePrice accepts "12.5", "$12.50" and "12,50".
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

// View renders the active tab.
func (m *Model) View() string {
	var body string
	switch m.tab {
	case TracksTab:
		body = m.renderTracks()
	case SearchTab:
		body = m.renderSearch()
	case HistoryTab:
		body = m.history.View()
	case NotificationsTab:
		body = m.inbox.View()
	case SettingsTab:
		body = m.renderSettings()
	case ProfileTab:
		body = m.renderProfile()
	}

	sections := []string{m.renderTabs(), body}
	if m.status != "" {
		if m.statusErr {
			sections = append(sections, styles.err.Render(m.status))
		} else {
			sections = append(sections, styles.ok.Render(m.status))
		}
	}
	sections = append(sections, m.help.View(m.keys))
	return styles.frame.Render(strings.Join(sections, "\n\n"))
}

func (m *Model) renderTabs() string {
	tabs := make([]string, len(tabNames))
	for i, name := range tabNames {
		if Tab(i) == NotificationsTab {
			if unread := m.unread(); unread > 0 {
				name = fmt.Sprintf("%s (%d)", name, unread)
			}
		}
		if Tab(i) == m.tab {
			tabs[i] = styles.activeTab.Render(name)
		} else {
			tabs[i] = styles.tab.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) unread() int {
	count := 0
	for _, item := range m.inbox.Items() {
		if n, ok := item.(noticeItem); ok && !n.notice.Read() {
			count++
		}
	}
	return count
}

func (m *Model) renderTracks() string {
	if m.snapshot.Identity == nil {
		return styles.warn.Render("Not signed in. Run `steamwatch auth login` to sign in with Steam.")
	}

	switch {
	case m.mode == modeTarget && m.pendingTrack != nil:
		return fmt.Sprintf("%s\n\nNew target for %s:\n%s",
			m.tracks.View(), m.pendingTrack.Name, m.price.View())
	case m.mode == modeConfirmDelete && m.pendingTrack != nil:
		return fmt.Sprintf("%s\n\n%s", m.tracks.View(),
			styles.warn.Render(fmt.Sprintf("Stop tracking %s? (y/n)", m.pendingTrack.Name)))
	}

	if len(m.snapshot.Tracks) == 0 {
		return styles.help.Render("No tracked items yet. Use the Search tab to add one.")
	}

	view := m.tracks.View()
	if m.snapshot.Busy[session.OpRefresh] {
		view += "\n" + styles.help.Render("Refreshing prices...")
	}
	return view
}

func (m *Model) renderSearch() string {
	var b strings.Builder
	b.WriteString(m.query.View())
	b.WriteString("\n\n")

	if m.mode == modeTarget && m.pendingResult != nil {
		fmt.Fprintf(&b, "Target price for %s:\n%s", m.pendingResult.Name, m.price.View())
		return b.String()
	}

	if len(m.results.Items()) == 0 {
		b.WriteString(styles.help.Render("Press / to search the market by item name."))
		return b.String()
	}
	b.WriteString(m.results.View())
	return b.String()
}

func (m *Model) renderSettings() string {
	title := styles.title.Render("Settings")

	options := make([]string, len(models.Intervals))
	for i, interval := range models.Intervals {
		label := interval.String()
		if interval == m.snapshot.Interval {
			label = styles.activeTab.Render(label)
		} else {
			label = styles.tab.Render(label)
		}
		options[i] = label
	}

	state := "stopped"
	if m.snapshot.Polling {
		state = "running"
	}

	return fmt.Sprintf("%s\nAuto refresh interval:\n%s\n\nScheduled refresh: %s",
		title, lipgloss.JoinHorizontal(lipgloss.Top, options...), state)
}

func (m *Model) renderProfile() string {
	title := styles.title.Render("Profile")
	identity := m.snapshot.Identity
	if identity == nil {
		return fmt.Sprintf("%s\n%s", title,
			styles.warn.Render("Not signed in. Run `steamwatch auth login` to sign in with Steam."))
	}

	reached := 0
	for _, t := range m.snapshot.Tracks {
		if t.TargetReached() {
			reached++
		}
	}

	return fmt.Sprintf("%s\nName: %s\nSteam ID: %s\nAvatar: %s\n\nTracked: %d\nTargets reached: %d\nPurchased: %d",
		title,
		identity.DisplayName,
		identity.SteamID,
		identity.AvatarURL,
		len(m.snapshot.Tracks),
		reached,
		len(m.ctl.History()),
	)
}
