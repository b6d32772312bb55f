package entries

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	metricsdto "mdash/internal/modules/metrics/dto"
	"mdash/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type MetricsPort interface {
	List(ctx context.Context) ([]metricsdto.EntryOutput, error)
	Get(ctx context.Context, entryID string) (metricsdto.EntryOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type EntriesLoadedMsg struct {
	Entries []metricsdto.EntryOutput
	Err     error
}

type DetailLoadedMsg struct {
	Entry metricsdto.EntryOutput
	Err   error
}

// ─── list item ───────────────────────────────────────────────────────────────

type entryItem struct {
	entry metricsdto.EntryOutput
}

func (i entryItem) Title() string { return i.entry.Date }
func (i entryItem) Description() string {
	return fmt.Sprintf("%s  dbg %d→%dm", i.entry.TaskDescription, i.entry.DebugTimeBefore, i.entry.DebugTimeAfter)
}
func (i entryItem) FilterValue() string { return i.entry.Date + " " + i.entry.TaskDescription }

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    MetricsPort
	list    list.Model
	detail  metricsdto.EntryOutput
	preview viewport.Model
	spinner spinner.Model
	loading bool
	width   int
	height  int
}

func New(port MetricsPort) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Entries"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{
		port:    port,
		list:    l,
		preview: vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload re-fetches the entry collection, e.g. after a palette mutation.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		items, err := m.port.List(context.Background())
		return EntriesLoadedMsg{Entries: items, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case EntriesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Entries — " + msg.Err.Error()
			return m, nil
		}
		m.list.Title = "Entries"
		items := make([]list.Item, len(msg.Entries))
		for i, e := range msg.Entries {
			items[i] = entryItem{entry: e}
		}
		cmds = append(cmds, m.list.SetItems(items))
		if len(msg.Entries) > 0 {
			cmds = append(cmds, m.loadDetailCmd(msg.Entries[0].ID))
		} else {
			m.detail = metricsdto.EntryOutput{}
			m.preview.SetContent(m.renderDetail())
		}

	case DetailLoadedMsg:
		if msg.Err == nil {
			m.detail = msg.Entry
			m.preview.SetContent(m.renderDetail())
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var lCmd tea.Cmd
		prevIdx := m.list.Index()
		m.list, lCmd = m.list.Update(msg)
		cmds = append(cmds, lCmd)
		if m.list.Index() != prevIdx {
			if item, ok := m.list.SelectedItem().(entryItem); ok {
				cmds = append(cmds, m.loadDetailCmd(item.entry.ID))
			}
		}

		var vCmd tea.Cmd
		m.preview, vCmd = m.preview.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Loading entries…")
	}

	listW := m.width * 4 / 10
	detailW := m.width - listW

	listPane := lipgloss.NewStyle().
		Width(listW).
		Height(m.height).
		Render(m.list.View())

	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(detailW - 2).
		Height(m.height - 2).
		Render(m.preview.View())

	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// Filtering reports whether the list's search filter is currently active.
// The app model checks this to avoid consuming global keys during a search.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	listW := m.width * 4 / 10
	detailW := m.width - listW
	m.list.SetSize(listW, m.height)
	m.preview.Width = detailW - 4
	m.preview.Height = m.height - 4
}

func (m Model) renderDetail() string {
	e := m.detail
	if e.ID == "" {
		return theme.Muted.Render("No entries yet — open the palette (:) and run entry:add or data:sample")
	}
	var sb strings.Builder
	sb.WriteString(theme.Title.Render(e.Date) + "\n\n")
	sb.WriteString(theme.Muted.Render("id:        ") + e.ID + "\n")
	sb.WriteString(theme.Muted.Render("task:      ") + e.TaskDescription + "\n\n")
	sb.WriteString(fmt.Sprintf("%s%d → %d\n", theme.Muted.Render("tool calls: "), e.ToolCallsBefore, e.ToolCallsAfter))
	sb.WriteString(fmt.Sprintf("%s%d → %d\n", theme.Muted.Render("terminal:   "), e.TerminalBefore, e.TerminalAfter))
	sb.WriteString(fmt.Sprintf("%s%dm → %dm\n", theme.Muted.Render("debug time: "), e.DebugTimeBefore, e.DebugTimeAfter))
	if !e.CreatedAt.IsZero() {
		sb.WriteString("\n" + theme.Muted.Render("recorded:  ") + e.CreatedAt.Format("2006-01-02 15:04") + "\n")
	}
	sb.WriteString("\n" + theme.Muted.Render("tab: dashboard  :: palette"))
	return sb.String()
}

func (m Model) loadDetailCmd(id string) tea.Cmd {
	return func() tea.Msg {
		entry, err := m.port.Get(context.Background(), id)
		return DetailLoadedMsg{Entry: entry, Err: err}
	}
}
