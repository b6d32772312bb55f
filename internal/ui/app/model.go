package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	metricsdto "mdash/internal/modules/metrics/dto"
	plugindto "mdash/internal/modules/plugin/dto"
	reportdto "mdash/internal/modules/report/dto"
	"mdash/internal/ui/components"
	"mdash/internal/ui/theme"
	dashboardview "mdash/internal/ui/views/dashboard"
	entriesview "mdash/internal/ui/views/entries"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type metricsPort interface {
	Add(ctx context.Context, input metricsdto.AddEntryInput) (metricsdto.EntryOutput, error)
	List(ctx context.Context) ([]metricsdto.EntryOutput, error)
	Get(ctx context.Context, id string) (metricsdto.EntryOutput, error)
	ClearAll(ctx context.Context) error
	Import(ctx context.Context, rawJSON []byte) (metricsdto.ImportOutput, error)
	Export(ctx context.Context) (metricsdto.ExportOutput, error)
	LoadSample(ctx context.Context) (metricsdto.ImportOutput, error)
	Reindex(ctx context.Context) error
}

type reportPort interface {
	Write(ctx context.Context, title string) (reportdto.WriteOutput, error)
}

type pluginPort interface {
	ListCommands(ctx context.Context, pluginName string) ([]plugindto.CommandInfo, error)
	Export(ctx context.Context, input plugindto.ExecuteInput) (plugindto.ExecuteOutput, error)
	Analyze(ctx context.Context, input plugindto.ExecuteInput) (plugindto.ExecuteOutput, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabEntries tabID = iota
	tabDashboard
	tabCount
)

var tabLabels = [tabCount]string{
	"Entries", "Dashboard",
}

// ─── async messages ───────────────────────────────────────────────────────────

type mutationDoneMsg struct {
	status string
	err    error
}

type exportDoneMsg struct {
	path string
	err  error
}

type reportWrittenMsg struct {
	out reportdto.WriteOutput
	err error
}

type pluginExecDoneMsg struct {
	out  plugindto.ExecuteOutput
	path string
	err  error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Refresh key.Binding
	Sample  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Sample:  key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "load sample")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Refresh, k.Sample},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the global help
// overlay, and the command palette. All business logic is delegated to port
// interfaces; all rendering is delegated to sub-views.
type Model struct {
	workspacePath string

	// ports used at this orchestration level only
	metrics metricsPort
	report  reportPort
	plugin  pluginPort

	// sub-views (one per tab)
	entriesView entriesview.Model
	dashView    dashboardview.Model

	// global UI state
	activeTab    tabID
	keys         keyMap
	help         help.Model
	showHelp     bool
	palette      components.Palette
	confirmClear bool
	status       string
	width        int
	height       int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(
	workspacePath string,
	metrics metricsPort,
	stats dashboardview.StatsPort,
	report reportPort,
	plugin pluginPort,
) Model {
	return Model{
		workspacePath: workspacePath,
		metrics:       metrics,
		report:        report,
		plugin:        plugin,
		entriesView:   entriesview.New(metricsPortBridge{p: metrics}),
		dashView:      dashboardview.New(stats),
		activeTab:     tabEntries,
		keys:          defaultKeys(),
		help:          help.New(),
		palette:       components.NewPalette(),
		status:        "ready",
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.entriesView.Init(),
		m.dashView.Init(),
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()

	case mutationDoneMsg:
		if msg.err != nil {
			m.status = msg.status + " failed: " + msg.err.Error()
			return m, nil
		}
		m.status = msg.status
		return m, m.refreshCmd()

	case exportDoneMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "exported to " + msg.path
		}

	case reportWrittenMsg:
		if msg.err != nil {
			m.status = "report failed: " + msg.err.Error()
		} else {
			m.status = fmt.Sprintf("report written: %s (%d entries)", msg.out.Path, msg.out.EntryCount)
		}

	case pluginExecDoneMsg:
		if msg.err != nil {
			m.status = "plugin failed: " + msg.err.Error()
		} else if msg.path != "" {
			m.status = fmt.Sprintf("plugin %s/%s wrote %s", msg.out.PluginName, msg.out.CommandID, msg.path)
		} else {
			m.status = fmt.Sprintf("plugin %s/%s: %s", msg.out.PluginName, msg.out.CommandID, firstLine(msg.out.Stdout))
		}

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		if m.confirmClear {
			if msg.String() == "y" {
				m.confirmClear = false
				return m, m.clearCmd()
			}
			m.confirmClear = false
			m.status = "clear cancelled"
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
		case "?":
			m.showHelp = !m.showHelp
		case ":":
			cmds = append(cmds, m.palette.Open())
			return m, tea.Batch(cmds...)
		case "r":
			return m, m.refreshCmd()
		case "S":
			return m, m.sampleCmd()
		}
	}

	// Propagate the message to the active tab's sub-view. Loaded messages go
	// to both so a mutation refresh lands everywhere.
	switch msg.(type) {
	case entriesview.EntriesLoadedMsg, entriesview.DetailLoadedMsg, dashboardview.StatsLoadedMsg:
		var eCmd, dCmd tea.Cmd
		m.entriesView, eCmd = m.entriesView.Update(msg)
		m.dashView, dCmd = m.dashView.Update(msg)
		cmds = append(cmds, eCmd, dCmd)
	default:
		var tabCmd tea.Cmd
		switch m.activeTab {
		case tabEntries:
			m.entriesView, tabCmd = m.entriesView.Update(msg)
		case tabDashboard:
			m.dashView, tabCmd = m.dashView.Update(msg)
		}
		cmds = append(cmds, tabCmd)
	}

	return m, tea.Batch(cmds...)
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabEntries:
		return m.entriesView.View()
	case tabDashboard:
		return m.dashView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "mdash  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.confirmClear {
		left = theme.Bad.Render("clear all entries? press y to confirm")
	}
	right := theme.Muted.Render("?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "entry:add":
		if len(parts) < 8 {
			m.status = "usage: entry:add <date> <tcBefore> <tcAfter> <termBefore> <termAfter> <dbgBefore> <dbgAfter> [task...]"
			return m, nil
		}
		nums := make([]int, 6)
		for i := 0; i < 6; i++ {
			n, err := strconv.Atoi(parts[i+2])
			if err != nil {
				m.status = "invalid number: " + parts[i+2]
				return m, nil
			}
			nums[i] = n
		}
		task := strings.Join(parts[8:], " ")
		return m, m.addEntryCmd(metricsdto.AddEntryInput{
			Date:            parts[1],
			ToolCallsBefore: nums[0],
			ToolCallsAfter:  nums[1],
			TerminalBefore:  nums[2],
			TerminalAfter:   nums[3],
			DebugTimeBefore: nums[4],
			DebugTimeAfter:  nums[5],
			TaskDescription: task,
		})

	case "data:sample":
		return m, m.sampleCmd()

	case "data:clear":
		m.confirmClear = true
		return m, nil

	case "data:import":
		if len(parts) < 2 {
			m.status = "usage: data:import <file>"
			return m, nil
		}
		return m, m.importCmd(parts[1])

	case "data:export":
		path := ""
		if len(parts) >= 2 {
			path = parts[1]
		}
		return m, m.exportCmd(path)

	case "data:reindex":
		return m, m.reindexCmd()

	case "report:write":
		title := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))
		return m, m.reportCmd(title)

	case "plugin:export":
		if len(parts) < 3 {
			m.status = "usage: plugin:export <plugin> <command>"
			return m, nil
		}
		return m, m.pluginExportCmd(parts[1], parts[2])

	case "plugin:analyze":
		if len(parts) < 3 {
			m.status = "usage: plugin:analyze <plugin> <command> [json]"
			return m, nil
		}
		prefix := parts[0] + " " + parts[1] + " " + parts[2]
		inputJSON := strings.TrimSpace(strings.TrimPrefix(input, prefix))
		return m, m.pluginAnalyzeCmd(parts[1], parts[2], inputJSON)

	case "plugin:commands":
		if len(parts) < 2 {
			m.status = "usage: plugin:commands <plugin>"
			return m, nil
		}
		return m, m.pluginCommandsCmd(parts[1])

	case "view:refresh":
		return m, m.refreshCmd()

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	if m.activeTab == tabEntries {
		return m.entriesView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.entriesView, _ = m.entriesView.Update(sz)
	m.dashView, _ = m.dashView.Update(sz)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) refreshCmd() tea.Cmd {
	return tea.Batch(m.entriesView.Reload(), m.dashView.Reload())
}

func (m Model) addEntryCmd(input metricsdto.AddEntryInput) tea.Cmd {
	return func() tea.Msg {
		entry, err := m.metrics.Add(context.Background(), input)
		if err != nil {
			return mutationDoneMsg{status: "add entry", err: err}
		}
		return mutationDoneMsg{status: "added entry " + entry.Date}
	}
}

func (m Model) sampleCmd() tea.Cmd {
	return func() tea.Msg {
		out, err := m.metrics.LoadSample(context.Background())
		if err != nil {
			return mutationDoneMsg{status: "load sample", err: err}
		}
		return mutationDoneMsg{status: fmt.Sprintf("loaded %d sample entries", out.Count)}
	}
}

func (m Model) clearCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.metrics.ClearAll(context.Background()); err != nil {
			return mutationDoneMsg{status: "clear", err: err}
		}
		return mutationDoneMsg{status: "all entries cleared"}
	}
}

func (m Model) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		raw, err := os.ReadFile(path)
		if err != nil {
			return mutationDoneMsg{status: "import", err: err}
		}
		out, err := m.metrics.Import(context.Background(), raw)
		if err != nil {
			return mutationDoneMsg{status: "import", err: err}
		}
		return mutationDoneMsg{status: fmt.Sprintf("imported %d entries", out.Count)}
	}
}

func (m Model) exportCmd(path string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.metrics.Export(context.Background())
		if err != nil {
			return exportDoneMsg{err: err}
		}
		if path == "" {
			path = filepath.Join(m.workspacePath, out.Filename)
		}
		if err := os.WriteFile(path, out.Payload, 0o644); err != nil {
			return exportDoneMsg{err: err}
		}
		return exportDoneMsg{path: path}
	}
}

func (m Model) reindexCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.metrics.Reindex(context.Background()); err != nil {
			return mutationDoneMsg{status: "reindex", err: err}
		}
		return mutationDoneMsg{status: "index rebuilt"}
	}
}

func (m Model) reportCmd(title string) tea.Cmd {
	return func() tea.Msg {
		out, err := m.report.Write(context.Background(), title)
		return reportWrittenMsg{out: out, err: err}
	}
}

func (m Model) pluginExportCmd(pluginName, commandID string) tea.Cmd {
	return func() tea.Msg {
		if m.plugin == nil {
			return pluginExecDoneMsg{err: fmt.Errorf("plugin adapter not configured")}
		}
		ctx := context.Background()
		collection, err := m.metrics.Export(ctx)
		if err != nil {
			return pluginExecDoneMsg{err: err}
		}
		out, err := m.plugin.Export(ctx, plugindto.ExecuteInput{
			PluginName:     pluginName,
			CommandID:      commandID,
			CollectionJSON: string(collection.Payload),
			WorkspacePath:  m.workspacePath,
			Cwd:            m.workspacePath,
		})
		if err != nil {
			return pluginExecDoneMsg{err: err}
		}
		if out.Rendered == "" {
			return pluginExecDoneMsg{out: out}
		}
		ext := "txt"
		if commands, cmdErr := m.plugin.ListCommands(ctx, pluginName); cmdErr == nil {
			for _, c := range commands {
				if c.ID == commandID && c.FileExt != "" {
					ext = c.FileExt
				}
			}
		}
		path := filepath.Join(m.workspacePath, fmt.Sprintf("mdash-export-%s.%s", commandID, ext))
		if err := os.WriteFile(path, []byte(out.Rendered), 0o644); err != nil {
			return pluginExecDoneMsg{err: err}
		}
		return pluginExecDoneMsg{out: out, path: path}
	}
}

func (m Model) pluginAnalyzeCmd(pluginName, commandID, inputJSON string) tea.Cmd {
	return func() tea.Msg {
		if m.plugin == nil {
			return pluginExecDoneMsg{err: fmt.Errorf("plugin adapter not configured")}
		}
		ctx := context.Background()
		collection, err := m.metrics.Export(ctx)
		if err != nil {
			return pluginExecDoneMsg{err: err}
		}
		out, err := m.plugin.Analyze(ctx, plugindto.ExecuteInput{
			PluginName:     pluginName,
			CommandID:      commandID,
			InputJSON:      inputJSON,
			CollectionJSON: string(collection.Payload),
			WorkspacePath:  m.workspacePath,
			Cwd:            m.workspacePath,
		})
		return pluginExecDoneMsg{out: out, err: err}
	}
}

func (m Model) pluginCommandsCmd(pluginName string) tea.Cmd {
	return func() tea.Msg {
		if m.plugin == nil {
			return mutationDoneMsg{status: "plugin commands", err: fmt.Errorf("plugin adapter not configured")}
		}
		commands, err := m.plugin.ListCommands(context.Background(), pluginName)
		if err != nil {
			return mutationDoneMsg{status: "plugin commands", err: err}
		}
		ids := make([]string, 0, len(commands))
		for _, c := range commands {
			ids = append(ids, c.ID+" ("+c.Kind+")")
		}
		return mutationDoneMsg{status: pluginName + ": " + strings.Join(ids, ", ")}
	}
}

// ─── port bridges ─────────────────────────────────────────────────────────────
// Each bridge narrows a broad port interface to the minimal interface needed by
// a specific sub-view, keeping view packages free of knowledge about the wider
// port surface.

type metricsPortBridge struct{ p metricsPort }

func (b metricsPortBridge) List(ctx context.Context) ([]metricsdto.EntryOutput, error) {
	return b.p.List(ctx)
}
func (b metricsPortBridge) Get(ctx context.Context, id string) (metricsdto.EntryOutput, error) {
	return b.p.Get(ctx, id)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
