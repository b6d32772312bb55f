package dashboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	statsdto "mdash/internal/modules/stats/dto"
	"mdash/internal/ui/components"
	"mdash/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

type StatsPort interface {
	Summary(ctx context.Context) (statsdto.SummaryOutput, error)
	Trend(ctx context.Context) ([]statsdto.TrendPointOutput, error)
	ImprovementBars(ctx context.Context) ([]statsdto.BarOutput, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type StatsLoadedMsg struct {
	Summary statsdto.SummaryOutput
	Trend   []statsdto.TrendPointOutput
	Bars    []statsdto.BarOutput
	Err     error
}

// ─── model ───────────────────────────────────────────────────────────────────

type Model struct {
	port    StatsPort
	summary statsdto.SummaryOutput
	trend   []statsdto.TrendPointOutput
	bars    []statsdto.BarOutput
	body    viewport.Model
	spinner spinner.Model
	loading bool
	loadErr error
	width   int
	height  int
}

func New(port StatsPort) Model {
	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Green)

	return Model{
		port:    port,
		body:    vp,
		spinner: sp,
		loading: true,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Reload(), m.spinner.Tick)
}

// Reload recomputes every panel from the current collection.
func (m Model) Reload() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		summary, err := m.port.Summary(ctx)
		if err != nil {
			return StatsLoadedMsg{Err: err}
		}
		trend, err := m.port.Trend(ctx)
		if err != nil {
			return StatsLoadedMsg{Err: err}
		}
		bars, err := m.port.ImprovementBars(ctx)
		if err != nil {
			return StatsLoadedMsg{Err: err}
		}
		return StatsLoadedMsg{Summary: summary, Trend: trend, Bars: bars}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.body.SetContent(m.renderBody())

	case StatsLoadedMsg:
		m.loading = false
		m.loadErr = msg.Err
		if msg.Err == nil {
			m.summary = msg.Summary
			m.trend = msg.Trend
			m.bars = msg.Bars
		}
		m.body.SetContent(m.renderBody())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	if !m.loading {
		var vCmd tea.Cmd
		m.body, vCmd = m.body.Update(msg)
		cmds = append(cmds, vCmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.loading {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Computing stats…")
	}

	pane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Surface1).
		Background(theme.Mantle).
		Width(m.width - 2).
		Height(m.height - 2).
		Render(m.body.View())

	return pane
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	m.body.Width = m.width - 4
	m.body.Height = m.height - 4
}

func (m Model) renderBody() string {
	if m.loadErr != nil {
		return theme.Bad.Render("stats unavailable: " + m.loadErr.Error())
	}
	if m.summary.EntryCount == 0 {
		return theme.Muted.Render("No entries yet — the dashboard fills in once you add metrics")
	}
	chartW := m.body.Width
	if chartW < 40 {
		chartW = 40
	}

	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Summary") + theme.Muted.Render(fmt.Sprintf("  (%d entries)", m.summary.EntryCount)) + "\n\n")
	sb.WriteString(fmt.Sprintf("%s%d%%   %s%d%%   %s%dm (%.1fh)\n\n",
		theme.Muted.Render("avg tool call reduction: "), m.summary.AvgToolCallReduction,
		theme.Muted.Render("avg debug time reduction: "), m.summary.AvgDebugTimeReduction,
		theme.Muted.Render("debug time saved: "), m.summary.TotalMinutesSaved, m.summary.TotalHoursSaved))

	sb.WriteString(components.RenderPair("tool calls", m.summary.ToolCalls.Before, m.summary.ToolCalls.After, chartW) + "\n")
	sb.WriteString(components.RenderPair("terminal", m.summary.Terminal.Before, m.summary.Terminal.After, chartW) + "\n")
	sb.WriteString(components.RenderPair("debug min", m.summary.DebugTime.Before, m.summary.DebugTime.After, chartW) + "\n\n")

	sb.WriteString(theme.Title.Render("Improvement by category") + "\n\n")
	bars := make([]components.Bar, 0, len(m.bars))
	for _, b := range m.bars {
		bars = append(bars, components.Bar{Label: b.Category, Percent: b.Percent})
	}
	sb.WriteString(components.RenderBars(bars, chartW) + "\n\n")

	sb.WriteString(theme.Title.Render("Trend") + theme.Muted.Render("  tool calls (count) / debug time (min)") + "\n\n")
	sb.WriteString(m.renderTrend())
	return sb.String()
}

func (m Model) renderTrend() string {
	if len(m.trend) == 0 {
		return theme.Muted.Render("no data")
	}
	var sb strings.Builder
	for _, p := range m.trend {
		sb.WriteString(fmt.Sprintf("%s  tc %s  dbg %s\n",
			theme.Muted.Render(fmt.Sprintf("%-7s", p.Label)),
			trendCell(p.ToolCallsBefore, p.ToolCallsAfter),
			trendCell(p.DebugTimeBefore, p.DebugTimeAfter)))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func trendCell(before, after int) string {
	arrow := "↓"
	style := lipgloss.NewStyle().Foreground(theme.Green)
	if after > before {
		arrow = "↑"
		style = lipgloss.NewStyle().Foreground(theme.Red)
	} else if after == before {
		arrow = "→"
		style = lipgloss.NewStyle().Foreground(theme.Subtext0)
	}
	return style.Render(fmt.Sprintf("%3d %s %-3d", before, arrow, after))
}
