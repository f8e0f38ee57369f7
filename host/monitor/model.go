package monitor

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"gostepper/command"
	"gostepper/core"
)

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Motor colors, indexed by id-1
var motorColors = [command.MaxMotors]string{
	"196", // red
	"208", // orange
	"226", // yellow
	"46",  // green
	"51",  // cyan
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	runStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Bold(true)
)

// Model is the bubbletea model of the watch screen
type Model struct {
	poller   *Poller
	chart    *streamlinechart.Model
	width    int
	height   int
	logs     []string
	last     State
	quitting bool
}

// Messages from the poller
type stateMsg State
type logMsg string

func waitForState(p *Poller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-p.States())
	}
}

func waitForLog(p *Poller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-p.Logs())
	}
}

// NewModel creates the watch screen. Positions are charted between yMin
// and yMax steps.
func NewModel(p *Poller, yMin, yMax float64) Model {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(yMin, yMax),
	)

	for _, id := range motorIDs(p.Selector()) {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(motorColors[id-1]))
		chart.SetDataSetStyles(dataSetName(id), runes.ThinLineStyle, style)
	}

	return Model{
		poller: p,
		chart:  &chart,
	}
}

func (m *Model) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *Model) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

// Init starts listening for poller output
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.poller),
		waitForLog(m.poller),
	)
}

// Update handles window, key and poller messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.Resize(m.chartSize())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case stateMsg:
		state := State(msg)
		for id, pos := range state.Positions {
			m.chart.PushDataSet(dataSetName(id), float64(pos))
		}
		m.chart.DrawAll()
		m.last = state
		return m, waitForState(m.poller)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.poller)
	}

	return m, nil
}

// View renders the screen
func (m Model) View() string {
	if m.quitting {
		return "Monitor stopped.\n"
	}

	var sb strings.Builder

	sb.WriteString(titleStyle.Render("gostepper watch"))
	sb.WriteString(fmt.Sprintf(" - %d Hz", m.poller.Hz()))
	if m.width > 0 {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%dx%d]", m.width, m.height)))
	}
	sb.WriteString("\n\n")

	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	sb.WriteString(m.renderLegend())
	sb.WriteString("\n")

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Foreground(lipgloss.Color("9"))
	if m.width > 4 {
		logStyle = logStyle.Width(m.width - 4)
	}

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Press 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

// renderLegend shows each motor's color, position and run state
func (m Model) renderLegend() string {
	var items []string
	for _, id := range motorIDs(m.poller.Selector()) {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(motorColors[id-1])).Bold(true)
		item := colorStyle.Render("━━") + " " + dataSetName(id)
		if pos, ok := m.last.Positions[id]; ok {
			item += " " + core.Itoa(pos)
		}
		if m.last.Running[id] {
			item += " " + runStyle.Render("▶")
		}
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func dataSetName(id command.MotorID) string {
	return "S" + core.Itoa(int64(id))
}

func motorIDs(sel command.Selector) []command.MotorID {
	var ids []command.MotorID
	for id := command.MotorID(1); id <= command.MaxMotors; id++ {
		if sel.Contains(id) {
			ids = append(ids, id)
		}
	}
	return ids
}
