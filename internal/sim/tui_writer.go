package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"pipeops-sim/internal/config"
	"pipeops-sim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

// readingMsg carries a sensor reading for the node table.
type readingMsg struct{ telemetry.SensorReading }

// runStateMsg carries the current run state.
type runStateMsg struct{ state RunState }

type setPauseMsg struct{ fn func() }
type setResumeMsg struct{ fn func() }

const tuiLogLimit = 1000

// TUIWriter renders telemetry using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.SimulationConfig) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	m := newTUIModel(cfg)
	p := tea.NewProgram(m, tea.WithAltScreen())
	w.program = p
	go func() {
		_ = p.Start()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements TelemetryWriter.
func (w *TUIWriter) Write(row telemetry.SensorReading) error {
	sc := statusColor(row.Status)
	line := fmt.Sprintf("%s[%s]%s %snode=%s%s %spressure=%.2f%s %sflow=%.1f%s %stemp=%.1f%s %svib=%.2f%s %sacoustic=%.1f%s %scorrosion=%.4f%s %sstatus=%s%s",
		colorGray, row.Timestamp.Format(time.RFC3339), colorReset,
		colorWhite(), row.NodeID, colorReset,
		colorGreen, row.Pressure, colorReset,
		colorYellow, row.Flow, colorReset,
		colorMagenta, row.Temperature, colorReset,
		colorCyan, row.Vibration, colorReset,
		colorBlue, row.Acoustic, colorReset,
		colorGray, row.Corrosion, colorReset,
		sc, row.Status, colorReset,
	)
	w.program.Send(logMsg{line: line})
	w.program.Send(readingMsg{row})
	return nil
}

// WriteBatch outputs multiple readings.
func (w *TUIWriter) WriteBatch(rows []telemetry.SensorReading) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// SetRunState updates the run-state indicator in the footer.
func (w *TUIWriter) SetRunState(state RunState) {
	w.program.Send(runStateMsg{state: state})
}

// SetPauseFunc registers a callback invoked when the user presses p.
func (w *TUIWriter) SetPauseFunc(fn func()) {
	w.program.Send(setPauseMsg{fn: fn})
}

// SetResumeFunc registers a callback invoked when the user presses r.
func (w *TUIWriter) SetResumeFunc(fn func()) {
	w.program.Send(setResumeMsg{fn: fn})
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg          *config.SimulationConfig
	table        table.Model
	vp           viewport.Model
	logs         []string
	latest       map[string]telemetry.SensorReading
	nodeOrder    []string
	runState     RunState
	wrap         bool
	autoscroll   bool
	help         bool
	height       int
	headerHeight int
	pause        func()
	resume       func()
}

func newTUIModel(cfg *config.SimulationConfig) tuiModel {
	cols := []table.Column{
		{Title: "Node", Width: 14},
		{Title: "Pressure", Width: 9},
		{Title: "Flow", Width: 7},
		{Title: "Temp", Width: 6},
		{Title: "Vib", Width: 6},
		{Title: "Acoustic", Width: 9},
		{Title: "Corrosion", Width: 10},
		{Title: "Status", Width: 9},
	}
	var order []string
	rows := make([]table.Row, 0, len(cfg.Nodes))
	for _, n := range cfg.Nodes {
		order = append(order, n.ID)
		rows = append(rows, table.Row{n.ID, "-", "-", "-", "-", "-", "-", "-"})
	}
	t := table.New(table.WithColumns(cols), table.WithRows(rows), table.WithHeight(len(rows)+1))
	return tuiModel{
		cfg:        cfg,
		table:      t,
		vp:         viewport.New(0, 0),
		latest:     make(map[string]telemetry.SensorReading),
		nodeOrder:  order,
		runState:   StatePaused,
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		m.vp.Width = msg.Width
		m.height = msg.Height
		m.headerHeight = lipgloss.Height(m.table.View())
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "?", "h", "esc":
				m.help = false
			}
			return m, nil
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p":
			if m.pause != nil {
				go m.pause()
			}
			return m, nil
		case "r":
			if m.resume != nil {
				go m.resume()
			}
			return m, nil
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		case "h", "?":
			m.help = !m.help
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown", "ctrl+n":
				m.vp.LineDown(10)
			case "pgup", "ctrl+p":
				m.vp.LineUp(10)
			default:
				var cmd tea.Cmd
				m.vp, cmd = m.vp.Update(msg)
				return m, cmd
			}
		}
		return m, nil
	case logMsg:
		m.logs = append(m.logs, msg.line)
		if len(m.logs) > tuiLogLimit {
			m.logs = m.logs[len(m.logs)-tuiLogLimit:]
		}
		m.refreshViewport()
	case readingMsg:
		m.latest[msg.NodeID] = msg.SensorReading
		m.refreshTable()
	case runStateMsg:
		m.runState = msg.state
	case setPauseMsg:
		m.pause = msg.fn
	case setResumeMsg:
		m.resume = msg.fn
	}
	return m, nil
}

func (m *tuiModel) refreshTable() {
	rows := make([]table.Row, 0, len(m.nodeOrder))
	for _, id := range m.nodeOrder {
		r, ok := m.latest[id]
		if !ok {
			rows = append(rows, table.Row{id, "-", "-", "-", "-", "-", "-", "-"})
			continue
		}
		sc := statusColor(r.Status)
		rows = append(rows, table.Row{
			id,
			fmt.Sprintf("%.2f", r.Pressure),
			fmt.Sprintf("%.1f", r.Flow),
			fmt.Sprintf("%.1f", r.Temperature),
			fmt.Sprintf("%.2f", r.Vibration),
			fmt.Sprintf("%.1f", r.Acoustic),
			fmt.Sprintf("%.4f", r.Corrosion),
			fmt.Sprintf("%s%s%s", sc, r.Status, colorReset),
		})
	}
	m.table.SetRows(rows)
}

func (m *tuiModel) updateViewportHeight() {
	bottomHeight := lipgloss.Height(m.renderBottom())
	h := m.height - m.headerHeight - bottomHeight - 3
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	if m.help {
		return m.renderHelp()
	}
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{
		m.table.View(),
		divider,
		m.vp.View(),
		divider,
		m.renderBottom(),
	}
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderBottom() string {
	stateColor := lipgloss.Color("9")
	if m.runState == StateRunning {
		stateColor = lipgloss.Color("10")
	} else if m.runState == StateStarting {
		stateColor = lipgloss.Color("11")
	}
	indicator := lipgloss.NewStyle().Foreground(stateColor).Render("●")
	wrapColor := lipgloss.Color("9")
	if m.wrap {
		wrapColor = lipgloss.Color("10")
	}
	scrollColor := lipgloss.Color("10")
	if !m.autoscroll {
		scrollColor = lipgloss.Color("9")
	}
	wrapIndicator := lipgloss.NewStyle().Foreground(wrapColor).Render("●")
	scrollIndicator := lipgloss.NewStyle().Foreground(scrollColor).Render("●")
	return fmt.Sprintf("%s %s | pipeline=%s | Wrap %s | Scroll %s | p pause r resume h help q quit",
		indicator, m.runState, m.cfg.PipelineID, wrapIndicator, scrollIndicator)
}

func (m tuiModel) renderHelp() string {
	lines := []string{
		"Key Bindings:",
		" q  quit",
		" p  pause the simulation",
		" r  resume the simulation",
		" w  toggle log wrapping",
		" s  toggle auto-scroll",
		" h/? toggle this help view",
		"",
		"When auto-scroll is disabled:",
		" j/k or up/down    scroll one line",
		" pgdown/pgup       scroll a page",
	}
	return strings.Join(lines, "\n")
}
