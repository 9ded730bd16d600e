package rover

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"roverd/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// entryMsg carries a log entry into the model.
type entryMsg struct{ telemetry.LogEntry }

// syncMsg carries a sync attempt into the model.
type syncMsg struct{ telemetry.SyncRow }

// TUIWriter renders rover activity in a live terminal dashboard.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter() *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// Write implements LogWriter.
func (w *TUIWriter) Write(entry telemetry.LogEntry) error {
	w.program.Send(entryMsg{entry})
	return nil
}

// WriteSync implements syncer.ResultWriter.
func (w *TUIWriter) WriteSync(row telemetry.SyncRow) error {
	w.program.Send(syncMsg{row})
	return nil
}

// Quit shuts the dashboard down without signaling the process.
func (w *TUIWriter) Quit() {
	w.sendSignal.Store(false)
	if p, ok := w.program.(*tea.Program); ok {
		p.Quit()
	}
	<-w.done
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	borderStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

const maxLogLines = 200

type tuiModel struct {
	latest    telemetry.LogEntry
	haveEntry bool
	lastSync  telemetry.SyncRow
	haveSync  bool
	entries   int

	obstacleTbl table.Model
	log         viewport.Model
	logLines    []string
	width       int
	height      int
	ready       bool
}

func newTUIModel() tuiModel {
	cols := []table.Column{
		{Title: "Direction", Width: 10},
		{Title: "IR", Width: 10},
	}
	tbl := table.New(table.WithColumns(cols), table.WithHeight(6))
	return tuiModel{obstacleTbl: tbl}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		logHeight := m.height - 14
		if logHeight < 3 {
			logHeight = 3
		}
		if !m.ready {
			m.log = viewport.New(m.width-4, logHeight)
			m.ready = true
		} else {
			m.log.Width = m.width - 4
			m.log.Height = logHeight
		}
		m.refreshLog()
	case entryMsg:
		m.latest = msg.LogEntry
		m.haveEntry = true
		m.entries++
		m.appendLine(formatEntryLine(msg.LogEntry, m.width))
		m.refreshObstacles()
	case syncMsg:
		m.lastSync = msg.SyncRow
		m.haveSync = true
		m.appendLine(formatSyncLine(msg.SyncRow))
	}
	return m, nil
}

func (m *tuiModel) appendLine(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.refreshLog()
}

func (m *tuiModel) refreshLog() {
	if !m.ready {
		return
	}
	var content string
	for _, l := range m.logLines {
		content += l + "\n"
	}
	m.log.SetContent(wordwrap.String(content, m.log.Width))
	m.log.GotoBottom()
}

func (m *tuiModel) refreshObstacles() {
	flag := func(b bool) string {
		if b {
			return "BLOCKED"
		}
		return "clear"
	}
	o := m.latest.Obstacles
	m.obstacleTbl.SetRows([]table.Row{
		{telemetry.DirFront, flag(o.Front)},
		{telemetry.DirBack, flag(o.Back)},
		{telemetry.DirLeft, flag(o.Left)},
		{telemetry.DirRight, flag(o.Right)},
	})
}

func (m tuiModel) View() string {
	if !m.ready {
		return "starting dashboard..."
	}

	header := titleStyle.Render("roverd dashboard") + "  " +
		labelStyle.Render("entries=") + valueStyle.Render(fmt.Sprintf("%d", m.entries)) + "  " +
		labelStyle.Render("q to quit")

	var status string
	if m.haveEntry {
		e := m.latest
		status = fmt.Sprintf("%s (%.2f, %.2f) @ %.1f°   %s %.1f°C  %s %.1f%%   %s %.2f (%.3fV)   %s %s",
			labelStyle.Render("pos"), e.Position.X, e.Position.Y, e.Position.Heading,
			labelStyle.Render("temp"), e.Temperature,
			labelStyle.Render("hum"), e.Humidity,
			labelStyle.Render("pH"), e.SoilPH, e.SoilVoltage,
			labelStyle.Render("action"), renderAction(e.Action))
	} else {
		status = labelStyle.Render("waiting for telemetry...")
	}

	var syncLine string
	if m.haveSync {
		outcome := okStyle.Render("ok")
		if !m.lastSync.OK {
			outcome = errStyle.Render("failed")
		}
		syncLine = fmt.Sprintf("%s #%d %s (%s)",
			labelStyle.Render("sync"), m.lastSync.Attempt, outcome, m.lastSync.Duration.Round(time.Millisecond))
	}

	top := lipgloss.JoinVertical(lipgloss.Left, header, status, syncLine)
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		borderStyle.Render(m.obstacleTbl.View()),
		borderStyle.Render(m.log.View()))
	return lipgloss.JoinVertical(lipgloss.Left, top, body)
}

func renderAction(action string) string {
	switch action {
	case telemetry.ActionStop:
		return errStyle.Render(action)
	case telemetry.ActionStudy:
		return warnStyle.Render(action)
	default:
		return okStyle.Render(action)
	}
}

func formatEntryLine(e telemetry.LogEntry, width int) string {
	line := fmt.Sprintf("%s %s (%.2f, %.2f) %s",
		labelStyle.Render(e.Timestamp.Format(time.RFC3339)),
		renderAction(e.Action), e.Position.X, e.Position.Y, e.Reason)
	if width > 0 {
		return wordwrap.String(line, width-6)
	}
	return line
}

func formatSyncLine(r telemetry.SyncRow) string {
	outcome := okStyle.Render("synced")
	detail := r.Source
	if !r.OK {
		outcome = errStyle.Render("sync failed")
		detail = r.Error
	}
	return fmt.Sprintf("%s %s #%d %s",
		labelStyle.Render(r.Timestamp.Format(time.RFC3339)), outcome, r.Attempt, detail)
}
