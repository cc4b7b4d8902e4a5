package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"resonant/field"
	"resonant/pace"
	"resonant/session"
)

var logChannel = make(chan tea.Msg, 1000)
var uiActive = false

type LogEvent struct{ Msg string }

type fieldTickMsg time.Time
type autosaveTickMsg time.Time

// Autosave due-check period; the cadence itself comes from the field.
const autosaveCheck = 2 * time.Second

const paneWidth = 72

// ANSI backgrounds for the status bar tint bands.
const (
	tintLowBG = "\033[41;30m"
	tintMidBG = "\033[43;30m"
	tintOKBG  = "\033[42;30m"
	tintReset = "\033[0m"
)

type editorModel struct {
	controller *field.Controller
	sched      *pace.Scheduler
	store      *session.Store

	sessionID   string
	content     []rune
	cursor      int
	currentFile string
	dirty       bool

	state        *field.State
	prevHarmony  float64
	lastHarmony  float64
	autosaveNote string
	lastSaveAt   time.Time

	glowTicks int
	logDump   []string
}

func StartEditorUI(controller *field.Controller, store *session.Store, restored *session.Data) error {
	m := editorModel{
		controller:   controller,
		sched:        pace.NewScheduler(nil),
		store:        store,
		autosaveNote: "No autosave yet",
		lastSaveAt:   time.Now(),
	}
	m.state = controller.State()
	m.lastHarmony = m.state.Harmony
	m.prevHarmony = m.state.Harmony

	if restored != nil {
		m.sessionID = restored.SessionID
		m.content = []rune(restored.Text)
		m.cursor = len(m.content)
		m.currentFile = restored.CurrentFile
		m.lastHarmony = restored.LastHarmony
		m.autosaveNote = "Restored session from " + restored.UpdatedAtUTC.Format(time.RFC3339)
	}

	uiActive = true
	defer func() { uiActive = false }()

	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("ui error: %w", err)
	}
	return nil
}

func (m editorModel) Init() tea.Cmd {
	return tea.Batch(
		fieldTick(pace.ActivePeriod),
		autosaveTick(),
		waitForLog(),
	)
}

func fieldTick(period time.Duration) tea.Cmd {
	return tea.Tick(period, func(t time.Time) tea.Msg {
		return fieldTickMsg(t)
	})
}

func autosaveTick() tea.Cmd {
	return tea.Tick(autosaveCheck, func(t time.Time) tea.Msg {
		return autosaveTickMsg(t)
	})
}

func waitForLog() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-logChannel:
			return msg
		case <-time.After(100 * time.Millisecond):
			return nil
		}
	}
}

func (m editorModel) text() string {
	return string(m.content)
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := msg.(type) {

	case tea.KeyMsg:
		switch v.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.closeSession()
			return m, tea.Quit

		case tea.KeyCtrlS:
			if err := m.saveDocument(); err != nil {
				Log("❌ Save failed: %v", err)
			}
			return m, waitForLog()

		case tea.KeyEnter:
			m.insert('\n')
			return m, waitForLog()

		case tea.KeySpace:
			m.insert(' ')
			return m, waitForLog()

		case tea.KeyBackspace:
			if m.cursor > 0 {
				m.content = append(m.content[:m.cursor-1], m.content[m.cursor:]...)
				m.cursor--
				m.markDirty()
			}
			return m, waitForLog()

		case tea.KeyLeft:
			if m.cursor > 0 {
				m.cursor--
			}
			return m, waitForLog()

		case tea.KeyRight:
			if m.cursor < len(m.content) {
				m.cursor++
			}
			return m, waitForLog()

		case tea.KeyRunes:
			for _, r := range v.Runes {
				m.insert(r)
			}
			return m, waitForLog()

		default:
			return m, waitForLog()
		}

	case fieldTickMsg:
		if state := m.sched.Tick(m.controller, m.text()); state != nil {
			m.state = state
			m.prevHarmony = m.lastHarmony
			m.lastHarmony = state.Harmony
		}
		if d := m.controller.PollDischarge(); d != nil {
			m.glowTicks = 8
			Log("✨ Discharge %s at harmony %.3f", d.ID[:8], d.Harmony)
		} else if m.glowTicks > 0 {
			m.glowTicks--
		}
		return m, fieldTick(m.sched.Period(time.Now()))

	case autosaveTickMsg:
		cadence := m.controller.AutosaveInterval(m.text())
		if m.dirty && time.Since(m.lastSaveAt) >= cadence {
			if err := m.writeSnapshot(); err != nil {
				m.autosaveNote = fmt.Sprintf("Autosave failed: %v", err)
			} else {
				m.autosaveNote = "Autosaved session snapshot"
			}
		}
		return m, autosaveTick()

	case LogEvent:
		m.logDump = append(m.logDump, v.Msg)
		if len(m.logDump) > 3 {
			m.logDump = m.logDump[len(m.logDump)-3:]
		}
		return m, waitForLog()

	default:
		return m, waitForLog()
	}
}

func (m *editorModel) insert(r rune) {
	m.content = append(m.content[:m.cursor], append([]rune{r}, m.content[m.cursor:]...)...)
	m.cursor++
	m.markDirty()
}

func (m *editorModel) markDirty() {
	m.dirty = true
	m.sched.NoteInput(time.Now())
}

func (m *editorModel) cursorLineCol() (int, int) {
	line, col := 0, 0
	for i := 0; i < m.cursor && i < len(m.content); i++ {
		if m.content[i] == '\n' {
			line++
			col = 0
		} else {
			col++
		}
	}
	return line, col
}

func (m *editorModel) writeSnapshot() error {
	line, col := m.cursorLineCol()
	err := m.store.Save(session.Data{
		SessionID:   m.sessionID,
		Text:        m.text(),
		CurrentFile: m.currentFile,
		CursorLine:  line,
		CursorCol:   col,
		LastHarmony: m.lastHarmony,
		Attractor:   m.controller.Attractor(),
		PeakHarmony: m.controller.History().Peak(),
	})
	if err != nil {
		return err
	}
	m.lastSaveAt = time.Now()
	m.dirty = false
	return nil
}

func (m *editorModel) saveDocument() error {
	if m.currentFile == "" {
		m.currentFile = "untitled.txt"
	}
	if err := os.WriteFile(m.currentFile, []byte(m.text()), 0o644); err != nil {
		return err
	}
	Log("💾 Saved %s", m.currentFile)
	return m.writeSnapshot()
}

// closeSession applies the end-of-session attractor drift and writes the
// final snapshot. Errors here only get logged; the app is quitting.
func (m *editorModel) closeSession() {
	m.controller.CloseSession()
	if err := m.writeSnapshot(); err != nil {
		Log("❌ Final snapshot failed: %v", err)
	}
}

func harmonyArrow(delta float64) string {
	if delta > 0.005 {
		return "↑"
	}
	if delta < -0.005 {
		return "↓"
	}
	return "→"
}

func tintPrefix(t field.Tint) string {
	switch t {
	case field.TintLow:
		return tintLowBG
	case field.TintMid:
		return tintMidBG
	default:
		return tintOKBG
	}
}

func (m editorModel) View() string {
	var b strings.Builder

	sep := strings.Repeat("─", paneWidth) + "\n"

	b.WriteString("RESONANT NOTEPAD\n")
	b.WriteString(sep)

	// EDITOR
	text := m.text()
	if strings.TrimSpace(text) == "" && m.cursor == 0 {
		b.WriteString("· " + m.controller.Placeholder() + "\n")
	}
	cursor := m.cursor
	if cursor > len(m.content) {
		cursor = len(m.content)
	}
	withCursor := string(m.content[:cursor]) + "_" + string(m.content[cursor:])
	b.WriteString(withCursor + "\n")
	b.WriteString(sep)

	// TELEMETRY
	s := m.state
	delta := m.lastHarmony - m.prevHarmony
	sign := ""
	if delta >= 0 {
		sign = "+"
	}
	fmt.Fprintf(&b, "L %.3f  J %.3f  P %.3f  W %.3f  H %.3f %s %s%.3f\n",
		s.L, s.J, s.P, s.W, s.Harmony, harmonyArrow(delta), sign, delta)

	hist := m.controller.History()
	fmt.Fprintf(&b, "trend %+.4f  stability %.3f  peak %.3f  charge %.2f  mode %s\n",
		hist.Trend(), hist.Stability(), hist.Peak(), m.controller.Voltage().Charge(), m.sched.Mode())

	b.WriteString("☉ " + m.controller.Guidance(text) + "\n")

	if m.glowTicks > 0 {
		b.WriteString("✨ the field discharges — a bright, brief alignment ✨\n")
	}
	b.WriteString(sep)

	// LOG DUMP
	for _, line := range m.logDump {
		b.WriteString("  " + line + "\n")
	}

	// STATUS BAR
	fileName := "Untitled"
	if m.currentFile != "" {
		fileName = filepath.Base(m.currentFile)
	}
	dirtyMark := ""
	if m.dirty {
		dirtyMark = "*"
	}
	words := field.WordCount(text)
	cadence := m.controller.AutosaveInterval(text)
	status := fmt.Sprintf(" %s%s | Words: %d | Chars: %d | Harmony: %.3f %s | Autosave: %ds | %s ",
		fileName, dirtyMark, words, len(text), m.lastHarmony,
		harmonyArrow(delta), int(cadence.Seconds()), m.autosaveNote)
	b.WriteString(tintPrefix(m.controller.HarmonyTint()) + status + tintReset + "\n")

	return b.String()
}

func Log(format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)

	// Write to stderr if no UI
	if !uiActive {
		fmt.Fprintln(os.Stderr, msg)
	}

	// Always queue logs to channel when UI is active
	if uiActive {
		select {
		case logChannel <- LogEvent{Msg: msg}:
		default:
			// drop if overfilled to protect the pipe
		}
	}

	return msg
}
