package sim

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pipeops-sim/internal/telemetry"
)

// fakeProgram records messages instead of rendering.
type fakeProgram struct {
	msgs []tea.Msg
}

func (p *fakeProgram) Send(msg tea.Msg) {
	p.msgs = append(p.msgs, msg)
}

func TestTUIWriter_WriteSendsLogAndReading(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}

	if err := w.Write(sampleReading("node-a")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(p.msgs) != 2 {
		t.Fatalf("messages sent = %d, want 2", len(p.msgs))
	}
	lm, ok := p.msgs[0].(logMsg)
	if !ok {
		t.Fatalf("first message is %T, want logMsg", p.msgs[0])
	}
	if !strings.Contains(lm.line, "node=node-a") {
		t.Errorf("log line missing node id: %s", lm.line)
	}
	rm, ok := p.msgs[1].(readingMsg)
	if !ok {
		t.Fatalf("second message is %T, want readingMsg", p.msgs[1])
	}
	if rm.NodeID != "node-a" {
		t.Errorf("reading node = %q, want node-a", rm.NodeID)
	}
}

func TestTUIWriter_SetRunState(t *testing.T) {
	p := &fakeProgram{}
	w := &TUIWriter{program: p}
	w.SetRunState(StateRunning)

	if len(p.msgs) != 1 {
		t.Fatalf("messages sent = %d, want 1", len(p.msgs))
	}
	sm, ok := p.msgs[0].(runStateMsg)
	if !ok {
		t.Fatalf("message is %T, want runStateMsg", p.msgs[0])
	}
	if sm.state != StateRunning {
		t.Errorf("state = %v, want %v", sm.state, StateRunning)
	}
}

func TestTUIModel_ReadingUpdatesTable(t *testing.T) {
	m := newTUIModel(testConfig())
	row := sampleReading("node-b")
	row.Status = telemetry.StatusCritical

	next, _ := m.Update(readingMsg{row})
	model := next.(tuiModel)

	view := model.table.View()
	if !strings.Contains(view, "5.50") {
		t.Errorf("table missing pressure value:\n%s", view)
	}
	if !strings.Contains(view, telemetry.StatusCritical) {
		t.Errorf("table missing status:\n%s", view)
	}
}

func TestTUIModel_PauseKeyInvokesCallback(t *testing.T) {
	m := newTUIModel(testConfig())
	called := make(chan struct{}, 1)
	next, _ := m.Update(setPauseMsg{fn: func() { called <- struct{}{} }})
	model := next.(tuiModel)

	model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})

	// Callback runs on a goroutine.
	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatal("pause callback never invoked")
	}
}
