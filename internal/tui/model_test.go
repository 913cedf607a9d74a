package tui

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/iksnae/eebc-chat/internal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T, stub *internal.StubAdvisor) (Model, *internal.Controller) {
	t.Helper()
	clock := internal.NewFakeClock(time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC))
	ctrl := internal.NewController(stub, internal.WithControllerClock(clock))
	t.Cleanup(ctrl.Close)

	m := NewModel(context.Background(), ctrl, Options{Backend: "http://advisor.test"})
	return update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40}), ctrl
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func typeText(t *testing.T, m Model, s string) Model {
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func press(m Model, k tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: k})
	return next.(Model), cmd
}

// collect runs cmd and flattens batches into their messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func findTurnDone(t *testing.T, cmd tea.Cmd) turnDoneMsg {
	t.Helper()
	for _, msg := range collect(cmd) {
		if done, ok := msg.(turnDoneMsg); ok {
			return done
		}
	}
	t.Fatal("no turnDoneMsg produced")
	return turnDoneMsg{}
}

func TestModelSendSuccess(t *testing.T) {
	stub := &internal.StubAdvisor{
		Fn: func(ctx context.Context, req internal.ChatRequest) (*internal.ChatResponse, error) {
			return &internal.ChatResponse{Answer: "Covered under section 4.", Applies: "yes", Reason: "Large office"}, nil
		},
	}
	m, ctrl := newTestModel(t, stub)

	m = typeText(t, m, "Does the code apply?")
	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)

	// the user message is visible before the request resolves
	assert.True(t, ctrl.Busy())
	assert.Equal(t, 1, ctrl.Transcript().Len())
	assert.Empty(t, m.textarea.Value())
	assert.Contains(t, m.View(), "Does the code apply?")
	assert.Contains(t, m.View(), "thinking")

	done := findTurnDone(t, cmd)
	require.NoError(t, done.err)
	m = update(t, m, done)

	assert.False(t, ctrl.Busy())
	assert.Equal(t, 2, ctrl.Transcript().Len())
	view := m.View()
	assert.Contains(t, view, "Applies: YES")
	assert.Contains(t, view, "Covered under section 4.")
	assert.Equal(t, "Does the code apply?", stub.Requests[0].Message)
}

func TestModelEmptyDraftIsIgnored(t *testing.T) {
	stub := &internal.StubAdvisor{}
	m, ctrl := newTestModel(t, stub)

	m = typeText(t, m, "   ")
	_, cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, 0, ctrl.Transcript().Len())
	assert.False(t, ctrl.Busy())
	assert.Equal(t, 0, stub.Calls())
}

func TestModelSendWhileBusy(t *testing.T) {
	release := make(chan struct{})
	stub := &internal.StubAdvisor{
		Fn: func(ctx context.Context, req internal.ChatRequest) (*internal.ChatResponse, error) {
			<-release
			return &internal.ChatResponse{Answer: "ok"}, nil
		},
	}
	m, ctrl := newTestModel(t, stub)

	m = typeText(t, m, "first")
	m, first := press(m, tea.KeyEnter)
	require.NotNil(t, first)

	m = typeText(t, m, "second")
	m, second := press(m, tea.KeyEnter)
	assert.Nil(t, second)
	assert.Equal(t, 1, ctrl.Transcript().Len())
	assert.Equal(t, "second", m.textarea.Value())

	close(release)
	m = update(t, m, findTurnDone(t, first))
	assert.False(t, ctrl.Busy())
	assert.Equal(t, 2, ctrl.Transcript().Len())
	assert.Equal(t, 1, stub.Calls())
}

func TestModelBackendFailureShowsToast(t *testing.T) {
	stub := &internal.StubAdvisor{
		Fn: func(ctx context.Context, req internal.ChatRequest) (*internal.ChatResponse, error) {
			return nil, &internal.BackendError{StatusCode: 500, Body: "server overloaded"}
		},
	}
	m, ctrl := newTestModel(t, stub)

	m = typeText(t, m, "hello")
	m, cmd := press(m, tea.KeyEnter)
	done := findTurnDone(t, cmd)
	require.Error(t, done.err)
	m = update(t, m, done)

	assert.False(t, ctrl.Busy())
	assert.Equal(t, 1, ctrl.Transcript().Len())
	view := m.View()
	assert.Contains(t, view, "500")
	assert.Contains(t, view, "server overloaded")

	m, _ = press(m, tea.KeyEsc)
	_, ok := ctrl.Notifier().Current()
	assert.False(t, ok)
	assert.NotContains(t, m.View(), "server overloaded")
}

func TestModelDrawer(t *testing.T) {
	stub := &internal.StubAdvisor{}
	m, ctrl := newTestModel(t, stub)

	m, _ = press(m, tea.KeyCtrlB)
	require.True(t, ctrl.Form().IsOpen())
	assert.Contains(t, m.View(), "Building details")

	m = typeText(t, m, "Colombo")
	assert.Equal(t, "Colombo", ctrl.Form().Get(internal.FieldDistrict))

	m, _ = press(m, tea.KeyTab)
	m = typeText(t, m, "office")
	assert.Equal(t, "office", ctrl.Form().Get(internal.FieldBuildingType))

	m, _ = press(m, tea.KeyTab)
	m, _ = press(m, tea.KeyRight)
	assert.Equal(t, "true", ctrl.Form().Get(internal.FieldIsNewBuilding))
	m, _ = press(m, tea.KeyRight)
	assert.Equal(t, "false", ctrl.Form().Get(internal.FieldIsNewBuilding))
	m, _ = press(m, tea.KeyRight)
	assert.Equal(t, "", ctrl.Form().Get(internal.FieldIsNewBuilding))

	m, _ = press(m, tea.KeyShiftTab)
	m, _ = press(m, tea.KeyShiftTab)
	assert.Equal(t, internal.FieldDistrict, m.drawer.focused())

	m, _ = press(m, tea.KeyEsc)
	assert.False(t, ctrl.Form().IsOpen())

	// composer owns keystrokes again
	m = typeText(t, m, "what applies?")
	m, cmd := press(m, tea.KeyEnter)
	update(t, m, findTurnDone(t, cmd))

	require.Len(t, stub.Requests, 1)
	got := stub.Requests[0].Context
	require.NotNil(t, got)
	require.NotNil(t, got.District)
	assert.Equal(t, "Colombo", *got.District)
	require.NotNil(t, got.BuildingType)
	assert.Equal(t, "office", *got.BuildingType)
	assert.Nil(t, got.IsNewBuilding)
}

func TestModelSlashCommands(t *testing.T) {
	stub := &internal.StubAdvisor{}

	t.Run("help", func(t *testing.T) {
		m, _ := newTestModel(t, stub)
		m = typeText(t, m, "/help")
		m, _ = press(m, tea.KeyEnter)
		assert.Contains(t, m.View(), "/export <format> [path]")
	})

	t.Run("context", func(t *testing.T) {
		m, ctrl := newTestModel(t, stub)
		require.NoError(t, ctrl.Form().Set(internal.FieldDistrict, "Kandy"))
		m = typeText(t, m, "/context")
		m, _ = press(m, tea.KeyEnter)
		assert.Contains(t, m.View(), "district: Kandy")
		assert.Equal(t, 0, ctrl.Transcript().Len())
	})

	t.Run("export", func(t *testing.T) {
		m, ctrl := newTestModel(t, stub)
		_, err := ctrl.Send(context.Background(), "hello")
		require.NoError(t, err)

		path := filepath.Join(t.TempDir(), "chat.json")
		m = typeText(t, m, "/export json "+path)
		m, _ = press(m, tea.KeyEnter)
		assert.FileExists(t, path)
		assert.Contains(t, m.View(), "Exported 2 messages")
	})

	t.Run("export bad format", func(t *testing.T) {
		m, ctrl := newTestModel(t, stub)
		m = typeText(t, m, "/export pdf")
		_, _ = press(m, tea.KeyEnter)
		n, ok := ctrl.Notifier().Current()
		require.True(t, ok)
		assert.Contains(t, n.Message, "unsupported format")
	})

	t.Run("unknown", func(t *testing.T) {
		m, ctrl := newTestModel(t, stub)
		m = typeText(t, m, "/frobnicate")
		_, _ = press(m, tea.KeyEnter)
		n, ok := ctrl.Notifier().Current()
		require.True(t, ok)
		assert.Contains(t, n.Message, "Unknown command")
	})

	t.Run("quit", func(t *testing.T) {
		m, _ := newTestModel(t, stub)
		m = typeText(t, m, "/quit")
		_, cmd := press(m, tea.KeyEnter)
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}
