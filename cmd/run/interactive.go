package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	runtimebridge "github.com/wippyai/runtime-bridge"
	"github.com/wippyai/runtime-bridge/channel"
	"github.com/wippyai/runtime-bridge/lifecycle"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	stateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type runtimeEventMsg struct {
	event channel.Event
}

type eventsClosedMsg struct{}

type interactiveModel struct {
	adapter   *lifecycle.Adapter
	container *lifecycle.ManualContainer
	bridge    *channel.Bridge
	sub       *channel.Subscription
	input     textinput.Model
	log       []string
	lastErr   error
}

func runInteractive(eng runtimebridge.Engine, log *zap.Logger) error {
	ctx := context.Background()

	adapter := lifecycle.NewAdapter(eng, lifecycle.WithLogger(log))
	container := lifecycle.NewManualContainer()
	if err := adapter.Attach(ctx, container); err != nil {
		return err
	}

	bridge := channel.NewBridge(adapter.Handle(), channel.WithLogger(log))
	defer bridge.Close()

	channel.DefaultDispatcher().Bind(bridge)
	defer channel.DefaultDispatcher().Unbind(bridge)
	eng.SetReceiver(channel.Receive)

	sub := bridge.Subscribe()
	defer sub.Cancel()

	input := textinput.New()
	input.Placeholder = "payload to send"
	input.Focus()

	m := interactiveModel{
		adapter:   adapter,
		container: container,
		bridge:    bridge,
		sub:       sub,
		input:     input,
	}

	_, err := tea.NewProgram(m).Run()
	return err
}

func waitForEvent(sub *channel.Subscription) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Events()
		if !ok {
			return eventsClosedMsg{}
		}
		return runtimeEventMsg{event: ev}
	}
}

func (m interactiveModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForEvent(m.sub))
}

func (m interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runtimeEventMsg:
		line := msg.event.Name
		if len(msg.event.Data) > 0 {
			line += " " + string(msg.event.Data)
		}
		m.log = append(m.log, eventStyle.Render("⇐ "+line))
		return m, waitForEvent(m.sub)

	case eventsClosedMsg:
		m.log = append(m.log, helpStyle.Render("event stream closed"))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "ctrl+s":
			m.emit(lifecycle.EventStart)
			return m, nil
		case "ctrl+r":
			m.emit(lifecycle.EventResume)
			return m, nil
		case "ctrl+p":
			m.emit(lifecycle.EventPause)
			return m, nil
		case "ctrl+t":
			m.emit(lifecycle.EventStop)
			return m, nil
		case "ctrl+d":
			m.emit(lifecycle.EventDestroy)
			return m, nil
		case "enter":
			payload := strings.TrimSpace(m.input.Value())
			if payload != "" {
				m.lastErr = m.bridge.SendToRuntime(context.Background(), "app", "handle-message", payload)
				if m.lastErr == nil {
					m.log = append(m.log, "⇒ "+payload)
				}
				m.input.SetValue("")
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) emit(ev lifecycle.HostEvent) {
	m.lastErr = m.adapter.OnHostEvent(context.Background(), ev)
}

func (m interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("runtime-bridge"))
	b.WriteString("\n\n")
	b.WriteString("state: ")
	b.WriteString(stateStyle.Render(m.adapter.State().String()))
	b.WriteString("\n\n")

	start := 0
	if len(m.log) > 12 {
		start = len(m.log) - 12
	}
	for _, line := range m.log[start:] {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	b.WriteString(m.input.View())
	b.WriteByte('\n')

	if m.lastErr != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("error: %v", m.lastErr)))
		b.WriteByte('\n')
	}

	b.WriteString(helpStyle.Render("ctrl+s start · ctrl+r resume · ctrl+p pause · ctrl+t stop · ctrl+d destroy · enter send · esc quit"))
	b.WriteByte('\n')

	return b.String()
}
