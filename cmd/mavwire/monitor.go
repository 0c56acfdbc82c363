package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/DanWilson00/mavwire/codec"
	"github.com/DanWilson00/mavwire/link"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type monitorModel struct {
	link    *link.Link
	spinner spinner.Model
	counts  map[string]uint64
	last    map[string]*codec.Message
	done    bool
	err     error
}

type messageEvent struct {
	msg *codec.Message
}

type streamDoneEvent struct {
	err error
}

func newMonitorModel(l *link.Link) *monitorModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	return &monitorModel{
		link:    l,
		spinner: s,
		counts:  make(map[string]uint64),
		last:    make(map[string]*codec.Message),
	}
}

func (m *monitorModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case messageEvent:
		m.counts[msg.msg.Name]++
		m.last[msg.msg.Name] = msg.msg

	case streamDoneEvent:
		m.done = true
		m.err = msg.err
	}
	return m, nil
}

func (m *monitorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("mavwire monitor"))
	b.WriteString(" ")
	if m.done {
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("stream failed: %v", m.err)))
		} else {
			b.WriteString("stream ended")
		}
	} else {
		b.WriteString(m.spinner.View())
		b.WriteString("receiving")
	}
	b.WriteString("\n\n")

	s := m.link.Stats()
	b.WriteString(fmt.Sprintf("frames %d", s.FramesReceived))
	if s.CrcErrors > 0 {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(fmt.Sprintf("crc errors %d", s.CrcErrors)))
	}
	if s.UnknownMessages > 0 {
		b.WriteString("  ")
		b.WriteString(errorStyle.Render(fmt.Sprintf("unknown %d", s.UnknownMessages)))
	}
	b.WriteString("\n\n")

	names := make([]string, 0, len(m.counts))
	for name := range m.counts {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		last := m.last[name]
		b.WriteString(fmt.Sprintf("  %s %s  seq %3d  %s\n",
			nameStyle.Render(fmt.Sprintf("%-30s", name)),
			countStyle.Render(fmt.Sprintf("%6d", m.counts[name])),
			last.Seq,
			helpStyle.Render(fieldPreview(last))))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("q quit"))
	return b.String()
}

// fieldPreview renders a truncated, stable view of the latest values.
func fieldPreview(m *codec.Message) string {
	names := make([]string, 0, len(m.Fields))
	for name := range m.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var parts []string
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%v", name, m.Fields[name]))
	}
	preview := strings.Join(parts, " ")
	if len(preview) > 80 {
		preview = preview[:77] + "..."
	}
	return preview
}

func runMonitor(ctx context.Context, l *link.Link, src *link.FileSource) error {
	// Quitting the TUI must also stop the stream pump, not just the view.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := newMonitorModel(l)
	p := tea.NewProgram(model, tea.WithAltScreen())

	if err := l.SubscribeMessages(func(m *codec.Message) {
		p.Send(messageEvent{msg: m})
	}); err != nil {
		return err
	}

	go func() {
		p.Send(streamDoneEvent{err: l.Run(ctx, src)})
	}()

	_, err := p.Run()
	return err
}
