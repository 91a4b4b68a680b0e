// Package ui renders the demo's reactive graph as a Bubble Tea program.
// The model owns the only goroutine that mutates the graph: key presses and
// data-file reloads both apply their writes inside Update, which keeps the
// core's single-threaded dispatch contract intact. Rendering follows the
// re-materialize contract: every View walks the live aggregate from
// scratch, no incremental diffing.
package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Edward-Lombe/besix/internal/aggregate"
	"github.com/Edward-Lombe/besix/internal/app"
	"github.com/Edward-Lombe/besix/internal/config"
	"github.com/Edward-Lombe/besix/internal/log"
	"github.com/Edward-Lombe/besix/internal/pubsub"
	"github.com/Edward-Lombe/besix/internal/watcher"
)

const maxFeedLines = 8

// reloadMsg reports that the watcher saw the data file change.
type reloadMsg struct{}

// logMsg carries one tailed log line.
type logMsg string

// Model is the root Bubble Tea model.
type Model struct {
	graph    *app.Graph
	styles   styles
	dataFile string

	ctx         context.Context
	watchCh     <-chan struct{}
	logListener *pubsub.ContinuousListener[string]

	feed []string
	logs []string
	err  error

	width  int
	height int
}

// New creates the model. watchCh may be nil when watching is disabled.
func New(ctx context.Context, graph *app.Graph, cfg config.Config, watchCh <-chan struct{}) *Model {
	m := &Model{
		graph:    graph,
		styles:   newStyles(cfg.Theme),
		dataFile: cfg.Data.File,
		ctx:      ctx,
		watchCh:  watchCh,
	}
	if broker := log.Broker(); broker != nil {
		m.logListener = pubsub.NewContinuousListener(ctx, broker)
	}

	// The feed demonstrates the subscription surface: the UI observes the
	// aggregate's events like any other listener.
	graph.Board.AddEventListener(aggregate.Changed, func(args ...any) error {
		m.pushFeed(fmt.Sprintf("changed %v", args))
		return nil
	})
	graph.Board.AddEventListener(aggregate.LengthChanged, func(args ...any) error {
		m.pushFeed("length-changed")
		return nil
	})
	return m
}

func (m *Model) pushFeed(line string) {
	m.feed = append(m.feed, line)
	if len(m.feed) > maxFeedLines {
		m.feed = m.feed[len(m.feed)-maxFeedLines:]
	}
}

// Init starts the watcher and log listeners.
func (m *Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.watchCh != nil {
		cmds = append(cmds, m.listenWatch())
	}
	if m.logListener != nil {
		cmds = append(cmds, m.listenLog())
	}
	return tea.Batch(cmds...)
}

func (m *Model) listenWatch() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return nil
		case _, ok := <-m.watchCh:
			if !ok {
				return nil
			}
			return reloadMsg{}
		}
	}
}

func (m *Model) listenLog() tea.Cmd {
	inner := m.logListener.Listen()
	return func() tea.Msg {
		msg := inner()
		if ev, ok := msg.(pubsub.Event[string]); ok {
			return logMsg(ev.Payload)
		}
		return nil
	}
}

// Update handles key presses and reload notifications. All graph writes
// happen here, on Bubble Tea's update goroutine.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case reloadMsg:
		if err := watcher.LoadInto(m.dataFile, m.graph.Source); err != nil {
			m.err = err
			log.ErrorErr(log.CatUI, "reload failed", err)
		} else {
			m.err = nil
		}
		return m, m.listenWatch()

	case logMsg:
		m.logs = append(m.logs, strings.TrimRight(string(msg), "\n"))
		if len(m.logs) > maxFeedLines {
			m.logs = m.logs[len(m.logs)-maxFeedLines:]
		}
		return m, m.listenLog()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "+", "=":
		m.bump(1)
	case "-":
		m.bump(-1)

	case "r":
		if err := watcher.LoadInto(m.dataFile, m.graph.Source); err != nil {
			m.err = err
		} else {
			m.err = nil
		}
	}
	return m, nil
}

// bump adjusts the source store's count key, driving every binding
// triggered on it.
func (m *Model) bump(delta int) {
	current := 0
	if v, ok := m.graph.Source.Get("count"); ok {
		if n, isInt := v.(int); isInt {
			current = n
		}
	}
	if err := m.graph.Source.Set("count", current+delta); err != nil {
		m.err = err
	}
}

// View renders the whole graph from live state.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.title.Render("besix"))
	b.WriteString("\n\n")

	for i, st := range m.graph.Board.All() {
		name := "source"
		if i == 1 {
			name = "sink"
		}
		b.WriteString(m.styles.header.Render(fmt.Sprintf("%s [%d]", name, i)))
		b.WriteString("\n")
		if st.Len() == 0 {
			b.WriteString(m.styles.subtle.Render("  (empty)"))
			b.WriteString("\n")
		}
		for k, v := range st.All() {
			b.WriteString(fmt.Sprintf("  %s = %s\n", m.styles.key.Render(k), m.styles.value.Render(fmt.Sprint(v))))
		}
		b.WriteString("\n")
	}

	if len(m.feed) > 0 {
		b.WriteString(m.styles.header.Render("events"))
		b.WriteString("\n")
		for _, line := range m.feed {
			b.WriteString(m.styles.subtle.Render("  " + line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(m.logs) > 0 {
		b.WriteString(m.styles.header.Render("log"))
		b.WriteString("\n")
		for _, line := range m.logs {
			b.WriteString(m.styles.subtle.Render("  " + line))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(m.styles.errText.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.help.Render("+/- adjust count · r reload · q quit"))
	b.WriteString("\n")
	return b.String()
}
