// Package tui is the terminal front-end: a bubbletea program that feeds key
// presses into the simulation and draws each frame on a braille canvas.
package tui

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/musclemesh/internal/metrics"
	"github.com/san-kum/musclemesh/internal/sim"
	"github.com/san-kum/musclemesh/internal/viz"
)

const (
	frameInterval   = 16 * time.Millisecond
	historyCapacity = 240
	panelWidth      = 44
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model drives a sim.Sim from terminal input. Terminals report no key-up,
// so every press is released after hold ticks; a repeated press while held
// only extends the hold.
type Model struct {
	sim     *sim.Sim
	canvas  *viz.Canvas
	opts    viz.Options
	styles  viz.Styles
	glow    *glow
	hold    int
	held    map[rune]int
	energy  []float64
	paused  bool
	help    bool
	rec     *viz.Recorder
	recPath string
	status  string
	width   int
	height  int
}

type Option func(*Model)

func WithTheme(name string) Option {
	return func(m *Model) { m.styles = viz.NewStyles(viz.GetTheme(name)) }
}

// WithRecording captures every drawn frame and writes a GIF to path when
// recording is stopped or the program quits.
func WithRecording(path string) Option {
	return func(m *Model) { m.recPath = path }
}

func NewModel(s *sim.Sim, opts ...Option) Model {
	hold := s.Config().Run.Hold
	if hold < 1 {
		hold = 1
	}
	g := newGlow(int(time.Second/frameInterval), 8.0, 0.6)
	m := Model{
		sim:    s,
		canvas: viz.NewCanvas(80, 24),
		opts:   viz.DefaultOptions(),
		styles: viz.NewStyles(viz.ThemeCyberpunk),
		glow:   &g,
		hold:   hold,
		held:   make(map[rune]int),
		energy: make([]float64, 0, historyCapacity),
		width:  80 + panelWidth + 4,
		height: 26,
	}
	for _, opt := range opts {
		opt(&m)
	}
	if len(s.Metrics()) == 0 {
		for _, mt := range metrics.Default() {
			s.AddMetric(mt)
		}
	}
	m.glow.resize(s.Layout().Len())
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.canvas = viz.NewCanvas(max(20, msg.Width-panelWidth-4), max(8, msg.Height-2))
		return m, nil
	case tickMsg:
		if !m.paused {
			m.step(time.Time(msg))
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.stopRecording()
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
	case "ctrl+p":
		m.sim.SetPartition(!m.sim.PartitionEnabled())
	case "ctrl+l":
		m.opts.Lines = !m.opts.Lines
	case "ctrl+t":
		m.styles = viz.NewStyles(viz.NextTheme(m.styles.Theme.Name))
	case "ctrl+g":
		if m.rec != nil {
			m.stopRecording()
		} else {
			m.rec = viz.NewRecorder(int(time.Second / frameInterval))
			m.status = "recording"
		}
	case "?":
		m.help = !m.help
	default:
		if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
			m.press(msg.Runes[0])
		}
	}
	return m, nil
}

// press only forwards letters; a key the layout does not know is still
// queued and ignored when the simulation drains it.
func (m *Model) press(r rune) {
	if !unicode.IsLetter(r) {
		return
	}
	r = unicode.ToLower(r)
	if _, down := m.held[r]; !down {
		m.sim.Press(r)
	}
	m.held[r] = m.hold
}

func (m *Model) step(now time.Time) {
	f := m.sim.Tick(now)

	for r, n := range m.held {
		if n <= 1 {
			m.sim.Release(r)
			delete(m.held, r)
			continue
		}
		m.held[r] = n - 1
	}

	for i, node := range f.Layout.Nodes() {
		target := node.Activation
		if f.Tissue != nil {
			target *= f.Tissue.Gain(i)
		}
		m.glow.step(i, target)
	}

	m.energy = append(m.energy, f.Grid.Energy())
	if len(m.energy) > historyCapacity {
		m.energy = m.energy[1:]
	}

	viz.Render(m.canvas, f, m.opts)
	if m.rec != nil {
		m.rec.Capture(m.canvas)
	}
}

func (m *Model) stopRecording() {
	if m.rec == nil {
		return
	}
	path := m.recPath
	if path == "" {
		path = "musclemesh.gif"
	}
	if err := m.rec.Save(path); err != nil {
		slog.Warn("save recording", "path", path, "err", err)
		m.status = "recording failed"
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", m.rec.Len(), path)
	}
	m.rec = nil
}

func (m Model) View() string {
	canvas := m.styles.Canvas.Render(m.canvas.String())
	panel := m.styles.Panel.Render(m.panel())
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvas, panel)
	if m.help {
		return helpText + "\n" + main
	}
	return main
}

func (m Model) panel() string {
	st := m.styles
	var b strings.Builder

	name := m.sim.Config().Name
	if name == "" {
		name = "custom"
	}
	b.WriteString(viz.GradientText("musclemesh", st.Theme.Secondary, st.Theme.Primary) + "  " + st.Label.Render(name) + "\n\n")

	switch {
	case m.rec != nil:
		b.WriteString(st.Recording.Render(fmt.Sprintf("REC %d", m.rec.Len())) + "\n")
	case m.paused:
		b.WriteString(st.Paused.Render("PAUSED") + "\n")
	default:
		b.WriteString(st.Running.Render("RUNNING") + "\n")
	}
	if m.status != "" {
		b.WriteString(st.Label.Render(m.status) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(m.keyboard() + "\n")

	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(panelWidth-12), asciigraph.Caption("grid energy"))
		b.WriteString(chart + "\n\n")
	}

	b.WriteString(st.Row("tick", fmt.Sprintf("%d", m.sim.Ticks())))
	b.WriteString(st.Row("reshuffles", fmt.Sprintf("%d", m.sim.Reshuffles())))
	vals := m.sim.Metrics()
	names := make([]string, 0, len(vals))
	for k := range vals {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		b.WriteString(st.Row(shortName(k), fmt.Sprintf("%.3f", vals[k])))
	}
	if t := m.sim.Tissue(); t != nil {
		b.WriteString(st.Label.Render("force") + st.Bar(t.MeanForce(), 20) + "\n")
	}

	b.WriteString(st.Hint.Render("a-z:pull  space:pause  ?:help  esc:quit"))
	return b.String()
}

// keyboard draws the layout rows, each key lit by its smoothed drive and
// indented by its row like a real keyboard.
func (m Model) keyboard() string {
	st := m.styles
	var rows [][]string
	for i, n := range m.sim.Layout().Nodes() {
		for len(rows) <= n.Row {
			rows = append(rows, nil)
		}
		key := string(unicode.ToUpper(n.Symbol))
		switch g := m.glow.at(i); {
		case g > 0.5:
			key = st.KeyActive.Render(key)
		case g > 0.1:
			key = st.Mid.Render(key)
		default:
			key = st.Key.Render(key)
		}
		rows[n.Row] = append(rows[n.Row], key)
	}
	var b strings.Builder
	for i, keys := range rows {
		b.WriteString(strings.Repeat(" ", i) + strings.Join(keys, " ") + "\n")
	}
	return b.String()
}

func shortName(metric string) string {
	if len(metric) > 11 {
		return metric[:11]
	}
	return metric
}

const helpText = `  a-z     pull toward that key's attractor
  space   pause / resume
  ctrl+p  toggle partition overlay
  ctrl+l  mesh lines / dots
  ctrl+t  cycle theme
  ctrl+g  start / stop GIF recording
  ?       toggle this help
  esc     quit`

// Run starts the live program on the alternate screen.
func Run(s *sim.Sim, opts ...Option) error {
	final, err := tea.NewProgram(NewModel(s, opts...), tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if m, ok := final.(Model); ok {
		m.stopRecording()
	}
	return nil
}
