package viz

import (
	"fmt"
	"math/cmplx"
	"math/rand"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/isfsim/internal/basis"
	"github.com/san-kum/isfsim/internal/hamiltonian"
	"github.com/san-kum/isfsim/internal/thermal"
)

const tickInterval = time.Second / 30

type TickMsg time.Time

// LiveConfig describes the averaging run shown by a LiveModel.
type LiveConfig struct {
	Title       string
	Hamiltonian *hamiltonian.Diagonal
	Operator    basis.Operator
	Times       []float64
	Temperature float64
	Samples     int
	Seed        int64
}

// LiveModel accumulates one random Boltzmann sample per tick until the
// requested count is reached.
type LiveModel struct {
	cfg     LiveConfig
	rnd     *rand.Rand
	sum     []complex128
	n       int
	exact   []complex128
	running bool
	err     error
}

func NewLiveModel(cfg LiveConfig) LiveModel {
	m := LiveModel{cfg: cfg, running: true}
	m.exact, m.err = thermal.ExactBoltzmannISF(cfg.Hamiltonian, cfg.Operator, cfg.Times, cfg.Temperature)
	m.reset()
	return m
}

func (m *LiveModel) reset() {
	m.rnd = rand.New(rand.NewSource(m.cfg.Seed))
	m.sum = make([]complex128, len(m.cfg.Times))
	m.n = 0
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m LiveModel) Init() tea.Cmd {
	return tick()
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
			m.err = nil
		}
	case TickMsg:
		if m.running && !m.Done() && m.err == nil {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

func (m *LiveModel) step() {
	isf, err := thermal.SampleISF(m.cfg.Hamiltonian, m.cfg.Operator, m.cfg.Times, m.cfg.Temperature, m.rnd)
	if err != nil {
		m.err = err
		return
	}
	for i, v := range isf {
		m.sum[i] += v
	}
	m.n++
}

// Done reports whether every requested sample has been drawn.
func (m LiveModel) Done() bool {
	return m.n >= m.cfg.Samples
}

// Mean returns the running Monte-Carlo mean, or nil before the first sample.
func (m LiveModel) Mean() []complex128 {
	if m.n == 0 {
		return nil
	}
	out := make([]complex128, len(m.sum))
	for i, v := range m.sum {
		out[i] = v / complex(float64(m.n), 0)
	}
	return out
}

func (m LiveModel) View() string {
	var s strings.Builder
	s.WriteString(HeaderStyle.Render(strings.ToUpper(m.cfg.Title)) + "\n")

	status := StatusRunning.Render("SAMPLING")
	switch {
	case m.err != nil:
		status = SparkLow.Render("ERROR: " + m.err.Error())
	case m.Done():
		status = StatusRunning.Render("DONE")
	case !m.running:
		status = StatusPaused.Render("PAUSED")
	}
	s.WriteString(status + "\n\n")

	mean := m.Mean()
	if mean != nil {
		s.WriteString(graphStyle.Render(PlotISF(m.cfg.Times, mean,
			PlotOptions{Width: 50, Height: 10, Caption: "running mean"}, m.exact)) + "\n")
	}

	progress := 0.0
	if m.cfg.Samples > 0 {
		progress = float64(m.n) / float64(m.cfg.Samples)
	}
	s.WriteString(MetricLabel.Render("Samples") + MetricValue.Render(fmt.Sprintf("%d/%d", m.n, m.cfg.Samples)) + " " + ProgressBar(progress, 20) + "\n")
	s.WriteString(MetricLabel.Render("Temperature") + MetricValue.Render(fmt.Sprintf("%.1f K", m.cfg.Temperature)) + "\n")
	s.WriteString(MetricLabel.Render("States") + MetricValue.Render(fmt.Sprintf("%d", len(m.cfg.Hamiltonian.Energies))) + "\n")
	if mean != nil && len(m.exact) == len(mean) {
		dev := 0.0
		for i := range mean {
			dev = max(dev, cmplx.Abs(mean[i]-m.exact[i]))
		}
		s.WriteString(MetricLabel.Render("Max |Δ|") + MetricValue.Render(fmt.Sprintf("%.4f", dev)) + "\n")
	}

	s.WriteString(KeyHint.Render("\nSP:Pause R:Restart Q:Quit"))
	return lipgloss.NewStyle().Padding(1, 2).Render(s.String())
}
