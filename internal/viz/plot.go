package viz

import (
	"fmt"
	"math/cmplx"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/isfsim/internal/hamiltonian"
)

type PlotOptions struct {
	Width   int
	Height  int
	Caption string
}

func (o PlotOptions) withDefaults() PlotOptions {
	if o.Width <= 0 {
		o.Width = 60
	}
	if o.Height <= 0 {
		o.Height = 12
	}
	return o
}

// Magnitudes returns |v| for every value.
func Magnitudes(isf []complex128) []float64 {
	out := make([]float64, len(isf))
	for i, v := range isf {
		out[i] = cmplx.Abs(v)
	}
	return out
}

func reals(isf []complex128) []float64 {
	out := make([]float64, len(isf))
	for i, v := range isf {
		out[i] = real(v)
	}
	return out
}

// PlotISF draws |F(t)| and Re F(t). Extra series, such as the exact thermal
// ISF, are drawn as further magnitude lines.
func PlotISF(times []float64, isf []complex128, opts PlotOptions, extra ...[]complex128) string {
	opts = opts.withDefaults()
	if len(isf) == 0 {
		return Subtle.Render("(no data)")
	}

	series := [][]float64{Magnitudes(isf), reals(isf)}
	colors := []asciigraph.AnsiColor{asciigraph.Green, asciigraph.Blue}
	legends := []string{"|F|", "Re F"}
	for _, e := range extra {
		series = append(series, Magnitudes(e))
		colors = append(colors, asciigraph.Yellow)
		legends = append(legends, "reference |F|")
	}

	caption := opts.Caption
	if caption == "" {
		caption = "ISF"
	}
	if len(times) > 1 {
		caption += fmt.Sprintf("  t = %.3g .. %.3g s", times[0], times[len(times)-1])
	}

	// asciigraph needs at least two points per series to draw a line.
	for i, s := range series {
		if len(s) == 1 {
			series[i] = []float64{s[0], s[0]}
		}
	}

	return asciigraph.PlotMany(series,
		asciigraph.Width(opts.Width),
		asciigraph.Height(opts.Height),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
		asciigraph.Caption(caption),
	)
}

// BandTable lists the energies of every retained band, in meV, across the
// sampled Bloch fractions.
func BandTable(h *hamiltonian.Diagonal) string {
	const meV = 1.602176634e-22

	var s strings.Builder
	header := fmt.Sprintf("%-6s", "band")
	for j := 0; j < h.NSamples; j++ {
		header += fmt.Sprintf(" %10s", fmt.Sprintf("f=%+.3f", hamiltonian.Fraction(j, h.NSamples)))
	}
	s.WriteString(HeaderStyle.Render(header) + "\n")

	for b := 0; b < h.NBands; b++ {
		row := fmt.Sprintf("%-6d", b)
		for _, e := range h.BandEnergies(b) {
			row += fmt.Sprintf(" %10.4f", e/meV)
		}
		s.WriteString(row + "\n")
	}
	for b := 0; b < h.NBands; b++ {
		s.WriteString(fmt.Sprintf("%s %s\n", MetricLabel.Render(fmt.Sprintf("band %d", b)), SparklineChart(h.BandEnergies(b), h.NSamples)))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(s.String())
}
