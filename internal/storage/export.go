package storage

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math/cmplx"
	"strconv"
)

type ExportData struct {
	Run    *RunMetadata `json:"run,omitempty"`
	Points []Point      `json:"points"`
}

type Point struct {
	Time      float64 `json:"time"`
	Real      float64 `json:"real"`
	Imag      float64 `json:"imag"`
	Magnitude float64 `json:"magnitude"`
}

func points(res *Result) []Point {
	out := make([]Point, len(res.Times))
	for i, t := range res.Times {
		v := res.ISF[i]
		out[i] = Point{Time: t, Real: real(v), Imag: imag(v), Magnitude: cmplx.Abs(v)}
	}
	return out
}

// WriteCSV writes one row per time: time, real, imag, magnitude. Values
// round-trip exactly.
func WriteCSV(w io.Writer, res *Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "real", "imag", "magnitude"}); err != nil {
		return err
	}
	for _, p := range points(res) {
		row := []string{
			strconv.FormatFloat(p.Time, 'g', -1, 64),
			strconv.FormatFloat(p.Real, 'g', -1, 64),
			strconv.FormatFloat(p.Imag, 'g', -1, 64),
			strconv.FormatFloat(p.Magnitude, 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportJSON(w io.Writer, meta *RunMetadata, res *Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, Points: points(res)})
}
