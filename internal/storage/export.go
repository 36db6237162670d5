package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/buoysim/internal/control"
	"github.com/san-kum/buoysim/internal/dynamo"
	"github.com/san-kum/buoysim/internal/metrics"
)

type ExportData struct {
	Gains    control.Gains      `json:"gains"`
	Steps    int                `json:"steps"`
	Times    []float64          `json:"times"`
	Depths   []float64          `json:"depths"`
	Volumes  []float64          `json:"volumes"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
	Verdicts []metrics.Verdict  `json:"verdicts,omitempty"`
}

// ExportJSON writes one trace and its report as indented JSON.
func ExportJSON(w io.Writer, g control.Gains, trace dynamo.Trace, rep *metrics.Report) error {
	data := ExportData{
		Gains:   g,
		Steps:   len(trace),
		Times:   trace.Times(),
		Depths:  trace.Depths(),
		Volumes: trace.Volumes(),
	}
	if rep != nil {
		data.Metrics = rep.Metrics
		data.Verdicts = rep.Verdicts
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
