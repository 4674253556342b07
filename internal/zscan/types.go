package zscan

import (
	"encoding/json"
	"fmt"
)

// Format identifies the text layout of a measurement file.
type Format int

const (
	// FormatDelimited is one comma-separated sample per line.
	FormatDelimited Format = iota
	// FormatStructured is the header-delimited layout with two tab-separated rows.
	FormatStructured
)

func (f Format) String() string {
	switch f {
	case FormatDelimited:
		return "delimited"
	case FormatStructured:
		return "structured"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// MarshalJSON encodes the format by name.
func (f Format) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}

// RawDocument is the decoded text of one uploaded file.
type RawDocument struct {
	Name  string
	Lines []string
}

// Sample is one (distance, voltage) measurement.
type Sample struct {
	Distance float64 `json:"distance"`
	Voltage  float64 `json:"voltage"`
}

// SampleSet is a sequence of samples in non-decreasing distance order.
// Values returned by this package are never modified after construction.
type SampleSet []Sample

// Distances returns a new slice holding the distance of each sample.
func (s SampleSet) Distances() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Distance
	}
	return out
}

// Voltages returns a new slice holding the voltage of each sample.
func (s SampleSet) Voltages() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Voltage
	}
	return out
}

// SmoothedSeries holds one smoothed voltage per sample, aligned by index
// with the SampleSet it was derived from.
type SmoothedSeries []float64

// Result is the successful outcome of processing one document.
type Result struct {
	Name     string         `json:"name"`
	Format   Format         `json:"format"`
	Samples  SampleSet      `json:"samples"`
	Smoothed SmoothedSeries `json:"smoothed"`
}

// Empty reports whether the document yielded no samples. An empty result is
// a success: there is simply nothing to plot.
func (r *Result) Empty() bool {
	return r == nil || len(r.Samples) == 0
}

// Len returns the number of samples.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Samples)
}
