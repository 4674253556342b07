package zscan

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics of one processed document.
// Peak and valley are taken from the smoothed series.
type Summary struct {
	Count          int     `json:"count"`
	DistanceMin    float64 `json:"distance_min"`
	DistanceMax    float64 `json:"distance_max"`
	VoltageMin     float64 `json:"voltage_min"`
	VoltageMax     float64 `json:"voltage_max"`
	VoltageMean    float64 `json:"voltage_mean"`
	VoltageStdDev  float64 `json:"voltage_stddev"`
	PeakDistance   float64 `json:"peak_distance"`
	PeakVoltage    float64 `json:"peak_voltage"`
	ValleyDistance float64 `json:"valley_distance"`
	ValleyVoltage  float64 `json:"valley_voltage"`
}

// Summarize computes a Summary for r. An empty result yields the zero Summary.
func Summarize(r *Result) Summary {
	if r.Empty() {
		return Summary{}
	}

	d := r.Samples.Distances()
	v := r.Samples.Voltages()
	s := Summary{
		Count:       len(v),
		DistanceMin: d[0],
		DistanceMax: d[len(d)-1],
		VoltageMin:  floats.Min(v),
		VoltageMax:  floats.Max(v),
	}
	if len(v) > 1 {
		s.VoltageMean, s.VoltageStdDev = stat.MeanStdDev(v, nil)
	} else {
		s.VoltageMean = v[0]
	}

	smoothed := []float64(r.Smoothed)
	if len(smoothed) != len(v) {
		smoothed = v
	}
	peak := floats.MaxIdx(smoothed)
	valley := floats.MinIdx(smoothed)
	s.PeakDistance, s.PeakVoltage = d[peak], smoothed[peak]
	s.ValleyDistance, s.ValleyVoltage = d[valley], smoothed[valley]
	return s
}
