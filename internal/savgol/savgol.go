// Package savgol implements a fixed-order Savitzky-Golay smoothing filter.
//
// The filter fits a cubic polynomial over a sliding window of at most
// [TargetWindow] samples and replaces each sample with the fitted value.
// Samples closer than half a window to either end are taken from the
// polynomial fitted to the first (or last) full window, so the output has
// the same length as the input.
package savgol

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	// Degree is the order of the local polynomial fit.
	Degree = 3
	// TargetWindow is the preferred window length in samples.
	TargetWindow = 11
	// MinWindow is the smallest window the length policy will produce.
	MinWindow = 3
)

var errWindowTooShort = errors.New("window must be longer than the polynomial degree")

// WindowLength returns the odd window length used for a series of n samples:
// min(TargetWindow, n), reduced by one when even, and never below MinWindow.
func WindowLength(n int) int {
	w := min(TargetWindow, n)
	if w%2 == 0 {
		w--
	}
	if w < MinWindow {
		w = MinWindow
	}
	return w
}

// CanSmooth reports whether a series of n samples is long enough to be
// filtered. Shorter series are returned unchanged by Smooth.
func CanSmooth(n int) bool {
	if n < MinWindow {
		return false
	}
	return WindowLength(n) > Degree
}

// Smooth returns a new slice holding the smoothed values of y. The input is
// never modified. When y is too short for a valid window, or the fit cannot
// be computed, the returned slice is a copy of y.
func Smooth(y []float64) []float64 {
	out := make([]float64, len(y))
	copy(out, y)
	if !CanSmooth(len(y)) {
		return out
	}

	f, err := newFilter(WindowLength(len(y)), Degree)
	if err != nil {
		return out
	}
	f.apply(out, y)
	return out
}

// filter holds the projection ("hat") matrix of a least-squares polynomial
// fit over one window. Row k of hat, dotted with the window samples, gives
// the fitted value at window position k.
type filter struct {
	window int
	hat    *mat.Dense
}

func newFilter(window, degree int) (*filter, error) {
	if window <= degree {
		return nil, fmt.Errorf("%w: window=%d degree=%d", errWindowTooShort, window, degree)
	}
	if window%2 == 0 {
		return nil, fmt.Errorf("window must be odd: %d", window)
	}

	half := window / 2
	a := mat.NewDense(window, degree+1, nil)
	for i := 0; i < window; i++ {
		t := float64(i - half)
		v := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, v)
			v *= t
		}
	}

	var ata, inv mat.Dense
	ata.Mul(a.T(), a)
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("normal equations: %w", err)
	}

	var proj, hat mat.Dense
	proj.Mul(a, &inv)
	hat.Mul(&proj, a.T())

	return &filter{window: window, hat: &hat}, nil
}

// coeffs returns the weights that estimate window position k.
func (f *filter) coeffs(k int) []float64 {
	return mat.Row(nil, k, f.hat)
}

// apply writes the filtered values of src into dst. len(src) must be at
// least f.window and dst must have the same length as src.
func (f *filter) apply(dst, src []float64) {
	n := len(src)
	w := f.window
	half := w / 2

	center := f.coeffs(half)
	for i := half; i < n-half; i++ {
		dst[i] = floats.Dot(center, src[i-half:i+half+1])
	}

	head := src[:w]
	tail := src[n-w:]
	for k := 0; k < half; k++ {
		dst[k] = floats.Dot(f.coeffs(k), head)
		dst[n-half+k] = floats.Dot(f.coeffs(half+1+k), tail)
	}
}
