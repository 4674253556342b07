package zscan

import (
	"fmt"
	"strconv"
	"strings"
)

// ExtractStructured reads the distance and voltage rows of a structured
// document. The rows start two lines after the second header marker. The
// two rows may differ in length; pairing is left to Pair.
func ExtractStructured(lines []string) (distances, voltages []float64, err error) {
	start := -1
	markers := 0
	for i, line := range lines {
		if strings.Contains(line, EndOfHeaderMarker) {
			markers++
			if markers == 2 {
				start = i + 2
				break
			}
		}
	}
	if start < 0 {
		return nil, nil, &MalformedStructuredDocumentError{
			Line:   -1,
			Reason: fmt.Sprintf("expected 2 %s markers, found %d", EndOfHeaderMarker, markers),
		}
	}
	if start+1 >= len(lines) {
		return nil, nil, &MalformedStructuredDocumentError{
			Line:   start,
			Reason: fmt.Sprintf("data rows missing: document has %d lines", len(lines)),
		}
	}

	distances, err = parseTabRow(lines[start], start)
	if err != nil {
		return nil, nil, err
	}
	voltages, err = parseTabRow(lines[start+1], start+1)
	if err != nil {
		return nil, nil, err
	}
	return distances, voltages, nil
}

// parseTabRow parses every non-blank tab-separated field of line as a float.
func parseTabRow(line string, idx int) ([]float64, error) {
	fields := strings.Split(line, "\t")
	out := make([]float64, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, &MalformedStructuredDocumentError{
				Line:   idx,
				Reason: fmt.Sprintf("field %q is not numeric", f),
				Err:    err,
			}
		}
		out = append(out, v)
	}
	return out, nil
}

// ExtractDelimited reads one sample per "distance,voltage" line. Blank lines,
// lines with fewer than two fields and lines whose first two fields are not
// both numeric are skipped. Fields after the second are ignored.
func ExtractDelimited(lines []string) []Sample {
	out := make([]Sample, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.SplitN(line, ",", 3)
		if len(fields) < 2 {
			continue
		}
		d, err := strconv.ParseFloat(strings.TrimSpace(fields[0]), 64)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
		if err != nil {
			continue
		}
		out = append(out, Sample{Distance: d, Voltage: v})
	}
	return out
}
