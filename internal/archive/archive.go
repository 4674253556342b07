// Package archive packages batch outcomes into a single zip download.
//
// Each successfully plotted document contributes its PNG chart and a CSV of
// the ordered samples with their smoothed values. A summary.json manifest
// lists every document, including the ones that failed or had no samples.
package archive

import (
	"archive/zip"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/zscan.report/internal/batch"
	"github.com/banshee-data/zscan.report/internal/chart"
	"github.com/banshee-data/zscan.report/internal/version"
	"github.com/banshee-data/zscan.report/internal/zscan"
)

// ManifestFile is the name of the manifest entry inside the archive.
const ManifestFile = "summary.json"

// Status values recorded in the manifest.
const (
	StatusOK    = "ok"
	StatusEmpty = "empty"
	StatusError = "error"
)

// Manifest describes the contents of an archive.
type Manifest struct {
	Generated time.Time `json:"generated"`
	Version   string    `json:"version"`
	Documents []Entry   `json:"documents"`
}

// Entry is the manifest record of one document.
type Entry struct {
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Format   string         `json:"format,omitempty"`
	PlotFile string         `json:"plot_file,omitempty"`
	DataFile string         `json:"data_file,omitempty"`
	Error    string         `json:"error,omitempty"`
	Summary  *zscan.Summary `json:"summary,omitempty"`
}

// Counts returns the number of entries per status.
func (m *Manifest) Counts() map[string]int {
	c := make(map[string]int, 3)
	for _, e := range m.Documents {
		c[e.Status]++
	}
	return c
}

// Write encodes outcomes as a zip archive to w and returns its manifest.
// Outcomes are written in order. Plot names that collide get a numeric
// suffix so no entry overwrites another.
func Write(w io.Writer, outcomes []batch.Outcome, now time.Time) (*Manifest, error) {
	zw := zip.NewWriter(w)
	m := &Manifest{Generated: now.UTC(), Version: version.Version}
	names := NewPlotNamer()

	for _, o := range outcomes {
		e := Entry{Name: o.Name}
		if o.Result != nil {
			e.Format = o.Result.Format.String()
		}
		switch {
		case o.Err != nil:
			e.Status = StatusError
			e.Error = o.Err.Error()
		case o.Result.Empty():
			e.Status = StatusEmpty
		default:
			e.Status = StatusOK
			s := zscan.Summarize(o.Result)
			e.Summary = &s

			plotName := names.Unique(chart.PlotFileName(o.Name))
			if len(o.PNG) > 0 {
				if err := writeEntry(zw, plotName, now, o.PNG); err != nil {
					return nil, err
				}
				e.PlotFile = plotName
			}
			e.DataFile = strings.TrimSuffix(plotName, "_plot.png") + "_data.csv"
			if err := writeCSV(zw, e.DataFile, now, o.Result); err != nil {
				return nil, err
			}
		}
		m.Documents = append(m.Documents, e)
	}

	body, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeEntry(zw, ManifestFile, now, body); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return m, nil
}

func create(zw *zip.Writer, name string, now time.Time) (io.Writer, error) {
	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: now}
	f, err := zw.CreateHeader(hdr)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", name, err)
	}
	return f, nil
}

func writeEntry(zw *zip.Writer, name string, now time.Time, data []byte) error {
	f, err := create(zw, name, now)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func writeCSV(zw *zip.Writer, name string, now time.Time, res *zscan.Result) error {
	f, err := create(zw, name, now)
	if err != nil {
		return err
	}
	cw := csv.NewWriter(f)
	if err := cw.Write([]string{"distance_mm", "voltage_v", "smoothed_v"}); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	for i, s := range res.Samples {
		row := []string{formatFloat(s.Distance), formatFloat(s.Voltage), ""}
		if i < len(res.Smoothed) {
			row[2] = formatFloat(res.Smoothed[i])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// PlotNamer hands out plot file names, suffixing repeats with _2, _3, ...
type PlotNamer struct {
	seen map[string]int
}

// NewPlotNamer returns a PlotNamer that has handed out no names.
func NewPlotNamer() *PlotNamer {
	return &PlotNamer{seen: make(map[string]int)}
}

// Unique returns name, or a suffixed variant if name was already used.
func (n *PlotNamer) Unique(name string) string {
	n.seen[name]++
	count := n.seen[name]
	if count == 1 {
		return name
	}
	stem := strings.TrimSuffix(name, "_plot.png")
	for {
		candidate := fmt.Sprintf("%s_%d_plot.png", stem, count)
		if n.seen[candidate] == 0 {
			n.seen[candidate] = 1
			return candidate
		}
		count++
	}
}
