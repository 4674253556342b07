package zscan

import "github.com/banshee-data/zscan.report/internal/savgol"

// Process runs the full ingestion pipeline on one file: decode, detect the
// layout, extract and order the samples, then smooth the voltages. It
// returns either a complete Result or an error; a document without any
// samples is a successful, empty Result.
func Process(raw []byte, name string) (*Result, error) {
	doc, err := NewDocument(raw, name)
	if err != nil {
		return nil, err
	}
	return ProcessDocument(doc)
}

// ProcessDocument runs the pipeline on already decoded text.
func ProcessDocument(doc *RawDocument) (*Result, error) {
	format := DetectFormat(doc.Lines)

	var samples SampleSet
	switch format {
	case FormatStructured:
		distances, voltages, err := ExtractStructured(doc.Lines)
		if err != nil {
			return nil, withName(err, doc.Name)
		}
		samples = Pair(distances, voltages)
	default:
		samples = Normalize(ExtractDelimited(doc.Lines))
	}

	return &Result{
		Name:     doc.Name,
		Format:   format,
		Samples:  samples,
		Smoothed: SmoothedSeries(savgol.Smooth(samples.Voltages())),
	}, nil
}
