package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/zscan.report/internal/zscan"
)

// RenderHTML writes an interactive line chart of res to w using go-echarts.
// AssetsHost may be empty to use the go-echarts default CDN.
func RenderHTML(w io.Writer, res *zscan.Result, assetsHost string) error {
	if res.Empty() {
		return ErrNoData
	}

	raw := make([]opts.LineData, len(res.Samples))
	for i, s := range res.Samples {
		raw[i] = opts.LineData{Value: []interface{}{s.Distance, s.Voltage}}
	}
	smoothed := make([]opts.LineData, 0, len(res.Smoothed))
	if len(res.Smoothed) == len(res.Samples) {
		for i, v := range res.Smoothed {
			smoothed = append(smoothed, opts.LineData{Value: []interface{}{res.Samples[i].Distance, v}})
		}
	}

	initOpts := opts.Initialization{PageTitle: Title(res.Name), Width: "1000px", Height: "600px"}
	if assetsHost != "" {
		initOpts.AssetsHost = assetsHost
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(initOpts),
		charts.WithTitleOpts(opts.Title{
			Title:    Title(res.Name),
			Subtitle: fmt.Sprintf("format=%s samples=%d", res.Format, len(res.Samples)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Distance (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Voltage (V)", NameLocation: "middle", NameGap: 40}),
	)
	line.AddSeries("Raw", raw)
	if len(smoothed) > 0 {
		line.AddSeries("Smoothed", smoothed)
	}

	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
