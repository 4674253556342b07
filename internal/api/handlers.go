package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/banshee-data/zscan.report/internal/archive"
	"github.com/banshee-data/zscan.report/internal/batch"
	"github.com/banshee-data/zscan.report/internal/chart"
	"github.com/banshee-data/zscan.report/internal/httputil"
	"github.com/banshee-data/zscan.report/internal/monitoring"
	"github.com/banshee-data/zscan.report/internal/version"
	"github.com/banshee-data/zscan.report/internal/zscan"
)

// ArchiveName is the download name of the multi-file zip.
const ArchiveName = "zscan_plots.zip"

// Error kinds reported alongside per-document errors.
const (
	kindDecoding  = "decoding"
	kindMalformed = "malformed_structured"
	kindCancelled = "cancelled"
	kindRender    = "render"
)

// DocumentResponse is the JSON form of one processed document.
type DocumentResponse struct {
	Name      string               `json:"name"`
	Status    string               `json:"status"`
	Format    string               `json:"format,omitempty"`
	Samples   zscan.SampleSet      `json:"samples,omitempty"`
	Smoothed  zscan.SmoothedSeries `json:"smoothed,omitempty"`
	Summary   *zscan.Summary       `json:"summary,omitempty"`
	Error     string               `json:"error,omitempty"`
	ErrorKind string               `json:"error_kind,omitempty"`
}

// ProcessResponse is returned by /api/process.
type ProcessResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, zscan.ErrDecoding):
		return kindDecoding
	case errors.Is(err, zscan.ErrMalformedStructured):
		return kindMalformed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return kindCancelled
	default:
		return kindRender
	}
}

func documentResponse(o batch.Outcome) DocumentResponse {
	d := DocumentResponse{Name: o.Name}
	switch {
	case o.Err != nil:
		d.Status = archive.StatusError
		d.Error = o.Err.Error()
		d.ErrorKind = errorKind(o.Err)
	case o.Result.Empty():
		d.Status = archive.StatusEmpty
		d.Format = o.Result.Format.String()
	default:
		d.Status = archive.StatusOK
		d.Format = o.Result.Format.String()
		d.Samples = o.Result.Samples
		d.Smoothed = o.Result.Smoothed
		s := zscan.Summarize(o.Result)
		d.Summary = &s
	}
	return d
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		httputil.NotFound(w, "not found")
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		httputil.InternalServerError(w, "index page missing")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w, http.MethodGet)
		return
	}
	httputil.WriteJSONOK(w, version.Current())
}

// handleProcess runs the pipeline on every uploaded file and reports each
// outcome. Per-file failures do not change the response status.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, http.MethodPost)
		return
	}
	docs, err := s.readUploads(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	outcomes, _ := s.runner.Run(r.Context(), docs, batch.Options{Workers: s.cfg.GetWorkers()})
	resp := ProcessResponse{Documents: make([]DocumentResponse, 0, len(outcomes))}
	for _, o := range outcomes {
		if !o.OK() {
			monitoring.Logf("process %s: %v", o.Name, o.Err)
		}
		resp.Documents = append(resp.Documents, documentResponse(o))
	}
	httputil.WriteJSONOK(w, resp)
}

// singleResult reads exactly one upload and runs the pipeline on it. It
// writes the error response itself and returns nil when the request cannot
// be served.
func (s *Server) singleResult(w http.ResponseWriter, r *http.Request) *zscan.Result {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, http.MethodPost)
		return nil
	}
	docs, err := s.readUploads(w, r)
	if err != nil {
		writeUploadError(w, err)
		return nil
	}
	if len(docs) != 1 {
		httputil.BadRequest(w, fmt.Sprintf("%v: got %d", errExpectOneFile, len(docs)))
		return nil
	}

	res, err := zscan.Process(docs[0].Data, docs[0].Name)
	if err != nil {
		monitoring.Logf("process %s: %v", docs[0].Name, err)
		httputil.Unprocessable(w, err.Error())
		return nil
	}
	if res.Empty() {
		httputil.Unprocessable(w, fmt.Sprintf("%s: %v", res.Name, chart.ErrNoData))
		return nil
	}
	return res
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	res := s.singleResult(w, r)
	if res == nil {
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderPNG(&buf, res, s.cfg.GetChartOptions()); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	httputil.Attachment(w, "image/png", chart.PlotFileName(res.Name))
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	res := s.singleResult(w, r)
	if res == nil {
		return
	}

	var buf bytes.Buffer
	if err := chart.RenderHTML(&buf, res, s.cfg.GetEchartsAssets()); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleArchive plots every uploaded file and returns one zip. Files that
// fail are listed in the archive manifest rather than failing the request.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w, http.MethodPost)
		return
	}
	docs, err := s.readUploads(w, r)
	if err != nil {
		writeUploadError(w, err)
		return
	}

	co := s.cfg.GetChartOptions()
	outcomes, err := s.runner.Run(r.Context(), docs, batch.Options{Workers: s.cfg.GetWorkers(), Chart: &co})
	if err != nil {
		monitoring.Logf("archive cancelled: %v", err)
		return
	}

	var buf bytes.Buffer
	m, err := archive.Write(&buf, outcomes, s.clock.Now())
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to build archive: %v", err))
		return
	}
	counts := m.Counts()
	monitoring.Logf("archive: %d ok, %d empty, %d failed",
		counts[archive.StatusOK], counts[archive.StatusEmpty], counts[archive.StatusError])

	httputil.Attachment(w, "application/zip", ArchiveName)
	_, _ = w.Write(buf.Bytes())
}
