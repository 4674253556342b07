package api

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/zscan.report/internal/archive"
	"github.com/banshee-data/zscan.report/internal/config"
	"github.com/banshee-data/zscan.report/internal/monitoring"
	"github.com/banshee-data/zscan.report/internal/testutil"
	"github.com/banshee-data/zscan.report/internal/timeutil"
	"github.com/banshee-data/zscan.report/internal/version"
)

func ptr[T any](v T) *T {
	return &v
}

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

// newTestServer renders small charts so tests stay fast.
func newTestServer() *Server {
	cfg := &config.ServerConfig{
		ChartWidthIn:  ptr(2.0),
		ChartHeightIn: ptr(1.5),
		ChartDPI:      ptr(40),
		MaxFiles:      ptr(3),
	}
	s := NewServer(cfg)
	s.clock = timeutil.NewMockClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	return s
}

var (
	structuredUpload = testutil.UploadFile{
		Name: "scan_a.lvm",
		Data: testutil.StructuredFile(
			[]string{"0", "0.5", "1", "1.5", "2", "2.5", "3"},
			[]string{"1.0", "1.1", "1.6", "2.4", "1.7", "1.2", "1.0"},
		),
	}
	delimitedUpload = testutil.UploadFile{
		Name: "scan_b.csv",
		Data: testutil.DelimitedFile("distance,voltage", "2,0.4", "1,0.2", "3,0.1"),
	}
	emptyUpload = testutil.UploadFile{
		Name: "notes.csv",
		Data: testutil.DelimitedFile("no numbers here"),
	}
	brokenUpload = testutil.UploadFile{
		Name: "broken.lvm",
		Data: []byte(testutil.EndOfHeader + "\nChannels\t2\n1\t2\n"),
	}
	binaryUpload = testutil.UploadFile{
		Name: "image.bin",
		Data: []byte{0x89, 'P', 'N', 'G', 0xff, 0xfe, 0x00},
	}
)

func serve(s *Server, req *http.Request) *http.Response {
	rec := testutil.NewTestRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec.Result()
}

func decodeJSON(t *testing.T, r io.Reader, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(r).Decode(v))
}

func TestIndex(t *testing.T) {
	t.Parallel()

	resp := serve(newTestServer(), testutil.NewTestRequest(http.MethodGet, "/"))
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Z-Scan Data Plotter")
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	resp = serve(newTestServer(), testutil.NewTestRequest(http.MethodGet, "/nope"))
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusNotFound)

	resp = serve(newTestServer(), testutil.NewTestRequest(http.MethodPost, "/"))
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusMethodNotAllowed)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	resp := serve(newTestServer(), testutil.NewTestRequest(http.MethodGet, "/api/version"))
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)

	var info version.Info
	decodeJSON(t, resp.Body, &info)
	assert.Equal(t, version.Current(), info)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	resp := serve(newTestServer(), testutil.NewTestRequest(http.MethodGet, "/api/version"))
	_, err := uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := testutil.NewTestRequest(http.MethodGet, "/api/version")
	req.Header.Set(RequestIDHeader, id)
	resp = serve(newTestServer(), req)
	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))

	req = testutil.NewTestRequest(http.MethodGet, "/api/version")
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp = serve(newTestServer(), req)
	assert.NotEqual(t, "not-a-uuid", resp.Header.Get(RequestIDHeader))
}

func TestProcess(t *testing.T) {
	t.Parallel()

	req := testutil.NewMultipartRequest(t, "/api/process", "files",
		structuredUpload, delimitedUpload, emptyUpload)
	resp := serve(newTestServer(), req)
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)

	var pr ProcessResponse
	decodeJSON(t, resp.Body, &pr)
	require.Len(t, pr.Documents, 3)

	a := pr.Documents[0]
	assert.Equal(t, "scan_a.lvm", a.Name)
	assert.Equal(t, archive.StatusOK, a.Status)
	assert.Equal(t, "structured", a.Format)
	assert.Len(t, a.Samples, 7)
	assert.Len(t, a.Smoothed, 7)
	require.NotNil(t, a.Summary)
	assert.Equal(t, 7, a.Summary.Count)

	b := pr.Documents[1]
	assert.Equal(t, "delimited", b.Format)
	require.Len(t, b.Samples, 3)
	assert.Equal(t, 1.0, b.Samples[0].Distance)
	assert.Equal(t, []float64{0.2, 0.4, 0.1}, []float64(b.Smoothed))

	c := pr.Documents[2]
	assert.Equal(t, archive.StatusEmpty, c.Status)
	assert.Empty(t, c.Error)
	assert.Empty(t, c.Samples)
}

func TestProcess_PerFileErrors(t *testing.T) {
	t.Parallel()

	req := testutil.NewMultipartRequest(t, "/api/process", "files",
		brokenUpload, binaryUpload, delimitedUpload)
	resp := serve(newTestServer(), req)
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)

	var pr ProcessResponse
	decodeJSON(t, resp.Body, &pr)
	require.Len(t, pr.Documents, 3)

	assert.Equal(t, archive.StatusError, pr.Documents[0].Status)
	assert.Equal(t, kindMalformed, pr.Documents[0].ErrorKind)
	assert.Contains(t, pr.Documents[0].Error, "broken.lvm")

	assert.Equal(t, archive.StatusError, pr.Documents[1].Status)
	assert.Equal(t, kindDecoding, pr.Documents[1].ErrorKind)

	assert.Equal(t, archive.StatusOK, pr.Documents[2].Status)
}

func TestUploadErrors(t *testing.T) {
	t.Parallel()

	t.Run("wrong method", func(t *testing.T) {
		for _, path := range []string{"/api/process", "/api/plot", "/api/preview", "/api/archive"} {
			resp := serve(newTestServer(), testutil.NewTestRequest(http.MethodGet, path))
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		req := testutil.NewTestRequest(http.MethodPost, "/api/process")
		req.Header.Set("Content-Type", "text/plain")
		resp := serve(newTestServer(), req)
		testutil.AssertStatusCode(t, resp.StatusCode, http.StatusBadRequest)
	})

	t.Run("no files", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, "/api/process", "files")
		resp := serve(newTestServer(), req)
		testutil.AssertStatusCode(t, resp.StatusCode, http.StatusBadRequest)
	})

	t.Run("too many files", func(t *testing.T) {
		req := testutil.NewMultipartRequest(t, "/api/process", "files",
			delimitedUpload, delimitedUpload, delimitedUpload, delimitedUpload)
		resp := serve(newTestServer(), req)
		testutil.AssertStatusCode(t, resp.StatusCode, http.StatusBadRequest)
		var body map[string]string
		decodeJSON(t, resp.Body, &body)
		assert.Contains(t, body["error"], "too many files")
	})

	t.Run("too large", func(t *testing.T) {
		s := newTestServer()
		s.cfg.MaxUploadBytes = ptr(int64(256))
		big := testutil.UploadFile{Name: "big.csv", Data: []byte(strings.Repeat("1,2\n", 200))}
		req := testutil.NewMultipartRequest(t, "/api/process", "files", big)
		resp := serve(s, req)
		testutil.AssertStatusCode(t, resp.StatusCode, http.StatusRequestEntityTooLarge)
	})
}

func TestPlot(t *testing.T) {
	t.Parallel()

	req := testutil.NewMultipartRequest(t, "/api/plot", "file", structuredUpload)
	resp := serve(newTestServer(), req)
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="scan_a_plot.png"`, resp.Header.Get("Content-Disposition"))

	cfg, err := png.DecodeConfig(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 80, cfg.Width)
	assert.Equal(t, 60, cfg.Height)
}

func TestPlot_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		files  []testutil.UploadFile
		status int
		msg    string
	}{
		{"malformed", []testutil.UploadFile{brokenUpload}, http.StatusUnprocessableEntity, "malformed structured document"},
		{"decoding", []testutil.UploadFile{binaryUpload}, http.StatusUnprocessableEntity, "invalid UTF-8"},
		{"empty", []testutil.UploadFile{emptyUpload}, http.StatusUnprocessableEntity, "no samples to plot"},
		{"two files", []testutil.UploadFile{delimitedUpload, delimitedUpload}, http.StatusBadRequest, "exactly one file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewMultipartRequest(t, "/api/plot", "file", tt.files...)
			resp := serve(newTestServer(), req)
			testutil.AssertStatusCode(t, resp.StatusCode, tt.status)
			var body map[string]string
			decodeJSON(t, resp.Body, &body)
			assert.Contains(t, body["error"], tt.msg)
		})
	}
}

func TestPreview(t *testing.T) {
	t.Parallel()

	req := testutil.NewMultipartRequest(t, "/api/preview", "file", delimitedUpload)
	resp := serve(newTestServer(), req)
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "Z-Scan Measurement: scan_b.csv")
}

func TestArchive(t *testing.T) {
	t.Parallel()

	req := testutil.NewMultipartRequest(t, "/api/archive", "files",
		structuredUpload, brokenUpload, emptyUpload)
	resp := serve(newTestServer(), req)
	testutil.AssertStatusCode(t, resp.StatusCode, http.StatusOK)
	assert.Equal(t, "application/zip", resp.Header.Get("Content-Type"))
	assert.Equal(t, fmt.Sprintf(`attachment; filename="%s"`, ArchiveName), resp.Header.Get("Content-Disposition"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	require.NoError(t, err)

	names := make([]string, 0, len(zr.File))
	var manifest archive.Manifest
	for _, f := range zr.File {
		names = append(names, f.Name)
		if f.Name == archive.ManifestFile {
			rc, err := f.Open()
			require.NoError(t, err)
			decodeJSON(t, rc, &manifest)
			rc.Close()
		}
	}
	assert.ElementsMatch(t, []string{"scan_a_plot.png", "scan_a_data.csv", archive.ManifestFile}, names)

	require.Len(t, manifest.Documents, 3)
	assert.Equal(t, archive.StatusOK, manifest.Documents[0].Status)
	assert.Equal(t, archive.StatusError, manifest.Documents[1].Status)
	assert.Equal(t, archive.StatusEmpty, manifest.Documents[2].Status)
	assert.True(t, manifest.Generated.Equal(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func TestStatusCodeColor(t *testing.T) {
	t.Parallel()

	assert.Contains(t, statusCodeColor(200), colorBoldGreen)
	assert.Contains(t, statusCodeColor(302), colorYellow)
	assert.Contains(t, statusCodeColor(404), colorBoldRed)
	assert.Contains(t, statusCodeColor(500), colorBoldRed)
	assert.Equal(t, "100", statusCodeColor(100))
}
