package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/banshee-data/zscan.report/internal/batch"
	"github.com/banshee-data/zscan.report/internal/httputil"
)

// Multipart parts above this size are spooled to temporary files.
const maxMemoryBytes = 8 << 20

var (
	errNoFiles       = errors.New("no files uploaded")
	errTooManyFiles  = errors.New("too many files")
	errUploadTooBig  = errors.New("upload too large")
	errNotMultipart  = errors.New("expected multipart/form-data upload")
	errExpectOneFile = errors.New("expected exactly one file")
)

// uploadFields are the form fields that may carry files.
var uploadFields = []string{"files", "file"}

// readUploads reads every uploaded file of a multipart request, in form order.
func (s *Server) readUploads(w http.ResponseWriter, r *http.Request) ([]batch.Document, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return nil, errNotMultipart
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.GetMaxUploadBytes())
	if err := r.ParseMultipartForm(maxMemoryBytes); err != nil {
		if isTooLarge(err) {
			return nil, fmt.Errorf("%w: limit is %d bytes", errUploadTooBig, s.cfg.GetMaxUploadBytes())
		}
		return nil, fmt.Errorf("parse upload: %w", err)
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	var headers []*multipart.FileHeader
	for _, field := range uploadFields {
		headers = append(headers, r.MultipartForm.File[field]...)
	}
	if len(headers) == 0 {
		return nil, errNoFiles
	}
	if limit := s.cfg.GetMaxFiles(); len(headers) > limit {
		return nil, fmt.Errorf("%w: %d uploaded, limit is %d", errTooManyFiles, len(headers), limit)
	}

	docs := make([]batch.Document, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		docs = append(docs, batch.Document{Name: fh.Filename, Data: data})
	}
	return docs, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

// writeUploadError answers a request whose uploads could not be read.
func writeUploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, errUploadTooBig) {
		httputil.TooLarge(w, err.Error())
		return
	}
	httputil.BadRequest(w, err.Error())
}
