// Package testutil provides shared test utilities and measurement fixtures.
//
// The fixture builders produce byte-for-byte the two layouts written by the
// Z-scan acquisition software so packages can exercise the pipeline without
// checked-in data files.
package testutil

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// EndOfHeader is the marker line that closes each structured header block.
const EndOfHeader = "***End_of_Header***"

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// StructuredFile builds a structured measurement file: a short file header,
// a channel header, then the distance and voltage rows joined by tabs.
func StructuredFile(distances, voltages []string) []byte {
	lines := []string{
		EndOfHeader,
		"LabVIEW Measurement",
		"Writer_Version\t2",
		"Reader_Version\t2",
		"Separator\tTab",
		EndOfHeader,
		"Channels\t2",
		strings.Join(distances, "\t"),
		strings.Join(voltages, "\t"),
	}
	return []byte(strings.Join(lines, "\r\n") + "\r\n")
}

// DelimitedFile joins rows with newlines into a delimited measurement file.
func DelimitedFile(rows ...string) []byte {
	return []byte(strings.Join(rows, "\n") + "\n")
}

// UploadFile is one file part of a multipart request.
type UploadFile struct {
	Name string
	Data []byte
}

// NewMultipartRequest builds a POST request carrying files under field.
func NewMultipartRequest(t *testing.T, path, field string, files ...UploadFile) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(field, f.Name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// NewTestRequest creates a test HTTP request.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
