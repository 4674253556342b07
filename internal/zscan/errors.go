package zscan

import (
	"errors"
	"fmt"
)

var (
	// ErrDecoding matches any *DecodingError via errors.Is.
	ErrDecoding = errors.New("document is not valid text")
	// ErrMalformedStructured matches any *MalformedStructuredDocumentError via errors.Is.
	ErrMalformedStructured = errors.New("malformed structured document")
)

// DecodingError reports input bytes that are not valid text.
type DecodingError struct {
	Name   string
	Offset int // byte offset of the first invalid sequence
}

func (e *DecodingError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid UTF-8 at byte %d", e.Offset)
	}
	return fmt.Sprintf("%s: invalid UTF-8 at byte %d", e.Name, e.Offset)
}

func (e *DecodingError) Is(target error) bool {
	return target == ErrDecoding
}

// MalformedStructuredDocumentError reports a structured document whose
// header markers or data rows cannot be read.
type MalformedStructuredDocumentError struct {
	Name   string
	Line   int // zero-based line index, -1 when not tied to a line
	Reason string
	Err    error
}

func (e *MalformedStructuredDocumentError) Error() string {
	msg := e.Reason
	if e.Line >= 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line+1, msg)
	}
	if e.Name != "" {
		msg = e.Name + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return "malformed structured document: " + msg
}

func (e *MalformedStructuredDocumentError) Is(target error) bool {
	return target == ErrMalformedStructured
}

func (e *MalformedStructuredDocumentError) Unwrap() error {
	return e.Err
}

// withName attaches the document name to pipeline errors that lack one.
func withName(err error, name string) error {
	var de *DecodingError
	if errors.As(err, &de) && de.Name == "" {
		de.Name = name
	}
	var me *MalformedStructuredDocumentError
	if errors.As(err, &me) && me.Name == "" {
		me.Name = name
	}
	return err
}
