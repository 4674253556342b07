package zscan

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode converts raw file bytes to text. Input must be UTF-8; a leading
// byte order mark is removed. Files that start with a UTF-16 byte order mark
// are transcoded to UTF-8.
func Decode(raw []byte) (string, error) {
	if !bytes.HasPrefix(raw, bomUTF16LE) && !bytes.HasPrefix(raw, bomUTF16BE) {
		if off := invalidUTF8Offset(raw); off >= 0 {
			return "", &DecodingError{Offset: off}
		}
	}

	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", &DecodingError{Offset: 0}
	}
	if off := invalidUTF8Offset(out); off >= 0 {
		return "", &DecodingError{Offset: off}
	}
	return string(out), nil
}

// invalidUTF8Offset returns the byte offset of the first invalid UTF-8
// sequence in b, or -1 if b is valid.
func invalidUTF8Offset(b []byte) int {
	if utf8.Valid(b) {
		return -1
	}
	for i := 0; i < len(b); {
		r, size := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return -1
}

// SplitLines splits text on \n, \r\n and \r. A trailing line terminator does
// not produce an empty final line, and empty text yields no lines.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// NewDocument decodes raw bytes into a RawDocument.
func NewDocument(raw []byte, name string) (*RawDocument, error) {
	text, err := Decode(raw)
	if err != nil {
		return nil, withName(err, name)
	}
	return &RawDocument{Name: name, Lines: SplitLines(text)}, nil
}
