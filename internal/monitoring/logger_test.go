package monitoring

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetLogger(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("processed %d files", 3)
	assert.Equal(t, "processed 3 files", got)

	got = ""
	SetLogger(nil)
	Logf("muted")
	assert.Empty(t, got)
}

func TestPrefixed(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Prefixed("[batch] ")("%s failed", "scan.txt")
	assert.Equal(t, "[batch] scan.txt failed", got)
}

func TestLogf_Default(t *testing.T) {
	assert.NotNil(t, Logf)
}
