package zscan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("plain utf8", func(t *testing.T) {
		got, err := Decode([]byte("1,2\nµm,V\n"))
		require.NoError(t, err)
		assert.Equal(t, "1,2\nµm,V\n", got)
	})

	t.Run("utf8 bom stripped", func(t *testing.T) {
		got, err := Decode([]byte("\xEF\xBB\xBF1,2"))
		require.NoError(t, err)
		assert.Equal(t, "1,2", got)
	})

	t.Run("utf16 little endian", func(t *testing.T) {
		raw := []byte{0xFF, 0xFE, '1', 0, ',', 0, '2', 0}
		got, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "1,2", got)
	})

	t.Run("utf16 big endian", func(t *testing.T) {
		raw := []byte{0xFE, 0xFF, 0, '3', 0, ',', 0, '4'}
		got, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, "3,4", got)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := Decode(nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestDecode_Invalid(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte("1,2\n\xff\xfe\xfd"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDecoding)

	var de *DecodingError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 4, de.Offset)
}

func TestSplitLines(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"a\r\nb\r\n", []string{"a", "b"}},
		{"a\rb", []string{"a", "b"}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"\n", []string{""}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitLines(tt.in), "input %q", tt.in)
	}
}

func TestNewDocument_NamesDecodingError(t *testing.T) {
	t.Parallel()

	_, err := NewDocument([]byte{'a', 0xC0}, "scan.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scan.txt")
	assert.ErrorIs(t, err, ErrDecoding)
}
