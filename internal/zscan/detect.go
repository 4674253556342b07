package zscan

import "strings"

// EndOfHeaderMarker terminates each header block of a structured file.
const EndOfHeaderMarker = "***End_of_Header***"

// DetectFormat classifies a document by content. Any line containing
// EndOfHeaderMarker makes it structured; everything else is delimited.
func DetectFormat(lines []string) Format {
	for _, line := range lines {
		if strings.Contains(line, EndOfHeaderMarker) {
			return FormatStructured
		}
	}
	return FormatDelimited
}
