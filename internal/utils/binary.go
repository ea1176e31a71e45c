package utils

import "unicode/utf8"

// SniffLength defines the maximum number of bytes inspected when detecting binary content or MIME type.
const SniffLength = 8000

// IsBinary reports whether the provided byte slice appears to contain binary data.
// Only the first SniffLength bytes are inspected.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if len(data) > SniffLength {
		data = data[:SniffLength]
		for !utf8.Valid(data) && len(data) > SniffLength-utf8.UTFMax {
			data = data[:len(data)-1]
		}
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}
