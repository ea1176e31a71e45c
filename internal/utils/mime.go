package utils

import "net/http"

// UnknownMimeType is reported when no content is available for detection.
const UnknownMimeType = ""

// DetectMimeType returns the MIME type of data using http.DetectContentType.
func DetectMimeType(data []byte) string {
	if data == nil {
		return UnknownMimeType
	}
	if len(data) > SniffLength {
		data = data[:SniffLength]
	}
	return http.DetectContentType(data)
}
