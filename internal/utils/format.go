package utils

import (
	"fmt"
	"strings"
	"time"
)

const timestampLayout = "2006-01-02 15:04"

var fileSizeUnits = []string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count with a lower-case binary unit. Values
// below ten keep one decimal place.
func FormatFileSize(byteCount int64) string {
	if byteCount < 0 {
		byteCount = 0
	}
	if byteCount < 1024 {
		return fmt.Sprintf("%db", byteCount)
	}
	value := float64(byteCount)
	unitIndex := 0
	for value >= 1024 && unitIndex < len(fileSizeUnits)-1 {
		value /= 1024
		unitIndex++
	}
	if value < 10 {
		return strings.TrimSuffix(fmt.Sprintf("%.1f", value), ".0") + fileSizeUnits[unitIndex]
	}
	return fmt.Sprintf("%.0f%s", value, fileSizeUnits[unitIndex])
}

// FormatTimestamp renders a modification time in the local zone with minute
// precision. The zero time renders empty.
func FormatTimestamp(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.In(time.Local).Format(timestampLayout)
}
