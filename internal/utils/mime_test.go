package utils_test

import (
	"testing"

	"github.com/temirov/foldertree/internal/utils"
)

func TestDetectMimeType(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected string
	}{
		{name: "plain text", data: []byte("plain text"), expected: "text/plain; charset=utf-8"},
		{name: "png header", data: []byte("\x89PNG\x0D\x0A\x1A\x0A"), expected: "image/png"},
		{name: "missing content", data: nil, expected: utils.UnknownMimeType},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := utils.DetectMimeType(testCase.data); result != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, result)
			}
		})
	}
}
