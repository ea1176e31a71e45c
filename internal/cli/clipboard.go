package cli

import (
	"github.com/atotto/clipboard"
)

// Copier copies rendered output somewhere the user can paste it from.
type Copier interface {
	Copy(text string) error
}

// systemClipboard implements Copier using github.com/atotto/clipboard.
type systemClipboard struct{}

// NewClipboard returns a Copier writing to the system clipboard.
func NewClipboard() Copier {
	return systemClipboard{}
}

// Copy writes text to the system clipboard.
func (systemClipboard) Copy(text string) error {
	return clipboard.WriteAll(text)
}
