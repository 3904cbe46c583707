package storage

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardEmpty is returned when the clipboard holds no text.
var ErrClipboardEmpty = errors.New("clipboard is empty")

// Clipboard reads and writes clipboard text.
type Clipboard struct {
	readAll  func() (string, error)
	writeAll func(string) error
}

// SystemClipboard returns the operating system clipboard, or an unconfigured
// Clipboard where no clipboard utility is available.
func SystemClipboard() Clipboard {
	if clipboard.Unsupported {
		return Clipboard{}
	}
	return Clipboard{
		readAll:  clipboard.ReadAll,
		writeAll: clipboard.WriteAll,
	}
}

// NewClipboard builds a Clipboard from read and write functions.
func NewClipboard(read func() (string, error), write func(string) error) Clipboard {
	return Clipboard{readAll: read, writeAll: write}
}

// Read returns the clipboard text.
func (c Clipboard) Read() ([]byte, error) {
	if c.readAll == nil {
		return nil, fmt.Errorf("%w: clipboard", ErrNotConfigured)
	}
	text, err := c.readAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read clipboard: %w", err)
	}
	if text == "" {
		return nil, ErrClipboardEmpty
	}
	return []byte(text), nil
}

// Write replaces the clipboard text.
func (c Clipboard) Write(data []byte) error {
	if c.writeAll == nil {
		return fmt.Errorf("%w: clipboard", ErrNotConfigured)
	}
	if err := c.writeAll(string(data)); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}
