// Package gather collects side-channel context for generation prompts.
package gather

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrNoText reports an empty, non-text, or unreadable clipboard.
var ErrNoText = errors.New("clipboard has no text content")

// Clipboard reads and writes the system clipboard.
type Clipboard struct{}

// ReadText returns trimmed clipboard text. Every failure mode, a platform
// error included, surfaces as ErrNoText so callers branch on one condition.
func (Clipboard) ReadText() (string, error) {
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoText, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// WriteText places text on the system clipboard.
func (Clipboard) WriteText(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
