package clip

import (
	"log/slog"

	"github.com/atotto/clipboard"
)

// Clipboard interface allows mocking the system clipboard for tests.
type Clipboard interface {
	Read() (string, error)
}

// SystemClipboard implements Clipboard using the atotto/clipboard package
type SystemClipboard struct{}

func (s *SystemClipboard) Read() (string, error) {
	return clipboard.ReadAll()
}

// ReadOrEmpty reads the clipboard once. A failed or unavailable clipboard
// yields "".
func ReadOrEmpty(c Clipboard, logger *slog.Logger) string {
	text, err := c.Read()
	if err != nil {
		if logger != nil {
			logger.Warn("clipboard read failed, using empty text", "error", err)
		}
		return ""
	}
	return text
}
