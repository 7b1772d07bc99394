// Package clipboard polls the system clipboard and reports new text.
package clipboard

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

// Reader reads the current clipboard text.
type Reader interface {
	ReadAll() (string, error)
}

// SystemReader reads the OS clipboard.
type SystemReader struct{}

func (SystemReader) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

// Supported reports whether a clipboard utility is available on this system.
func Supported() bool {
	return !clipboard.Unsupported
}

// Watcher detects clipboard changes. The first Poll reports whatever the
// clipboard already holds.
type Watcher struct {
	reader    Reader
	interval  time.Duration
	minLength int
	logger    *slog.Logger
	last      string
}

// NewWatcher creates a Watcher polling reader every interval and ignoring
// text shorter than minLength after trimming.
func NewWatcher(reader Reader, interval time.Duration, minLength int, logger *slog.Logger) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		reader:    reader,
		interval:  interval,
		minLength: minLength,
		logger:    logger,
	}
}

// Poll reads the clipboard once and returns the text when it changed since
// the previous poll and is long enough.
func (w *Watcher) Poll() (string, bool) {
	text, err := w.reader.ReadAll()
	if err != nil {
		w.logger.Debug("clipboard read failed", "error", err)
		return "", false
	}
	if text == w.last {
		return "", false
	}
	w.last = text

	if len(strings.TrimSpace(text)) < w.minLength {
		return "", false
	}
	return text, true
}

// Watch polls until ctx is done, calling fn synchronously for every change.
// Changes that happen while fn runs are seen on the next tick.
func (w *Watcher) Watch(ctx context.Context, fn func(ctx context.Context, text string)) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if text, ok := w.Poll(); ok {
				w.logger.Debug("clipboard changed", "length", len(text))
				fn(ctx, text)
			}
		}
	}
}
