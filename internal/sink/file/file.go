// Package file implements a Sink that persists raw messages as .eml files.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mfischer/mailsink/internal/message"
)

// Sink writes one .eml file per delivered message into a fixed directory.
type Sink struct {
	dir string

	// now is the clock used for file naming, replaceable in tests.
	now func() time.Time
}

// New creates the destination directory if it does not exist and returns a
// Sink writing into it. Directory creation happens once here, at startup,
// not per message.
func New(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %q: %w", dir, err)
	}
	return &Sink{dir: dir, now: time.Now}, nil
}

// Deliver writes the raw message text as UTF-8 bytes to a timestamped file
// and logs the resulting path. A write failure is returned as-is and aborts
// the delivering session.
func (s *Sink) Deliver(_ context.Context, msg *message.Message) error {
	path := filepath.Join(s.dir, filename(s.now().UTC()))

	if err := os.WriteFile(path, []byte(msg.Raw), 0o644); err != nil {
		return fmt.Errorf("failed to write message file: %w", err)
	}

	slog.Info("message stored", "path", path, "bytes", len(msg.Raw))
	return nil
}

// Name returns the sink name.
func (s *Sink) Name() string {
	return "file"
}

// filename derives a millisecond-resolution UTC timestamp name such as
// 20250102_150405123.eml. Two sessions completing within the same
// millisecond collide; no uniqueness suffix is added.
func filename(t time.Time) string {
	return fmt.Sprintf("%s%03d.eml", t.Format("20060102_150405"), t.Nanosecond()/int(time.Millisecond))
}
