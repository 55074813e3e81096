// Package console implements a Sink that prints a human-readable summary of
// each captured message to standard output.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mfischer/mailsink/internal/message"
)

// Sink prints message summaries in a human-readable format.
type Sink struct {
	// writer is the output destination, defaulting to os.Stdout.
	writer io.Writer
}

// New creates a console Sink that writes to os.Stdout.
func New() *Sink {
	return &Sink{writer: os.Stdout}
}

// NewWithWriter creates a console Sink that writes to the given writer.
// This is useful for testing.
func NewWithWriter(w io.Writer) *Sink {
	return &Sink{writer: w}
}

// Deliver prints the message summary. It always returns nil: the summary is
// advisory output and must never fail a session.
func (s *Sink) Deliver(_ context.Context, msg *message.Message) error {
	subject := msg.Parsed.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	contentType := msg.Parsed.ContentType
	if contentType == "" {
		contentType = "text/plain"
	}
	label := msg.Parsed.FormatLabel()

	var b strings.Builder
	b.WriteString("========================================\n")
	fmt.Fprintf(&b, "From: %s\n", msg.Sender)
	fmt.Fprintf(&b, "To: %s\n", msg.Recipient)
	fmt.Fprintf(&b, "Subject: %s\n", subject)
	fmt.Fprintf(&b, "Content-Type: %s\n", contentType)
	fmt.Fprintf(&b, "Format: %s\n", label)

	if msg.Parsed.DecodedContent != "" {
		content := msg.Parsed.DecodedContent
		if msg.Parsed.IsHTML {
			content = CleanHTML(content)
		}
		b.WriteString("Body:\n")
		b.WriteString(content + "\n")
	}

	b.WriteString("========================================\n")

	fmt.Fprint(s.writer, b.String())

	slog.Info("message received",
		"from", msg.Sender,
		"to", msg.Recipient,
		"subject", subject,
		"format", label,
	)
	return nil
}

// Name returns the sink name.
func (s *Sink) Name() string {
	return "console"
}
