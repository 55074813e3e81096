package smtp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"

	"github.com/mfischer/mailsink/internal/message"
	"github.com/mfischer/mailsink/internal/sink"
)

// Session modes. In command mode lines are SMTP verbs; in data mode every
// line is message body until the lone "." terminator.
const (
	modeCommand = iota
	modeData
)

// Session represents a single SMTP client connection. It drives the
// command/DATA state machine until the client quits, submits one message,
// or disconnects. Sessions are never shared across connections.
type Session struct {
	conn     net.Conn
	reader   *bufio.Reader
	writer   *bufio.Writer
	sink     sink.Sink
	hostname string

	mode      int
	sender    string
	recipient string
	buffer    []string
}

// NewSession creates a new SMTP session for the given connection.
func NewSession(conn net.Conn, deliver sink.Sink, hostname string) *Session {
	return &Session{
		conn:     conn,
		reader:   bufio.NewReader(conn),
		writer:   bufio.NewWriter(conn),
		sink:     deliver,
		hostname: hostname,
		mode:     modeCommand,
	}
}

// Handle runs the session until termination. Reads block until the client
// sends a line or closes the connection; there is no idle timeout. The
// context bounds delivery of a completed message.
func (s *Session) Handle(ctx context.Context) {
	defer s.conn.Close()

	s.writeLine("220 %s Simple SMTP Server", s.hostname)

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			// EOF or a broken connection ends the session without
			// a reply, whatever mode it is in.
			if err != io.EOF {
				slog.Debug("connection read error", "error", err)
			}
			return
		}
		line = strings.TrimRight(line, "\r\n")

		var done bool
		if s.mode == modeData {
			done = s.handleDataLine(ctx, line)
		} else {
			done = s.handleCommand(line)
		}
		if done {
			return
		}
	}
}

// handleCommand dispatches one line in command mode and returns true if the
// session should end. Verb matching is case-sensitive, and anything
// unrecognized is acknowledged with 250 OK: clients probe with extension
// commands this server does not implement, and rejecting those probes makes
// naive client libraries give up before sending mail.
func (s *Session) handleCommand(line string) bool {
	switch {
	case strings.HasPrefix(line, "HELO"), strings.HasPrefix(line, "EHLO"):
		s.writeLine("250 Hello")

	case strings.HasPrefix(line, "MAIL FROM:"):
		s.sender = strings.TrimSpace(line[len("MAIL FROM:"):])
		s.writeLine("250 OK")

	case strings.HasPrefix(line, "RCPT TO:"):
		s.recipient = strings.TrimSpace(line[len("RCPT TO:"):])
		s.writeLine("250 OK")

	case line == "DATA":
		s.buffer = s.buffer[:0]
		s.mode = modeData
		s.writeLine("354 End data with <CR><LF>.<CR><LF>")

	case line == "QUIT":
		s.writeLine("221 Bye")
		return true

	default:
		s.writeLine("250 OK")
	}
	return false
}

// handleDataLine accumulates body lines until the lone "." terminator and
// returns true once the message has been handled. Lines are kept verbatim;
// a literal ".." stays ".." (RFC 5321 dot-unstuffing is not applied).
func (s *Session) handleDataLine(ctx context.Context, line string) bool {
	if line != "." {
		s.buffer = append(s.buffer, line)
		return false
	}

	raw := strings.Join(s.buffer, "\r\n") + "\r\n"
	msg := &message.Message{
		Sender:    s.sender,
		Recipient: s.recipient,
		Raw:       raw,
		Parsed:    message.Decode(raw),
	}

	if err := s.sink.Deliver(ctx, msg); err != nil {
		// Fatal to this session only: no reply, the connection is
		// closed by Handle's deferred Close.
		slog.Error("delivery failed",
			"sink", s.sink.Name(),
			"error", err,
		)
		return true
	}

	s.writeLine("250 OK: Message accepted")
	// One message per connection: the session ends here rather than
	// returning to command mode.
	return true
}

// writeLine writes a formatted line to the client, followed by \r\n, and
// flushes immediately.
func (s *Session) writeLine(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	_, err := s.writer.WriteString(line + "\r\n")
	if err != nil {
		slog.Debug("failed to write to client", "error", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		slog.Debug("failed to flush to client", "error", err)
	}
}
