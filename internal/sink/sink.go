// Package sink defines where accepted messages go once a session completes.
package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/mfischer/mailsink/internal/message"
)

// Sink is the interface that message destinations must implement. A sink
// receives each completed message exactly once per session.
type Sink interface {
	// Deliver hands a completed message to the sink. An error aborts
	// the delivering session but never the server.
	Deliver(ctx context.Context, msg *message.Message) error

	// Name returns the human-readable name of this sink.
	Name() string
}

// Multi fans a message out to several sinks in order, stopping at the
// first failure.
type Multi []Sink

// Deliver delivers to each sink in order and returns the first error.
func (m Multi) Deliver(ctx context.Context, msg *message.Message) error {
	for _, s := range m {
		if err := s.Deliver(ctx, msg); err != nil {
			return fmt.Errorf("%s sink: %w", s.Name(), err)
		}
	}
	return nil
}

// Name returns the joined names of the underlying sinks.
func (m Multi) Name() string {
	names := make([]string, 0, len(m))
	for _, s := range m {
		names = append(names, s.Name())
	}
	return strings.Join(names, "+")
}
