// Package notify posts ticket status changes to external chat platforms.
// Notification failures are reported to the caller for logging but must
// never fail the originating request.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/modq-io/modq/pkg/protocol"
)

// Notifier receives ticket status-change events.
type Notifier interface {
	// Name returns the notifier type (e.g. "slack", "telegram").
	Name() string
	// TicketStatusChanged is called after a ticket was closed or removed.
	TicketStatusChanged(ctx context.Context, t *protocol.Ticket) error
}

// Fanout delivers each event to every configured notifier and joins the
// failures.
type Fanout []Notifier

func (f Fanout) Name() string { return "fanout" }

func (f Fanout) TicketStatusChanged(ctx context.Context, t *protocol.Ticket) error {
	var errs []error
	for _, n := range f {
		if err := n.TicketStatusChanged(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// statusLine renders the one-line notice shared by all notifiers.
func statusLine(t *protocol.Ticket) string {
	author := "unknown author"
	if t.Msg != nil {
		author = t.Msg.Author.Name
	}
	return fmt.Sprintf("Ticket %s is now %s (flagged message by %s)", t.ID, t.Status, author)
}
