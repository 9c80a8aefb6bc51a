// Package ticket owns the in-memory moderation collections for the
// lifetime of the process and answers every query and mutation the API
// exposes. The store is the single mutable authority over tickets; it is
// built once at startup from a loaded dataset and shared by reference.
package ticket

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/modq-io/modq/internal/dataset"
	"github.com/modq-io/modq/pkg/protocol"
)

// Page is one slice of a filtered ticket listing. Total is the number of
// tickets matching the filter across all pages, for client-side
// pagination.
type Page struct {
	Total   int                `json:"total"`
	Tickets []*protocol.Ticket `json:"tickets"`
}

// Store holds the loaded collections. All access goes through a single
// RWMutex: close/remove take the write lock, reads take the read lock and
// hand out shallow ticket copies so marshaling never races a mutation.
type Store struct {
	mu       sync.RWMutex
	messages map[string]*protocol.Message
	tickets  map[string]*protocol.Ticket
	order    []string // dataset array order, drives default pagination
	logger   *slog.Logger
	now      func() time.Time
}

// NewStore builds a store from loaded dataset collections and resolves
// each ticket's flagged message. A ticket whose msg_id is absent from the
// message collection is a construction error, not a per-request one.
func NewStore(data *dataset.Data, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	for _, id := range data.TicketOrder {
		t := data.Tickets[id]
		msg, ok := data.Messages[t.MsgID]
		if !ok {
			return nil, fmt.Errorf("ticket store: ticket %q references unknown message %q", t.ID, t.MsgID)
		}
		t.Msg = msg
	}

	logger.Info("ticket store ready",
		"tickets", len(data.Tickets),
		"messages", len(data.Messages))

	return &Store{
		messages: data.Messages,
		tickets:  data.Tickets,
		order:    data.TicketOrder,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// List returns one page of tickets matching the filter, in dataset order,
// together with the total match count. Pages that slice past the end are
// empty, not an error. PageNum and PageSize must be non-negative; the
// HTTP boundary rejects anything else before it gets here.
func (s *Store) List(f Filter) Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*protocol.Ticket
	for _, id := range s.order {
		if t := s.tickets[id]; f.matches(t) {
			matched = append(matched, t)
		}
	}

	// Guard the multiplication: huge page numbers or sizes would overflow
	// and slice with negative bounds. Anything past the end is an empty
	// page, never an error.
	if f.PageSize == 0 || f.PageNum > len(matched)/f.PageSize {
		return Page{Total: len(matched), Tickets: []*protocol.Ticket{}}
	}

	start := f.PageNum * f.PageSize
	end := start + f.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]*protocol.Ticket, 0, end-start)
	for _, t := range matched[start:end] {
		page = append(page, copyTicket(t))
	}
	return Page{Total: len(matched), Tickets: page}
}

// Counts aggregates tickets by status. Statuses with no tickets are
// absent from the map, not zero-filled.
func (s *Store) Counts() map[protocol.Status]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[protocol.Status]int)
	for _, t := range s.tickets {
		counts[t.Status]++
	}
	return counts
}

// Get returns the ticket with the given id.
func (s *Store) Get(id string) (*protocol.Ticket, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, &NotFoundError{Kind: "ticket", ID: id}
	}
	return copyTicket(t), nil
}

// GetMessage returns the message with the given id.
func (s *Store) GetMessage(id string) (*protocol.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.messageLocked(id)
}

// ContextMessages resolves the ticket's context message ids in order.
// One missing id fails the whole call; partial context is worse than none
// for a moderator reading a conversation.
func (s *Store) ContextMessages(id string) ([]*protocol.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, &NotFoundError{Kind: "ticket", ID: id}
	}

	msgs := make([]*protocol.Message, 0, len(t.ContextMessages))
	for _, msgID := range t.ContextMessages {
		msg, err := s.messageLocked(msgID)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Close marks a ticket closed and stamps the status-change time. Closing
// an already-closed ticket is allowed and just restamps.
func (s *Store) Close(id string) (*protocol.Ticket, error) {
	return s.setStatus(id, protocol.StatusClosed)
}

// Remove marks a ticket removed and stamps the status-change time.
// Removal is a status, not erasure; the record stays queryable.
func (s *Store) Remove(id string) (*protocol.Ticket, error) {
	return s.setStatus(id, protocol.StatusRemoved)
}

func (s *Store) setStatus(id string, status protocol.Status) (*protocol.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[id]
	if !ok {
		return nil, &NotFoundError{Kind: "ticket", ID: id}
	}

	t.Status = status
	ts := protocol.Timestamp{Time: s.now()}
	t.TsLastStatusChange = &ts

	s.logger.Info("ticket status changed", "ticket", id, "status", status)
	return copyTicket(t), nil
}

func (s *Store) messageLocked(id string) (*protocol.Message, error) {
	msg, ok := s.messages[id]
	if !ok {
		return nil, &NotFoundError{Kind: "message", ID: id}
	}
	return msg, nil
}

// copyTicket returns a shallow copy safe to marshal outside the lock.
// Msg and ContextMessages are shared but immutable after load.
func copyTicket(t *protocol.Ticket) *protocol.Ticket {
	c := *t
	return &c
}
