// Package dataset loads the denormalized moderation dataset exported from
// the chat platform: a single JSON document with "tickets" and "messages"
// arrays. Loading is one-shot and all-or-nothing; any schema violation
// aborts the whole load.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/modq-io/modq/pkg/protocol"
)

// Data is the validated, id-keyed content of a dataset file.
// TicketOrder preserves the original array order of the tickets; the store
// relies on it for deterministic default pagination.
type Data struct {
	Messages    map[string]*protocol.Message
	Tickets     map[string]*protocol.Ticket
	TicketOrder []string
}

type document struct {
	Tickets  []*protocol.Ticket  `json:"tickets"`
	Messages []*protocol.Message `json:"messages"`
}

// Load reads and validates a dataset file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("dataset: parse %s: %w", path, err)
	}
	if doc.Messages == nil {
		return nil, fmt.Errorf("dataset: %s: missing \"messages\" array", path)
	}
	if doc.Tickets == nil {
		return nil, fmt.Errorf("dataset: %s: missing \"tickets\" array", path)
	}

	data := &Data{
		Messages:    make(map[string]*protocol.Message, len(doc.Messages)),
		Tickets:     make(map[string]*protocol.Ticket, len(doc.Tickets)),
		TicketOrder: make([]string, 0, len(doc.Tickets)),
	}

	for i, msg := range doc.Messages {
		if msg == nil {
			return nil, fmt.Errorf("dataset: messages[%d]: null element", i)
		}
		if err := msg.Validate(); err != nil {
			return nil, fmt.Errorf("dataset: messages[%d]: %w", i, err)
		}
		if _, dup := data.Messages[msg.ID]; dup {
			return nil, fmt.Errorf("dataset: messages[%d]: duplicate id %q", i, msg.ID)
		}
		data.Messages[msg.ID] = msg
	}

	for i, tk := range doc.Tickets {
		if tk == nil {
			return nil, fmt.Errorf("dataset: tickets[%d]: null element", i)
		}
		if err := tk.Validate(); err != nil {
			return nil, fmt.Errorf("dataset: tickets[%d]: %w", i, err)
		}
		tk.Canonicalize()
		if _, dup := data.Tickets[tk.ID]; dup {
			return nil, fmt.Errorf("dataset: tickets[%d]: duplicate id %q", i, tk.ID)
		}
		data.Tickets[tk.ID] = tk
		data.TicketOrder = append(data.TicketOrder, tk.ID)
	}

	return data, nil
}
