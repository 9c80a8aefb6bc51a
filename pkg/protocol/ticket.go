package protocol

import "fmt"

// Status represents the moderation state of a ticket.
type Status string

const (
	StatusOpen    Status = "open"
	StatusClosed  Status = "closed"
	StatusRemoved Status = "removed"
)

// ParseStatus converts a dataset or query value to a canonical Status.
// Older dataset snapshots used "resolved" and "deleted" for the two
// terminal states; those are folded into the canonical enum here.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "open":
		return StatusOpen, nil
	case "closed", "resolved":
		return StatusClosed, nil
	case "removed", "deleted":
		return StatusRemoved, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Ticket is a flagged message under moderation review.
type Ticket struct {
	ID                 string     `json:"id"`
	MsgID              string     `json:"msg_id"`
	Msg                *Message   `json:"msg,omitempty"` // resolved at load time, never persisted
	Status             Status     `json:"status"`
	ResolvedBy         *string    `json:"resolved_by"`
	TsLastStatusChange *Timestamp `json:"ts_last_status_change"`
	Timestamp          Timestamp  `json:"timestamp"`
	ContextMessages    []string   `json:"context_messages"`
}

// Validate checks the fields a dataset record must carry.
func (t *Ticket) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("ticket: missing id")
	}
	if t.MsgID == "" {
		return fmt.Errorf("ticket %q: missing msg_id", t.ID)
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return fmt.Errorf("ticket %q: %w", t.ID, err)
	}
	if t.Timestamp.IsZero() {
		return fmt.Errorf("ticket %q: missing timestamp", t.ID)
	}
	return nil
}

// Canonicalize rewrites legacy status values to the canonical enum.
// Call after a successful Validate.
func (t *Ticket) Canonicalize() {
	s, err := ParseStatus(string(t.Status))
	if err == nil {
		t.Status = s
	}
}
