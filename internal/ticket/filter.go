package ticket

import (
	"slices"
	"strings"
	"time"

	"github.com/modq-io/modq/pkg/protocol"
)

// Filter constrains ticket list queries. Zero-valued criteria do not
// filter; set criteria are combined with AND.
type Filter struct {
	Author   string            // case-insensitive substring of the flagged message's author name
	Content  string            // case-insensitive substring of the flagged message's content
	Statuses []protocol.Status // set membership; empty = any status
	Since    *time.Time        // inclusive lower bound on ticket creation time
	Until    *time.Time        // inclusive upper bound on ticket creation time

	PageNum  int // zero-based page index
	PageSize int // tickets per page
}

// matches reports whether a ticket passes every set criterion. Tickets
// without a resolved message never match author or content criteria.
func (f Filter) matches(t *protocol.Ticket) bool {
	if f.Author != "" {
		if t.Msg == nil || !containsFold(t.Msg.Author.Name, f.Author) {
			return false
		}
	}
	if f.Content != "" {
		if t.Msg == nil || !containsFold(t.Msg.Content, f.Content) {
			return false
		}
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, t.Status) {
		return false
	}
	if f.Since != nil && t.Timestamp.Before(*f.Since) {
		return false
	}
	if f.Until != nil && t.Timestamp.After(*f.Until) {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
