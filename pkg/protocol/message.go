package protocol

import "fmt"

// Author is the account that posted a message on the chat platform.
// Immutable after load.
type Author struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Nickname        string    `json:"nickname"`
	Color           string    `json:"color"`
	Discriminator   string    `json:"discriminator"`
	AvatarURL       string    `json:"avatar_url"`
	IsBot           bool      `json:"is_bot"`
	TimestampInsert Timestamp `json:"timestamp_insert"`
}

// Validate checks the fields a dataset record must carry.
func (a *Author) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("author: missing id")
	}
	if a.Name == "" {
		return fmt.Errorf("author %q: missing name", a.ID)
	}
	if a.TimestampInsert.IsZero() {
		return fmt.Errorf("author %q: missing timestamp_insert", a.ID)
	}
	return nil
}

// Message is a single chat message from the source platform.
// Immutable after load.
type Message struct {
	ID                string    `json:"id"`
	ChannelID         string    `json:"channel_id"`
	ParentChannelID   *string   `json:"parent_channel_id"`
	CommunityServerID string    `json:"community_server_id"`
	Timestamp         Timestamp `json:"timestamp"`
	HasAttachment     bool      `json:"has_attachment"`
	ReferenceMsgID    *string   `json:"reference_msg_id"`
	TimestampInsert   Timestamp `json:"timestamp_insert"`
	DiscussionID      *string   `json:"discussion_id"`
	Content           string    `json:"content"`
	MsgURL            string    `json:"msg_url"`
	Author            Author    `json:"author"`
}

// Validate checks the fields a dataset record must carry.
func (m *Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message: missing id")
	}
	if m.ChannelID == "" {
		return fmt.Errorf("message %q: missing channel_id", m.ID)
	}
	if m.CommunityServerID == "" {
		return fmt.Errorf("message %q: missing community_server_id", m.ID)
	}
	if m.Timestamp.IsZero() {
		return fmt.Errorf("message %q: missing timestamp", m.ID)
	}
	if err := m.Author.Validate(); err != nil {
		return fmt.Errorf("message %q: %w", m.ID, err)
	}
	return nil
}
